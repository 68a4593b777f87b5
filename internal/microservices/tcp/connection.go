package tcp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const MaxMessageSize = 1024 * 1024          // 1MB max line
const MaxDeadlineDuration = 5 * time.Minute // 5min max read timeout duration

const (
	WriteWait      = 10 * time.Second // per-frame write deadline
	SendBufferSize = 64               // queued frames per connection
)

var (
	ErrConnectionClosed = errors.New("connection closed")
	ErrSendBufferFull   = errors.New("send buffer full")
)

type ClientConnection struct {
	ID       string // unique identifier = key in map
	conn     net.Conn
	Writer   *bufio.Writer      // only used by writeLoop
	Manager  *ConnectionManager // reference to the connection manager
	Limiter  *rate.Limiter      // rate limiter for rate of sending messages
	DeviceID string             // subject of the attach token

	sendChan   chan []byte
	done       chan struct{}
	writerDone chan struct{}

	attached  atomic.Bool // set once the attach handshake succeeded
	closeOnce sync.Once
}

// constructor for Connection; starts the connection's writer
func NewClientConnection(conn net.Conn, manager *ConnectionManager) *ClientConnection {
	c := &ClientConnection{
		ID:         uuid.NewString(),
		conn:       conn,
		Writer:     bufio.NewWriter(conn),
		Manager:    manager,
		Limiter:    rate.NewLimiter(rate.Limit(10), 20), // 10 msgs/sec with burst of 20
		sendChan:   make(chan []byte, SendBufferSize),
		done:       make(chan struct{}),
		writerDone: make(chan struct{}),
	}
	go c.writeLoop()
	return c
}

// Listen reads newline-terminated frames until the peer goes away. The first
// frame must be an attach handshake; later frames go to the bridge.
func (c *ClientConnection) Listen(ctx context.Context) {
	defer func() {
		c.Close()
		<-c.writerDone
	}()
	reader := bufio.NewReaderSize(c.conn, 64*1024)

	c.Manager.logger.Info("client_started_listening",
		"client_id", c.ID,
		"remote_addr", c.conn.RemoteAddr().String(),
	)
	c.conn.SetReadDeadline(time.Now().Add(MaxDeadlineDuration))

	for {
		line, err := readLine(reader, MaxMessageSize)
		if errors.Is(err, errLineTooLong) {
			c.Manager.logger.Warn("message_too_large",
				"client_id", c.ID,
				"max_size", MaxMessageSize,
			)
			continue
		}
		if err != nil {
			c.logReadError(err)
			return
		}

		// reset deadline on successful read
		c.conn.SetReadDeadline(time.Now().Add(MaxDeadlineDuration))

		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}

		if !c.Limiter.Allow() {
			c.Manager.logger.Warn("rate_limit_exceeded",
				"client_id", c.ID,
			)
			c.Send(frame(TypeError, "rate limit exceeded"))
			continue
		}

		if !c.attached.Load() {
			if !c.handleAttach(line) {
				return
			}
			continue
		}
		c.Manager.handler.HandleMessage(ctx, line)
	}
}

// handleAttach validates the handshake and mounts the connection as the
// content view. Returns false when the connection should be dropped.
func (c *ClientConnection) handleAttach(line []byte) bool {
	var msg Message
	if err := json.Unmarshal(line, &msg); err != nil || msg.Type != TypeAttach {
		c.Send(frame(TypeAttachFail, map[string]string{"error": "attach handshake required"}))
		return false
	}
	var v attachValue
	if err := json.Unmarshal(msg.Value, &v); err != nil || v.Token == "" {
		c.Send(frame(TypeAttachFail, map[string]string{"error": "token required"}))
		return false
	}
	deviceID, err := c.Manager.tokens.ValidateToken(v.Token)
	if err != nil {
		c.Manager.logger.Warn("attach_token_rejected",
			"client_id", c.ID,
			"error", err.Error(),
		)
		c.Send(frame(TypeAttachFail, map[string]string{"error": "invalid token"}))
		return false
	}

	c.DeviceID = deviceID
	c.attached.Store(true)
	c.Send(frame(TypeAttachSuccess, map[string]string{"client_id": c.ID}))
	c.Manager.attach(c)
	return true
}

func (c *ClientConnection) logReadError(err error) {
	var netErr net.Error
	switch {
	case errors.Is(err, io.EOF):
		c.Manager.logger.Info("client_disconnected", "client_id", c.ID)
	case errors.As(err, &netErr) && netErr.Timeout():
		c.Manager.logger.Warn("client_read_timeout", "client_id", c.ID)
	case errors.Is(err, net.ErrClosed):
		// closed by us during shutdown or replacement
	default:
		c.Manager.logger.Error("client_read_error",
			"client_id", c.ID,
			"error", err.Error(),
		)
	}
}

var errLineTooLong = errors.New("line too long")

// readLine reads one '\n'-terminated line. Oversized lines are consumed up to
// their newline and reported as errLineTooLong.
func readLine(r *bufio.Reader, limit int) ([]byte, error) {
	var line []byte
	tooLong := false
	for {
		chunk, isPrefix, err := r.ReadLine()
		if err != nil {
			return nil, err
		}
		if !tooLong {
			if len(line)+len(chunk) > limit {
				tooLong = true
				line = nil
			} else {
				line = append(line, chunk...)
			}
		}
		if !isPrefix {
			break
		}
	}
	if tooLong {
		return nil, errLineTooLong
	}
	return line, nil
}

// Send queues data for the writer without blocking.
func (c *ClientConnection) Send(data []byte) error {
	select {
	case <-c.done:
		return ErrConnectionClosed
	default:
	}
	select {
	case c.sendChan <- data:
		return nil
	case <-c.done:
		return ErrConnectionClosed
	default:
		return ErrSendBufferFull
	}
}

// writeLoop is the only writer on the socket. Once the connection is closed
// it flushes what is still queued, then closes the socket, which also ends Listen.
func (c *ClientConnection) writeLoop() {
	defer close(c.writerDone)
	defer c.conn.Close()

	for {
		select {
		case data := <-c.sendChan:
			if err := c.write(data); err != nil {
				c.Manager.logger.Warn("client_write_error",
					"client_id", c.ID,
					"error", err.Error(),
				)
				c.Close()
				return
			}
		case <-c.done:
			for {
				select {
				case data := <-c.sendChan:
					if c.write(data) != nil {
						return
					}
				default:
					return
				}
			}
		}
	}
}

// write writes data + "\n" and flushes
func (c *ClientConnection) write(data []byte) error {
	c.conn.SetWriteDeadline(time.Now().Add(WriteWait))
	if _, err := c.Writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data: %w", err)
	}
	if err := c.Writer.WriteByte('\n'); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}
	if err := c.Writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush writer: %w", err)
	}
	return nil
}

// IsAttached reports whether the attach handshake succeeded.
func (c *ClientConnection) IsAttached() bool {
	return c.attached.Load()
}

// PostMessage queues an outbound bridge message. It never blocks the caller,
// which holds the bridge lock.
func (c *ClientConnection) PostMessage(data []byte) error {
	return c.Send(data)
}

// Close stops the writer, which flushes queued frames and closes the socket.
// Safe to call more than once.
func (c *ClientConnection) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
	})
	return nil
}
