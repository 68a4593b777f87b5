package websocket

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// One attached content view. ReadPump hands inbound frames to the hub's
// handler, WritePump drains SendChannel and keeps the connection alive.

const ( // ping pong(2-way heartbeat) to keep connection alive
	WriteWait      = 10 * time.Second    // max time write a message to the peer
	PongWait       = 60 * time.Second    // max time to wait for pong from peer => no pong = no connection
	PingPeriod     = (PongWait * 9) / 10 // send pings before pong wait expires
	MaxMessageSize = 64 * 1024           // maximum message size allowed from peer
	SendBufferSize = 64                  // outbound messages queued per client
)

var (
	ErrClientClosed   = errors.New("client connection closed")
	ErrSendBufferFull = errors.New("client send buffer full")
)

type Client struct {
	ID          string          // unique connection ID
	DeviceID    string          // subject of the attach token
	Conn        *websocket.Conn // WebSocket connection
	SendChannel chan []byte     // outbound messages
	Hub         *Hub            // reference to the central Hub

	done      chan struct{}
	closeOnce sync.Once
}

// constructor new client
func NewClient(id, deviceID string, conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		ID:          id,
		DeviceID:    deviceID,
		Conn:        conn,
		SendChannel: make(chan []byte, SendBufferSize),
		Hub:         hub,
		done:        make(chan struct{}),
	}
}

// ReadPump reads frames until the peer goes away, then detaches the client.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.Hub.unregister(c)
		c.Close()
	}()

	c.Conn.SetReadLimit(MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(PongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(PongWait))
	})

	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.Hub.logger.Warn("client_read_error",
					"client_id", c.ID,
					"error", err.Error(),
				)
			}
			return
		}
		c.Hub.handler.HandleMessage(ctx, data)
	}
}

// WritePump writes queued messages and pings until the client is closed.
func (c *Client) WritePump() {
	ticker := time.NewTicker(PingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case msg := <-c.SendChannel:
			c.Conn.SetWriteDeadline(time.Now().Add(WriteWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.Hub.logger.Warn("client_write_error",
					"client_id", c.ID,
					"error", err.Error(),
				)
				c.Close()
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(WriteWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Close()
				return
			}
		case <-c.done:
			c.Conn.SetWriteDeadline(time.Now().Add(WriteWait))
			c.Conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "detached"))
			return
		}
	}
}

// PostMessage queues data for the content without blocking.
func (c *Client) PostMessage(data []byte) error {
	select {
	case <-c.done:
		return ErrClientClosed
	default:
	}
	select {
	case c.SendChannel <- data:
		return nil
	case <-c.done:
		return ErrClientClosed
	default:
		return ErrSendBufferFull
	}
}

// Close stops the write pump, which closes the connection. Safe to call more than once.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
	})
	return nil
}
