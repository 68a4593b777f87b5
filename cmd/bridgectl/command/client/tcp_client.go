package client

// tcp_client.go = attaches to the bridge's development TCP transport.

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"

	"coquiz/internal/microservices/tcp"
)

// TCPConn speaks newline-delimited JSON; the first frame must be an attach handshake.
type TCPConn struct {
	conn   net.Conn
	reader *bufio.Reader
	mu     sync.Mutex
}

func DialTCP(addr, token string) (*TCPConn, error) {
	conn, err := net.DialTimeout("tcp", addr, 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("connection failed: %w", err)
	}
	c := &TCPConn{conn: conn, reader: bufio.NewReader(conn)}

	value, err := json.Marshal(map[string]string{"token": token})
	if err != nil {
		conn.Close()
		return nil, err
	}
	if err := c.Send(tcp.TypeAttach, value); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to send attach: %w", err)
	}

	conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	reply, err := c.Receive()
	conn.SetReadDeadline(time.Time{})
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("no attach reply: %w", err)
	}
	if reply.Type != tcp.TypeAttachSuccess {
		conn.Close()
		return nil, fmt.Errorf("attach rejected: %s", string(reply.Value))
	}
	return c, nil
}

func (c *TCPConn) Send(msgType string, value json.RawMessage) error {
	data, err := json.Marshal(tcp.Message{Type: msgType, Value: value})
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	_, err = c.conn.Write(append(data, '\n'))
	return err
}

func (c *TCPConn) Receive() (*Event, error) {
	line, err := c.reader.ReadBytes('\n')
	if err != nil {
		return nil, err
	}
	var evt Event
	if err := json.Unmarshal(line, &evt); err != nil {
		return nil, fmt.Errorf("invalid frame: %w", err)
	}
	return &evt, nil
}

func (c *TCPConn) Close() error {
	return c.conn.Close()
}
