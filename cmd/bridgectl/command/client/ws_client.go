package client

// ws_client.go = attaches to the bridge as the content view over websocket.

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
)

type WSConn struct {
	conn *websocket.Conn
}

// DialWS connects to the bridge's /ws endpoint. serverURL is the HTTP base
// address, e.g. http://localhost:8080.
func DialWS(serverURL, token string) (*WSConn, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server url: %w", err)
	}
	u.Scheme = strings.Replace(u.Scheme, "http", "ws", 1)
	u.Path = "/ws"

	header := http.Header{}
	header.Add("Authorization", "Bearer "+token)

	conn, resp, err := websocket.DefaultDialer.Dial(u.String(), header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("connection failed (%s): %w", resp.Status, err)
		}
		return nil, fmt.Errorf("connection failed: %w", err)
	}
	return &WSConn{conn: conn}, nil
}

func (c *WSConn) Send(msgType string, value json.RawMessage) error {
	return c.conn.WriteJSON(outbound{Type: msgType, Value: value})
}

func (c *WSConn) Receive() (*Event, error) {
	var evt Event
	if err := c.conn.ReadJSON(&evt); err != nil {
		return nil, err
	}
	return &evt, nil
}

func (c *WSConn) Close() error {
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return c.conn.Close()
}
