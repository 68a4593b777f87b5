package websocket

import (
	"context"
	"log/slog"
	"sync"

	"coquiz/internal/bridge"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// MessageHandler consumes inbound content messages.
type MessageHandler interface {
	HandleMessage(ctx context.Context, data []byte)
}

// ViewAttacher mounts and unmounts content views. Attaching a new view
// replaces the previous one.
type ViewAttacher interface {
	Attach(view bridge.ContentView)
	Detach(view bridge.ContentView) bool
}

// Hub tracks live websocket clients. Only the most recently attached one
// receives outbound messages; older ones are closed by the attacher.
type Hub struct {
	handler MessageHandler
	views   ViewAttacher
	logger  *slog.Logger

	mu      sync.RWMutex
	clients map[string]*Client
}

func NewHub(handler MessageHandler, views ViewAttacher, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		handler: handler,
		views:   views,
		logger:  logger,
		clients: make(map[string]*Client),
	}
}

// Serve registers conn as the attached content view and starts its pumps.
func (h *Hub) Serve(ctx context.Context, conn *websocket.Conn, deviceID string) *Client {
	client := NewClient(uuid.NewString(), deviceID, conn, h)

	h.mu.Lock()
	h.clients[client.ID] = client
	h.mu.Unlock()

	h.views.Attach(client)
	h.logger.Info("client_attached",
		"client_id", client.ID,
		"device_id", deviceID,
		"remote_addr", conn.RemoteAddr().String(),
	)

	go client.WritePump()
	go client.ReadPump(ctx)
	return client
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c.ID]
	delete(h.clients, c.ID)
	h.mu.Unlock()

	if !ok {
		return
	}
	detached := h.views.Detach(c)
	h.logger.Info("client_removed",
		"client_id", c.ID,
		"was_attached", detached,
	)
}

// Count returns the number of live clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// CloseAll closes every client, on shutdown.
func (h *Hub) CloseAll() {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.Close()
		h.views.Detach(c)
	}
}
