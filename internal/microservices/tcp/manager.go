package tcp

import (
	"context"
	"log/slog"
	"sync"

	"coquiz/internal/bridge"
)

// MessageHandler consumes inbound content messages.
type MessageHandler interface {
	HandleMessage(ctx context.Context, data []byte)
}

// ViewAttacher mounts and unmounts content views.
type ViewAttacher interface {
	Attach(view bridge.ContentView)
	Detach(view bridge.ContentView) bool
}

// TokenValidator checks an attach token and returns its subject.
type TokenValidator interface {
	ValidateToken(token string) (string, error)
}

type ConnectionManager struct {
	clients map[string]*ClientConnection // key: client ID
	mu      sync.RWMutex
	logger  *slog.Logger
	handler MessageHandler
	views   ViewAttacher
	tokens  TokenValidator
}

// constructor for ConnectionManager
func NewConnectionManager(handler MessageHandler, views ViewAttacher, tokens TokenValidator, logger *slog.Logger) *ConnectionManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConnectionManager{
		clients: make(map[string]*ClientConnection),
		logger:  logger,
		handler: handler,
		views:   views,
		tokens:  tokens,
	}
}

// method to add a new connection
func (m *ConnectionManager) AddConnection(client *ClientConnection) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clients[client.ID] = client
	m.logger.Info("client_added",
		"client_id", client.ID,
	)
}

// method to remove a connection, detaching it if it is the current view
func (m *ConnectionManager) RemoveConnection(client *ClientConnection) {
	m.mu.Lock()
	delete(m.clients, client.ID)
	m.mu.Unlock()

	detached := false
	if client.IsAttached() {
		detached = m.views.Detach(client)
	}
	m.logger.Info("client_removed",
		"client_id", client.ID,
		"was_attached", detached,
	)
}

func (m *ConnectionManager) attach(client *ClientConnection) {
	m.views.Attach(client)
	m.logger.Info("client_attached",
		"client_id", client.ID,
		"device_id", client.DeviceID,
	)
}

// Count returns the number of open connections.
func (m *ConnectionManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}

// method to close all connections
func (m *ConnectionManager) CloseAllConnections() {
	m.mu.Lock()
	clients := m.clients
	m.clients = make(map[string]*ClientConnection)
	m.mu.Unlock()

	for id, client := range clients {
		client.Close()
		if client.IsAttached() {
			m.views.Detach(client)
		}
		m.logger.Info("client_connection_closed",
			"client_id", id,
		)
	}
}

func (m *ConnectionManager) BroadcastSystemMessage(text string) {
	m.Broadcast(frame(TypeSystem, text))
}

func (m *ConnectionManager) Broadcast(msg []byte) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for id, c := range m.clients {
		if err := c.Send(msg); err != nil {
			m.logger.Warn("failed_to_send_broadcast",
				"client_id", id,
				"error", err.Error(),
			)
		}
	}
}
