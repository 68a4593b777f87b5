package tcp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
)

// TCPServer is a newline-delimited JSON transport for attaching content views
// during development. It speaks the same messages as the websocket transport.
type TCPServer struct {
	Addr    string
	Manager *ConnectionManager

	mu       sync.Mutex
	listener net.Listener
	quitChan chan struct{} // closed on Stop
	wg       sync.WaitGroup
}

// constructor for Server
func NewServer(addr string, manager *ConnectionManager) *TCPServer {
	return &TCPServer{
		Addr:     addr,
		Manager:  manager,
		quitChan: make(chan struct{}),
	}
}

// Listen binds the address. Start calls it when needed.
func (s *TCPServer) Listen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return fmt.Errorf("failed to start TCP server: %w", err)
	}
	s.listener = listener
	s.Addr = listener.Addr().String()
	return nil
}

// Start accepts connections until Stop is called.
func (s *TCPServer) Start(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}
	s.Manager.logger.Info("tcp_server_started", "addr", s.Addr)

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.quitChan:
				return nil
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.Manager.logger.Warn("accept_failed", "error", err.Error())
			continue
		}
		s.wg.Add(1)
		go func(conn net.Conn) {
			defer s.wg.Done()
			s.handleConnection(ctx, conn)
		}(conn)
	}
}

// handle connections/lifecycle of single client connection
func (s *TCPServer) handleConnection(ctx context.Context, conn net.Conn) {
	client := NewClientConnection(conn, s.Manager)
	s.Manager.AddConnection(client)
	client.Listen(ctx)
	s.Manager.RemoveConnection(client)
}

// Stop closes the listener and every connection, then waits for handlers to exit.
func (s *TCPServer) Stop() {
	s.mu.Lock()
	select {
	case <-s.quitChan:
		s.mu.Unlock()
		return
	default:
		close(s.quitChan)
	}
	if s.listener != nil {
		s.listener.Close()
	}
	s.mu.Unlock()

	s.Manager.BroadcastSystemMessage("Server is shutting down.")
	s.Manager.CloseAllConnections()
	s.wg.Wait()
	s.Manager.logger.Info("tcp_server_stopped")
}
