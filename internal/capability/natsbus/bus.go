// Package natsbus reaches the device's native SDKs over NATS. Each capability
// call is a request/reply on <prefix>.cap.<capability>.<op>; SDK callbacks
// arrive as events on <prefix>.event.<name>.
package natsbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// Reply is the envelope every capability answers with.
type Reply struct {
	Error string          `json:"error,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// RemoteError is a failure reported by the native side.
type RemoteError struct {
	Subject string
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %s", e.Subject, e.Message)
}

type requester interface {
	RequestWithContext(ctx context.Context, subject string, data []byte) (*nats.Msg, error)
}

type publisher interface {
	Publish(subject string, data []byte) error
}

// Bus wraps a NATS connection
type Bus struct {
	conn    *nats.Conn
	req     requester
	pub     publisher
	prefix  string
	timeout time.Duration
	logger  *slog.Logger
	subs    []*nats.Subscription
}

// Connect dials NATS with reconnect handling.
func Connect(url, prefix string, timeout time.Duration, logger *slog.Logger) (*Bus, error) {
	if logger == nil {
		logger = slog.Default()
	}
	opts := []nats.Option{
		nats.Name("coquiz-bridge"),
		nats.ReconnectWait(2 * time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.Warn("nats_disconnected", "error", fmt.Sprint(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats_reconnected", "url", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.Info("nats_connection_closed")
		}),
	}

	conn, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	b := newBus(conn, conn, prefix, timeout, logger)
	b.conn = conn
	return b, nil
}

func newBus(req requester, pub publisher, prefix string, timeout time.Duration, logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		req:     req,
		pub:     pub,
		prefix:  prefix,
		timeout: timeout,
		logger:  logger,
	}
}

func (b *Bus) capabilitySubject(capability, op string) string {
	return b.prefix + ".cap." + capability + "." + op
}

func (b *Bus) eventSubject(name string) string {
	return b.prefix + ".event." + name
}

// call sends req to a capability and decodes the reply's data into resp.
// Either may be nil.
func (b *Bus) call(ctx context.Context, capability, op string, req, resp any) error {
	subject := b.capabilitySubject(capability, op)

	var payload []byte
	if req != nil {
		data, err := json.Marshal(req)
		if err != nil {
			return fmt.Errorf("failed to encode %s request: %w", subject, err)
		}
		payload = data
	}

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	msg, err := b.req.RequestWithContext(ctx, subject, payload)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", subject, err)
	}

	var reply Reply
	if len(msg.Data) > 0 {
		if err := json.Unmarshal(msg.Data, &reply); err != nil {
			return fmt.Errorf("invalid reply from %s: %w", subject, err)
		}
	}
	if reply.Error != "" {
		return &RemoteError{Subject: subject, Message: reply.Error}
	}
	if resp != nil && len(reply.Data) > 0 {
		if err := json.Unmarshal(reply.Data, resp); err != nil {
			return fmt.Errorf("invalid data from %s: %w", subject, err)
		}
	}
	b.logger.Debug("capability_called", "subject", subject)
	return nil
}

// Publish sends a fire-and-forget message on <prefix>.<suffix>.
func (b *Bus) Publish(suffix string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return b.pub.Publish(b.prefix+"."+suffix, data)
}

// IsConnected returns true if connected to NATS
func (b *Bus) IsConnected() bool {
	return b.conn != nil && b.conn.IsConnected()
}

// Close drains subscriptions and closes the NATS connection
func (b *Bus) Close() {
	for _, sub := range b.subs {
		sub.Unsubscribe()
	}
	if b.conn != nil {
		b.conn.Close()
	}
}
