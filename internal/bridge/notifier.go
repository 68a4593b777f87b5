package bridge

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// ErrNotAttached is returned by Notify when no content view is mounted.
// The message is dropped; nothing is queued for later.
var ErrNotAttached = errors.New("no content view attached")

// ContentView is a mounted web content able to receive outbound messages.
type ContentView interface {
	PostMessage(data []byte) error
}

// Notifier delivers outbound messages to the single attached content view.
type Notifier struct {
	mu     sync.Mutex // serializes delivery, so events leave in trigger order
	view   ContentView
	logger *slog.Logger
}

func NewNotifier(logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{logger: logger}
}

// Attach mounts view. Only one view is attached at a time: a previously attached
// view is replaced and, if it can be closed, closed.
func (n *Notifier) Attach(view ContentView) {
	n.mu.Lock()
	prev := n.view
	n.view = view
	n.mu.Unlock()

	n.logger.Info("content_view_attached")
	if prev != nil && prev != view {
		if closer, ok := prev.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				n.logger.Warn("replaced_view_close_failed", "error", err)
			}
		}
		n.logger.Info("content_view_replaced")
	}
}

// Detach unmounts view if it is the one currently attached and reports whether it was.
func (n *Notifier) Detach(view ContentView) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.view == nil || n.view != view {
		return false
	}
	n.view = nil
	n.logger.Info("content_view_detached")
	return true
}

// Attached reports whether a content view is mounted.
func (n *Notifier) Attached() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.view != nil
}

// Notify wraps value as {type, value} and delivers it to the attached view.
// Returns ErrNotAttached when the message was dropped.
func (n *Notifier) Notify(t CommandType, value any) error {
	msg, err := NewMessage(t, value)
	if err != nil {
		return err
	}
	data, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", t, err)
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	n.logger.Debug("message_sent", "type", t, "payload", string(data))
	if n.view == nil {
		return ErrNotAttached
	}
	if err := n.view.PostMessage(data); err != nil {
		return fmt.Errorf("failed to deliver %s: %w", t, err)
	}
	return nil
}
