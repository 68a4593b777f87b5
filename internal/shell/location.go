// Package shell tracks what the host shell should display.
package shell

import (
	"log/slog"
	"sync"
)

// Location is the address the content view should load, plus the network
// state that decides whether the offline fallback is shown instead.
type Location struct {
	mu       sync.RWMutex
	url      string
	online   bool
	onChange func(url string)
	logger   *slog.Logger
}

// Snapshot is the serialized form of a Location, served to the host shell.
type Snapshot struct {
	URL    string `json:"url"`
	Online bool   `json:"online"`
}

func NewLocation(url string, logger *slog.Logger) *Location {
	if logger == nil {
		logger = slog.Default()
	}
	return &Location{url: url, online: true, logger: logger}
}

// OnChange registers a hook run after every navigation.
func (l *Location) OnChange(fn func(url string)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onChange = fn
}

// Navigate points the content view at url.
func (l *Location) Navigate(url string) {
	l.mu.Lock()
	prev := l.url
	l.url = url
	hook := l.onChange
	l.mu.Unlock()

	l.logger.Info("content_navigated", "from", prev, "to", url)
	if hook != nil {
		hook(url)
	}
}

func (l *Location) SetOnline(online bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.online = online
}

func (l *Location) URL() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.url
}

func (l *Location) Snapshot() Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return Snapshot{URL: l.url, Online: l.online}
}
