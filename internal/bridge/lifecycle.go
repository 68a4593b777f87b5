package bridge

import "context"

// BackPressed forwards the hardware back button to the content, which decides
// whether to navigate back or ask to exit.
func (b *Bridge) BackPressed(ctx context.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.emit(EventBackKeyPress, "dummy")
}

// AppStateChanged tracks foreground transitions. Coming back to active from
// inactive or background resumes the music; every other transition stops it.
func (b *Bridge) AppStateChanged(ctx context.Context, next AppState) {
	b.mu.Lock()
	defer b.mu.Unlock()

	prev := b.session.AppState
	b.session.AppState = next
	b.logger.Info("app_state_changed", "from", prev, "to", next)

	if (prev == AppInactive || prev == AppBackground) && next == AppActive {
		b.setBackground(ctx, BackgroundResume)
		return
	}
	b.setBackground(ctx, BackgroundStop)
}

// ConnectivityChanged records network reachability. The host swaps the content
// for its offline fallback by itself; the content is not told.
func (b *Bridge) ConnectivityChanged(ctx context.Context, online bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.session.Online == online {
		return
	}
	b.session.Online = online
	if online {
		b.logger.Info("connectivity_restored")
		return
	}
	b.logger.Warn("connectivity_lost")
}
