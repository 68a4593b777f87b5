package version

import (
	"context"
	"log/slog"
)

// Source yields the minimum supported version for a platform.
type Source interface {
	Minimum(ctx context.Context, platform string) (string, error)
}

// Navigator points the content view at another address.
type Navigator interface {
	Navigate(url string)
}

// Updater synchronizes hot-updatable content.
type Updater interface {
	Sync(ctx context.Context) error
}

// Decision is the outcome of a version check.
type Decision string

const (
	DecisionProceed     Decision = "proceed"     // version accepted, content synced
	DecisionUpdate      Decision = "update"      // too old, redirected to the update page
	DecisionUnreachable Decision = "unreachable" // endpoint failed, gate left open
)

// Gate compares the running version against the published minimum.
type Gate struct {
	Source        Source
	Navigator     Navigator
	Updater       Updater // optional
	Platform      string
	Current       string
	UpdateInfoURL string
	Logger        *slog.Logger
}

// Check runs the gate once. A fetch failure leaves the gate open without
// syncing content; an outdated app is redirected to the update page exactly
// once and not synced; otherwise content is synced.
func (g *Gate) Check(ctx context.Context) Decision {
	logger := g.Logger
	if logger == nil {
		logger = slog.Default()
	}

	minimum, err := g.Source.Minimum(ctx, g.Platform)
	if err != nil {
		logger.Warn("version_check_failed", "error", err.Error())
		return DecisionUnreachable
	}

	if Compare(g.Current, minimum) < 0 {
		logger.Info("update_required",
			"current", g.Current,
			"minimum", minimum,
			"platform", g.Platform,
		)
		g.Navigator.Navigate(g.UpdateInfoURL)
		return DecisionUpdate
	}

	if g.Updater != nil {
		if err := g.Updater.Sync(ctx); err != nil {
			logger.Error("content_sync_failed", "error", err.Error())
		}
	}
	logger.Info("version_accepted", "current", g.Current, "minimum", minimum)
	return DecisionProceed
}
