package natsbus

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"coquiz/internal/bridge"

	"github.com/nats-io/nats.go"
)

// EventSink receives SDK callbacks. *bridge.Bridge implements it.
type EventSink interface {
	PurchaseUpdated(ctx context.Context, p bridge.Purchase)
	PurchaseFailed(ctx context.Context, code string)
	AdClosed(ctx context.Context, kind bridge.AdKind, earned bool)
	WalletChanged(ctx context.Context, address string)
	BackPressed(ctx context.Context)
	AppStateChanged(ctx context.Context, state bridge.AppState)
	BackgroundTrackFinished(ctx context.Context)
	ConnectivityChanged(ctx context.Context, online bool)
}

var _ EventSink = (*bridge.Bridge)(nil)

// event names, the last token of <prefix>.event.<name>
const (
	EventPurchaseUpdated = "purchase_updated"
	EventPurchaseFailed  = "purchase_failed"
	EventAdClosed        = "ad_closed"
	EventWalletChanged   = "wallet_changed"
	EventBackPressed     = "back_pressed"
	EventAppState        = "app_state"
	EventTrackFinished   = "track_finished"
	EventConnectivity    = "connectivity"
)

// Subscribe feeds every device event to sink until the bus is closed.
func (b *Bus) Subscribe(ctx context.Context, sink EventSink) error {
	if b.conn == nil {
		return fmt.Errorf("bus is not connected")
	}
	sub, err := b.conn.Subscribe(b.eventSubject(">"), func(msg *nats.Msg) {
		if err := b.dispatchEvent(ctx, msg.Subject, msg.Data, sink); err != nil {
			b.logger.Warn("device_event_dropped",
				"subject", msg.Subject,
				"error", err.Error(),
			)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to device events: %w", err)
	}
	b.subs = append(b.subs, sub)
	b.logger.Info("device_events_subscribed", "subject", sub.Subject)
	return nil
}

func (b *Bus) dispatchEvent(ctx context.Context, subject string, data []byte, sink EventSink) error {
	name, ok := strings.CutPrefix(subject, b.eventSubject(""))
	if !ok {
		return fmt.Errorf("unexpected subject")
	}
	decode := func(target any) error {
		if len(data) == 0 {
			return fmt.Errorf("%s: payload required", name)
		}
		if err := json.Unmarshal(data, target); err != nil {
			return fmt.Errorf("%s: invalid payload: %w", name, err)
		}
		return nil
	}

	switch name {
	case EventPurchaseUpdated:
		var p bridge.Purchase
		if err := decode(&p); err != nil {
			return err
		}
		sink.PurchaseUpdated(ctx, p)
	case EventPurchaseFailed:
		var v struct {
			Code string `json:"code"`
		}
		if err := decode(&v); err != nil {
			return err
		}
		sink.PurchaseFailed(ctx, v.Code)
	case EventAdClosed:
		var v struct {
			Kind   bridge.AdKind `json:"kind"`
			Earned bool          `json:"earned"`
		}
		if err := decode(&v); err != nil {
			return err
		}
		if v.Kind != bridge.AdRewarded && v.Kind != bridge.AdFullscreen {
			return fmt.Errorf("%s: unknown ad kind %q", name, v.Kind)
		}
		sink.AdClosed(ctx, v.Kind, v.Earned)
	case EventWalletChanged:
		var v struct {
			Address string `json:"address"`
		}
		if err := decode(&v); err != nil {
			return err
		}
		sink.WalletChanged(ctx, v.Address)
	case EventBackPressed:
		sink.BackPressed(ctx)
	case EventAppState:
		var v struct {
			State bridge.AppState `json:"state"`
		}
		if err := decode(&v); err != nil {
			return err
		}
		switch v.State {
		case bridge.AppActive, bridge.AppInactive, bridge.AppBackground:
		default:
			return fmt.Errorf("%s: unknown state %q", name, v.State)
		}
		sink.AppStateChanged(ctx, v.State)
	case EventTrackFinished:
		sink.BackgroundTrackFinished(ctx)
	case EventConnectivity:
		var v struct {
			Online bool `json:"online"`
		}
		if err := decode(&v); err != nil {
			return err
		}
		sink.ConnectivityChanged(ctx, v.Online)
	default:
		return fmt.Errorf("unknown event %q", name)
	}
	return nil
}
