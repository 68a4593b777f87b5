package bridge

import (
	"context"
	"fmt"
	"strings"

	"coquiz/internal/settings"
)

// payloads

type productListPayload struct {
	ItemUID string `json:"item_uid"`
}

type userInfoPayload struct {
	MemberID flexString `json:"mb_id"`
	Point    flexString `json:"mb_point"`
}

// pushTokenValue is the value of getFirebaseTokenSuccess.
type pushTokenValue struct {
	UserMachin    string  `json:"userMachin"`
	FirebaseToken *string `json:"firebaseToken"` // null when push is disabled
}

// ParseSKUs splits a comma-separated SKU list, trimming each element and
// skipping empty ones.
func ParseSKUs(list string) []string {
	parts := strings.Split(list, ",")
	skus := make([]string, 0, len(parts))
	for _, p := range parts {
		if sku := strings.TrimSpace(p); sku != "" {
			skus = append(skus, sku)
		}
	}
	return skus
}

func (b *Bridge) handleProductList(ctx context.Context, msg *Message) error {
	var p productListPayload
	if err := msg.DecodeValue(&p); err != nil {
		return err
	}
	skus := ParseSKUs(p.ItemUID)
	if err := b.caps.Purchases.FetchProducts(ctx, skus); err != nil {
		return fmt.Errorf("fetch products: %w", err)
	}
	b.logger.Info("products_requested", "count", len(skus))
	return nil
}

func (b *Bridge) handleGetUserMachin(ctx context.Context, msg *Message) error {
	if b.session.UserIdentifier == "" {
		b.emit(msg.Type.Fail(), nil)
		return nil
	}
	b.emit(msg.Type.Success(), b.session.UserIdentifier)
	return nil
}

func (b *Bridge) handleGetFirebaseToken(ctx context.Context, msg *Message) error {
	b.emit(msg.Type.Success(), b.pushTokenValue())
	return nil
}

func (b *Bridge) pushTokenValue() pushTokenValue {
	return pushTokenValue{
		UserMachin:    b.session.UserIdentifier,
		FirebaseToken: b.session.PushToken,
	}
}

func (b *Bridge) handleGetVersion(ctx context.Context, msg *Message) error {
	b.emit(msg.Type.Success(), b.appVersion)
	return nil
}

// handleUserInfo serves both saveUserInfo and editUserInfo.
func (b *Bridge) handleUserInfo(ctx context.Context, msg *Message) error {
	var p userInfoPayload
	if err := msg.DecodeValue(&p); err != nil {
		return err
	}
	if p.Point != "" {
		b.updatePoint(ctx, p.Point.String())
	}
	b.session.ActiveMemberID = p.MemberID.String()
	if b.session.ActiveMemberID == "" {
		// cleared member, replied without a value
		b.emit(msg.Type.Success(), nil)
		return nil
	}
	b.emit(msg.Type.Success(), b.session.ActiveMemberID)
	return nil
}

// updatePoint reports the member's latest score to analytics.
func (b *Bridge) updatePoint(ctx context.Context, point string) {
	if err := b.caps.Analytics.SetUserProperty(ctx, "point", point); err != nil {
		b.logger.Warn("analytics_property_failed", "error", err.Error())
		return
	}
	if err := b.caps.Analytics.LogEvent(ctx, "update_user"); err != nil {
		b.logger.Warn("analytics_event_failed", "error", err.Error())
	}
}

func (b *Bridge) handleGetSetting(ctx context.Context, msg *Message) error {
	b.emit(msg.Type.Success(), b.session.Settings)
	return nil
}

func (b *Bridge) handleSaveSetting(ctx context.Context, msg *Message) error {
	var patch settings.Patch
	if err := msg.DecodeValue(&patch); err != nil {
		return err
	}
	next := b.session.Settings.Merge(patch)
	if err := b.store.Save(ctx, next); err != nil {
		// session keeps the new values even when persisting fails
		b.logger.Error("settings_save_failed", "error", err.Error())
	}
	b.emit(msg.Type.Success(), next)
	b.session.Settings = next
	b.applySettingsEffects(ctx)
	return nil
}

// applySettingsEffects brings push registration and background music in line
// with the current settings.
func (b *Bridge) applySettingsEffects(ctx context.Context) {
	b.applyPushSetting(ctx)

	switch b.session.Settings.BGM {
	case settings.Off:
		b.setBackground(ctx, BackgroundStop)
	case settings.On:
		// already started: keep the current track playing
		if b.session.BackgroundStatus != BackgroundStart {
			b.setBackground(ctx, BackgroundStart)
		}
	}
}

func (b *Bridge) applyPushSetting(ctx context.Context) {
	switch b.session.Settings.Push {
	case settings.Off:
		if err := b.caps.Push.DeleteToken(ctx); err != nil {
			b.logger.Error("push_disable_failed", "error", err.Error())
			return
		}
		b.session.PushToken = nil
		b.logger.Info("push_disabled")
	case settings.On:
		if err := b.caps.Push.Register(ctx); err != nil {
			b.logger.Error("push_enable_failed", "error", err.Error())
			return
		}
		token, err := b.caps.Push.Token(ctx)
		if err != nil {
			b.logger.Error("push_token_failed", "error", err.Error())
			return
		}
		b.session.PushToken = &token
		b.logger.Info("push_enabled")
	default:
		return
	}
	b.emit(CmdGetFirebaseToken.Success(), b.pushTokenValue())
}

func (b *Bridge) handleExitApp(ctx context.Context, msg *Message) error {
	b.logger.Info("exit_requested")
	if err := b.caps.App.Exit(ctx); err != nil {
		return fmt.Errorf("exit app: %w", err)
	}
	return nil
}
