package bridge

import (
	"context"
)

type adPayload struct {
	MemberID   flexString `json:"mb_id"`
	AdType     flexString `json:"ad_type"`
	Fullscreen flexString `json:"fullscreen"`
}

// adResult is the value of admobCallSuccess and admobCallFail.
type adResult struct {
	MemberID    string `json:"mb_id"`
	AdType      string `json:"ad_type"`
	Fullscreen  string `json:"fullscreen,omitempty"`
	FailMessage string `json:"fail_message,omitempty"`
}

func adKindFor(fullscreen string) AdKind {
	if fullscreen == "true" {
		return AdFullscreen
	}
	return AdRewarded
}

// handleAdmobCall shows the requested ad. A unit that is not loaded yet gets one
// reload and a single show attempt AdRetryDelay later; there is no further retry.
func (b *Bridge) handleAdmobCall(ctx context.Context, msg *Message) error {
	var p adPayload
	if err := msg.DecodeValue(&p); err != nil {
		return err
	}
	b.session.ActiveMemberID = p.MemberID.String()
	b.session.ActiveAdType = p.AdType.String()
	kind := adKindFor(p.Fullscreen.String())

	if b.caps.Ads.IsLoaded(ctx, kind) {
		if err := b.caps.Ads.Show(ctx, kind); err != nil {
			b.logger.Error("ad_show_failed", "kind", kind, "error", err.Error())
			b.emitAdFailure(kind, err)
		}
		return nil
	}

	if err := b.caps.Ads.Load(ctx, kind); err != nil {
		b.logger.Warn("ad_reload_failed", "kind", kind, "error", err.Error())
	}
	b.setLoading(ctx, true)

	// the retry outlives the request; a later ad request does not cancel it
	retryCtx := context.WithoutCancel(ctx)
	b.clock.AfterFunc(AdRetryDelay, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.retryAd(retryCtx, kind)
	})
	b.logger.Info("ad_retry_scheduled", "kind", kind, "delay", AdRetryDelay.String())
	return nil
}

func (b *Bridge) retryAd(ctx context.Context, kind AdKind) {
	b.setLoading(ctx, false)
	if err := b.caps.Ads.Show(ctx, kind); err != nil {
		b.logger.Error("ad_retry_failed", "kind", kind, "error", err.Error())
		b.emitAdFailure(kind, err)
	}
}

func (b *Bridge) emitAdFailure(kind AdKind, err error) {
	b.emit(CmdAdmobCall.Fail(), b.adResult(kind, err.Error()))
}

// adResult tags an ad event with the session's current member and ad type.
func (b *Bridge) adResult(kind AdKind, failMessage string) adResult {
	r := adResult{
		MemberID:    b.session.ActiveMemberID,
		AdType:      b.session.ActiveAdType,
		FailMessage: failMessage,
	}
	if kind == AdFullscreen {
		r.Fullscreen = "true"
	}
	return r
}

func (b *Bridge) setLoading(ctx context.Context, visible bool) {
	if err := b.caps.App.SetLoading(ctx, visible); err != nil {
		b.logger.Warn("loading_overlay_failed", "visible", visible, "error", err.Error())
	}
}

// AdClosed handles the ad SDK's close callback. A rewarded ad reports success
// only when the reward was earned; an interstitial always does. The unit is
// then reloaded for the next request.
func (b *Bridge) AdClosed(ctx context.Context, kind AdKind, earned bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if kind == AdFullscreen || earned {
		b.emit(CmdAdmobCall.Success(), b.adResult(kind, ""))
	}
	if err := b.caps.Ads.Load(ctx, kind); err != nil {
		b.logger.Warn("ad_reload_failed", "kind", kind, "error", err.Error())
	}
}
