package natsbus

import (
	"context"

	"coquiz/internal/bridge"
)

// Vendor holds the ids the native SDKs are configured with.
type Vendor struct {
	RewardedUnit   string
	FullscreenUnit string
	Wallet         WalletMetadata
}

// WalletMetadata is shown in the wallet connection modal.
type WalletMetadata struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Icon        string `json:"icon,omitempty"`
}

// Capabilities returns bridge capabilities that forward to the device over b.
func (b *Bus) Capabilities(v Vendor) bridge.Capabilities {
	return bridge.Capabilities{
		Ads:       &ads{bus: b, units: map[bridge.AdKind]string{bridge.AdRewarded: v.RewardedUnit, bridge.AdFullscreen: v.FullscreenUnit}},
		Purchases: &purchases{bus: b},
		Wallet:    &wallet{bus: b, meta: v.Wallet},
		Push:      &push{bus: b},
		Device:    &device{bus: b},
		Audio:     &audio{bus: b},
		Sound:     &sound{bus: b},
		Vibration: &vibration{bus: b},
		Analytics: &analytics{bus: b},
		App:       &app{bus: b},
	}
}

type ads struct {
	bus   *Bus
	units map[bridge.AdKind]string
}

type adRequest struct {
	Kind bridge.AdKind `json:"kind"`
	Unit string        `json:"unit"`
}

func (a *ads) req(kind bridge.AdKind) adRequest {
	return adRequest{Kind: kind, Unit: a.units[kind]}
}

func (a *ads) Init(ctx context.Context) error {
	return a.bus.call(ctx, "ads", "init", map[string]any{"units": a.units}, nil)
}

// IsLoaded treats an unreachable device as not loaded.
func (a *ads) IsLoaded(ctx context.Context, kind bridge.AdKind) bool {
	var resp struct {
		Loaded bool `json:"loaded"`
	}
	if err := a.bus.call(ctx, "ads", "is_loaded", a.req(kind), &resp); err != nil {
		a.bus.logger.Warn("ad_status_unavailable", "kind", kind, "error", err.Error())
		return false
	}
	return resp.Loaded
}

func (a *ads) Load(ctx context.Context, kind bridge.AdKind) error {
	return a.bus.call(ctx, "ads", "load", a.req(kind), nil)
}

func (a *ads) Show(ctx context.Context, kind bridge.AdKind) error {
	return a.bus.call(ctx, "ads", "show", a.req(kind), nil)
}

type purchases struct{ bus *Bus }

func (p *purchases) Init(ctx context.Context) error {
	return p.bus.call(ctx, "purchases", "init", nil, nil)
}

func (p *purchases) FetchProducts(ctx context.Context, skus []string) error {
	return p.bus.call(ctx, "purchases", "fetch_products", map[string]any{"skus": skus}, nil)
}

func (p *purchases) RequestPurchase(ctx context.Context, sku string) error {
	return p.bus.call(ctx, "purchases", "request", map[string]string{"sku": sku}, nil)
}

func (p *purchases) FinishTransaction(ctx context.Context, purchase bridge.Purchase) error {
	return p.bus.call(ctx, "purchases", "finish", map[string]any{"purchase": purchase, "consumable": true}, nil)
}

type wallet struct {
	bus  *Bus
	meta WalletMetadata
}

func (w *wallet) IsConnected(ctx context.Context) bool {
	var resp struct {
		Connected bool `json:"connected"`
	}
	if err := w.bus.call(ctx, "wallet", "is_connected", nil, &resp); err != nil {
		w.bus.logger.Warn("wallet_status_unavailable", "error", err.Error())
		return false
	}
	return resp.Connected
}

func (w *wallet) Address(ctx context.Context) string {
	var resp struct {
		Address string `json:"address"`
	}
	if err := w.bus.call(ctx, "wallet", "address", nil, &resp); err != nil {
		w.bus.logger.Warn("wallet_address_unavailable", "error", err.Error())
		return ""
	}
	return resp.Address
}

func (w *wallet) Open(ctx context.Context) error {
	return w.bus.call(ctx, "wallet", "open", map[string]any{"metadata": w.meta}, nil)
}

type push struct{ bus *Bus }

func (p *push) RequestPermission(ctx context.Context) error {
	return p.bus.call(ctx, "push", "request_permission", nil, nil)
}

func (p *push) Register(ctx context.Context) error {
	return p.bus.call(ctx, "push", "register", nil, nil)
}

func (p *push) Token(ctx context.Context) (string, error) {
	var resp struct {
		Token string `json:"token"`
	}
	if err := p.bus.call(ctx, "push", "token", nil, &resp); err != nil {
		return "", err
	}
	return resp.Token, nil
}

func (p *push) DeleteToken(ctx context.Context) error {
	return p.bus.call(ctx, "push", "delete_token", nil, nil)
}

type device struct{ bus *Bus }

func (d *device) UniqueID(ctx context.Context) (string, error) {
	var resp struct {
		ID string `json:"id"`
	}
	if err := d.bus.call(ctx, "device", "unique_id", nil, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

type audio struct{ bus *Bus }

func (a *audio) Play(ctx context.Context, track string) error {
	return a.bus.call(ctx, "audio", "play", map[string]string{"track": track}, nil)
}

func (a *audio) Stop(ctx context.Context) error   { return a.bus.call(ctx, "audio", "stop", nil, nil) }
func (a *audio) Pause(ctx context.Context) error  { return a.bus.call(ctx, "audio", "pause", nil, nil) }
func (a *audio) Resume(ctx context.Context) error { return a.bus.call(ctx, "audio", "resume", nil, nil) }

type sound struct{ bus *Bus }

func (s *sound) PlayEffect(ctx context.Context, file string) error {
	return s.bus.call(ctx, "sound", "play", map[string]string{"file": file}, nil)
}

type vibration struct{ bus *Bus }

func (v *vibration) Vibrate(ctx context.Context) error {
	return v.bus.call(ctx, "vibration", "vibrate", nil, nil)
}

func (v *vibration) VibratePattern(ctx context.Context, pattern []int) error {
	return v.bus.call(ctx, "vibration", "pattern", map[string]any{"pattern": pattern}, nil)
}

type analytics struct{ bus *Bus }

func (a *analytics) SetUserProperty(ctx context.Context, name, value string) error {
	return a.bus.call(ctx, "analytics", "set_user_property", map[string]string{"name": name, "value": value}, nil)
}

func (a *analytics) LogEvent(ctx context.Context, name string) error {
	return a.bus.call(ctx, "analytics", "log_event", map[string]string{"name": name}, nil)
}

type app struct{ bus *Bus }

func (a *app) SetLoading(ctx context.Context, visible bool) error {
	return a.bus.call(ctx, "app", "set_loading", map[string]bool{"visible": visible}, nil)
}

func (a *app) Exit(ctx context.Context) error {
	return a.bus.call(ctx, "app", "exit", nil, nil)
}

// Updater asks the device to pull hot-updatable content.
type Updater struct{ bus *Bus }

func (b *Bus) Updater() *Updater { return &Updater{bus: b} }

func (u *Updater) Sync(ctx context.Context) error {
	return u.bus.call(ctx, "update", "sync", nil, nil)
}

// PublishNavigate tells the host shell to load url in the content view.
func (b *Bus) PublishNavigate(url string) {
	if err := b.Publish("shell.navigate", map[string]string{"url": url}); err != nil {
		b.logger.Warn("navigate_publish_failed", "url", url, "error", err.Error())
	}
}
