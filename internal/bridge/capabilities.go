package bridge

import (
	"context"
	"errors"
	"strings"
)

// Native capabilities the bridge drives. Each one wraps a vendor SDK living on
// the device; the bridge only sees these interfaces.
//
// Implementations must not call back into the Bridge from inside a method:
// SDK callbacks are delivered through the Bridge's event entry points from
// their own goroutine.

// AdKind selects an ad unit.
type AdKind string

const (
	AdRewarded   AdKind = "rewarded"
	AdFullscreen AdKind = "fullscreen" // interstitial
)

type AdProvider interface {
	Init(ctx context.Context) error
	IsLoaded(ctx context.Context, kind AdKind) bool
	Load(ctx context.Context, kind AdKind) error
	Show(ctx context.Context, kind AdKind) error
}

// Purchase is a completed store transaction reported by the purchase SDK.
type Purchase struct {
	ProductID     string `json:"product_id"`
	TransactionID string `json:"transaction_id"`
	Receipt       string `json:"receipt"`  // transaction receipt (ios) or purchase token (android)
	Platform      string `json:"platform"` // "android" or "ios"
}

type PurchaseProvider interface {
	Init(ctx context.Context) error
	FetchProducts(ctx context.Context, skus []string) error
	RequestPurchase(ctx context.Context, sku string) error
	// FinishTransaction acknowledges a consumable purchase.
	FinishTransaction(ctx context.Context, p Purchase) error
}

type WalletProvider interface {
	IsConnected(ctx context.Context) bool
	Address(ctx context.Context) string
	// Open shows the wallet modal; the result arrives later as a connection state change.
	Open(ctx context.Context) error
}

type PushProvider interface {
	RequestPermission(ctx context.Context) error
	Register(ctx context.Context) error
	Token(ctx context.Context) (string, error)
	DeleteToken(ctx context.Context) error
}

type DeviceInfo interface {
	UniqueID(ctx context.Context) (string, error)
}

type AudioPlayer interface {
	Play(ctx context.Context, track string) error
	Stop(ctx context.Context) error
	Pause(ctx context.Context) error
	Resume(ctx context.Context) error
}

type SoundPlayer interface {
	PlayEffect(ctx context.Context, file string) error
}

type Vibrator interface {
	// Vibrate emits the platform's single default pulse.
	Vibrate(ctx context.Context) error
	// VibratePattern alternates off/on durations in milliseconds, starting with off.
	VibratePattern(ctx context.Context, pattern []int) error
}

type Analytics interface {
	SetUserProperty(ctx context.Context, name, value string) error
	LogEvent(ctx context.Context, name string) error
}

// AppControl covers the shell itself: the loading overlay and process exit.
type AppControl interface {
	SetLoading(ctx context.Context, visible bool) error
	Exit(ctx context.Context) error
}

// Capabilities groups every provider the bridge needs.
type Capabilities struct {
	Ads       AdProvider
	Purchases PurchaseProvider
	Wallet    WalletProvider
	Push      PushProvider
	Device    DeviceInfo
	Audio     AudioPlayer
	Sound     SoundPlayer
	Vibration Vibrator
	Analytics Analytics
	App       AppControl
}

func (c Capabilities) validate() error {
	var missing []string
	check := func(ok bool, name string) {
		if !ok {
			missing = append(missing, name)
		}
	}
	check(c.Ads != nil, "ads")
	check(c.Purchases != nil, "purchases")
	check(c.Wallet != nil, "wallet")
	check(c.Push != nil, "push")
	check(c.Device != nil, "device")
	check(c.Audio != nil, "audio")
	check(c.Sound != nil, "sound")
	check(c.Vibration != nil, "vibration")
	check(c.Analytics != nil, "analytics")
	check(c.App != nil, "app")
	if len(missing) > 0 {
		return errors.New("missing capabilities: " + strings.Join(missing, ", "))
	}
	return nil
}

// ReceiptRecorder stores completed purchases. Optional.
type ReceiptRecorder interface {
	Record(ctx context.Context, memberID string, p Purchase) error
}
