package bridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"coquiz/internal/settings"
)

// handlerFunc runs one inbound command. Called with the bridge lock held.
type handlerFunc func(ctx context.Context, msg *Message) error

// Options configures a Bridge.
type Options struct {
	AppVersion string // running app version, reported by getVersion
	Platform   string // "android" or "ios"
	Clock      Clock
	Logger     *slog.Logger
	Receipts   ReceiptRecorder
}

// Bridge routes messages between the web content and native capabilities.
//
// Inbound commands, native callbacks and the ad retry timer all run under mu,
// giving the session a single writer and keeping outbound events in the order
// their triggers completed.
type Bridge struct {
	mu       sync.Mutex
	session  Session
	handlers map[CommandType]handlerFunc

	caps     Capabilities
	store    settings.Store
	notifier *Notifier
	receipts ReceiptRecorder

	appVersion string
	platform   string
	clock      Clock
	logger     *slog.Logger
}

// NewBridge wires a bridge to its capabilities, settings store and notifier.
func NewBridge(caps Capabilities, store settings.Store, notifier *Notifier, opts Options) (*Bridge, error) {
	if err := caps.validate(); err != nil {
		return nil, err
	}
	if store == nil {
		return nil, errors.New("settings store is required")
	}
	if notifier == nil {
		return nil, errors.New("notifier is required")
	}
	if opts.Clock == nil {
		opts.Clock = realClock{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	b := &Bridge{
		session:    newSession(),
		caps:       caps,
		store:      store,
		notifier:   notifier,
		receipts:   opts.Receipts,
		appVersion: opts.AppVersion,
		platform:   opts.Platform,
		clock:      opts.Clock,
		logger:     opts.Logger,
	}
	b.handlers = map[CommandType]handlerFunc{
		CmdProductList:      b.handleProductList,
		CmdGetUserMachin:    b.handleGetUserMachin,
		CmdGetFirebaseToken: b.handleGetFirebaseToken,
		CmdGetVersion:       b.handleGetVersion,
		CmdSaveUserInfo:     b.handleUserInfo,
		CmdEditUserInfo:     b.handleUserInfo,
		CmdGetSetting:       b.handleGetSetting,
		CmdSaveSetting:      b.handleSaveSetting,
		CmdBGMStart:         b.handleBGMStart,
		CmdBGMStop:          b.backgroundHandler(BackgroundStop),
		CmdBGMPause:         b.backgroundHandler(BackgroundPause),
		CmdBGMResume:        b.backgroundHandler(BackgroundResume),
		CmdSoundStart:       b.handleSoundStart,
		CmdVibrateStart:     b.handleVibrateStart,
		CmdAdmobCall:        b.handleAdmobCall,
		CmdRequestPurchase:  b.handleRequestPurchase,
		CmdConnectWallet:    b.handleConnectWallet,
		CmdDisconnectWallet: b.handleDisconnectWallet,
		CmdExitApp:          b.handleExitApp,
	}
	return b, nil
}

// Notifier returns the outbound side, for transports to attach content views.
func (b *Bridge) Notifier() *Notifier {
	return b.notifier
}

// Snapshot returns a copy of the session state.
func (b *Bridge) Snapshot() Session {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.session
	if s.PushToken != nil {
		token := *s.PushToken
		s.PushToken = &token
	}
	return s
}

// HandleMessage decodes one inbound message and runs its handler.
// Malformed messages and invalid payloads are logged and dropped; unknown
// command tags are ignored. Nothing here is fatal.
func (b *Bridge) HandleMessage(ctx context.Context, data []byte) {
	b.logger.Debug("message_received", "payload", string(data))

	msg, err := MessageFromJSON(data)
	if err != nil {
		b.logger.Warn("invalid_message_dropped", "error", err.Error())
		return
	}

	handler, ok := b.handlers[msg.Type]
	if !ok {
		b.logger.Debug("unknown_command_ignored", "type", msg.Type)
		return
	}

	if err := validatePayload(msg); err != nil {
		b.logger.Warn("invalid_payload_dropped", "type", msg.Type, "error", err.Error())
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if err := handler(ctx, msg); err != nil {
		b.logger.Error("command_failed", "type", msg.Type, "error", err.Error())
	}
}

// Start runs the startup sequence: permissions, ad SDK, device id, settings
// and the purchase connection. Capability failures are logged; the bridge stays usable.
func (b *Bridge) Start(ctx context.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.caps.Push.RequestPermission(ctx); err != nil {
		b.logger.Warn("push_permission_failed", "error", err.Error())
	}
	if err := b.caps.Ads.Init(ctx); err != nil {
		b.logger.Error("ads_init_failed", "error", err.Error())
	}

	uid, err := b.caps.Device.UniqueID(ctx)
	if err != nil {
		b.logger.Error("device_id_failed", "error", err.Error())
	}
	b.session.UserIdentifier = uid

	if err := b.loadSettings(ctx); err != nil {
		b.logger.Error("settings_load_failed", "error", err.Error())
	}
	b.applySettingsEffects(ctx)

	if err := b.caps.Purchases.Init(ctx); err != nil {
		b.logger.Error("purchase_connection_failed", "error", err.Error())
	}

	b.logger.Info("bridge_started",
		"platform", b.platform,
		"app_version", b.appVersion,
		"has_user_id", uid != "",
	)
}

// loadSettings reads the stored record, saving the defaults when none exists.
func (b *Bridge) loadSettings(ctx context.Context) error {
	loaded, err := b.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load: %w", err)
	}
	if loaded == nil {
		defaults := settings.Defaults()
		b.session.Settings = defaults
		if err := b.store.Save(ctx, defaults); err != nil {
			return fmt.Errorf("save defaults: %w", err)
		}
		return nil
	}
	b.session.Settings = *loaded
	return nil
}

// emit sends an outbound event, logging instead of failing.
func (b *Bridge) emit(t CommandType, value any) {
	err := b.notifier.Notify(t, value)
	switch {
	case err == nil:
	case errors.Is(err, ErrNotAttached):
		b.logger.Debug("message_dropped_not_attached", "type", t)
	default:
		b.logger.Warn("message_delivery_failed", "type", t, "error", err.Error())
	}
}
