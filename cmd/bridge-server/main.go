package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"coquiz/internal/attach"
	"coquiz/internal/bridge"
	"coquiz/internal/capability/natsbus"
	"coquiz/internal/config"
	"coquiz/internal/microservices/http-api/handler"
	"coquiz/internal/microservices/http-api/middleware"
	"coquiz/internal/microservices/tcp"
	"coquiz/internal/microservices/websocket"
	"coquiz/internal/receipts"
	"coquiz/internal/settings"
	"coquiz/internal/shell"
	"coquiz/internal/version"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	profile, err := config.LoadProfile(cfg.ProfilePath)
	if err != nil {
		log.Fatalf("Failed to load profile: %v", err)
	}
	platform := profile.For(cfg.Platform)

	store, err := openSettingsStore(cfg)
	if err != nil {
		log.Fatalf("Failed to open settings store: %v", err)
	}
	defer store.Close()

	var receiptRepo receipts.Repository
	if cfg.DatabaseURL != "" {
		db, err := receipts.Open(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to open receipt database: %v", err)
		}
		receiptRepo = receipts.NewRepository(db)
	}

	bus, err := natsbus.Connect(cfg.NATSURL, cfg.NATSSubjectPrefix, cfg.CapabilityTimeout, logger)
	if err != nil {
		log.Fatalf("Failed to connect capability bus: %v", err)
	}
	defer bus.Close()

	caps := bus.Capabilities(natsbus.Vendor{
		RewardedUnit:   platform.AdUnits.Rewarded,
		FullscreenUnit: platform.AdUnits.Fullscreen,
		Wallet: natsbus.WalletMetadata{
			Name:        profile.Wallet.Name,
			Description: profile.Wallet.Description,
			URL:         profile.Wallet.URL,
			Icon:        profile.Wallet.Icon,
		},
	})

	notifier := bridge.NewNotifier(logger)
	opts := bridge.Options{
		AppVersion: cfg.AppVersion,
		Platform:   cfg.Platform,
		Logger:     logger,
	}
	if receiptRepo != nil {
		opts.Receipts = receiptRepo
	}
	b, err := bridge.NewBridge(caps, store, notifier, opts)
	if err != nil {
		log.Fatalf("Failed to create bridge: %v", err)
	}

	location := shell.NewLocation(platform.ContentURL, logger)
	location.OnChange(bus.PublishNavigate)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gate := &version.Gate{
		Source:        version.NewClient(profile.VersionEndpoint),
		Navigator:     location,
		Updater:       bus.Updater(),
		Platform:      cfg.Platform,
		Current:       cfg.AppVersion,
		UpdateInfoURL: platform.UpdateInfoURL,
		Logger:        logger,
	}
	decision := gate.Check(ctx)
	logger.Info("version_gate_checked", "decision", decision)

	b.Start(ctx)

	if err := bus.Subscribe(ctx, &shellSink{Bridge: b, location: location}); err != nil {
		log.Fatalf("Failed to subscribe to device events: %v", err)
	}

	tokens := attach.NewTokenService(cfg.AttachSecret, cfg.AttachTokenTTL)
	hub := websocket.NewHub(b, notifier, logger)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := newRouter(hub, tokens, handler.NewShellHandler(location, b, notifier), receiptRepo)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	var tcpServer *tcp.TCPServer
	if cfg.TCPPort != 0 {
		manager := tcp.NewConnectionManager(b, notifier, tokens, logger)
		tcpServer = tcp.NewServer(fmt.Sprintf("localhost:%d", cfg.TCPPort), manager)
		if err := tcpServer.Listen(); err != nil {
			log.Fatalf("Failed to start TCP server: %v", err)
		}
	}

	logger.Info("starting_bridge_server",
		"http_addr", httpServer.Addr,
		"tcp_port", cfg.TCPPort,
		"platform", cfg.Platform,
		"settings_backend", cfg.SettingsBackend,
		"receipts_enabled", receiptRepo != nil,
	)

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 2)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()
	if tcpServer != nil {
		go func() {
			if err := tcpServer.Start(ctx); err != nil {
				errChan <- err
			}
		}()
	}

	exitCode := 0
	select {
	case <-sigChan:
		logger.Info("received_shutdown_signal")
	case err := <-errChan:
		logger.Error("server_error", "error", err.Error())
		exitCode = 1
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http_shutdown_failed", "error", err.Error())
	}
	if tcpServer != nil {
		tcpServer.Stop()
	}
	hub.CloseAll()
	cancel()
	logger.Info("server_stopped_gracefully")

	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

func newRouter(hub *websocket.Hub, tokens *attach.TokenService, shellHandler *handler.ShellHandler, repo receipts.Repository) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	r.GET("/healthz", shellHandler.Health)
	r.GET("/ws", websocket.WSHandler(hub, tokens))

	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware(tokens))
	api.GET("/content", shellHandler.Content)
	api.GET("/status", shellHandler.Status)

	if repo != nil {
		receiptHandler := handler.NewReceiptHandler(repo)
		api.GET("/receipts/:transaction_id", receiptHandler.GetByTransaction)
		api.GET("/members/:mb_id/receipts", receiptHandler.ListByMember)
	}
	return r
}

func openSettingsStore(cfg *config.Config) (settings.Store, error) {
	switch cfg.SettingsBackend {
	case "redis":
		return settings.NewRedisStore(cfg.RedisURL, cfg.RedisPassword, cfg.SettingsNamespace)
	case "memory":
		return settings.NewMemoryStore(), nil
	default:
		return settings.NewSQLiteStore(cfg.SQLitePath)
	}
}

// shellSink forwards device events to the bridge and keeps the shell's
// online flag in step with connectivity.
type shellSink struct {
	*bridge.Bridge
	location *shell.Location
}

func (s *shellSink) ConnectivityChanged(ctx context.Context, online bool) {
	s.location.SetOnline(online)
	s.Bridge.ConnectivityChanged(ctx, online)
}
