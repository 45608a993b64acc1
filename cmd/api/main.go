package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ewilliams-labs/crescendo/internal/adapters/anthropic"
	"github.com/ewilliams-labs/crescendo/internal/adapters/rest"
	"github.com/ewilliams-labs/crescendo/internal/adapters/sqlite"
	"github.com/ewilliams-labs/crescendo/internal/adapters/tidal"
	"github.com/ewilliams-labs/crescendo/internal/config"
	"github.com/ewilliams-labs/crescendo/internal/core/services"
)

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "crescendo",
	})

	// 1. Configuration
	// Crash early if required config is missing.
	cfgPath := os.Getenv("CRESCENDO_CONFIG")
	if cfgPath == "" {
		cfgPath = "config.toml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Fatal("failed to load config", "path", cfgPath, "err", err)
		}
		logger.Info("no config file found, using defaults", "path", cfgPath)
		cfg = config.Default()
	}
	if cfg.Tidal.ClientID == "" || cfg.Tidal.ClientSecret == "" {
		logger.Fatal("tidal client_id and client_secret are required")
	}
	if cfg.Anthropic.APIKey == "" {
		logger.Fatal("anthropic api_key is required (set ANTHROPIC_API_KEY)")
	}

	// 2. Initialize "driven" adapters.
	// -- Session store
	store, err := sqlite.NewSessionStore(cfg.Database.Path)
	if err != nil {
		logger.Fatal("failed to initialize database", "err", err)
	}
	defer store.Close()

	// -- Tidal adapters
	httpClient := &http.Client{Timeout: cfg.Tidal.HTTPTimeout()}
	auth := tidal.NewAuthenticator(store, httpClient, tidal.AuthConfig{
		ClientID:     cfg.Tidal.ClientID,
		ClientSecret: cfg.Tidal.ClientSecret,
		BaseURL:      cfg.Tidal.AuthBaseURL,
		Scopes:       cfg.Tidal.Scopes,
	}, logger)
	catalog := tidal.NewClient(auth, httpClient, cfg.Tidal.APIBaseURL, logger)

	// -- Anthropic adapter
	claude := anthropic.NewClient(nil, cfg.Anthropic.BaseURL, cfg.Anthropic.APIKey, cfg.Anthropic.Model)

	// 3. Initialize core logic. The compiler guarantees the adapters satisfy
	// the ports the services depend on.
	aggregator := services.NewAggregator(catalog, services.AggregatorConfig{
		Workers:   cfg.Discovery.FanoutWorkers,
		RateLimit: cfg.Discovery.RateLimit,
	}, logger)
	svc := services.NewOrchestrator(catalog, claude, claude, aggregator, logger)

	// 4. Initialize the "driving" adapter.
	handler := rest.NewHandler(svc, auth, logger, cfg.Discovery.Timeout())

	// 5. Start the server.
	addr := cfg.Addr()
	logger.Info("crescendo API is running", "addr", addr)

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 15 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		err := srv.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-serverErr:
		if err != nil {
			logger.Fatal(err)
		}
	case <-ctx.Done():
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", "err", err)
		}
	}
}
