// Mediarec - Media Catalog and Consumption Simulation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediarec

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/tomtom215/mediarec/docs" // Import generated swagger docs
	"github.com/tomtom215/mediarec/internal/api"
	"github.com/tomtom215/mediarec/internal/auth"
	"github.com/tomtom215/mediarec/internal/authz"
	"github.com/tomtom215/mediarec/internal/config"
	"github.com/tomtom215/mediarec/internal/database"
	"github.com/tomtom215/mediarec/internal/eventbus"
	"github.com/tomtom215/mediarec/internal/logging"
	"github.com/tomtom215/mediarec/internal/recommend"
	"github.com/tomtom215/mediarec/internal/simulation"
	"github.com/tomtom215/mediarec/internal/supervisor"
	"github.com/tomtom215/mediarec/internal/supervisor/services"
	ws "github.com/tomtom215/mediarec/internal/websocket"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

//nolint:gocyclo // Main initialization function with sequential setup steps
func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("version", version).
		Str("db_path", cfg.Database.Path).
		Str("events_backend", cfg.Events.Backend).
		Msg("Starting Mediarec with supervisor tree")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database initialized successfully")

	if cfg.Database.SeedOnStart {
		seedDatabase(db, cfg.Security.BcryptCost)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// === EVENT BUS ===
	bus, err := eventbus.New(cfg.Events, logging.WithComponent("eventbus"))
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize event bus")
	}
	defer func() {
		if err := bus.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing event bus")
		}
	}()

	// === DOMAIN SERVICES ===
	tracker := simulation.NewTracker(db, db, simulation.ConfigFrom(&cfg.Simulation),
		simulation.WithRand(simulation.NewRand(cfg.Simulation.Seed)),
		simulation.WithNotifier(bus),
	)

	engine, err := recommend.NewEngine(db, recommend.ConfigFrom(&cfg.Recommend), logging.WithComponent("recommend"))
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize recommendation engine")
	}

	wsHub := ws.NewHub()

	// === AUTHENTICATION AND AUTHORIZATION ===
	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize JWT manager")
	}
	revoked, err := auth.OpenRevocationList(cfg.Security.RevocationPath)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open token revocation list")
	}
	defer func() {
		if err := revoked.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing revocation list")
		}
	}()
	if cfg.Security.RevocationPath == "" {
		logging.Warn().Msg("Token revocation list is in memory; logged-out tokens become valid again after a restart")
	}

	authSvc := auth.NewService(db, jwtManager, revoked, cfg.Security.BcryptCost)
	authMiddleware := auth.NewMiddleware(authSvc, cfg.Security.RateLimitReqs, cfg.Security.RateLimitWindow, api.WriteError)
	defer authMiddleware.Close()

	enforcer, err := authz.NewEnforcer(&cfg.Security.Casbin)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize RBAC enforcer")
	}
	defer enforcer.Close()
	authzMiddleware := authz.NewMiddleware(enforcer, api.WriteError)

	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
	}
	for _, origin := range cfg.Security.CORSOrigins {
		if origin == "*" {
			logging.Warn().Msg("CORS allows any origin (CORS_ORIGINS=*); set explicit origins in production")
			break
		}
	}

	// === HTTP ===
	handler := api.NewHandler(api.Deps{
		Config:  cfg,
		DB:      db,
		Tracker: tracker,
		Engine:  engine,
		Auth:    authSvc,
		Hub:     wsHub,
		Version: version,
	})
	handler.SetEventBus(bus)
	router := api.NewRouter(handler, authMiddleware, authzMiddleware, nil)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.SetupChi(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	// === SUPERVISOR TREE ===
	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	// Data layer services
	if cfg.Simulation.ReaperEnabled {
		tree.AddDataService(services.NewReaperService(tracker, cfg.Simulation.ReaperInterval, logging.Logger()))
	}

	// Messaging layer services
	tree.AddMessagingService(services.NewWebSocketHubService(wsHub))
	tree.AddMessagingService(services.NewEventRouterService(func() (services.EventRouter, error) {
		return bus.NewRouter(
			eventbus.InvalidateRecommendations(engine.Cache()),
			eventbus.FanOutToUsers(wsHub),
		)
	}, logging.Logger()))

	// API layer services
	httpService := services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout)
	httpService.OnShutdown("simulation-tracker", func(ctx context.Context) error {
		dropped, err := tracker.Shutdown(ctx)
		logging.Info().Int("dropped", dropped).Msg("Live simulation sessions recorded as dropped")
		return err
	})
	httpService.DrainErrors = func(name string, err error) {
		logging.Error().Err(err).Str("hook", name).Msg("Shutdown hook failed")
	}
	tree.AddAPIService(httpService)
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// === START SUPERVISOR TREE ===
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}

// seedDatabase loads the sample catalog and demo accounts into an empty
// database. A seeding failure is logged; the server still starts.
func seedDatabase(db *database.DB, bcryptCost int) {
	ctx := context.Background()
	empty, err := db.IsEmpty(ctx)
	if err != nil {
		logging.Warn().Err(err).Msg("Could not check whether the database is empty; skipping seed")
		return
	}
	if !empty {
		logging.Debug().Msg("Database already populated; skipping seed")
		return
	}

	res, err := db.Seed(ctx, auth.Hasher(bcryptCost))
	if err != nil {
		logging.Error().Err(err).Msg("Failed to seed database")
		return
	}
	logging.Info().
		Int("users", res.Users).
		Int("content", res.Content).
		Msg("Seeded sample catalog and demo accounts")
}
