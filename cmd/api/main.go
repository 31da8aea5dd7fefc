package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/PratikDhanave/appstack-bridge/internal/bridge"
	"github.com/PratikDhanave/appstack-bridge/internal/config"
	"github.com/PratikDhanave/appstack-bridge/internal/httpserver"
	"github.com/PratikDhanave/appstack-bridge/internal/journal"
	"github.com/PratikDhanave/appstack-bridge/internal/logging"
	"github.com/PratikDhanave/appstack-bridge/internal/store"
)

// main boots the service: config → store → schema → plugins → HTTP server.
func main() {
	// Load runtime config from BRIDGE_CONFIG and the environment.
	cfg, err := config.Load()
	if err != nil {
		bootLogger := logging.New("info", "json", os.Stderr)
		bootLogger.Fatal().Err(err).Msg("invalid configuration")
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)

	st, err := openStore(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("store unavailable")
	}
	defer st.Close()

	// Every plugin forwards to the journaling SDK backend.
	b, err := bridge.New(cfg, journal.NewClient(st, logger), journal.NewFailureRecorder(st, logger), logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("plugin setup failed")
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           httpserver.NewRouter(cfg, st, b.Registry, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.ListenAddr).Strs("platforms", b.Registry.Platforms()).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	if err := b.Close(ctx); err != nil {
		logger.Warn().Err(err).Msg("abandoned in-flight plugin calls")
	}
	logger.Info().Msg("server stopped")
}

// openStore uses Postgres when DB_URL is set and an in-memory journal otherwise.
func openStore(cfg config.Config, logger zerolog.Logger) (store.Store, error) {
	if cfg.DBURL == "" {
		logger.Warn().Msg("DB_URL not set, journal is in-memory")
		return store.NewMemoryStore(), nil
	}

	db, err := store.NewPostgresStore(cfg.DBURL)
	if err != nil {
		return nil, err
	}
	// Ensure required tables/indexes exist so `docker compose up --build` is enough.
	if err := db.EnsureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
