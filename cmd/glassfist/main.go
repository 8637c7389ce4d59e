// Package main is the entry point for Glass Fist Manager.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/samdwyer/glassfist/internal/config"
	"github.com/samdwyer/glassfist/internal/game"
	"github.com/samdwyer/glassfist/internal/gamedata"
	"github.com/samdwyer/glassfist/internal/logging"
	"github.com/samdwyer/glassfist/internal/manager"
	"github.com/samdwyer/glassfist/internal/metrics"
	"github.com/samdwyer/glassfist/internal/rng"
	"github.com/samdwyer/glassfist/internal/store"
	"github.com/samdwyer/glassfist/internal/telemetry"
	"github.com/samdwyer/glassfist/internal/ui"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("glassfist: %v", err)
	}
}

func run() error {
	// .env is optional; env vars might be set directly.
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// The hub owns the terminal, so logs go to a file.
	logger, err := logging.ToFile(cfg.Log.Level, cfg.Log.Format, cfg.Log.File)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	shutdown, err := telemetry.Setup(ctx, telemetry.Options{
		Enabled: cfg.Telemetry.Enabled,
		APIKey:  cfg.Telemetry.APIKey,
		Dataset: cfg.Telemetry.Dataset,
	})
	if err != nil {
		// Continue without telemetry - game still works
		logger.Warn("telemetry setup failed", zap.Error(err))
	} else {
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				logger.Warn("telemetry shutdown failed", zap.Error(err))
			}
		}()
	}

	rec := metrics.New()
	if cfg.Metrics.Addr != "" {
		srv := serveMetrics(cfg.Metrics.Addr, rec, logger)
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(sctx)
		}()
	}

	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	deps := manager.Deps{
		Store:   st,
		Logger:  logger,
		Metrics: rec,
		Rand:    rng.New(cfg.Seed),
	}

	screen, err := ui.NewScreen()
	if err != nil {
		return err
	}

	var g *game.Game
	switch cfg.GameMode() {
	case gamedata.ModeSolo:
		m, err := manager.NewFranchiseManager(ctx, deps)
		if err != nil {
			screen.Close()
			return err
		}
		g = game.NewSolo(screen, m, logger)
	default:
		m, err := manager.NewTwoFranchiseManager(ctx, deps)
		if err != nil {
			screen.Close()
			return err
		}
		g = game.NewDuel(screen, m, logger)
	}

	logger.Info("game started",
		zap.String("mode", cfg.Mode),
		zap.String("store", cfg.Store.Backend),
	)
	return g.Run(ctx)
}

func serveMetrics(addr string, rec *metrics.Recorder, logger *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", rec.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", zap.Error(err))
		}
	}()
	return srv
}
