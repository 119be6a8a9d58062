package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	httpadapter "github.com/scott4ai/ukraine-fire-tracking/internal/adapter/http"
	kafkaadapter "github.com/scott4ai/ukraine-fire-tracking/internal/adapter/kafka"
	"github.com/scott4ai/ukraine-fire-tracking/internal/adapter/sqlite"
	"github.com/scott4ai/ukraine-fire-tracking/internal/config"
	"github.com/scott4ai/ukraine-fire-tracking/internal/engine"
	"github.com/scott4ai/ukraine-fire-tracking/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	store, err := sqlite.Open(cfg.DatabasePath)
	if err != nil {
		logger.Error("failed to open detection store", "path", cfg.DatabasePath, "error", err)
		os.Exit(1)
	}

	publisher := kafkaadapter.NewPublisher(cfg, logger)

	policy, err := engine.ParseOverflowPolicy(cfg.OverflowPolicy)
	if err != nil {
		logger.Error("invalid overflow policy", "error", err)
		os.Exit(1)
	}

	replay := engine.New(store, publisher, clockwork.NewRealClock(), logger, metrics, policy)

	srv := httpadapter.NewServer(cfg.HTTPAddr, replay, store, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	replay.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := publisher.Close(); err != nil {
		logger.Error("kafka publisher close error", "error", err)
	}
	if err := store.Close(); err != nil {
		logger.Error("store close error", "error", err)
	}

	logger.Info("shutdown complete")
}
