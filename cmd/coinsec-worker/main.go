package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"coinsec/internal/clock"
	"coinsec/internal/config"
	"coinsec/internal/engine"
	"coinsec/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadAPIFromEnv()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	st, err := store.Open(ctx, cfg.StoreBackend, cfg.DatabaseURL, cfg.SQLitePath)
	if err != nil {
		logger.Error("store open failed", "backend", cfg.StoreBackend, "err", err)
		os.Exit(1)
	}
	defer st.Close()

	svc := engine.NewService(st, clock.Real{}, logger)
	svc.SetBoosterDuration(cfg.BoosterDuration)

	runOnce := strings.EqualFold(strings.TrimSpace(os.Getenv("COINSEC_WORKER_RUN_ONCE")), "true")
	if runOnce {
		n, err := svc.SweepAll(ctx)
		if err != nil {
			logger.Error("sweep failed", "err", err)
			os.Exit(1)
		}
		logger.Info("worker run-once completed", "players", n)
		return
	}

	ticker := time.NewTicker(cfg.SweepEvery)
	defer ticker.Stop()

	logger.Info("worker started", "sweep_every", cfg.SweepEvery.String(), "store", cfg.StoreBackend)
	for {
		select {
		case <-ctx.Done():
			logger.Info("worker shutdown")
			return
		case <-ticker.C:
			n, err := svc.SweepAll(ctx)
			if err != nil {
				logger.Error("sweep failed", "err", err)
				continue
			}
			logger.Info("sweep complete", "players", n)
		}
	}
}
