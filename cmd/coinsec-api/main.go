package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"coinsec/internal/api"
	"coinsec/internal/clock"
	"coinsec/internal/config"
	"coinsec/internal/engine"
	"coinsec/internal/session"
	"coinsec/internal/store"
	"coinsec/internal/ton"
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

	gameSvc := engine.NewService(st, clock.Real{}, logger)
	gameSvc.SetBoosterDuration(cfg.BoosterDuration)
	sessions := session.NewRegistry(gameSvc, clock.Real{}, logger, cfg.SessionTickEvery, cfg.SessionTTL)
	go sessions.Run(ctx)

	server := api.New(cfg, logger, gameSvc, ton.StructuralVerifier{}, sessions)
	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info("coinsec api listening", "addr", cfg.Addr, "store", cfg.StoreBackend)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed", "err", err)
		os.Exit(1)
	}
}
