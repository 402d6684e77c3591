package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/csvunion/internal/config"
	"github.com/JonMunkholm/csvunion/internal/core"
	"github.com/JonMunkholm/csvunion/internal/csvread"
	"github.com/JonMunkholm/csvunion/internal/logging"
	"github.com/JonMunkholm/csvunion/internal/source"
	"github.com/JonMunkholm/csvunion/internal/web"
)

func main() {
	// A missing .env is fine; the process environment is used as is.
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("configuration loaded", "config", cfg.String())

	router, err := source.NewRouter(cfg.Fetch, cfg.S3)
	if err != nil {
		slog.Error("failed to configure sources", "error", err)
		os.Exit(1)
	}

	service := core.NewService(router, csvread.Reader{}, core.ServiceConfig{
		MaxTables:   cfg.Merge.MaxTables,
		MaxParallel: cfg.Merge.MaxParallel,
	})
	limiter := core.NewMergeLimiter(cfg.Merge.MaxConcurrent, cfg.Merge.MaxWaitTime)
	server := web.NewServer(service, limiter, cfg)

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down", "merges", limiter.Status())

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	<-stopped
	slog.Info("server stopped")
}
