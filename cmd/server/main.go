package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/csvinsight/internal/config"
	"github.com/JonMunkholm/csvinsight/internal/core"
	"github.com/JonMunkholm/csvinsight/internal/history"
	"github.com/JonMunkholm/csvinsight/internal/logging"
	"github.com/JonMunkholm/csvinsight/internal/storage"
	"github.com/JonMunkholm/csvinsight/internal/web"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"data_dir", cfg.Storage.DataDir,
		"history_driver", cfg.History.Driver,
		"load_max_concurrent", cfg.Engine.MaxConcurrentLoads,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)
	slog.Debug("effective configuration", "config", cfg.String())

	files, err := storage.New(cfg.Storage.DataDir, cfg.Storage.MaxFileSize)
	if err != nil {
		slog.Error("failed to open data directory", "error", err)
		os.Exit(1)
	}
	slog.Info("data directory ready", "root", files.Root())

	ctx := context.Background()
	hist, err := history.Open(ctx, cfg.History)
	if err != nil {
		slog.Error("failed to open history store", "driver", cfg.History.Driver, "error", err)
		os.Exit(1)
	}
	defer hist.Close()
	slog.Info("history store ready", "driver", cfg.History.Driver, "durable", hist.Durable())

	service, err := core.NewService(files, hist, cfg)
	if err != nil {
		slog.Error("failed to create service", "error", err)
		os.Exit(1)
	}
	defer service.Close()

	server := web.NewServer(service, cfg)

	// Create cancellable context for background jobs
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	defer cancelJobs()

	go service.StartSessionSweeper(jobCtx, cfg.Engine.SweepInterval)
	if hist.Durable() {
		go service.StartHistoryPruner(jobCtx, cfg.History.PruneInterval, cfg.History.RetentionDays)
	}

	// Graceful shutdown
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if status := service.Status(); status.Loads.Active > 0 {
			slog.Info("waiting for loads to complete", "active", status.Loads.Active)
			if err := service.WaitForLoads(shutdownCtx); err != nil {
				slog.Warn("loads did not complete in time", "error", err)
			} else {
				slog.Info("all loads completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	<-stopped
	slog.Info("server stopped")
}
