package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/felixdelbarrio/Global-Overview-Radar-sub000/internal/app"
	"github.com/felixdelbarrio/Global-Overview-Radar-sub000/internal/backend"
	"github.com/felixdelbarrio/Global-Overview-Radar-sub000/internal/cache"
	"github.com/felixdelbarrio/Global-Overview-Radar-sub000/internal/config"
	"github.com/felixdelbarrio/Global-Overview-Radar-sub000/internal/logging"
	"github.com/felixdelbarrio/Global-Overview-Radar-sub000/internal/server"
)

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func runGracefulShutdown(srv *server.Server) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	// Initialize structured logging
	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port)

	client := backend.NewClient(cfg.BackendBaseURL, cfg.BackendTimeout, cfg.BackendRPS, cfg.BackendBurst)
	readCache := cache.New(client, cfg.ItemsCacheTTL, clock)

	appSvc := app.NewService(readCache, client, app.Settings{
		ItemsTTL:         cfg.ItemsCacheTTL,
		MetaTTL:          cfg.MetaCacheTTL,
		InsightsTTL:      cfg.InsightsCacheTTL,
		SummaryTTL:       cfg.SummaryCacheTTL,
		PrincipalName:    cfg.PrincipalName,
		PrincipalAliases: cfg.AliasList(),
	})

	srv := server.NewServer(cfg, appSvc)

	done := runGracefulShutdown(srv)

	slog.Info("Server starting", "port", cfg.Port)
	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
