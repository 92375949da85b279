package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

func main() {
	cfg, err := LoadConfig(os.Args[1:])
	if err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}
	InitLogger(cfg.LogLevel, cfg.LogFormat)

	analytics := NewAnalytics()
	defer analytics.Stop()

	registry := NewRegistry(cfg.MaxLobbies, DefaultConfig(), NewLevelManager(nil), analytics)
	hub := NewHub(analytics)
	mux := SetupRoutes(hub, registry, analytics, cfg)

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           otelhttp.NewHandler(mux, "crumble-server"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.WithField("addr", cfg.Addr).WithField("max_lobbies", cfg.MaxLobbies).Info("server starting")
		if cfg.ClientDir != "" {
			logger.WithField("dir", cfg.ClientDir).Info("serving client files")
		}
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := server.Shutdown(shutdownCtx)
		registry.Shutdown()
		hub.CloseAll()
		return err
	})

	if err := g.Wait(); err != nil {
		logger.WithError(err).Error("server stopped")
		os.Exit(1)
	}
}
