// Command server runs the tour guide backend.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/hoed/wisata-ai/api"
	"github.com/hoed/wisata-ai/api/validator"
	"github.com/hoed/wisata-ai/badge"
	"github.com/hoed/wisata-ai/config"
	"github.com/hoed/wisata-ai/guide"
	"github.com/hoed/wisata-ai/postgres"
	"github.com/hoed/wisata-ai/redis"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if err := godotenv.Load(); err != nil {
		logger.Info("No .env file loaded, using system environment", "error", err.Error())
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Error("Could not load configuration", "error", err.Error())
		os.Exit(1)
	}

	if err := run(ctx, logger, cfg); err != nil {
		logger.Error("Server error", "error", err.Error())
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, cfg *config.Config) error {
	pg, err := postgres.Connect(ctx, cfg.Storage.PostgresDSN)
	if err != nil {
		return err
	}
	if err := pg.Migrate(ctx); err != nil {
		return err
	}

	cache, err := redis.Connect(ctx, cfg.Storage.RedisAddr)
	if err != nil {
		return err
	}

	awards := &badge.Evaluator{
		Logger: logger,
		Store:  pg,
	}
	awards.EnsureDefaultBadges(ctx)

	responder := &guide.Responder{
		Logger:       logger,
		BookingDelay: cfg.Responder.BookingDelay,
	}
	sessions := guide.NewService(logger, responder, cfg.Responder.TypingDelay)

	a := &api.API{
		Logger:   logger,
		Sessions: sessions,
		Awards:   awards,
		DB:       pg,
		Cache:    cache,
		Val:      validator.New(),
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           a,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger.Info("Listening", "addr", cfg.Server.Addr)
	return runServer(ctx, srv)
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
