package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"go-auth-service/internal/config"
	"go-auth-service/internal/handler"
	"go-auth-service/internal/middleware"
	"go-auth-service/internal/router"
	"go-auth-service/internal/service"
)

type App struct {
	cfg    *config.Config
	server *http.Server
	store  *Store
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	store, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	slog.Info("database ready", "driver", cfg.DBDriver)

	appRouter, err := NewHandler(cfg, store)
	if err != nil {
		store.Close()
		return nil, err
	}

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return &App{cfg: cfg, server: server, store: store}, nil
}

// NewHandler wires services, middleware and handlers on top of store.
func NewHandler(cfg *config.Config, store *Store) (http.Handler, error) {
	hasher := service.NewHasher(cfg.BcryptCost, cfg.HashConcurrency)

	tokenService, err := service.NewTokenService(service.TokenConfig{
		Secret:     cfg.JWTSecret,
		Algorithm:  cfg.JWTAlgorithm,
		AccessTTL:  cfg.JWTAccessTTL,
		RefreshTTL: cfg.JWTRefreshTTL,
	}, store.Users)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}

	userService := service.NewUserService(store.Users, hasher, tokenService)

	metrics := middleware.NewMetrics()
	authMiddleware := middleware.NewAuthMiddleware(tokenService, store.Users, metrics)

	return router.New(cfg, authMiddleware, metrics, router.Handlers{
		System: handler.NewSystemHandler(cfg.AppTitle, store.Ping),
		Auth:   handler.NewAuthHandler(userService, tokenService),
		User:   handler.NewUserHandler(userService),
	}), nil
}

// Run serves until SIGINT/SIGTERM or a listener failure, then drains
// in-flight requests within the shutdown timeout.
func (a *App) Run() error {
	defer a.store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
