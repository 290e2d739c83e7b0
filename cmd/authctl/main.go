package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"go-auth-service/internal/app"
	"go-auth-service/internal/config"
	"go-auth-service/internal/logger"
	"go-auth-service/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "authctl:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	cfg, err := config.LoadStore()
	if err != nil {
		return err
	}

	slog.SetDefault(logger.New(os.Stderr, cfg.LogLevel, cfg.LogFormat))

	store, err := app.OpenStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	cli := &CLI{
		users:    service.NewUserService(store.Users, service.NewHasher(cfg.BcryptCost, cfg.HashConcurrency), nil),
		out:      os.Stdout,
		password: readPassword,
	}

	return cli.Run(ctx, args)
}
