package app

import (
	"context"
	"fmt"
	"log/slog"

	"go-auth-service/internal/config"
	"go-auth-service/internal/database"
	"go-auth-service/internal/repository"
	"go-auth-service/internal/service"
)

// Store is the credential store selected by DB_DRIVER together with the
// handle it lives on.
type Store struct {
	Users service.CredentialStore
	Ping  func(ctx context.Context) error
	Close func()
}

func OpenStore(ctx context.Context, cfg *config.Config) (*Store, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		slog.Info("connecting to PostgreSQL")
		db, err := database.New(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}

		if err := db.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to ensure database schema: %w", err)
		}

		return &Store{
			Users: repository.NewPostgresUserRepository(db.Pool),
			Ping:  db.Health,
			Close: db.Close,
		}, nil

	case config.DriverSQLite:
		slog.Info("opening SQLite database", "path", cfg.SQLitePath)
		db, err := database.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}

		return &Store{
			Users: repository.NewSQLiteUserRepository(db),
			Ping:  db.PingContext,
			Close: func() { _ = db.Close() },
		}, nil
	}

	return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
}
