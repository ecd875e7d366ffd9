package internal

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/dukerupert/shelf/migrations"
	"github.com/pressly/goose/v3"
)

// Migrate applies pending embedded migrations and returns the resulting
// schema version.
func Migrate(ctx context.Context, db *sql.DB, logger *slog.Logger) (int64, error) {
	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.MigrationsFS)
	if err != nil {
		return 0, fmt.Errorf("goose provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return 0, fmt.Errorf("apply migrations: %w", err)
	}
	for _, r := range results {
		logger.Info("migration applied", "version", r.Source.Version, "duration", r.Duration)
	}

	version, err := provider.GetDBVersion(ctx)
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return version, nil
}
