package main

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/phrazzld/hanzi-srs/internal/platform/postgres"
)

// handleMigrations runs a goose command with the migrations embedded in the binary.
func handleMigrations(ctx context.Context, db *sql.DB, logger *slog.Logger, command string, args ...string) error {
	logger.Info("Executing migrations", "command", command)
	return postgres.Migrate(ctx, db, logger, command, args...)
}
