// Package main implements the entry point for the hanzi notebook server,
// which schedules character reviews for each learner's notebook.
//
// Usage:
//
//	server                  start the HTTP server
//	server migrate up       apply pending migrations and exit
//	server migrate status   print migration status and exit
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	"github.com/phrazzld/hanzi-srs/internal/config"
	"github.com/phrazzld/hanzi-srs/internal/platform/logger"
	"github.com/phrazzld/hanzi-srs/internal/platform/postgres"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [migrate <%s> [args...]]\n",
			os.Args[0], strings.Join(postgres.MigrationCommands, "|"))
	}
	flag.Parse()

	var migrateCmd string
	var migrateArgs []string
	if args := flag.Args(); len(args) > 0 {
		if args[0] != "migrate" || len(args) < 2 {
			flag.Usage()
			os.Exit(2)
		}
		migrateCmd, migrateArgs = args[1], args[2:]
	}

	if err := run(migrateCmd, migrateArgs); err != nil {
		log.Fatalf("server: %v", err)
	}
}

// run loads configuration, connects to the database and either executes a
// migration command or serves HTTP until SIGINT/SIGTERM.
func run(migrateCmd string, args []string) error {
	cfg, err := loadAppConfig()
	if err != nil {
		return err
	}

	l, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := setupAppDatabase(ctx, cfg, l)
	if err != nil {
		return err
	}

	if migrateCmd != "" {
		defer func() { _ = db.Close() }()
		return handleMigrations(ctx, db, l, migrateCmd, args...)
	}

	app, err := newApplication(cfg, l, db)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.Run(ctx)
}

// loadAppConfig loads the application configuration from the environment,
// an optional .env file and config.yaml.
func loadAppConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	slog.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"stats_cache_enabled", cfg.Redis.Enabled())

	return cfg, nil
}
