package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/hanzi-srs/internal/config"
	"github.com/phrazzld/hanzi-srs/internal/domain/srs"
	"github.com/phrazzld/hanzi-srs/internal/events"
	"github.com/phrazzld/hanzi-srs/internal/platform/postgres"
	"github.com/phrazzld/hanzi-srs/internal/platform/redis"
	"github.com/phrazzld/hanzi-srs/internal/service/auth"
	"github.com/phrazzld/hanzi-srs/internal/service/review"
	"github.com/phrazzld/hanzi-srs/internal/store"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	userCharacterStore store.UserCharacterStore

	jwtService    auth.JWTService
	srsService    srs.Service
	reviewService review.ReviewService

	eventEmitter *events.InMemoryEventEmitter

	// statsCache is nil when no cache server is configured.
	statsCache *redis.StatsCache
}

// newApplication creates a new application instance with all dependencies initialized.
// The logger and database connection must be established beforehand.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	app.srsService, err = srs.NewServiceWithParams(srs.NewParams(srs.ParamsConfig{
		TargetRetention: cfg.SRS.TargetRetention,
		MaxIntervalDays: cfg.SRS.MaxIntervalDays,
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to create SRS service: %w", err)
	}

	app.userCharacterStore = postgres.NewPostgresUserCharacterStore(db, logger)
	app.eventEmitter = events.NewInMemoryEventEmitter(logger)

	opts := []review.Option{review.WithEventEmitter(app.eventEmitter)}

	if cfg.Redis.Enabled() {
		app.statsCache, err = setupStatsCache(cfg.Redis)
		if err != nil {
			// Statistics are still served from the database.
			logger.Warn("Notebook stats cache unavailable, continuing without it",
				"addr", cfg.Redis.Addr(),
				"error", err)
		} else {
			opts = append(opts, review.WithStatsCache(app.statsCache))
			app.eventEmitter.RegisterHandler(events.NewStatsInvalidator(app.statsCache))
			logger.Info("Notebook stats cache enabled",
				"addr", cfg.Redis.Addr(),
				"ttl", cfg.Redis.StatsTTL.String())
		}
	}

	app.reviewService = review.NewReviewService(db, app.userCharacterStore, app.srsService, logger, opts...)

	logger.Info("Application initialized successfully")
	return app, nil
}

// setupStatsCache maps the configuration onto the cache's connection settings.
func setupStatsCache(cfg config.RedisConfig) (*redis.StatsCache, error) {
	cacheCfg := redis.DefaultConfig()
	cacheCfg.Host = cfg.Host
	cacheCfg.Port = cfg.Port
	cacheCfg.Password = cfg.Password
	cacheCfg.DB = cfg.DB
	if cfg.StatsTTL > 0 {
		cacheCfg.StatsTTL = cfg.StatsTTL
	}
	return redis.NewStatsCache(cacheCfg)
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns an error if the server fails to start or encounters problems.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.statsCache != nil {
		if err := app.statsCache.Close(); err != nil {
			app.logger.Error("Error closing stats cache", "error", err)
		}
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
