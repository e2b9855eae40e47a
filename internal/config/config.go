package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	Redis    RedisConfig    `mapstructure:"redis"`
	SRS      SRSConfig      `mapstructure:"srs" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel        string        `mapstructure:"log_level" validate:"required,oneof=debug info warn error fatal"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL             string        `mapstructure:"url" validate:"required,url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"gte=1"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" validate:"gte=0"`
}

// AuthConfig contains bearer-token settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"gt=0,lte=44640"`
}

// RedisConfig configures the notebook statistics cache. An empty Host disables it.
type RedisConfig struct {
	Host     string        `mapstructure:"host"`
	Port     int           `mapstructure:"port" validate:"gte=0,lt=65536"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db" validate:"gte=0,lte=15"`
	StatsTTL time.Duration `mapstructure:"stats_ttl" validate:"gte=0"`
}

// Enabled reports whether a cache server is configured.
func (c RedisConfig) Enabled() bool {
	return c.Host != ""
}

// Addr returns the server address in "host:port" form.
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// SRSConfig holds the memory-model tunables.
type SRSConfig struct {
	TargetRetention float64 `mapstructure:"target_retention" validate:"gt=0,lt=1"`
	MaxIntervalDays int     `mapstructure:"max_interval_days" validate:"gt=0,lte=100000"`
}
