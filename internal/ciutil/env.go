package ciutil

import (
	"log/slog"
	"os"
	"testing"

	"github.com/phrazzld/hanzi-srs/internal/redact"
)

// Common environment variable names used across the codebase.
const (
	// CI environment detection variables
	EnvCI            = "CI"
	EnvGitHubActions = "GITHUB_ACTIONS"
	EnvGitLabCI      = "GITLAB_CI"
	EnvJenkinsURL    = "JENKINS_URL"
	EnvCircleCI      = "CIRCLECI"

	// Database connection environment variables, preferred name first
	EnvTestDBURL = "HANZI_TEST_DB_URL"
	EnvDatabaseURL   = "DATABASE_URL"

	// Cache connection environment variables, preferred name first
	EnvTestRedisURL = "HANZI_TEST_REDIS_URL"
	EnvRedisURL         = "REDIS_URL"
)

// DatabaseURLVars and RedisURLVars list the variables consulted for each service.
var (
	DatabaseURLVars = []string{EnvTestDBURL, EnvDatabaseURL}
	RedisURLVars    = []string{EnvTestRedisURL, EnvRedisURL}
)

// IsCI returns true if the current environment is a CI environment.
// It checks for common CI environment variables across different CI providers.
func IsCI() bool {
	return os.Getenv(EnvCI) != "" ||
		os.Getenv(EnvGitHubActions) != "" ||
		os.Getenv(EnvGitLabCI) != "" ||
		os.Getenv(EnvJenkinsURL) != "" ||
		os.Getenv(EnvCircleCI) != ""
}

// GetEnvWithFallbacks returns the value of the first non-empty environment variable
// from the provided list. If no environment variables are set, it returns the defaultValue.
func GetEnvWithFallbacks(envVars []string, defaultValue string, logger *slog.Logger) string {
	for i, envVar := range envVars {
		if val := os.Getenv(envVar); val != "" {
			if i > 0 && logger != nil {
				logger.Warn("Using fallback environment variable",
					"used_var", envVar,
					"preferred_var", envVars[0],
					"value", redact.String(val),
				)
			}
			return val
		}
	}
	return defaultValue
}

// RequireServiceURL returns the first URL set in envVars. When none is set the
// test is skipped, or failed when running in CI.
func RequireServiceURL(tb testing.TB, service string, envVars []string) string {
	tb.Helper()

	if url := GetEnvWithFallbacks(envVars, "", nil); url != "" {
		return url
	}
	if IsCI() {
		tb.Fatalf("%s URL not configured in CI (set one of %v)", service, envVars)
	}
	tb.Skipf("%s URL not set (%v), skipping integration test", service, envVars)
	return ""
}
