// Package logger provides structured logging functionality for the application.
//
// It configures a log/slog JSON handler from the server configuration and carries
// request-scoped loggers and trace IDs through context.Context.
package logger
