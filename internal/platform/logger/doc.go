// Package logger sets up structured JSON logging on log/slog and carries
// request-scoped loggers through context.Context.
package logger
