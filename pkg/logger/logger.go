// Package logger provides a structured, levelled logger built on log/slog.
//
// Output goes to stderr so that CLI command output on stdout stays clean.
// WithCtx returns a logger already tagged with the request ID of the
// current operation:
//
//	log := logger.WithCtx(ctx)
//	log.Info("order status updated", "order_id", 42, "status", "processing")
//	// → time=... level=INFO msg="order status updated" request_id=a1b2c3d4 order_id=42 status=processing
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/shashiranjanraj/vendordesk/config"
)

var L *slog.Logger

func init() {
	L = New(os.Stderr, config.AppEnv(), config.LogLevel())
	slog.SetDefault(L)
}

// New builds a logger for env: JSON in production, text everywhere else.
// level overrides the env default ("debug", "info", "warn", "error").
func New(w io.Writer, env, level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(env, level)}

	switch env {
	case "production", "prod":
		return slog.New(slog.NewJSONHandler(w, opts))
	default:
		return slog.New(slog.NewTextHandler(w, opts))
	}
}

func parseLevel(env, level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	switch env {
	case "production", "prod":
		return slog.LevelInfo
	default:
		// CLI users only want warnings unless they ask for more.
		return slog.LevelWarn
	}
}

// Replace swaps the base logger, e.g. to fan out into a Mongo sink.
func Replace(l *slog.Logger) {
	L = l
	slog.SetDefault(l)
}

// ─────────────────────────────────────────────
// Context-aware logger
// ─────────────────────────────────────────────

type ctxKey struct{}

// WithCtx returns the per-operation logger stored in ctx, or the base logger.
func WithCtx(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return L
	}
	if log, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && log != nil {
		return log
	}
	return L
}

// InjectLogger stores a *slog.Logger (pre-tagged with request_id) into ctx.
func InjectLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

// ─────────────────────────────────────────────
// Short-hand helpers (use base logger)
// ─────────────────────────────────────────────

func Debug(msg string, args ...any) { L.Debug(msg, args...) }
func Info(msg string, args ...any)  { L.Info(msg, args...) }
func Warn(msg string, args ...any)  { L.Warn(msg, args...) }
func Error(msg string, args ...any) { L.Error(msg, args...) }
