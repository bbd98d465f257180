// Package logger provides the structured, levelled logger built on log/slog.
//
// WithCtx returns the per-request logger injected by the Logger middleware,
// so every line from a handler or service carries the request id:
//
//	log := logger.WithCtx(r.Context())
//	log.Info("order placed", "order_id", order.ID)
//	// → time=... level=INFO msg="order placed" request_id=a1b2c3d4 order_id=65f0...
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/shashiranjanraj/shopfront/config"
)

var L *slog.Logger

func init() {
	L = slog.New(consoleHandler(os.Stdout))
	slog.SetDefault(L)
}

func level() slog.Level {
	if config.IsProduction() {
		return slog.LevelInfo
	}
	return slog.LevelDebug
}

// consoleHandler emits JSON in production and human-readable text elsewhere.
func consoleHandler(w io.Writer) slog.Handler {
	opts := &slog.HandlerOptions{Level: level()}
	if config.IsProduction() {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// Options selects the optional sinks fanned out next to stdout.
type Options struct {
	// File is a path for a size-rotated JSON log file. Empty disables it.
	File string
	// Mongo receives every record asynchronously when non-nil.
	Mongo *MongoHandler
}

// Setup rebuilds L with the configured sinks. The returned func flushes and
// closes them and should be deferred by the caller.
func Setup(opts Options) func() {
	handlers := []slog.Handler{consoleHandler(os.Stdout)}
	var closers []func()

	if opts.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    50, // megabytes
			MaxBackups: 5,
			MaxAge:     28, // days
			Compress:   true,
		}
		handlers = append(handlers, slog.NewJSONHandler(rotator, &slog.HandlerOptions{Level: level()}))
		closers = append(closers, func() { _ = rotator.Close() })
	}

	if opts.Mongo != nil {
		handlers = append(handlers, opts.Mongo)
		closers = append(closers, opts.Mongo.Close)
	}

	if len(handlers) == 1 {
		L = slog.New(handlers[0])
	} else {
		L = slog.New(NewMultiHandler(handlers...))
	}
	slog.SetDefault(L)

	return func() {
		for _, c := range closers {
			c()
		}
	}
}

// ─────────────────────────────────────────────
// Context-aware logger
// ─────────────────────────────────────────────

type ctxKey struct{}

// WithCtx returns the logger stored by InjectLogger, or L when none is present.
func WithCtx(ctx context.Context) *slog.Logger {
	if log, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && log != nil {
		return log
	}
	return L
}

// InjectLogger stores a *slog.Logger (pre-tagged with request_id) into ctx.
// Called by the Logger middleware.
func InjectLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

// ─────────────────────────────────────────────
// Short-hand helpers (use base logger)
// ─────────────────────────────────────────────

func Debug(msg string, args ...any) { L.Debug(msg, args...) }
func Info(msg string, args ...any) { L.Info(msg, args...) }
func Warn(msg string, args ...any) { L.Warn(msg, args...) }
func Error(msg string, args ...any) { L.Error(msg, args...) }
