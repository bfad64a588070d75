// Package logger provides a structured, levelled logger built on log/slog.
//
// The base logger writes to stdout: JSON in production (for log
// aggregators), plain text everywhere else. When a MongoDB log-shipping
// target is configured the records are additionally fanned out to a
// MongoHandler, which buffers and drops rather than block — the till keeps
// logging even when the network is gone.
//
//	logger.Info("sync finished", "entity", "products", "rows", 412)
package logger

import (
	"log/slog"
	"os"

	"github.com/dukaan-pos/dukaan/config"
)

var L *slog.Logger

func init() {
	var level slog.Level
	var handler slog.Handler

	opts := &slog.HandlerOptions{Level: level}

	switch config.AppEnv() {
	case "production", "prod":
		level = slog.LevelInfo
		opts.Level = level
		handler = slog.NewJSONHandler(os.Stdout, opts) // structured JSON for log aggregators
	default:
		level = slog.LevelDebug
		opts.Level = level
		handler = slog.NewTextHandler(os.Stdout, opts) // human-readable for dev
	}

	L = slog.New(handler)
	slog.SetDefault(L)
}

// EnableMongoShipping attaches a MongoHandler alongside the stdout handler.
// Returns the handler so the caller can Close() it on shutdown. Call once
// at boot when LOG_MONGO_URI is configured.
func EnableMongoShipping(uri, db, collection string) (*MongoHandler, error) {
	mh, err := NewMongoHandler(uri, db, collection)
	if err != nil {
		return nil, err
	}

	L = slog.New(NewMultiHandler(L.Handler(), mh))
	slog.SetDefault(L)
	return mh, nil
}

// ─────────────────────────────────────────────
// Short-hand helpers (use base logger)
// ─────────────────────────────────────────────

// Debug logs at DEBUG level.
func Debug(msg string, args ...any) { L.Debug(msg, args...) }

// Info logs at INFO level.
func Info(msg string, args ...any) { L.Info(msg, args...) }

// Warn logs at WARN level.
func Warn(msg string, args ...any) { L.Warn(msg, args...) }

// Error logs at ERROR level.
func Error(msg string, args ...any) { L.Error(msg, args...) }
