// Package logging provides config-driven categorized logging built on zap.
// Logging is controlled by debug_mode in the config file - when false, every
// logger is a no-op. Stdout carries the record back to the host, so logs go
// to stderr or to the configured file, never to stdout.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"ttdl-lunar-calendar/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot      Category = "boot"      // Config and logger setup
	CategoryPlugin    Category = "plugin"    // One record through the pipeline
	CategoryDirective Category = "directive" // Directive parsing and plan selection
	CategoryConvert   Category = "convert"   // Reference resolution and rewriting
	CategoryCalendar  Category = "calendar"  // Lunar to solar conversion
)

// Manager hands out category loggers sharing one sink.
type Manager struct {
	cfg    config.LoggingConfig
	root   *zap.Logger
	closer io.Closer
}

// Nop returns a manager whose loggers discard everything.
func Nop() *Manager {
	return &Manager{root: zap.NewNop()}
}

// New builds a manager from cfg. When cfg.File is empty, logs go to stderr.
func New(cfg config.LoggingConfig, stderr io.Writer) (*Manager, error) {
	if !cfg.DebugMode {
		m := Nop()
		m.cfg = cfg
		return m, nil
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	var sink zapcore.WriteSyncer
	var closer io.Closer
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		sink, closer = zapcore.AddSync(f), f
	} else {
		if stderr == nil {
			stderr = os.Stderr
		}
		sink = zapcore.AddSync(stderr)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	var enc zapcore.Encoder
	if cfg.Format == "text" {
		enc = zapcore.NewConsoleEncoder(encCfg)
	} else {
		enc = zapcore.NewJSONEncoder(encCfg)
	}

	root := zap.New(zapcore.NewCore(enc, sink, zap.NewAtomicLevelAt(level))).
		With(zap.String("app", config.AppName))
	return &Manager{cfg: cfg, root: root, closer: closer}, nil
}

// Get returns the logger for a category, or a no-op logger when the
// category is disabled.
func (m *Manager) Get(category Category) *zap.Logger {
	if m == nil || !m.cfg.IsCategoryEnabled(string(category)) {
		return zap.NewNop()
	}
	return m.root.With(zap.String("cat", string(category)))
}

// With returns a manager whose loggers all carry fields.
func (m *Manager) With(fields ...zap.Field) *Manager {
	if m == nil {
		return Nop()
	}
	return &Manager{cfg: m.cfg, root: m.root.With(fields...), closer: m.closer}
}

// Close flushes buffered entries and closes the log file, if any.
func (m *Manager) Close() error {
	if m == nil {
		return nil
	}
	_ = m.root.Sync()
	if m.closer != nil {
		return m.closer.Close()
	}
	return nil
}
