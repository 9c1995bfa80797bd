package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnvOverrides_Logging(t *testing.T) {
	t.Run("level and file", func(t *testing.T) {
		t.Setenv(EnvLogLevel, "debug")
		t.Setenv(EnvLogFile, "/tmp/lunar.log")
		t.Setenv(EnvDebug, "")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "debug", cfg.Logging.Level)
		assert.Equal(t, "/tmp/lunar.log", cfg.Logging.File)
		assert.False(t, cfg.Logging.DebugMode)
	})

	t.Run("debug toggle", func(t *testing.T) {
		t.Setenv(EnvLogLevel, "")
		t.Setenv(EnvLogFile, "")
		t.Setenv(EnvDebug, "true")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		assert.True(t, cfg.Logging.DebugMode)
	})

	t.Run("debug toggle can switch off a file setting", func(t *testing.T) {
		t.Setenv(EnvDebug, "0")

		cfg := DefaultConfig()
		cfg.Logging.DebugMode = true
		cfg.applyEnvOverrides()
		assert.False(t, cfg.Logging.DebugMode)
	})

	t.Run("unparsable debug value is ignored", func(t *testing.T) {
		t.Setenv(EnvDebug, "maybe")

		cfg := DefaultConfig()
		cfg.Logging.DebugMode = true
		cfg.applyEnvOverrides()
		assert.True(t, cfg.Logging.DebugMode)
	})

	t.Run("empty values leave config alone", func(t *testing.T) {
		t.Setenv(EnvLogLevel, "")
		t.Setenv(EnvLogFile, "")
		t.Setenv(EnvDebug, "")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		assert.Equal(t, DefaultConfig(), cfg)
	})
}
