package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/blogql/blogql/internal/config"
)

func TestNew(t *testing.T) {
	t.Run("console", func(t *testing.T) {
		logger, err := New(config.LogConfig{Level: "debug", Format: "console"})
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		if !logger.Core().Enabled(zapcore.DebugLevel) {
			t.Error("debug level should be enabled")
		}
	})

	t.Run("json", func(t *testing.T) {
		logger, err := New(config.LogConfig{Level: "warn", Format: "json"})
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		if logger.Core().Enabled(zapcore.InfoLevel) {
			t.Error("info level should be disabled at warn")
		}
		if !logger.Core().Enabled(zapcore.ErrorLevel) {
			t.Error("error level should be enabled at warn")
		}
	})

	t.Run("invalid level", func(t *testing.T) {
		if _, err := New(config.LogConfig{Level: "loud"}); err == nil {
			t.Error("New() error = nil, want error")
		}
	})
}
