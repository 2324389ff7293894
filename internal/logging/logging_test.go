package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew_RespectsLevel(t *testing.T) {
	logger, err := New("warn", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if logger.Core().Enabled(zapcore.InfoLevel) {
		t.Error("info should be disabled at warn level")
	}
	if !logger.Core().Enabled(zapcore.WarnLevel) {
		t.Error("warn should be enabled at warn level")
	}
}

func TestNew_VerboseForcesDebug(t *testing.T) {
	logger, err := New("error", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !logger.Core().Enabled(zapcore.DebugLevel) {
		t.Error("verbose should enable debug")
	}
}

func TestNew_RejectsUnknownLevel(t *testing.T) {
	if _, err := New("chatty", false); err == nil {
		t.Error("expected error for unknown level")
	}
}
