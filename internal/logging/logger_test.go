package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		" INFO ":  zapcore.InfoLevel,
		"warn":    zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.WarnLevel,
		"verbose": zapcore.WarnLevel,
	}

	for input, want := range tests {
		if got := ParseLevel(input); got != want {
			t.Errorf("ParseLevel(%q): expected %s, got %s", input, want, got)
		}
	}
}

func TestNewHonoursLevel(t *testing.T) {
	t.Parallel()

	logger, err := New("error")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	defer logger.Sync()

	if logger.Desugar().Core().Enabled(zapcore.WarnLevel) {
		t.Error("expected warn to be disabled at error level")
	}
	if !logger.Desugar().Core().Enabled(zapcore.ErrorLevel) {
		t.Error("expected error to be enabled")
	}
}
