package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"", zapcore.InfoLevel},
		{"loud", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewLoggerLevel(t *testing.T) {
	quiet := NewLogger(false)
	if quiet.Desugar().Core().Enabled(zapcore.DebugLevel) {
		t.Error("non-verbose logger should drop debug")
	}
	if !quiet.Desugar().Core().Enabled(zapcore.InfoLevel) {
		t.Error("non-verbose logger should keep info")
	}

	verbose := NewLogger(true)
	if !verbose.Desugar().Core().Enabled(zapcore.DebugLevel) {
		t.Error("verbose logger should keep debug")
	}
}

func TestChildLoggersKeepLevel(t *testing.T) {
	base := New(zapcore.WarnLevel, false)
	child := base.Named("server").With("bind", "127.0.0.1:0")
	if child.Desugar().Core().Enabled(zapcore.InfoLevel) {
		t.Error("child logger should inherit warn level")
	}
	if !child.Desugar().Core().Enabled(zapcore.ErrorLevel) {
		t.Error("child logger should log errors")
	}
}
