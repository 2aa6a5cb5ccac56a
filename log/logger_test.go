package log

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{"warning", zerolog.WarnLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"verbose", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		if got := parseLogLevel(tt.in); got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSetLevel_AppliesToModuleLoggers(t *testing.T) {
	m := GetLogger("Test")
	defer SetLevel("info")

	SetLevel("error")
	if m.with().GetLevel() != zerolog.ErrorLevel {
		t.Fatalf("expected module logger to follow global level, got %v", m.with().GetLevel())
	}

	SetLevel("debug")
	if m.with().GetLevel() != zerolog.DebugLevel {
		t.Fatalf("expected debug level, got %v", m.with().GetLevel())
	}
}
