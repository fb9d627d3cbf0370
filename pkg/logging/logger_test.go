package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   []interface{}
		want []interface{}
	}{
		{
			name: "plain fields untouched",
			in:   []interface{}{"stage", "outline", "attempt", 2},
			want: []interface{}{"stage", "outline", "attempt", 2},
		},
		{
			name: "api key redacted",
			in:   []interface{}{"anthropic_api_key", "sk-ant-123"},
			want: []interface{}{"anthropic_api_key", redacted},
		},
		{
			name: "session cookie redacted",
			in:   []interface{}{"Session_Cookie", "abc"},
			want: []interface{}{"Session_Cookie", redacted},
		},
		{
			name: "dangling key kept",
			in:   []interface{}{"stage", "week", "orphan"},
			want: []interface{}{"stage", "week", "orphan"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitize(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("Expected %d values, got %d", len(tt.want), len(got))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Index %d: expected %v, got %v", i, tt.want[i], got[i])
				}
			}
		})
	}
}

func TestNew(t *testing.T) {
	for _, mode := range []string{"production", "development", ""} {
		logger, err := New(mode)
		if err != nil {
			t.Fatalf("New(%q) failed: %v", mode, err)
		}
		logger.Info("test message", "mode", mode)
	}
}

func TestNopWith(t *testing.T) {
	logger := Nop().With("session_token", "secret")
	logger.Debug("discarded")
}

func TestLevelsRedactFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := &Logger{sugar: zap.New(core).Sugar()}

	logger.Debug("debug", "api_key", "sk-ant-123")
	logger.Info("info", "stage", "outline")
	logger.Warn("warn", "password", "hunter2")
	logger.Error("error", "stage", "week")

	entries := logs.All()
	if len(entries) != 4 {
		t.Fatalf("Expected 4 entries, got %d", len(entries))
	}

	levels := []zapcore.Level{zapcore.DebugLevel, zapcore.InfoLevel, zapcore.WarnLevel, zapcore.ErrorLevel}
	for i, level := range levels {
		if entries[i].Level != level {
			t.Errorf("Entry %d: expected level %s, got %s", i, level, entries[i].Level)
		}
	}

	if got := entries[0].ContextMap()["api_key"]; got != redacted {
		t.Errorf("Expected api_key to be redacted, got %v", got)
	}
	if got := entries[2].ContextMap()["password"]; got != redacted {
		t.Errorf("Expected password to be redacted, got %v", got)
	}
	if got := entries[1].ContextMap()["stage"]; got != "outline" {
		t.Errorf("Expected stage to be kept, got %v", got)
	}
}
