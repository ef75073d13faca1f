package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger_Environments(t *testing.T) {
	for _, env := range []string{"prod", "local", "dev", "docker", "test"} {
		l, err := NewLogger(env, "")
		if err != nil {
			t.Fatalf("env %s: unexpected error: %v", env, err)
		}
		if l == nil {
			t.Fatalf("env %s: nil logger", env)
		}
	}
}

func TestNewLogger_UnknownEnv(t *testing.T) {
	if _, err := NewLogger("staging", ""); err == nil {
		t.Fatal("expected error for unknown env")
	}
}

func TestNewLogger_LevelOverride(t *testing.T) {
	l, err := NewLogger("prod", "warn")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.Core().Enabled(zapcore.InfoLevel) {
		t.Error("info should be disabled at warn level")
	}
	if !l.Core().Enabled(zapcore.WarnLevel) {
		t.Error("warn should be enabled at warn level")
	}
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	if _, err := NewLogger("dev", "loud"); err == nil {
		t.Fatal("expected error for invalid level")
	}
}

func TestFromContext(t *testing.T) {
	if FromContext(context.Background()) == nil {
		t.Fatal("expected nop logger for empty context")
	}

	l := zap.NewExample()
	ctx := ContextWithLogger(context.Background(), l)
	if FromContext(ctx) != l {
		t.Error("logger not round-tripped through context")
	}
}
