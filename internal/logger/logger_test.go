package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestToZapLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		InfoLevel:  zapcore.InfoLevel,
		WarnLevel:  zapcore.WarnLevel,
		ErrorLevel: zapcore.ErrorLevel,
		DebugLevel: zapcore.DebugLevel,
		"bogus":    defaultZapLevel,
	}
	for in, want := range cases {
		if got := toZapLevel(in); got != want {
			t.Errorf("toZapLevel(%q)=%v, want %v", in, got, want)
		}
	}
}

func TestGet_ReturnsSingleton(t *testing.T) {
	a := Get(InfoLevel)
	b := Get(DebugLevel)
	if a == nil || a != b {
		t.Fatalf("expected the same non-nil logger, got %p and %p", a, b)
	}
}

func TestNew_WrapsCore(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := New(zap.New(core))
	l.Infow("run_started", "timer_id", "t1")

	entries := logs.All()
	if len(entries) != 1 || entries[0].Message != "run_started" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
	if entries[0].ContextMap()["timer_id"] != "t1" {
		t.Fatalf("missing field: %+v", entries[0].ContextMap())
	}
	Nop().Infow("discarded")
}
