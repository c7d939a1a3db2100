package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewLevels(t *testing.T) {
	quiet, err := New(false)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if quiet.Core().Enabled(zapcore.InfoLevel) {
		t.Fatalf("info should be hidden without debug")
	}
	if !quiet.Core().Enabled(zapcore.WarnLevel) {
		t.Fatalf("warn should be shown")
	}

	loud, err := New(true)
	if err != nil {
		t.Fatalf("new debug: %v", err)
	}
	if !loud.Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("debug should be shown with debug")
	}
}

func TestNewProduction(t *testing.T) {
	l, err := NewProduction(false)
	if err != nil {
		t.Fatalf("new production: %v", err)
	}
	if l.Core().Enabled(zapcore.DebugLevel) || !l.Core().Enabled(zapcore.InfoLevel) {
		t.Fatalf("unexpected production level")
	}
	if err := Sync(nil); err != nil {
		t.Fatalf("Sync(nil) = %v", err)
	}
}
