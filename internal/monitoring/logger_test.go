package monitoring

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func restoreLoggers(t *testing.T) {
	t.Helper()
	logf, debugf := Logf, Debugf
	t.Cleanup(func() {
		Logf = logf
		Debugf = debugf
	})
}

func TestSetLogger(t *testing.T) {
	restoreLoggers(t)

	called := false
	SetLogger(func(format string, v ...interface{}) {
		called = true
	})
	Logf("test message")
	if !called {
		t.Error("Custom logger was not called")
	}

	// Now set to nil and verify it doesn't call our logger
	called = false
	SetLogger(nil)
	Logf("test")
	if called {
		t.Error("No-op logger should not have triggered callback")
	}
}

func TestSetDebugLogger(t *testing.T) {
	restoreLoggers(t)

	var got string
	SetDebugLogger(func(format string, v ...interface{}) {
		got = format
	})
	Debugf("detail %d", 1)
	if got != "detail %d" {
		t.Errorf("debug logger received %q", got)
	}

	got = ""
	SetDebugLogger(nil)
	Debugf("muted")
	if got != "" {
		t.Errorf("muted debug logger still called with %q", got)
	}
}

func TestLogf_Default(t *testing.T) {
	if Logf == nil {
		t.Fatal("Logf should not be nil by default")
	}
	if Debugf == nil {
		t.Fatal("Debugf should not be nil by default")
	}

	defer func() {
		if r := recover(); r != nil {
			t.Errorf("default loggers panicked: %v", r)
		}
	}()
	Logf("test message: %s", "value")
	Debugf("debug message: %s", "value")
}

func TestUseZap(t *testing.T) {
	restoreLoggers(t)

	core, logs := observer.New(zapcore.DebugLevel)
	UseZap(zap.New(core))

	Logf("processed %d events", 3)
	Debugf("event %d: %d clusters", 0, 2)

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 log entries, got %d", len(entries))
	}
	if entries[0].Level != zapcore.InfoLevel || entries[0].Message != "processed 3 events" {
		t.Errorf("unexpected info entry: %+v", entries[0].Entry)
	}
	if entries[1].Level != zapcore.DebugLevel || entries[1].Message != "event 0: 2 clusters" {
		t.Errorf("unexpected debug entry: %+v", entries[1].Entry)
	}
}

func TestUseZapNilMutes(t *testing.T) {
	restoreLoggers(t)

	UseZap(nil)
	// Must not panic.
	Logf("muted")
	Debugf("muted")
}

func TestInit(t *testing.T) {
	restoreLoggers(t)

	for _, debug := range []bool{true, false} {
		l, err := Init(debug)
		if err != nil {
			t.Fatalf("Init(%v): %v", debug, err)
		}
		if l == nil {
			t.Fatalf("Init(%v) returned nil logger", debug)
		}
		Logf("init check")
		_ = l.Sync()
	}
}
