package definition

import "testing"

func TestDefaultLoggerToggleDebug(t *testing.T) {
	l := NewDefaultLogger()
	if got := l.ToggleDebug(true); !got {
		t.Fatalf("expected ToggleDebug(true) to return true")
	}
	if got := l.ToggleDebug(false); got {
		t.Fatalf("expected ToggleDebug(false) to return false")
	}
}

func TestDefaultLoggerMethodsDoNotPanic(t *testing.T) {
	l := NewDefaultLogger()
	l.Debug("a")
	l.Debugf("%s", "b")
	l.Info("a")
	l.Infof("%s", "b")
	l.Warn("a")
	l.Warnf("%s", "b")
	l.Error("a")
	l.Errorf("%s", "b")
}
