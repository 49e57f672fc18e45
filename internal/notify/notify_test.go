package notify

import (
	"testing"
	"time"
)

func TestNoticeLifecycle(t *testing.T) {
	n := New(5*time.Second, 15*time.Second)
	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	n.SetClock(func() time.Time { return base })

	if _, ok := n.Current(); ok {
		t.Error("Expected no notice initially")
	}

	n.Success("Detected: happy")
	notice, ok := n.Current()
	if !ok || notice.Level != LevelSuccess || notice.Message != "Detected: happy" {
		t.Fatalf("Unexpected notice: %+v", notice)
	}

	// Successes dismiss after their TTL.
	n.SetClock(func() time.Time { return base.Add(6 * time.Second) })
	if _, ok := n.Current(); ok {
		t.Error("Success notice should have auto-dismissed")
	}
}

func TestFailureLingersLonger(t *testing.T) {
	n := New(5*time.Second, 15*time.Second)
	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	n.SetClock(func() time.Time { return base })

	n.Failure("Detection failed: no camera")

	n.SetClock(func() time.Time { return base.Add(10 * time.Second) })
	notice, ok := n.Current()
	if !ok || notice.Level != LevelError {
		t.Error("Failure notice must outlive the success TTL")
	}

	n.SetClock(func() time.Time { return base.Add(16 * time.Second) })
	if _, ok := n.Current(); ok {
		t.Error("Failure notice should eventually dismiss")
	}
}

func TestNewerNoticeReplacesOlder(t *testing.T) {
	n := New(5*time.Second, 15*time.Second)
	n.Info("Detecting your mood...")
	n.Success("Detected: sad")

	notice, ok := n.Current()
	if !ok || notice.Level != LevelSuccess {
		t.Errorf("Expected the newer notice, got %+v", notice)
	}
}
