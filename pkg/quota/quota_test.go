package quota

import (
	"context"
	"testing"
	"time"
)

func TestCanActUnderLimits(t *testing.T) {
	tr := New(2, 10, 8)
	defer tr.Close()

	if !tr.CanAct() {
		t.Error("fresh tracker must permit actions")
	}
}

func TestHourlyLimit(t *testing.T) {
	tr := New(2, 10, 8)
	defer tr.Close()

	tr.Record(KindFollow)
	tr.Record(KindUnfollow)

	if tr.CanAct() {
		t.Error("hourly limit of 2 must block the third action")
	}
}

func TestDailyLimit(t *testing.T) {
	tr := New(10, 2, 8)
	defer tr.Close()

	tr.Record(KindFollow)
	tr.Record(KindFollow)

	if tr.CanAct() {
		t.Error("daily limit of 2 must block the third action")
	}
}

func TestFollowAndUnfollowShareBudget(t *testing.T) {
	tr := New(3, 100, 8)
	defer tr.Close()

	tr.Record(KindFollow)
	tr.Record(KindUnfollow)
	tr.Record(KindFollow)

	hourly, daily := tr.Counts()
	if hourly != 3 || daily != 3 {
		t.Errorf("counts = (%d, %d), want (3, 3)", hourly, daily)
	}
	if tr.CanAct() {
		t.Error("mixed kinds must count against the same budget")
	}
}

func TestDecrementsRestoreCounters(t *testing.T) {
	// 50ms hour, 150ms day
	tr := NewWithWindows(2, 10, 8*time.Hour, 50*time.Millisecond, 150*time.Millisecond)
	defer tr.Close()

	tr.Record(KindFollow)
	tr.Record(KindFollow)

	if tr.CanAct() {
		t.Fatal("expected hourly limit to be hit")
	}

	// After the hourly window both hourly decrements have fired; the daily
	// counters are still held.
	time.Sleep(80 * time.Millisecond)
	hourly, daily := tr.Counts()
	if hourly != 0 {
		t.Errorf("hourly = %d after the hourly window, want 0", hourly)
	}
	if daily != 2 {
		t.Errorf("daily = %d before the daily window, want 2", daily)
	}
	if !tr.CanAct() {
		t.Error("actions must be permitted again after hourly decay")
	}

	time.Sleep(100 * time.Millisecond)
	_, daily = tr.Counts()
	if daily != 0 {
		t.Errorf("daily = %d after the daily window, want 0", daily)
	}
}

func TestShiftWindowCloses(t *testing.T) {
	// 20ms shift inside a long day window
	tr := NewWithWindows(10, 10, 20*time.Millisecond, time.Hour, 24*time.Hour)
	defer tr.Close()

	if !tr.CanAct() {
		t.Fatal("must be inside the shift initially")
	}

	time.Sleep(40 * time.Millisecond)
	if tr.CanAct() {
		t.Error("actions must be blocked after the shift ends")
	}
}

func TestShiftClockResets(t *testing.T) {
	// shift 20ms, day 60ms: blocked between 20ms and 60ms, open again after
	tr := NewWithWindows(10, 10, 20*time.Millisecond, time.Hour, 60*time.Millisecond)
	defer tr.Close()

	time.Sleep(40 * time.Millisecond)
	if tr.CanAct() {
		t.Fatal("expected to be clocked out")
	}

	time.Sleep(25 * time.Millisecond)
	if !tr.CanAct() {
		t.Error("shift clock must reset after the day window")
	}
}

func TestGateUnblocksAfterDecay(t *testing.T) {
	tr := NewWithWindows(1, 10, 8*time.Hour, 50*time.Millisecond, time.Hour)
	defer tr.Close()
	tr.SetPollInterval(10 * time.Millisecond)

	tr.Record(KindFollow)
	if tr.CanAct() {
		t.Fatal("quota must be exhausted")
	}

	start := time.Now()
	if err := tr.Gate(context.Background()); err != nil {
		t.Fatalf("Gate returned error: %v", err)
	}
	if time.Since(start) < 40*time.Millisecond {
		t.Error("Gate returned before the hourly counter decayed")
	}
}

func TestGateHonorsCancellation(t *testing.T) {
	tr := New(1, 10, 8)
	defer tr.Close()
	tr.SetPollInterval(time.Minute)

	tr.Record(KindFollow)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := tr.Gate(ctx); err == nil {
		t.Error("Gate must return the context error when cancelled")
	}
}

func TestCloseStopsTimers(t *testing.T) {
	tr := NewWithWindows(5, 10, 8*time.Hour, 30*time.Millisecond, time.Hour)
	tr.Record(KindFollow)
	tr.Close()

	time.Sleep(60 * time.Millisecond)
	hourly, _ := tr.Counts()
	if hourly != 1 {
		t.Errorf("stopped timer still fired: hourly = %d", hourly)
	}
}

func TestPacerInterval(t *testing.T) {
	p := Pacer{PerHour: 60, Deviation: 0}
	if got := p.Interval(); got != time.Minute {
		t.Errorf("Interval() = %v, want 1m", got)
	}

	jittered := Pacer{PerHour: 60, Deviation: 0.5}
	for i := 0; i < 20; i++ {
		d := jittered.Interval()
		if d < time.Minute || d > 90*time.Second {
			t.Fatalf("jittered interval %v outside [1m, 1m30s]", d)
		}
	}
}

func TestBetween(t *testing.T) {
	for i := 0; i < 20; i++ {
		d := Between(time.Second, 10*time.Second)
		if d < time.Second || d >= 10*time.Second {
			t.Fatalf("Between returned %v", d)
		}
	}
	if Between(time.Second, time.Second) != time.Second {
		t.Error("degenerate range should return min")
	}
}
