package quota

import (
	"context"
	"sync"
	"time"

	"instagrampa/pkg/logger"
	"instagrampa/pkg/retry"
)

// Kind identifies the action being counted.
type Kind string

const (
	KindFollow   Kind = "follow"
	KindUnfollow Kind = "unfollow"
)

// Tracker bounds actions per rolling hour and day and enforces the daily
// shift window. Each recorded action schedules two independent deferred
// decrements (+1 hour, +1 day) instead of keeping per-action timestamps.
// A process restart resets all counters to zero, which errs toward fewer
// actions, never more.
type Tracker struct {
	mu sync.Mutex

	hourlyFollowed   int
	hourlyUnfollowed int
	dailyFollowed    int
	dailyUnfollowed  int

	clockIn time.Time

	maxPerHour int
	maxPerDay  int
	shift      time.Duration

	hourWindow time.Duration
	dayWindow  time.Duration
	pollEvery  time.Duration

	timers map[*time.Timer]struct{}
	done   chan struct{}
	closed bool

	logger logger.Logger
}

// New creates a tracker with real one-hour and one-day windows. The shift
// clock starts now and resets every 24 hours regardless of activity.
func New(maxPerHour, maxPerDay, shiftHours int) *Tracker {
	return NewWithWindows(maxPerHour, maxPerDay,
		time.Duration(shiftHours)*time.Hour, time.Hour, 24*time.Hour)
}

// NewWithWindows creates a tracker with explicit window durations. Tests use
// compressed windows; production code goes through New.
func NewWithWindows(maxPerHour, maxPerDay int, shift, hourWindow, dayWindow time.Duration) *Tracker {
	t := &Tracker{
		clockIn:    time.Now(),
		maxPerHour: maxPerHour,
		maxPerDay:  maxPerDay,
		shift:      shift,
		hourWindow: hourWindow,
		dayWindow:  dayWindow,
		pollEvery:  10 * time.Minute,
		timers:     make(map[*time.Timer]struct{}),
		done:       make(chan struct{}),
		logger:     logger.GetLogger(),
	}

	go t.resetShiftClock()

	return t
}

// SetPollInterval sets how long Gate sleeps between re-checks.
func (t *Tracker) SetPollInterval(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pollEvery = d
}

// resetShiftClock clocks back in once per day window, decoupled from
// individual action timestamps.
func (t *Tracker) resetShiftClock() {
	ticker := time.NewTicker(t.dayWindow)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			t.mu.Lock()
			t.clockIn = time.Now()
			t.mu.Unlock()
			t.logger.Debug("shift clock reset")
		case <-t.done:
			return
		}
	}
}

// CanAct reports whether an action is currently permitted: inside the active
// shift window and under both the hourly and daily budgets. It never errors;
// callers sleep and re-poll on false.
func (t *Tracker) CanAct() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	// The window closes the instant the shift is over.
	if !time.Now().Before(t.clockIn.Add(t.shift)) {
		t.logger.Debug("outside the active shift window")
		return false
	}

	if t.hourlyFollowed+t.hourlyUnfollowed >= t.maxPerHour {
		t.logger.Debug("hourly action limit reached")
		return false
	}

	if t.dailyFollowed+t.dailyUnfollowed >= t.maxPerDay {
		t.logger.Debug("daily action limit reached")
		return false
	}

	return true
}

// Record counts a successful action and schedules the paired decrements.
func (t *Tracker) Record(kind Kind) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return
	}

	switch kind {
	case KindFollow:
		t.hourlyFollowed++
		t.dailyFollowed++
		t.decrementAfter(&t.hourlyFollowed, t.hourWindow)
		t.decrementAfter(&t.dailyFollowed, t.dayWindow)
	case KindUnfollow:
		t.hourlyUnfollowed++
		t.dailyUnfollowed++
		t.decrementAfter(&t.hourlyUnfollowed, t.hourWindow)
		t.decrementAfter(&t.dailyUnfollowed, t.dayWindow)
	}
}

// decrementAfter schedules a single deferred decrement. Caller holds the lock.
func (t *Tracker) decrementAfter(counter *int, after time.Duration) {
	var timer *time.Timer
	timer = time.AfterFunc(after, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		*counter--
		delete(t.timers, timer)
	})
	t.timers[timer] = struct{}{}
}

// Counts returns the current hourly and daily action sums.
func (t *Tracker) Counts() (hourly, daily int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.hourlyFollowed + t.hourlyUnfollowed, t.dailyFollowed + t.dailyUnfollowed
}

// Gate blocks until an action is permitted, re-checking on the poll interval.
// It returns only when CanAct is true or the context is done.
func (t *Tracker) Gate(ctx context.Context) error {
	for {
		if t.CanAct() {
			return nil
		}

		hourly, daily := t.Counts()
		logger.LogQuota(hourly, daily, false)

		t.mu.Lock()
		poll := t.pollEvery
		t.mu.Unlock()

		if err := retry.Wait(ctx, poll); err != nil {
			return err
		}
	}
}

// Close stops the shift clock and any outstanding decrement timers.
func (t *Tracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return
	}
	t.closed = true
	close(t.done)

	for timer := range t.timers {
		timer.Stop()
	}
	t.timers = make(map[*time.Timer]struct{})
}
