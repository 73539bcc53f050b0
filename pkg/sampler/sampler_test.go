package sampler

import (
	"context"
	"fmt"
	"testing"
	"time"

	errs "instagrampa/pkg/errors"
	"instagrampa/pkg/retry"
)

// fakeList serves a fixed sequence of render windows. Each Extend advances to
// the next window, mimicking rows scrolling in and out of the DOM.
type fakeList struct {
	windows    [][]string
	idx        int
	notReady   int
	visibleErr error
	errAfter   int
	visits     int
}

func (f *fakeList) Ready() bool {
	if f.notReady > 0 {
		f.notReady--
		return false
	}
	return true
}

func (f *fakeList) Extend() error {
	if f.idx < len(f.windows)-1 {
		f.idx++
	}
	return nil
}

func (f *fakeList) Visible() ([]string, error) {
	f.visits++
	if f.visibleErr != nil && f.visits > f.errAfter {
		return nil, f.visibleErr
	}
	return f.windows[f.idx], nil
}

func (f *fakeList) Loading() bool {
	return f.idx < len(f.windows)-1
}

// growingList never runs out of content.
type growingList struct {
	next int
}

func (g *growingList) Ready() bool { return true }

func (g *growingList) Extend() error {
	g.next++
	return nil
}

func (g *growingList) Visible() ([]string, error) {
	return []string{fmt.Sprintf("user%d", g.next)}, nil
}

func (g *growingList) Loading() bool { return true }

func fastHarvester(rng func(int) int) *Harvester {
	if rng == nil {
		rng = func(int) int { return 1 }
	}
	return New(nil,
		WithSettle(&retry.ConstantBackoff{Delay: time.Millisecond}),
		WithReadyWait(&retry.ConstantBackoff{Delay: time.Millisecond}),
		WithRand(rng),
	)
}

func TestDefaultReadyWaitIsRandomized(t *testing.T) {
	h := New(nil)
	rb, ok := h.ready.(*retry.RandomBackoff)
	if !ok {
		t.Fatalf("ready wait is %T, want a randomized backoff", h.ready)
	}
	if rb.Min != time.Second || rb.Max != 5*time.Second {
		t.Errorf("ready wait bounds = [%v, %v], want [1s, 5s]", rb.Min, rb.Max)
	}
}

func TestHarvestCollectsAcrossWindows(t *testing.T) {
	list := &fakeList{windows: [][]string{
		{"alice", "bob", "carol"},
		{"carol", "dave", "erin"},
		{"erin", "frank"},
	}}

	got, err := fastHarvester(nil).Harvest(context.Background(), list, 0)
	if err != nil {
		t.Fatalf("Harvest failed: %v", err)
	}

	want := []string{"alice", "bob", "carol", "dave", "erin", "frank"}
	if len(got) != len(want) {
		t.Fatalf("collected %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("collected[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestHarvestStopsAtMax(t *testing.T) {
	list := &fakeList{windows: [][]string{
		{"alice", "bob", "carol"},
		{"carol", "dave", "erin"},
	}}

	got, err := fastHarvester(nil).Harvest(context.Background(), list, 2)
	if err != nil {
		t.Fatalf("Harvest failed: %v", err)
	}
	if len(got) != 2 || got[0] != "alice" || got[1] != "bob" {
		t.Errorf("collected %v, want [alice bob]", got)
	}
}

func TestHarvestRandomEarlyExit(t *testing.T) {
	list := &growingList{}
	alwaysExit := func(int) int { return 0 }

	got, err := fastHarvester(alwaysExit).Harvest(context.Background(), list, 0)
	if err != nil {
		t.Fatalf("Harvest failed: %v", err)
	}

	// The exit roll only starts after the iteration floor, so by then the
	// harvest has collected at least that many users.
	if len(got) < rouletteFloor {
		t.Errorf("collected %d users, expected at least %d before early exit", len(got), rouletteFloor)
	}
	if len(got) > rouletteFloor+2 {
		t.Errorf("collected %d users, expected exit right after the floor", len(got))
	}
}

func TestHarvestListNeverRenders(t *testing.T) {
	list := &fakeList{windows: [][]string{{"alice"}}, notReady: 100}

	got, err := fastHarvester(nil).Harvest(context.Background(), list, 0)
	if err == nil {
		t.Fatal("expected an error for a list that never renders")
	}
	if errs.TypeOf(err) != errs.ErrorTypeNavigation {
		t.Errorf("error type = %v, want navigation", errs.TypeOf(err))
	}
	if got != nil {
		t.Errorf("expected no results, got %v", got)
	}
}

func TestHarvestReturnsPartialOnError(t *testing.T) {
	list := &fakeList{
		windows: [][]string{
			{"alice", "bob"},
			{"bob", "carol"},
		},
		visibleErr: errs.New(errs.ErrorTypeNavigation, "dialog disappeared"),
		errAfter:   1,
	}

	got, err := fastHarvester(nil).Harvest(context.Background(), list, 0)
	if err == nil {
		t.Fatal("expected the scroll error to surface")
	}
	if len(got) != 2 || got[0] != "alice" || got[1] != "bob" {
		t.Errorf("partial result = %v, want [alice bob]", got)
	}
}

func TestHarvestReturnsPartialOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	list := &fakeList{windows: [][]string{
		{"alice", "bob"},
		{"bob", "carol"},
	}}

	got, err := fastHarvester(nil).Harvest(ctx, list, 0)
	if err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(got) != 2 {
		t.Errorf("partial result = %v, want the first window", got)
	}
}
