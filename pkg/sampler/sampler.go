// Package sampler harvests usernames from a scrollable list dialog. The list
// only keeps a window of rows in the DOM, so the harvester interleaves reads
// with scrolls and accumulates everything it ever saw.
package sampler

import (
	"context"
	"math/rand"
	"time"

	errs "instagrampa/pkg/errors"
	"instagrampa/pkg/logger"
	"instagrampa/pkg/retry"
)

// List is a scrollable collection of usernames, typically a followers or
// following dialog.
type List interface {
	// Ready reports whether the list has rendered any rows yet.
	Ready() bool
	// Extend scrolls to the bottom so the next batch loads.
	Extend() error
	// Visible returns the usernames currently rendered.
	Visible() ([]string, error)
	// Loading reports whether more content is still arriving.
	Loading() bool
}

const (
	// renderAttempts is how many times the harvester waits for the list to
	// render before declaring it empty.
	renderAttempts = 4
	// stallLimit is how many consecutive no-growth, not-loading iterations
	// end the harvest.
	stallLimit = 4
	// rouletteFloor is the iteration count after which each further scroll
	// has a one in rouletteOdds chance of ending the harvest early. Long
	// uninterrupted scroll sessions are exactly what detection heuristics
	// look for.
	rouletteFloor = 100
	rouletteOdds  = 3
)

// Harvester drives a List and collects usernames from it.
type Harvester struct {
	settle retry.BackoffStrategy
	ready  retry.BackoffStrategy
	rng    func(n int) int
	logger logger.Logger
}

// Option customizes a Harvester.
type Option func(*Harvester)

// WithSettle overrides the wait between scroll iterations.
func WithSettle(s retry.BackoffStrategy) Option {
	return func(h *Harvester) { h.settle = s }
}

// WithReadyWait overrides the wait between render checks.
func WithReadyWait(s retry.BackoffStrategy) Option {
	return func(h *Harvester) { h.ready = s }
}

// WithRand overrides the random source used for the early-exit roll.
func WithRand(rng func(n int) int) Option {
	return func(h *Harvester) { h.rng = rng }
}

// New returns a Harvester with human-looking default timings.
func New(log logger.Logger, opts ...Option) *Harvester {
	if log == nil {
		log = logger.GetLogger()
	}
	h := &Harvester{
		settle: &retry.RandomBackoff{Min: 400 * time.Millisecond, Max: 1200 * time.Millisecond},
		ready:  &retry.RandomBackoff{Min: time.Second, Max: 5 * time.Second},
		rng:    rand.Intn,
		logger: log,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Harvest scrolls the list and returns every username observed, in first-seen
// order, up to max (unlimited when max <= 0). Errors mid-scroll return the
// usernames collected so far alongside the error, so callers can still work
// a partial batch.
func (h *Harvester) Harvest(ctx context.Context, list List, max int) ([]string, error) {
	if err := h.waitReady(ctx, list); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var collected []string
	full := false
	absorb := func(visible []string) bool {
		grew := false
		for _, username := range visible {
			if _, ok := seen[username]; ok {
				continue
			}
			seen[username] = struct{}{}
			collected = append(collected, username)
			grew = true
			if max > 0 && len(collected) >= max {
				full = true
				return grew
			}
		}
		return grew
	}

	for iteration := 1; ; iteration++ {
		visible, err := list.Visible()
		if err != nil {
			return collected, err
		}

		grew := absorb(visible)
		if full {
			return collected, nil
		}

		if !grew && !list.Loading() {
			if h.stalled(ctx, list, iteration) {
				// One last read in case rows landed without the spinner.
				if visible, err := list.Visible(); err == nil {
					absorb(visible)
				}
				return collected, nil
			}
		}

		if iteration > rouletteFloor && h.rng(rouletteOdds) == 0 {
			h.logger.WithFields(map[string]interface{}{
				"iterations": iteration,
				"collected":  len(collected),
			}).Debug("Ending scroll session early to vary the pattern")
			return collected, nil
		}

		if err := list.Extend(); err != nil {
			return collected, err
		}
		if err := retry.Wait(ctx, h.settle.NextDelay(iteration)); err != nil {
			return collected, err
		}
	}
}

// waitReady gives the list a few chances to render before giving up.
func (h *Harvester) waitReady(ctx context.Context, list List) error {
	for attempt := 1; attempt <= renderAttempts; attempt++ {
		if list.Ready() {
			return nil
		}
		h.logger.WithField("attempt", attempt).Debug("List not rendered yet")
		if err := retry.Wait(ctx, h.ready.NextDelay(attempt)); err != nil {
			return err
		}
	}
	return errs.New(errs.ErrorTypeNavigation, "list did not render")
}

// stalled re-checks a non-growing list a few times before concluding it is
// exhausted. The loading spinner can lag behind the scroll.
func (h *Harvester) stalled(ctx context.Context, list List, iteration int) bool {
	for check := 1; check <= stallLimit; check++ {
		if err := list.Extend(); err != nil {
			return true
		}
		if err := retry.Wait(ctx, h.settle.NextDelay(iteration+check)); err != nil {
			return true
		}
		if list.Loading() {
			return false
		}
	}
	return true
}
