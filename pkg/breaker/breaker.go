// Package breaker watches for Instagram's throttling interstitials and trips
// the run when one appears. A tripped breaker burns the saved session and
// forces a long cooldown, the only response that reliably clears a block.
package breaker

import (
	"context"
	"fmt"
	"time"

	errs "instagrampa/pkg/errors"
	"instagrampa/pkg/instagram"
	"instagrampa/pkg/logger"
	"instagrampa/pkg/retry"
)

// Surface is a page that can be probed for block signals.
type Surface interface {
	Has(sig instagram.Signal) bool
}

// Sessions deletes the persisted session for the account.
type Sessions interface {
	Delete() error
}

// Breaker checks a page for block interstitials after every action.
type Breaker struct {
	sessions Sessions
	cooldown time.Duration
	logger   logger.Logger
}

// New returns a Breaker that deletes through sessions and waits cooldown
// before surfacing the block.
func New(sessions Sessions, cooldown time.Duration, log logger.Logger) *Breaker {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Breaker{
		sessions: sessions,
		cooldown: cooldown,
		logger:   log,
	}
}

// Check inspects the page and returns nil when no block signal is showing.
// When one is, the saved session is deleted, the cooldown elapses, and a
// fatal error is returned. The cooldown happens before the error surfaces so
// a supervisor that restarts the process immediately still starts cold.
func (b *Breaker) Check(ctx context.Context, page Surface) error {
	var signal instagram.Signal
	switch {
	case page.Has(instagram.SignalActionBlocked):
		signal = instagram.SignalActionBlocked
	case page.Has(instagram.SignalTryAgainLater):
		signal = instagram.SignalTryAgainLater
	default:
		return nil
	}

	b.logger.WithFields(map[string]interface{}{
		"signal":   signal.String(),
		"cooldown": b.cooldown.String(),
	}).Error("Instagram blocked the account, discarding session and cooling down")

	if err := b.sessions.Delete(); err != nil {
		b.logger.WithError(err).Warn("Failed to delete saved session")
	}

	if err := retry.Wait(ctx, b.cooldown); err != nil {
		b.logger.WithError(err).Warn("Cooldown interrupted")
	}

	return errs.New(errs.ErrorTypeActionBlocked, fmt.Sprintf("account blocked (%s), session discarded", signal))
}
