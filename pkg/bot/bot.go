// Package bot runs the follow/unfollow loop: establish a session, unfollow
// accounts that no longer qualify, then scrape target audiences and follow
// new candidates, all throttled to look like a person at a keyboard.
package bot

import (
	"context"
	"math/rand"
	"time"

	"instagrampa/pkg/breaker"
	"instagrampa/pkg/config"
	errs "instagrampa/pkg/errors"
	"instagrampa/pkg/instagram"
	"instagrampa/pkg/ledger"
	"instagrampa/pkg/logger"
	"instagrampa/pkg/quota"
	"instagrampa/pkg/retry"
	"instagrampa/pkg/sampler"
)

// Page is the browser surface the bot drives.
type Page interface {
	Navigate(ctx context.Context, url string) error
	Has(sig instagram.Signal) bool
	HasControl(kind instagram.ControlKind) bool
	Click(kind instagram.ControlKind) error
	Dismiss(kind instagram.ControlKind) bool
	TypeInto(selector, text string) error
	FollowerCount() (int, error)
	FollowingCount() (int, error)
	Bio() (string, error)
	LoggedIn() bool
	Cookies() ([]byte, error)
	SetCookies(blob []byte) error
	OpenFollowers(ctx context.Context) (sampler.List, error)
	OpenFollowing(ctx context.Context) (sampler.List, error)
	CloseDialog()
}

// Harvester collects usernames from a scrollable list.
type Harvester interface {
	Harvest(ctx context.Context, list sampler.List, max int) ([]string, error)
}

// Sessions persists the login session between runs.
type Sessions interface {
	Load() ([]byte, bool, error)
	Save(blob []byte) error
	Delete() error
}

// Guard checks the page for block interstitials after each action.
type Guard interface {
	Check(ctx context.Context, page breaker.Surface) error
}

// Deps are the collaborators a Bot needs.
type Deps struct {
	Page      Page
	Harvester Harvester
	Quota     *quota.Tracker
	Ledgers   *ledger.Store
	Sessions  Sessions
	Guard     Guard
	Logger    logger.Logger
}

// Bot orchestrates the phases of a run.
type Bot struct {
	cfg      *config.Config
	page     Page
	harvest  Harvester
	quota    *quota.Tracker
	ledgers  *ledger.Store
	sessions Sessions
	guard    Guard
	pacer    quota.Pacer
	logger   logger.Logger
	rng      *rand.Rand

	// sleep is swapped out in tests
	sleep func(ctx context.Context, d time.Duration) error
}

// New assembles a Bot from its configuration and collaborators.
func New(cfg *config.Config, deps Deps) *Bot {
	log := deps.Logger
	if log == nil {
		log = logger.GetLogger()
	}
	return &Bot{
		cfg:      cfg,
		page:     deps.Page,
		harvest:  deps.Harvester,
		quota:    deps.Quota,
		ledgers:  deps.Ledgers,
		sessions: deps.Sessions,
		guard:    deps.Guard,
		pacer: quota.Pacer{
			PerHour:   cfg.Quota.MaxFollowsPerHour,
			Deviation: cfg.Timing.SleepDeviation,
		},
		logger: log.WithField("account", cfg.Account.Username),
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		sleep:  retry.Wait,
	}
}

// Run executes the phase loop until the context is cancelled or a fatal
// error surfaces. Non-fatal trouble with individual candidates is logged and
// skipped inside the phases.
func (b *Bot) Run(ctx context.Context) error {
	if err := b.establishSession(ctx); err != nil {
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if b.cfg.Behavior.UnfollowNonMutual {
			if err := b.unfollowNonMutual(ctx); err != nil {
				return err
			}
		}
		if b.cfg.Behavior.UnfollowPreviouslyFollowed {
			if err := b.unfollowPreviouslyFollowed(ctx); err != nil {
				return err
			}
		}
		if err := b.scrapeAndFollow(ctx); err != nil {
			return err
		}

		// Breathe between cycles so an idle configuration does not spin.
		if err := b.sleep(ctx, b.pacer.Interval()); err != nil {
			return err
		}
	}
}

// establishSession gets the page into a logged-in state, restoring saved
// cookies when possible and logging in with credentials otherwise. The
// session is re-saved afterwards so refreshed cookies stick.
func (b *Bot) establishSession(ctx context.Context) error {
	if err := b.page.Navigate(ctx, instagram.HomeURL()); err != nil {
		return err
	}

	if blob, ok, err := b.sessions.Load(); err == nil && ok {
		b.logger.Debug("Restoring saved session")
		if err := b.page.SetCookies(blob); err != nil {
			b.logger.WithError(err).Warn("Failed to restore session cookies")
		} else if err := b.page.Navigate(ctx, instagram.HomeURL()); err != nil {
			return err
		}
	}

	if !b.page.LoggedIn() {
		if err := b.login(ctx); err != nil {
			return err
		}
	}

	if blob, err := b.page.Cookies(); err == nil {
		if err := b.sessions.Save(blob); err != nil {
			b.logger.WithError(err).Warn("Failed to persist session")
		}
	}

	// Instagram nags after login; both dialogs are optional.
	b.page.Dismiss(instagram.ControlSaveInfoDismiss)
	b.page.Dismiss(instagram.ControlNotNowDismiss)

	b.logger.Info("Session established")
	return nil
}

// login performs a credential login on the current page.
func (b *Bot) login(ctx context.Context) error {
	if b.cfg.Account.Password == "" {
		return errs.New(errs.ErrorTypeLogin, "no saved session and no password configured")
	}

	b.logger.Info("Logging in with credentials")

	if err := b.page.TypeInto(instagram.FieldUsername, b.cfg.Account.Username); err != nil {
		return errs.New(errs.ErrorTypeLogin, "could not fill username field: "+err.Error())
	}
	if err := b.page.TypeInto(instagram.FieldPassword, b.cfg.Account.Password); err != nil {
		return errs.New(errs.ErrorTypeLogin, "could not fill password field: "+err.Error())
	}

	if err := b.page.Click(instagram.ControlLoginSubmit); err != nil {
		return errs.New(errs.ErrorTypeLogin, "could not submit login form: "+err.Error())
	}

	for attempt := 1; attempt <= b.cfg.Timing.LoginAttempts; attempt++ {
		if err := b.sleep(ctx, 2*time.Second); err != nil {
			return err
		}
		if b.page.LoggedIn() {
			return nil
		}
		b.logger.WithField("attempt", attempt).Debug("Waiting for login to complete")
	}

	return errs.New(errs.ErrorTypeLogin, "login did not complete, check the credentials")
}

// shuffle permutes items in place so candidates are never worked in the
// order the site returned them.
func (b *Bot) shuffle(items []string) {
	b.rng.Shuffle(len(items), func(i, j int) {
		items[i], items[j] = items[j], items[i]
	})
}

// withinCooldown reports whether a follow recorded at ts (unix milliseconds)
// is still inside the unfollow cooldown window.
func (b *Bot) withinCooldown(ts int64) bool {
	cooldown := time.Duration(b.cfg.Behavior.DaysUntilUnfollow) * 24 * time.Hour
	return time.Since(time.UnixMilli(ts)) < cooldown
}

// pause sleeps a short random interval between candidates.
func (b *Bot) pause(ctx context.Context) error {
	return b.sleep(ctx, quota.Between(time.Second, 10*time.Second))
}

// abortRun reports whether a candidate error should end the whole run.
func abortRun(ctx context.Context, err error) bool {
	return errs.IsFatal(err) || ctx.Err() != nil
}
