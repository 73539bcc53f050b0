package bot

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"instagrampa/pkg/config"
	errs "instagrampa/pkg/errors"
	"instagrampa/pkg/instagram"
	"instagrampa/pkg/logger"
	"instagrampa/pkg/quota"
)

// scrapeAndFollow picks a random target audience, harvests its followers,
// and follows the candidates that pass the filters.
func (b *Bot) scrapeAndFollow(ctx context.Context) error {
	targets := b.cfg.Targets.AccountsToScrape
	if len(targets) == 0 {
		b.logger.Warn("No accounts to scrape configured, skipping follow phase")
		return nil
	}
	target := targets[b.rng.Intn(len(targets))]

	b.logger.WithField("target", target).Info("Starting follow phase")

	batch, err := b.harvestFollowers(ctx, target)
	if err != nil && abortRun(ctx, err) {
		return err
	}
	if err != nil {
		b.logger.WithField("target", target).WithError(err).Warn("Harvest ended early, working the partial batch")
	}

	b.shuffle(batch)

	for _, username := range batch {
		if err := ctx.Err(); err != nil {
			return err
		}

		if reason, skip := b.prefilter(username); skip {
			logger.LogSkip(username, "follow", reason)
			continue
		}

		if err := b.followCandidate(ctx, username); err != nil {
			if abortRun(ctx, err) {
				return err
			}
			b.logger.WithField("candidate", username).WithError(err).Warn("Skipping candidate")
		}
		if err := b.pause(ctx); err != nil {
			return err
		}
	}

	return nil
}

// harvestFollowers opens the target's followers dialog and collects up to
// its reported follower count. The randomized early exit inside the
// harvester is what keeps huge audiences bounded.
func (b *Bot) harvestFollowers(ctx context.Context, target string) ([]string, error) {
	if err := b.page.Navigate(ctx, instagram.ProfileURL(target)); err != nil {
		return nil, err
	}
	audience, err := b.page.FollowerCount()
	if err != nil {
		b.logger.WithField("target", target).WithError(err).Warn("Could not read the follower count, harvesting unbounded")
		audience = 0
	}
	list, err := b.page.OpenFollowers(ctx)
	if err != nil {
		return nil, err
	}
	defer b.page.CloseDialog()

	batch, err := b.harvest.Harvest(ctx, list, audience)
	logger.LogHarvest(target, audience, len(batch))
	return batch, err
}

// prefilter rejects candidates that can be ruled out without visiting their
// profile.
func (b *Bot) prefilter(username string) (string, bool) {
	switch {
	case username == b.cfg.Account.Username:
		return "own account", true
	case b.cfg.IsProtected(username):
		return "protected account", true
	case b.cfg.IsIgnored(username):
		return "on the do-not-follow list", true
	case b.ledgers.Seen(username):
		return "already in the ledger", true
	}
	return "", false
}

// followCandidate visits one profile and follows it if it passes the
// on-profile filters.
func (b *Bot) followCandidate(ctx context.Context, username string) error {
	if err := b.quota.Gate(ctx); err != nil {
		return err
	}

	if err := b.page.Navigate(ctx, instagram.ProfileURL(username)); err != nil {
		if errs.IsNotFound(err) {
			logger.LogSkip(username, "follow", "account no longer exists")
			return nil
		}
		return err
	}

	if b.cfg.Behavior.SkipPrivateAccounts && b.page.Has(instagram.SignalPrivateAccount) {
		logger.LogSkip(username, "follow", "private account")
		return nil
	}
	if b.cfg.Behavior.SkipEmptyAccounts && b.page.Has(instagram.SignalEmptyAccount) {
		logger.LogSkip(username, "follow", "no posts")
		return nil
	}

	if reason, skip := b.bioRejected(); skip {
		logger.LogSkip(username, "follow", reason)
		return nil
	}

	if reason, skip := b.policyRejected(); skip {
		logger.LogSkip(username, "follow", reason)
		return nil
	}

	if b.page.HasControl(instagram.ControlUnfollow) {
		logger.LogSkip(username, "follow", "already following")
		return nil
	}
	if !b.page.HasControl(instagram.ControlFollow) {
		return errs.New(errs.ErrorTypeNavigation, "follow button missing on profile")
	}

	if err := b.page.Click(instagram.ControlFollow); err != nil {
		return err
	}

	if err := b.guard.Check(ctx, b.page); err != nil {
		return err
	}

	b.quota.Record(quota.KindFollow)
	if err := b.ledgers.Followed.Put(username, time.Now().UnixMilli()); err != nil {
		b.logger.WithField("candidate", username).WithError(err).Error("Failed to record follow")
	}
	logger.LogAction(username, "follow", true, nil)

	return b.sleep(ctx, b.pacer.Interval())
}

// bioRejected checks the open profile's bio against the keyword blocklist.
func (b *Bot) bioRejected() (string, bool) {
	if len(b.cfg.Targets.SkipIfBioContains) == 0 {
		return "", false
	}
	bio, err := b.page.Bio()
	if err != nil {
		return "", false
	}
	bio = strings.ToLower(bio)
	for _, word := range b.cfg.Targets.SkipIfBioContains {
		if word != "" && strings.Contains(bio, strings.ToLower(word)) {
			return fmt.Sprintf("bio contains %q", word), true
		}
	}
	return "", false
}

// policyRejected applies the numeric follow filters to the open profile.
// When the counts cannot be read and any filter is active, the candidate is
// skipped, an unverifiable profile is not worth the quota.
func (b *Bot) policyRejected() (string, bool) {
	p := b.cfg.Policy
	active := p.FollowRatioMin != nil || p.FollowRatioMax != nil ||
		p.FollowMinFollowers != nil || p.FollowMinFollowing != nil ||
		p.FollowMaxFollowers != nil || p.FollowMaxFollowing != nil
	if !active {
		return "", false
	}

	followers, err := b.page.FollowerCount()
	if err != nil {
		return "could not read follower count", true
	}
	following, err := b.page.FollowingCount()
	if err != nil {
		return "could not read following count", true
	}

	return evaluatePolicy(p, followers, following)
}

// evaluatePolicy is the pure-filter core of policyRejected. The ratio is
// followers over following, high for popular accounts, low for mass
// followers.
func evaluatePolicy(p config.PolicyConfig, followers, following int) (string, bool) {
	ratio := math.Inf(1)
	if following > 0 {
		ratio = float64(followers) / float64(following)
	}

	switch {
	case p.FollowRatioMin != nil && ratio < *p.FollowRatioMin:
		return fmt.Sprintf("ratio %.2f below minimum", ratio), true
	case p.FollowRatioMax != nil && ratio > *p.FollowRatioMax:
		return fmt.Sprintf("ratio %.2f above maximum", ratio), true
	case p.FollowMinFollowers != nil && followers < *p.FollowMinFollowers:
		return fmt.Sprintf("%d followers below minimum", followers), true
	case p.FollowMaxFollowers != nil && followers > *p.FollowMaxFollowers:
		return fmt.Sprintf("%d followers above maximum", followers), true
	case p.FollowMinFollowing != nil && following < *p.FollowMinFollowing:
		return fmt.Sprintf("following %d below minimum", following), true
	case p.FollowMaxFollowing != nil && following > *p.FollowMaxFollowing:
		return fmt.Sprintf("following %d above maximum", following), true
	}
	return "", false
}
