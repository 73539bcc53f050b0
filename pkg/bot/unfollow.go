package bot

import (
	"context"
	"time"

	errs "instagrampa/pkg/errors"
	"instagrampa/pkg/instagram"
	"instagrampa/pkg/logger"
	"instagrampa/pkg/quota"
)

// unfollowNonMutual unfollows accounts that do not follow back, subject to
// the protected list and the cooldown window. With SkipManuallyFollowed the
// candidates come from the ledger projection, so only accounts this bot
// followed are ever touched; otherwise the live following list is harvested.
func (b *Bot) unfollowNonMutual(ctx context.Context) error {
	b.logger.Info("Starting unfollow phase")

	var candidates []string
	if b.cfg.Behavior.SkipManuallyFollowed {
		candidates = b.ledgers.FollowedNotUnfollowed()
	} else {
		var err error
		candidates, err = b.followingList(ctx)
		if err != nil {
			if abortRun(ctx, err) {
				return err
			}
			b.logger.WithError(err).Warn("Could not read the following list, skipping phase")
			return nil
		}
	}
	b.shuffle(candidates)

	for _, username := range candidates {
		if err := ctx.Err(); err != nil {
			return err
		}

		if b.cfg.IsProtected(username) {
			logger.LogSkip(username, "unfollow", "protected account")
			continue
		}
		if followedAt, tracked := b.ledgers.Followed.Get(username); tracked && b.withinCooldown(followedAt) {
			logger.LogSkip(username, "unfollow", "still inside the cooldown window")
			continue
		}

		if err := b.unfollowCandidate(ctx, username, true); err != nil {
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

// unfollowPreviouslyFollowed unfollows accounts this bot followed once the
// cooldown has passed, whether or not they follow back.
func (b *Bot) unfollowPreviouslyFollowed(ctx context.Context) error {
	b.logger.Info("Starting cleanup of previously followed accounts")

	candidates := b.ledgers.FollowedNotUnfollowed()
	b.shuffle(candidates)

	for _, username := range candidates {
		if err := ctx.Err(); err != nil {
			return err
		}

		if b.cfg.IsProtected(username) {
			logger.LogSkip(username, "cleanup", "protected account")
			continue
		}
		if followedAt, ok := b.ledgers.Followed.Get(username); ok && b.withinCooldown(followedAt) {
			logger.LogSkip(username, "cleanup", "still inside the cooldown window")
			continue
		}

		if err := b.unfollowCandidate(ctx, username, false); err != nil {
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

// followingList harvests the bot account's own following list.
func (b *Bot) followingList(ctx context.Context) ([]string, error) {
	if err := b.page.Navigate(ctx, instagram.ProfileURL(b.cfg.Account.Username)); err != nil {
		return nil, err
	}
	list, err := b.page.OpenFollowing(ctx)
	if err != nil {
		return nil, err
	}
	defer b.page.CloseDialog()

	return b.harvest.Harvest(ctx, list, 0)
}

// unfollowCandidate visits one profile and unfollows it if it qualifies.
// checkMutual enables the follows-back probe; the cleanup phase skips it
// because those unfollows are due regardless of mutuality.
func (b *Bot) unfollowCandidate(ctx context.Context, username string, checkMutual bool) error {
	if err := b.quota.Gate(ctx); err != nil {
		return err
	}

	if err := b.page.Navigate(ctx, instagram.ProfileURL(username)); err != nil {
		if errs.IsNotFound(err) {
			// The account is gone, close out the ledger entry so it is
			// never revisited.
			logger.LogSkip(username, "unfollow", "account no longer exists")
			b.recordUnfollow(username)
			return nil
		}
		return err
	}

	if b.page.Has(instagram.SignalPrivateAccount) {
		if !b.cfg.Behavior.UnfollowPrivateAccounts {
			logger.LogSkip(username, "unfollow", "private account")
			return nil
		}
		// A private profile exposes no usable following dialog, so the
		// mutual probe is impossible and the unfollow proceeds.
	} else if checkMutual {
		mutual, err := b.followsBack(ctx)
		if err != nil {
			// When mutuality cannot be determined, keep the follow.
			logger.LogSkip(username, "unfollow", "could not verify mutual follow")
			return nil
		}
		if mutual {
			logger.LogSkip(username, "unfollow", "follows back")
			return nil
		}
	}

	if !b.page.HasControl(instagram.ControlUnfollow) {
		if b.page.HasControl(instagram.ControlFollow) {
			logger.LogSkip(username, "unfollow", "not currently followed")
			b.recordUnfollow(username)
			return nil
		}
		return errs.New(errs.ErrorTypeNavigation, "no follow state control on profile")
	}

	if err := b.page.Click(instagram.ControlUnfollow); err != nil {
		return err
	}
	if err := b.sleep(ctx, quota.Between(time.Second, 3*time.Second)); err != nil {
		return err
	}
	if b.page.HasControl(instagram.ControlUnfollowConfirm) {
		if err := b.page.Click(instagram.ControlUnfollowConfirm); err != nil {
			return err
		}
	}

	if err := b.guard.Check(ctx, b.page); err != nil {
		return err
	}

	b.quota.Record(quota.KindUnfollow)
	b.recordUnfollow(username)
	logger.LogAction(username, "unfollow", true, nil)

	return b.sleep(ctx, b.pacer.Interval())
}

// followsBack reports whether the profile currently open follows the bot
// account. Instagram sorts mutuals to the top of the following dialog, so
// the first visible row is enough to decide.
func (b *Bot) followsBack(ctx context.Context) (bool, error) {
	list, err := b.page.OpenFollowing(ctx)
	if err != nil {
		return false, err
	}
	defer b.page.CloseDialog()

	visible, err := list.Visible()
	if err != nil {
		return false, err
	}
	if len(visible) == 0 {
		return false, errs.New(errs.ErrorTypeNavigation, "following dialog rendered no rows")
	}
	return visible[0] == b.cfg.Account.Username, nil
}

// recordUnfollow writes the unfollow to the ledger. Persistence failures are
// logged rather than surfaced, losing one entry is better than losing the run.
func (b *Bot) recordUnfollow(username string) {
	if err := b.ledgers.Unfollowed.Put(username, time.Now().UnixMilli()); err != nil {
		b.logger.WithField("candidate", username).WithError(err).Error("Failed to record unfollow")
	}
}
