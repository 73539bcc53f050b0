package bot

import (
	"context"

	"instagrampa/pkg/instagram"
	"instagrampa/pkg/sampler"
)

// DriverPage adapts the rod-backed page to the Page interface. Everything
// matches directly except the dialog openers, whose concrete return type is
// widened to the sampler's List.
type DriverPage struct {
	*instagram.Page
}

// NewDriverPage wraps a browser page for use by the bot.
func NewDriverPage(p *instagram.Page) DriverPage {
	return DriverPage{Page: p}
}

func (d DriverPage) OpenFollowers(ctx context.Context) (sampler.List, error) {
	return d.Page.OpenFollowers(ctx)
}

func (d DriverPage) OpenFollowing(ctx context.Context) (sampler.List, error) {
	return d.Page.OpenFollowing(ctx)
}
