package instagram

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	errs "instagrampa/pkg/errors"
	"instagrampa/pkg/logger"
	"instagrampa/pkg/retry"
)

// CSS selectors for the login form fields.
const (
	FieldUsername = `input[name="username"]`
	FieldPassword = `input[name="password"]`
)

const (
	navigateTimeout  = 30 * time.Second
	settleDelay      = 3 * time.Second
	defaultLoadTries = 10
)

// Page wraps a browser tab with Instagram-aware navigation and element
// lookup. All blocking operations honor the passed context.
type Page struct {
	page      *rod.Page
	logger    logger.Logger
	loadTries int
}

// SetLoadRetries overrides how many render-verification attempts Navigate
// makes before giving up.
func (p *Page) SetLoadRetries(n int) {
	p.loadTries = n
}

// Navigate visits url and waits for the page to actually render. The HTTP
// status of the main document is inspected: a 429 means Instagram is rate
// limiting the session and the run must stop, a 404 means the profile does
// not exist. Instagram sometimes serves a blank shell, so after load the
// page is re-requested up to the retry budget until known chrome appears.
func (p *Page) Navigate(ctx context.Context, url string) error {
	tries := p.loadTries
	if tries <= 0 {
		tries = defaultLoadTries
	}

	status, err := p.visit(ctx, url)
	if err != nil {
		return err
	}
	switch status {
	case 429:
		return errs.NewWithCode(errs.ErrorTypeRateLimit, "received 429 while navigating, the account is rate limited", 429)
	case 404:
		return errs.NewWithCode(errs.ErrorTypeNotFound, fmt.Sprintf("page not found: %s", url), 404)
	}

	if err := retry.Wait(ctx, settleDelay); err != nil {
		return err
	}

	return retry.Do(func() error {
		if p.rendered() {
			return nil
		}
		p.logger.WithField("url", url).Debug("Page did not render, reloading")
		if _, err := p.visit(ctx, url); err != nil {
			return err
		}
		return errs.New(errs.ErrorTypeNavigation, fmt.Sprintf("page has not rendered: %s", url))
	}, &retry.Config{
		MaxAttempts: tries,
		Backoff:     &retry.ConstantBackoff{Delay: settleDelay},
		RetryIf:     retry.DefaultRetryIf,
		Context:     ctx,
		Logger:      p.logger,
	})
}

// visit performs one navigation and reports the main document status. A zero
// status means no document response was observed before the timeout.
func (p *Page) visit(ctx context.Context, url string) (int, error) {
	waitCtx, cancel := context.WithTimeout(ctx, navigateTimeout)
	defer cancel()

	pg := p.page.Context(waitCtx)

	var status int
	wait := pg.EachEvent(func(e *proto.NetworkResponseReceived) bool {
		if e.Type != proto.NetworkResourceTypeDocument {
			return false
		}
		status = e.Response.Status
		return true
	})

	if err := pg.Navigate(url); err != nil {
		return 0, errs.New(errs.ErrorTypeNavigation, fmt.Sprintf("navigation to %s failed: %v", url, err))
	}
	wait()

	// Slow assets should not fail the visit, render verification decides.
	_ = pg.WaitLoad()

	return status, nil
}

// rendered reports whether recognizable Instagram chrome is in the DOM.
func (p *Page) rendered() bool {
	res, err := p.page.Eval(`() => !!document.querySelector('main, [aria-label="Instagram"], img[alt*="Instagram"]')`)
	if err != nil {
		return false
	}
	return res.Value.Bool()
}

// Has reports whether any locator variant for the signal matches.
func (p *Page) Has(sig Signal) bool {
	for _, xpath := range signalLocators[sig] {
		found, _, err := p.page.HasX(xpath)
		if err == nil && found {
			return true
		}
	}
	return false
}

// HasControl reports whether the control is present without clicking it.
func (p *Page) HasControl(kind ControlKind) bool {
	_, ok := p.locate(kind)
	return ok
}

// Click finds the control by trying its locator variants in order and clicks
// the first match.
func (p *Page) Click(kind ControlKind) error {
	el, ok := p.locate(kind)
	if !ok {
		return errs.New(errs.ErrorTypeNavigation, fmt.Sprintf("could not find %s on page", kind))
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return errs.New(errs.ErrorTypeNavigation, fmt.Sprintf("failed to click %s: %v", kind, err))
	}
	return nil
}

// Dismiss clicks the control if it is present and reports whether it was.
// Used for the optional dialogs Instagram shows after login.
func (p *Page) Dismiss(kind ControlKind) bool {
	el, ok := p.locate(kind)
	if !ok {
		return false
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		p.logger.WithField("control", kind.String()).WithError(err).Debug("Failed to dismiss dialog")
		return false
	}
	return true
}

func (p *Page) locate(kind ControlKind) (*rod.Element, bool) {
	for _, xpath := range controlLocators[kind] {
		found, el, err := p.page.HasX(xpath)
		if err == nil && found {
			return el, true
		}
	}
	return nil, false
}

// TypeInto focuses the field matching the CSS selector and types the text
// key by key, the way a person would.
func (p *Page) TypeInto(selector, text string) error {
	el, err := p.page.Element(selector)
	if err != nil {
		return errs.New(errs.ErrorTypeNavigation, fmt.Sprintf("could not find input %s: %v", selector, err))
	}
	for _, r := range text {
		if err := el.Input(string(r)); err != nil {
			return errs.New(errs.ErrorTypeNavigation, fmt.Sprintf("failed to type into %s: %v", selector, err))
		}
		time.Sleep(time.Duration(50+rand.Intn(100)) * time.Millisecond)
	}
	return nil
}

// FollowerCount reads the follower count from the profile header.
func (p *Page) FollowerCount() (int, error) {
	return p.headerCount(1)
}

// FollowingCount reads the following count from the profile header.
func (p *Page) FollowingCount() (int, error) {
	return p.headerCount(2)
}

// headerCount extracts the numeric value of a profile header stat. The title
// attribute carries the exact number when Instagram abbreviates the visible
// text.
func (p *Page) headerCount(index int) (int, error) {
	res, err := p.page.Eval(`(index) => {
		const items = document.querySelectorAll("header section ul li");
		if (items.length <= index) return null;
		const span = items[index].querySelector("span[title]") || items[index].querySelector("span");
		if (!span) return null;
		const raw = span.getAttribute("title") || span.textContent || "";
		const digits = raw.replace(/[^0-9]/g, "");
		return digits ? parseInt(digits, 10) : null;
	}`, index)
	if err != nil {
		return 0, errs.New(errs.ErrorTypeNavigation, fmt.Sprintf("failed to read profile counts: %v", err))
	}
	if res.Value.Nil() {
		return 0, errs.New(errs.ErrorTypeNavigation, "profile counts not present on page")
	}
	return res.Value.Int(), nil
}

// Bio returns the visible text of the profile header, used for keyword
// filtering. An empty string is returned when the header is missing.
func (p *Page) Bio() (string, error) {
	res, err := p.page.Eval(`() => {
		const header = document.querySelector("header section");
		return header ? header.innerText : "";
	}`)
	if err != nil {
		return "", errs.New(errs.ErrorTypeNavigation, fmt.Sprintf("failed to read profile bio: %v", err))
	}
	return res.Value.Str(), nil
}

// LoggedIn reports whether the current page shows an authenticated session.
func (p *Page) LoggedIn() bool {
	return !p.Has(SignalLoginForm)
}

// Cookies serializes the session cookies to a JSON blob. The language cookie
// is dropped so the saved session never pins a non-English locale.
func (p *Page) Cookies() ([]byte, error) {
	cookies, err := p.page.Cookies(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to read cookies: %w", err)
	}
	kept := make([]*proto.NetworkCookie, 0, len(cookies))
	for _, c := range cookies {
		if c.Name == "ig_lang" {
			continue
		}
		kept = append(kept, c)
	}
	return json.Marshal(kept)
}

// SetCookies restores session cookies from a blob produced by Cookies.
func (p *Page) SetCookies(blob []byte) error {
	var cookies []*proto.NetworkCookie
	if err := json.Unmarshal(blob, &cookies); err != nil {
		return fmt.Errorf("failed to parse cookie blob: %w", err)
	}
	params := make([]*proto.NetworkCookieParam, 0, len(cookies))
	for _, c := range cookies {
		params = append(params, &proto.NetworkCookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Secure:   c.Secure,
			HTTPOnly: c.HTTPOnly,
			SameSite: c.SameSite,
			Expires:  c.Expires,
		})
	}
	if err := p.page.SetCookies(params); err != nil {
		return fmt.Errorf("failed to set cookies: %w", err)
	}
	return nil
}

// OpenFollowers opens the followers dialog on the current profile.
func (p *Page) OpenFollowers(ctx context.Context) (*DialogList, error) {
	return p.openDialog(ctx, ControlFollowersTab)
}

// OpenFollowing opens the following dialog on the current profile.
func (p *Page) OpenFollowing(ctx context.Context) (*DialogList, error) {
	return p.openDialog(ctx, ControlFollowingTab)
}

func (p *Page) openDialog(ctx context.Context, tab ControlKind) (*DialogList, error) {
	if err := p.Click(tab); err != nil {
		return nil, err
	}
	list := &DialogList{page: p.page}
	for attempt := 0; attempt < 4; attempt++ {
		if err := retry.Wait(ctx, time.Second); err != nil {
			return nil, err
		}
		if list.Ready() {
			return list, nil
		}
	}
	return nil, errs.New(errs.ErrorTypeNavigation, fmt.Sprintf("%s dialog did not open", tab))
}

// CloseDialog closes any open dialog, tolerating its absence.
func (p *Page) CloseDialog() {
	p.Dismiss(ControlDialogClose)
}

// CurrentURL returns the URL the tab is on.
func (p *Page) CurrentURL() string {
	info, err := p.page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

// Close closes the tab.
func (p *Page) Close() error {
	return p.page.Close()
}
