package instagram

import (
	"fmt"
	"math/rand"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"instagrampa/pkg/logger"
)

// userAgents is a small rotation of desktop user agents. Instagram serves the
// same markup to all of them, so randomizing only changes the fingerprint.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
}

// BrowserOptions controls how the underlying Chromium instance is launched.
type BrowserOptions struct {
	Headless           bool
	RandomizeUserAgent bool
	Logger             logger.Logger
}

// Browser owns the Chromium process and hands out driver pages.
type Browser struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	opts     BrowserOptions
	logger   logger.Logger
}

// NewBrowser launches Chromium and connects to it.
func NewBrowser(opts BrowserOptions) (*Browser, error) {
	if opts.Logger == nil {
		opts.Logger = logger.GetLogger()
	}

	l := launcher.New().
		Headless(opts.Headless).
		Set("lang", "en-US")

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Cleanup()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	opts.Logger.WithField("headless", opts.Headless).Debug("Browser launched")

	return &Browser{
		browser:  browser,
		launcher: l,
		opts:     opts,
		logger:   opts.Logger,
	}, nil
}

// NewPage opens a fresh tab configured with the language header and, when
// enabled, a randomized user agent.
func (b *Browser) NewPage() (*Page, error) {
	page, err := b.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	ua := userAgents[0]
	if b.opts.RandomizeUserAgent {
		ua = userAgents[rand.Intn(len(userAgents))]
	}
	override := &proto.NetworkSetUserAgentOverride{
		UserAgent:      ua,
		AcceptLanguage: "en-US,en",
	}
	if err := page.SetUserAgent(override); err != nil {
		return nil, fmt.Errorf("failed to set user agent: %w", err)
	}

	return &Page{
		page:   page,
		logger: b.logger,
	}, nil
}

// Close shuts down the browser and the Chromium process behind it.
func (b *Browser) Close() error {
	err := b.browser.Close()
	b.launcher.Cleanup()
	return err
}
