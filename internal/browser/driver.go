package browser

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/storage"
	"github.com/chromedp/chromedp"
	"github.com/sirupsen/logrus"
)

const (
	// userAgent is a current desktop Chrome string; automation defaults are
	// blocked by some sign-in flows.
	userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	serviceDomain = "fathom.video"
	signInURL     = "https://fathom.video/login"
	landingURL    = "https://fathom.video/home"
)

// Driver owns a Chrome instance and the persisted session behind it. All
// page work goes through the driver so that cookies captured during an
// interactive sign-in are available to later headless extractions.
type Driver struct {
	sessions *SessionStore
	profile  string
	headless bool
	logger   *logrus.Logger

	mu            sync.Mutex
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
	authenticated bool
}

// NewDriver creates a driver bound to a session profile. The browser is not
// launched until first use.
func NewDriver(sessions *SessionStore, profile string, headless bool, logger *logrus.Logger) *Driver {
	if profile == "" {
		profile = DefaultProfile
	}
	return &Driver{
		sessions: sessions,
		profile:  profile,
		headless: headless,
		logger:   logger,
	}
}

// HasStoredSession reports whether a persisted session exists for the
// driver's profile.
func (d *Driver) HasStoredSession() bool {
	return d.sessions.Exists(d.profile)
}

// ensureBrowser launches Chrome if it is not already running. Callers must
// hold d.mu. An existing browser is reused regardless of the requested
// headless mode; switching modes requires closing first.
func (d *Driver) ensureBrowser(headless bool) error {
	if d.browserCtx != nil {
		return nil
	}

	opts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.UserAgent(userAgent),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// Starts the browser process before any tab work happens
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return fmt.Errorf("failed to launch browser: %w", err)
	}

	d.allocCancel = allocCancel
	d.browserCtx = browserCtx
	d.browserCancel = browserCancel

	if cookies, ok := d.sessions.Load(d.profile); ok {
		if err := d.restoreCookies(cookies); err != nil {
			d.logger.WithError(err).Warn("Failed to restore saved session, continuing without it")
		} else {
			d.logger.WithField("cookies", len(cookies)).Debug("Restored saved browser session")
		}
	}

	return nil
}

// restoreCookies injects persisted cookies into the running browser
func (d *Driver) restoreCookies(cookies []Cookie) error {
	params := make([]*network.CookieParam, 0, len(cookies))
	for _, c := range cookies {
		param := &network.CookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Secure:   c.Secure,
			HTTPOnly: c.HTTPOnly,
		}

		if c.Expires > 0 {
			expiresTime := time.Unix(int64(c.Expires), 0)
			if expiresTime.After(time.Now()) {
				timestamp := cdp.TimeSinceEpoch(expiresTime)
				param.Expires = &timestamp
			}
		}

		switch strings.ToLower(c.SameSite) {
		case "strict":
			param.SameSite = network.CookieSameSiteStrict
		case "lax":
			param.SameSite = network.CookieSameSiteLax
		case "none":
			param.SameSite = network.CookieSameSiteNone
		}

		params = append(params, param)
	}

	return chromedp.Run(d.browserCtx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			return storage.SetCookies(params).Do(ctx)
		}),
	)
}

// captureCookies reads every cookie from the running browser
func (d *Driver) captureCookies() ([]Cookie, error) {
	var raw []*network.Cookie
	err := chromedp.Run(d.browserCtx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			cookies, err := storage.GetCookies().Do(ctx)
			if err != nil {
				return err
			}
			raw = cookies
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to read browser cookies: %w", err)
	}

	cookies := make([]Cookie, 0, len(raw))
	for _, c := range raw {
		cookies = append(cookies, Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  c.Expires,
			Secure:   c.Secure,
			HTTPOnly: c.HTTPOnly,
			SameSite: string(c.SameSite),
		})
	}

	return cookies, nil
}

// saveSessionLocked persists the current browser cookies. Callers must hold
// d.mu and have a running browser.
func (d *Driver) saveSessionLocked() error {
	cookies, err := d.captureCookies()
	if err != nil {
		return err
	}
	if err := d.sessions.Save(d.profile, cookies); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	d.logger.WithField("cookies", len(cookies)).Debug("Saved browser session")
	return nil
}

// CookieHeader builds a Cookie request header from the session. Cookies are
// read from the live browser when one is running, otherwise from the
// persisted session. An empty domain includes every cookie.
func (d *Driver) CookieHeader(domain string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var cookies []Cookie
	if d.browserCtx != nil {
		captured, err := d.captureCookies()
		if err != nil {
			return "", err
		}
		cookies = captured
	} else {
		stored, ok := d.sessions.Load(d.profile)
		if !ok {
			return "", nil
		}
		cookies = stored
	}

	var pairs []string
	for _, c := range cookies {
		if domain != "" && !strings.Contains(c.Domain, domain) {
			continue
		}
		pairs = append(pairs, c.Name+"="+c.Value)
	}

	return strings.Join(pairs, "; "), nil
}

// closeLocked tears down the browser. Callers must hold d.mu. Safe to call
// when no browser is running.
func (d *Driver) closeLocked() {
	if d.browserCancel != nil {
		d.browserCancel()
		d.browserCancel = nil
	}
	if d.allocCancel != nil {
		d.allocCancel()
		d.allocCancel = nil
	}
	d.browserCtx = nil
	d.authenticated = false
}

// Close shuts down the browser if it is running. Idempotent.
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closeLocked()
	return nil
}
