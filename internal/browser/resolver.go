package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

const (
	navigationTimeout = 30 * time.Second
	settleDelay       = 3 * time.Second
	playbackDelay     = 2 * time.Second
)

// playControlSelectors are tried in order to nudge the player into loading
// its media, which surfaces the real stream URLs on the network.
var playControlSelectors = []string{
	`button[aria-label*="play" i]`,
	`.play-button`,
	`[class*="play"]`,
	`video`,
}

// ExtractVideoURL loads a recording page and returns the best downloadable
// video URL it can find. Candidates come from watching network traffic,
// probing the DOM, and scanning the rendered page source; the strongest
// candidate wins.
func (d *Driver) ExtractVideoURL(pageURL string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.ensureBrowser(d.headless); err != nil {
		return "", err
	}

	authed, err := d.checkAuthenticatedLocked()
	if err != nil {
		return "", fmt.Errorf("authentication check failed: %v", err)
	}
	if !authed {
		return "", fmt.Errorf("authentication required, sign in first")
	}

	// Each extraction gets its own tab so listeners and page state never
	// leak between recordings
	tabCtx, tabCancel := chromedp.NewContext(d.browserCtx)
	defer tabCancel()

	var candMu sync.Mutex
	var candidates []string

	chromedp.ListenTarget(tabCtx, func(ev interface{}) {
		resp, ok := ev.(*network.EventResponseReceived)
		if !ok {
			return
		}
		if looksLikeMedia(resp.Response.URL, resp.Response.MimeType) {
			candMu.Lock()
			candidates = append(candidates, resp.Response.URL)
			candMu.Unlock()
		}
	})

	navCtx, navCancel := context.WithTimeout(tabCtx, navigationTimeout)
	err = chromedp.Run(navCtx,
		network.Enable(),
		chromedp.Navigate(pageURL),
		chromedp.Sleep(settleDelay),
	)
	navCancel()
	if err != nil {
		return "", fmt.Errorf("failed to load recording page: %w", err)
	}

	// Direct DOM probe before poking the player
	func() {
		probeCtx, probeCancel := context.WithTimeout(tabCtx, 2*time.Second)
		defer probeCancel()

		var src string
		var found bool
		if err := chromedp.Run(probeCtx,
			chromedp.AttributeValue("video source, video", "src", &src, &found, chromedp.ByQuery),
		); err == nil && found && src != "" {
			candMu.Lock()
			candidates = append(candidates, src)
			candMu.Unlock()
		}
	}()

	// Nudge playback so lazy players request their media
	for _, selector := range playControlSelectors {
		clickCtx, clickCancel := context.WithTimeout(tabCtx, 2*time.Second)
		err := chromedp.Run(clickCtx, chromedp.Click(selector, chromedp.ByQuery))
		clickCancel()
		if err == nil {
			_ = chromedp.Run(tabCtx, chromedp.Sleep(playbackDelay))
			break
		}
	}

	// Last resort: scrape the rendered source for embedded URLs
	htmlCtx, htmlCancel := context.WithTimeout(tabCtx, 5*time.Second)
	var pageSource string
	if err := chromedp.Run(htmlCtx, chromedp.OuterHTML("html", &pageSource)); err != nil {
		d.logger.WithError(err).Debug("Failed to capture page source for scanning")
	}
	htmlCancel()

	candMu.Lock()
	all := make([]string, len(candidates))
	copy(all, candidates)
	candMu.Unlock()

	if pageSource != "" {
		all = append(all, scanPageSource(pageSource)...)
	}

	url, ok := selectCandidate(all)
	if !ok {
		return "", fmt.Errorf("no video URL found, the recording may use protected streaming")
	}

	d.logger.WithField("url", url).Debug("Selected video candidate")

	return url, nil
}
