package downloader

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	referer      = "https://fathom.video/"
	cookieDomain = "fathom.video"

	// userAgent matches the browser the session cookies were minted for
	userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Resolver turns a recording page into a downloadable video URL and
// supplies the session cookies needed to fetch it.
type Resolver interface {
	ExtractVideoURL(pageURL string) (string, error)
	CookieHeader(domain string) (string, error)
}

// Downloader fetches recording videos, remuxing HLS streams through ffmpeg
// and fetching direct files over HTTP.
type Downloader struct {
	resolver     Resolver
	ffmpegPath   string
	remuxTimeout time.Duration
	httpClient   *http.Client
	logger       *logrus.Logger
}

// New creates a downloader. ffmpegPath may be empty to search standard
// locations.
func New(resolver Resolver, ffmpegPath string, logger *logrus.Logger) *Downloader {
	return &Downloader{
		resolver:     resolver,
		ffmpegPath:   ffmpegPath,
		remuxTimeout: defaultRemuxTimeout,
		// No timeout; large videos can legitimately take a long time
		httpClient: &http.Client{},
		logger:     logger,
	}
}

// Download resolves the video URL behind a recording page and saves it to
// outputFolder/filename.
func (d *Downloader) Download(pageURL, outputFolder, filename string) error {
	videoURL, err := d.resolver.ExtractVideoURL(pageURL)
	if err != nil {
		return err
	}

	outputPath := filepath.Join(outputFolder, filename)

	d.logger.WithFields(logrus.Fields{
		"video_url": videoURL,
		"output":    outputPath,
	}).Debug("Starting video download")

	if isStreamingManifest(videoURL) {
		return d.remuxStream(videoURL, outputPath)
	}
	return d.fetchDirect(videoURL, outputPath)
}

// fetchDirect streams a complete media file straight to disk
func (d *Downloader) fetchDirect(videoURL, outputPath string) error {
	req, err := http.NewRequest(http.MethodGet, videoURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create download request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Referer", referer)

	cookies, err := d.resolver.CookieHeader("")
	if err != nil {
		return fmt.Errorf("failed to read session cookies: %w", err)
	}
	if cookies != "" {
		req.Header.Set("Cookie", cookies)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download video: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed with status %d", resp.StatusCode)
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer out.Close()

	buf := make([]byte, 64*1024)
	if _, err := io.CopyBuffer(out, resp.Body, buf); err != nil {
		return fmt.Errorf("failed to write video file: %w", err)
	}

	return nil
}
