package downloader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// defaultRemuxTimeout bounds a single ffmpeg stream capture
const defaultRemuxTimeout = 10 * time.Minute

var errRemuxTimeout = errors.New("stream capture exceeded its time budget")

// ffmpegSearchPaths are tried after PATH lookup fails
var ffmpegSearchPaths = []string{
	"/usr/local/bin/ffmpeg",
	"/usr/bin/ffmpeg",
	"/opt/homebrew/bin/ffmpeg",
	"/opt/local/bin/ffmpeg",
}

func isStreamingManifest(rawURL string) bool {
	return strings.Contains(strings.ToLower(rawURL), ".m3u8")
}

// findFFmpeg locates the ffmpeg binary, preferring a configured override
func (d *Downloader) findFFmpeg() (string, error) {
	if d.ffmpegPath != "" {
		if _, err := os.Stat(d.ffmpegPath); err == nil {
			return d.ffmpegPath, nil
		}
	}

	if path, err := exec.LookPath("ffmpeg"); err == nil {
		return path, nil
	}

	for _, path := range ffmpegSearchPaths {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("ffmpeg not found, please install it to download streaming recordings")
}

// headerBlock builds the -headers argument for ffmpeg
func headerBlock(cookies string) string {
	headers := []string{
		"Referer: " + referer,
		"User-Agent: " + userAgent,
	}
	if cookies != "" {
		headers = append(headers, "Cookie: "+cookies)
	}
	return strings.Join(headers, "\r\n") + "\r\n"
}

// remuxArgs builds the argument list for a copy remux of an HLS stream.
// The AAC bitstream filter fixes ADTS audio when repackaging into MP4.
func remuxArgs(manifestURL, headers, outputPath string, aacFilter bool) []string {
	args := []string{
		"-y",
		"-headers", headers,
		"-i", manifestURL,
		"-c", "copy",
	}
	if aacFilter {
		args = append(args, "-bsf:a", "aac_adtstoasc")
	}
	return append(args, outputPath)
}

// runFFmpeg executes ffmpeg with a hard deadline
func (d *Downloader) runFFmpeg(binary string, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), d.remuxTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return nil
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return errRemuxTimeout
	}

	detail := strings.TrimSpace(stderr.String())
	if len(detail) > 200 {
		detail = detail[:200]
	}
	return fmt.Errorf("ffmpeg failed: %s", detail)
}

// remuxStream captures an HLS stream into a local MP4 using ffmpeg. A
// failed run is retried once without the AAC bitstream filter, which some
// streams reject.
func (d *Downloader) remuxStream(manifestURL, outputPath string) error {
	binary, err := d.findFFmpeg()
	if err != nil {
		return err
	}

	cookies, err := d.resolver.CookieHeader(cookieDomain)
	if err != nil {
		return fmt.Errorf("failed to read session cookies: %w", err)
	}
	headers := headerBlock(cookies)

	err = d.runFFmpeg(binary, remuxArgs(manifestURL, headers, outputPath, true))
	if err != nil {
		if errors.Is(err, errRemuxTimeout) {
			return err
		}

		d.logger.WithError(err).Warn("Stream capture failed, retrying without audio bitstream filter")
		if err := d.runFFmpeg(binary, remuxArgs(manifestURL, headers, outputPath, false)); err != nil {
			return err
		}
	}

	info, statErr := os.Stat(outputPath)
	if statErr != nil || info.Size() == 0 {
		return fmt.Errorf("ffmpeg completed but produced no output file")
	}

	return nil
}
