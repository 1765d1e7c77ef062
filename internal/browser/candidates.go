package browser

import "strings"

// manifestFilename is the complete HLS playlist that references every
// quality variant; it beats any single rendition when present.
const manifestFilename = "master.m3u8"

// mediaURLMarkers are URL substrings that suggest a response carries video
// content or points at media storage.
var mediaURLMarkers = []string{
	".mp4",
	".webm",
	".m3u8",
	"/video/",
	"cloudfront.net",
	"storage.googleapis.com",
	"s3.amazonaws.com",
}

// looksLikeMedia reports whether a network response is worth keeping as a
// video candidate, based on its URL and content type. blob: URLs cannot be
// fetched outside the page and are never candidates.
func looksLikeMedia(rawURL, contentType string) bool {
	if rawURL == "" || strings.HasPrefix(rawURL, "blob:") {
		return false
	}

	lower := strings.ToLower(rawURL)
	for _, marker := range mediaURLMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}

	return strings.Contains(strings.ToLower(contentType), "video")
}

// dedupe removes duplicate URLs preserving first-seen order
func dedupe(urls []string) []string {
	seen := make(map[string]struct{}, len(urls))
	result := make([]string, 0, len(urls))

	for _, u := range urls {
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		result = append(result, u)
	}

	return result
}

// filterDownloadable drops URLs that cannot be fetched out-of-band
func filterDownloadable(urls []string) []string {
	result := make([]string, 0, len(urls))
	for _, u := range urls {
		if u == "" || strings.HasPrefix(u, "blob:") {
			continue
		}
		result = append(result, u)
	}
	return result
}

// selectCandidate picks the best downloadable URL from the accumulated
// candidates: complete HLS manifest, then any MP4, then any remaining HLS
// playlist, then the first unique candidate. Returns false when nothing
// downloadable remains.
func selectCandidate(urls []string) (string, bool) {
	urls = filterDownloadable(dedupe(urls))
	if len(urls) == 0 {
		return "", false
	}

	for _, u := range urls {
		if strings.Contains(strings.ToLower(u), manifestFilename) {
			return u, true
		}
	}

	for _, u := range urls {
		if strings.Contains(strings.ToLower(u), ".mp4") {
			return u, true
		}
	}

	for _, u := range urls {
		if strings.Contains(strings.ToLower(u), ".m3u8") {
			return u, true
		}
	}

	return urls[0], true
}

// IsStreamingManifest reports whether a URL points at an HLS playlist
// rather than a complete media file.
func IsStreamingManifest(rawURL string) bool {
	return strings.Contains(strings.ToLower(rawURL), ".m3u8")
}
