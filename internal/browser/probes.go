package browser

import "regexp"

// sourceProbe is one page-source signal: a named regex whose match (or a
// capture group of it) yields a candidate video URL. Probes run in order;
// adding or removing one does not touch the resolver's control flow.
type sourceProbe struct {
	name  string
	re    *regexp.Regexp
	group int // submatch index holding the URL; 0 means the whole match
}

var sourceProbes = []sourceProbe{
	{
		name: "raw-mp4",
		re:   regexp.MustCompile(`https?://[^\s"'<>\\]+\.mp4[^\s"'<>\\]*`),
	},
	{
		name: "cloud-storage",
		re:   regexp.MustCompile(`https?://[^\s"'<>\\]*(?:cloudfront\.net|storage\.googleapis\.com|s3[.-][a-z0-9-]*\.?amazonaws\.com)/[^\s"'<>\\]+`),
	},
	{
		name:  "json-video-url",
		re:    regexp.MustCompile(`"(?:video_?[Uu]rl|videoURL|mp4_?[Uu]rl|playback_?[Uu]rl)"\s*:\s*"(https?://[^"]+)"`),
		group: 1,
	},
	{
		name:  "media-element-src",
		re:    regexp.MustCompile(`<(?:source|video)[^>]+src=["'](https?://[^"']+)["']`),
		group: 1,
	},
}

// scanPageSource runs every probe over the rendered page source and
// returns all candidate URLs in probe order.
func scanPageSource(html string) []string {
	var found []string
	for _, probe := range sourceProbes {
		for _, match := range probe.re.FindAllStringSubmatch(html, -1) {
			if probe.group < len(match) {
				found = append(found, match[probe.group])
			}
		}
	}
	return found
}
