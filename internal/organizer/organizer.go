package organizer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/fathomarr/fathomarr/internal/models"
)

const maxFilenameLength = 100

var (
	invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	whitespaceRun        = regexp.MustCompile(`\s+`)
)

// Organizer lays exported meetings out on disk, one folder per meeting
type Organizer struct {
	baseDir string
}

// NewOrganizer creates an organizer rooted at baseDir, creating it if needed
func NewOrganizer(baseDir string) (*Organizer, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create download directory: %w", err)
	}
	return &Organizer{baseDir: baseDir}, nil
}

// sanitizeFilename makes a string safe for use as a file or folder name
func sanitizeFilename(name string) string {
	name = invalidFilenameChars.ReplaceAllString(name, "")
	name = whitespaceRun.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")

	if len(name) > maxFilenameLength {
		name = name[:maxFilenameLength]
	}
	if name == "" {
		return "untitled"
	}
	return name
}

// formatDate renders an ISO 8601 timestamp as YYYY-MM-DD, falling back to
// today when the timestamp does not parse.
func formatDate(timestamp string) string {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, timestamp); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return time.Now().Format("2006-01-02")
}

// MeetingFolder creates and returns the folder for a meeting, named
// date_title for natural chronological sorting.
func (o *Organizer) MeetingFolder(meeting *models.Meeting) (string, error) {
	name := fmt.Sprintf("%s_%s", formatDate(meeting.CreatedAt), sanitizeFilename(meeting.DisplayTitle()))
	folder := filepath.Join(o.baseDir, name)

	if err := os.MkdirAll(folder, 0755); err != nil {
		return "", fmt.Errorf("failed to create meeting folder: %w", err)
	}
	return folder, nil
}

// safeWrite writes data to path unless an existing file already holds at
// least as much content, which makes re-running an export a no-op for
// everything already saved.
func safeWrite(path string, data []byte) error {
	if info, err := os.Stat(path); err == nil && info.Size() >= int64(len(data)) {
		return nil
	}
	return os.WriteFile(path, data, 0644)
}

// SaveMetadata writes the meeting's metadata as JSON
func (o *Organizer) SaveMetadata(folder string, meeting *models.Meeting) error {
	data, err := json.MarshalIndent(meeting, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	return safeWrite(filepath.Join(folder, "metadata.json"), data)
}

// SaveSummary writes the summary as markdown
func (o *Organizer) SaveSummary(folder string, summary *models.Summary) error {
	var b strings.Builder
	b.WriteString("# Meeting Summary\n\n")
	if summary.TemplateName != "" {
		fmt.Fprintf(&b, "*Template: %s*\n\n", summary.TemplateName)
	}
	b.WriteString(summary.MarkdownFormatted)

	return safeWrite(filepath.Join(folder, "summary.md"), []byte(b.String()))
}

// SaveActionItems writes action items as both JSON and readable markdown
func (o *Organizer) SaveActionItems(folder string, items []models.ActionItem) error {
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal action items: %w", err)
	}
	if err := safeWrite(filepath.Join(folder, "action_items.json"), data); err != nil {
		return err
	}

	var b strings.Builder
	b.WriteString("# Action Items\n\n")
	for i, item := range items {
		check := "☐"
		status := "Open"
		if item.Completed {
			check = "☑"
			status = "Completed"
		}

		fmt.Fprintf(&b, "## %d. %s %s\n\n", i+1, check, item.Description)
		if item.Assignee != nil && item.Assignee.Name != "" {
			fmt.Fprintf(&b, "- Assignee: %s\n", item.Assignee.Name)
		}
		if item.RecordingTimestamp != "" {
			fmt.Fprintf(&b, "- Timestamp: %s\n", item.RecordingTimestamp)
		}
		if item.RecordingPlaybackURL != "" {
			fmt.Fprintf(&b, "- Link: %s\n", item.RecordingPlaybackURL)
		}
		fmt.Fprintf(&b, "- Status: %s\n\n", status)
	}

	return safeWrite(filepath.Join(folder, "action_items.md"), []byte(b.String()))
}
