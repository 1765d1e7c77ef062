package organizer

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fathomarr/fathomarr/internal/models"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Q1 Review: Planning", "Q1_Review_Planning"},
		{"Q1: Review/Planning", "Q1_ReviewPlanning"},
		{"a/b\\c:d", "abcd"},
		{"  spaced   out  ", "spaced_out"},
		{"", "untitled"},
		{"///", "untitled"},
		{"...dots...", "dots"},
	}

	for _, tt := range tests {
		if got := sanitizeFilename(tt.in); got != tt.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeFilenameTruncates(t *testing.T) {
	long := strings.Repeat("a", 250)
	if got := sanitizeFilename(long); len(got) != 100 {
		t.Errorf("Expected 100 chars, got %d", len(got))
	}
}

func TestMeetingFolderNaming(t *testing.T) {
	org, err := NewOrganizer(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	meeting := &models.Meeting{
		RecordingID: 1,
		Title:       "Q1 Review: Planning",
		CreatedAt:   "2024-03-05T14:30:00Z",
	}

	folder, err := org.MeetingFolder(meeting)
	if err != nil {
		t.Fatalf("MeetingFolder failed: %v", err)
	}

	if filepath.Base(folder) != "2024-03-05_Q1_Review_Planning" {
		t.Errorf("Unexpected folder name %s", filepath.Base(folder))
	}
	if info, err := os.Stat(folder); err != nil || !info.IsDir() {
		t.Error("Expected folder to exist on disk")
	}
}

func TestMeetingFolderUntitledFallback(t *testing.T) {
	org, err := NewOrganizer(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	folder, err := org.MeetingFolder(&models.Meeting{RecordingID: 2, CreatedAt: "2024-01-02T00:00:00Z"})
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(folder) != "2024-01-02_Untitled_Meeting" {
		t.Errorf("Unexpected fallback folder name %s", filepath.Base(folder))
	}
}

func TestSafeWriteSkipsWhenExistingIsLarger(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "file.txt")

	if err := safeWrite(path, []byte("a longer original body")); err != nil {
		t.Fatal(err)
	}
	if err := safeWrite(path, []byte("short")); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "a longer original body" {
		t.Errorf("Expected the original content to survive, got %q", data)
	}
}

func TestSafeWriteReplacesSmallerFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "file.txt")

	if err := safeWrite(path, []byte("v1")); err != nil {
		t.Fatal(err)
	}
	if err := safeWrite(path, []byte("version two")); err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(path)
	if string(data) != "version two" {
		t.Errorf("Expected larger write to win, got %q", data)
	}
}

func TestSafeWriteSkipsEqualSize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "file.txt")

	if err := safeWrite(path, []byte("aaaa")); err != nil {
		t.Fatal(err)
	}
	if err := safeWrite(path, []byte("bbbb")); err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(path)
	if string(data) != "aaaa" {
		t.Errorf("Expected equal-size write to be skipped, got %q", data)
	}
}

func TestSaveMetadata(t *testing.T) {
	dir := t.TempDir()
	org, err := NewOrganizer(dir)
	if err != nil {
		t.Fatal(err)
	}

	meeting := &models.Meeting{RecordingID: 5, Title: "Standup", CreatedAt: "2024-06-01T09:00:00Z"}
	if err := org.SaveMetadata(dir, meeting); err != nil {
		t.Fatalf("SaveMetadata failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "metadata.json"))
	if err != nil {
		t.Fatal(err)
	}

	var decoded models.Meeting
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Metadata is not valid JSON: %v", err)
	}
	if decoded.RecordingID != 5 || decoded.Title != "Standup" {
		t.Errorf("Metadata mismatch: %+v", decoded)
	}
}

func TestSaveSummary(t *testing.T) {
	dir := t.TempDir()
	org, err := NewOrganizer(dir)
	if err != nil {
		t.Fatal(err)
	}

	summary := &models.Summary{TemplateName: "General", MarkdownFormatted: "## Topics\n- roadmap"}
	if err := org.SaveSummary(dir, summary); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "summary.md"))
	if err != nil {
		t.Fatal(err)
	}

	text := string(data)
	if !strings.HasPrefix(text, "# Meeting Summary") {
		t.Error("Expected summary header")
	}
	if !strings.Contains(text, "*Template: General*") {
		t.Error("Expected template line")
	}
	if !strings.Contains(text, "- roadmap") {
		t.Error("Expected markdown body")
	}
}

func TestSaveActionItems(t *testing.T) {
	dir := t.TempDir()
	org, err := NewOrganizer(dir)
	if err != nil {
		t.Fatal(err)
	}

	items := []models.ActionItem{
		{Description: "Send notes", Completed: true, Assignee: &models.Contact{Name: "Ada"}},
		{Description: "Schedule follow-up", RecordingTimestamp: "00:12:30"},
	}
	if err := org.SaveActionItems(dir, items); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "action_items.md"))
	if err != nil {
		t.Fatal(err)
	}

	text := string(data)
	if !strings.Contains(text, "## 1. ☑ Send notes") {
		t.Errorf("Expected completed item heading, got:\n%s", text)
	}
	if !strings.Contains(text, "## 2. ☐ Schedule follow-up") {
		t.Errorf("Expected open item heading, got:\n%s", text)
	}
	if !strings.Contains(text, "- Assignee: Ada") {
		t.Error("Expected assignee line")
	}
	if !strings.Contains(text, "- Timestamp: 00:12:30") {
		t.Error("Expected timestamp line")
	}

	if _, err := os.Stat(filepath.Join(dir, "action_items.json")); err != nil {
		t.Error("Expected action_items.json alongside the markdown")
	}
}
