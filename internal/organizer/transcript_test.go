package organizer

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSaveTranscriptEntriesShape(t *testing.T) {
	dir := t.TempDir()
	org, err := NewOrganizer(dir)
	if err != nil {
		t.Fatal(err)
	}

	raw := json.RawMessage(`{"entries": [
		{"speaker": "Ada", "timestamp": "00:00:05", "text": "Good morning everyone"},
		{"speaker": {"display_name": "Grace"}, "start_time": "00:00:12", "content": "Morning"}
	]}`)

	if err := org.SaveTranscript(dir, raw); err != nil {
		t.Fatalf("SaveTranscript failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "transcript.txt"))
	if err != nil {
		t.Fatal(err)
	}

	text := string(data)
	if !strings.Contains(text, "[00:00:05] Ada:") {
		t.Errorf("Expected first utterance header, got:\n%s", text)
	}
	if !strings.Contains(text, "Good morning everyone") {
		t.Error("Expected first utterance text")
	}
	if !strings.Contains(text, "[00:00:12] Grace:") {
		t.Errorf("Expected nested speaker name, got:\n%s", text)
	}

	if _, err := os.Stat(filepath.Join(dir, "transcript.json")); err != nil {
		t.Error("Expected raw transcript.json to be written")
	}
}

func TestSaveTranscriptListOfStrings(t *testing.T) {
	dir := t.TempDir()
	org, err := NewOrganizer(dir)
	if err != nil {
		t.Fatal(err)
	}

	raw := json.RawMessage(`["line one", "line two"]`)
	if err := org.SaveTranscript(dir, raw); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "transcript.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "line one") || !strings.Contains(string(data), "line two") {
		t.Errorf("Expected both lines, got %q", data)
	}
}

func TestSaveTranscriptUnknownShape(t *testing.T) {
	dir := t.TempDir()
	org, err := NewOrganizer(dir)
	if err != nil {
		t.Fatal(err)
	}

	raw := json.RawMessage(`{"something": "else"}`)
	if err := org.SaveTranscript(dir, raw); err != nil {
		t.Fatalf("Unknown shapes should still save the JSON: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "transcript.json")); err != nil {
		t.Error("Expected transcript.json to be written")
	}
	if _, err := os.Stat(filepath.Join(dir, "transcript.txt")); !os.IsNotExist(err) {
		t.Error("Expected no transcript.txt for an uninterpretable payload")
	}
}

func TestRenderTranscriptUnknownSpeaker(t *testing.T) {
	raw := json.RawMessage(`{"segments": [{"speaker": {"id": 3}, "text": "hello"}]}`)
	text := renderTranscript(raw)
	if !strings.Contains(text, "Unknown:") {
		t.Errorf("Expected Unknown speaker fallback, got %q", text)
	}
}
