package handlers

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/fathomarr/fathomarr/internal/progress"
	"github.com/fathomarr/fathomarr/internal/settings"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func testStore(t *testing.T) *settings.Store {
	t.Helper()
	dir := t.TempDir()
	return settings.NewStore(filepath.Join(dir, "config.json"), filepath.Join(dir, "downloads"))
}

func TestConfigGetMasksAPIKey(t *testing.T) {
	store := testStore(t)
	if err := store.Save(settings.Settings{APIKey: "fk-secret", DownloadDir: "/data"}); err != nil {
		t.Fatal(err)
	}

	handler := NewConfigHandler(store, func(r *http.Request, key string) error { return nil }, func() bool { return true }, quietLogger())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/config", nil))

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}

	if got := body["api_key"]; got == "fk-secret" {
		t.Error("Expected the API key to be masked")
	}
	if body["api_key"] == "" {
		t.Error("Expected a mask placeholder, not an empty key")
	}
	if body["google_authenticated"] != true {
		t.Error("Expected google_authenticated to be reported")
	}
}

func TestConfigPostKeepsStoredKeyWhenMasked(t *testing.T) {
	store := testStore(t)
	if err := store.Save(settings.Settings{APIKey: "fk-secret"}); err != nil {
		t.Fatal(err)
	}

	validated := false
	handler := NewConfigHandler(store, func(r *http.Request, key string) error {
		validated = true
		return nil
	}, func() bool { return false }, quietLogger())

	payload := fmt.Sprintf(`{"api_key": %q, "download_dir": "/new"}`, apiKeyMask)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/config", strings.NewReader(payload)))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if validated {
		t.Error("An unchanged key must not be re-validated")
	}

	cfg, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.APIKey != "fk-secret" {
		t.Errorf("Expected the stored key to survive, got %q", cfg.APIKey)
	}
	if cfg.DownloadDir != "/new" {
		t.Errorf("Expected the download dir to update, got %q", cfg.DownloadDir)
	}
}

func TestConfigPostRejectsInvalidKey(t *testing.T) {
	store := testStore(t)
	handler := NewConfigHandler(store, func(r *http.Request, key string) error {
		return fmt.Errorf("invalid API key")
	}, func() bool { return false }, quietLogger())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/config", strings.NewReader(`{"api_key": "bad-key"}`)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rec.Code)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["success"] != false || body["error"] != "invalid API key" {
		t.Errorf("Unexpected body %v", body)
	}

	cfg, _ := store.Load()
	if cfg.APIKey != "" {
		t.Error("A rejected key must not be saved")
	}
}

func TestProgressStreamEndsOnTerminalEvent(t *testing.T) {
	hub := progress.NewHub()
	jobID, events := hub.Create()

	events <- progress.Event{Type: progress.TypeStatus, Message: "Fetching meeting list..."}
	events <- progress.Event{Type: progress.TypeComplete, Message: "Export complete! 1 meetings processed.", Folder: "/data"}

	handler := NewProgressHandler(hub, quietLogger())
	server := httptest.NewServer(handler)
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/progress/" + jobID)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if got := resp.Header.Get("Content-Type"); got != "text/event-stream" {
		t.Errorf("Expected SSE content type, got %q", got)
	}

	var messages []progress.Event
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var ev progress.Event
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev); err != nil {
			t.Fatalf("Bad event payload %q: %v", line, err)
		}
		messages = append(messages, ev)
	}

	if len(messages) != 2 {
		t.Fatalf("Expected 2 events before the stream closed, got %d", len(messages))
	}
	if messages[1].Type != progress.TypeComplete || messages[1].Folder != "/data" {
		t.Errorf("Unexpected terminal event %+v", messages[1])
	}

	if _, ok := hub.Get(jobID); ok {
		t.Error("Expected the job to be removed after the terminal event")
	}
}

func TestProgressUnknownJob(t *testing.T) {
	handler := NewProgressHandler(progress.NewHub(), quietLogger())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/progress/nope", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown job, got %d", rec.Code)
	}
}
