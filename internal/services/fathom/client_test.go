package fathom

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/fathomarr/fathomarr/internal/models"
)

func testClient(baseURL string) *Client {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	c := NewClient("test-key", logger)
	c.baseURL = baseURL
	return c
}

func TestListMeetingsFollowsPagination(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Api-Key") != "test-key" {
			t.Errorf("Expected X-Api-Key header, got %q", r.Header.Get("X-Api-Key"))
		}

		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("cursor") {
		case "":
			fmt.Fprint(w, `{"items": [{"recording_id": 1, "title": "First", "created_at": "2024-01-01T10:00:00Z"}], "next_cursor": "page2"}`)
		case "page2":
			fmt.Fprint(w, `{"items": [{"recording_id": 2, "title": "Second", "created_at": "2024-03-01T10:00:00Z"}], "next_cursor": ""}`)
		default:
			t.Errorf("Unexpected cursor %q", r.URL.Query().Get("cursor"))
		}
	}))
	defer server.Close()

	meetings, err := testClient(server.URL).ListMeetings(context.Background())
	if err != nil {
		t.Fatalf("ListMeetings failed: %v", err)
	}

	if len(meetings) != 2 {
		t.Fatalf("Expected 2 meetings across pages, got %d", len(meetings))
	}

	// Newest first
	if meetings[0].RecordingID != 2 || meetings[1].RecordingID != 1 {
		t.Errorf("Expected newest-first ordering, got %d then %d", meetings[0].RecordingID, meetings[1].RecordingID)
	}
}

func TestInvalidAPIKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	_, err := testClient(server.URL).ListMeetings(context.Background())
	if err == nil {
		t.Fatal("Expected an error for 401")
	}
	if err.Error() != "invalid API key" {
		t.Errorf("Expected invalid API key message, got %q", err.Error())
	}
}

func TestRateLimitRetriesThenSurfaces(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := testClient(server.URL).ListMeetings(context.Background())
	if err == nil {
		t.Fatal("Expected an error for persistent 429")
	}
	if !strings.Contains(err.Error(), "rate limit") {
		t.Errorf("Expected rate limit message, got %q", err.Error())
	}
	if requests < 2 {
		t.Errorf("Expected 429 to be retried, saw %d requests", requests)
	}
}

func TestErrorMessageFromBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message": "recording not found"}`)
	}))
	defer server.Close()

	_, err := testClient(server.URL).GetSummary(context.Background(), 42)
	if err == nil {
		t.Fatal("Expected an error for 404")
	}
	if err.Error() != "recording not found" {
		t.Errorf("Expected message from response body, got %q", err.Error())
	}
}

func TestGetTranscriptKeepsRawPayload(t *testing.T) {
	payload := `{"entries": [{"speaker": "Ada", "text": "Hello"}]}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/recordings/7/transcript" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		fmt.Fprint(w, payload)
	}))
	defer server.Close()

	raw, err := testClient(server.URL).GetTranscript(context.Background(), 7)
	if err != nil {
		t.Fatalf("GetTranscript failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("Raw transcript is not valid JSON: %v", err)
	}
	if _, ok := decoded["entries"]; !ok {
		t.Error("Expected entries key to survive untouched")
	}
}

func TestGetMeetingDetailCollectsWarnings(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/transcript"):
			fmt.Fprint(w, `{"entries": []}`)
		case strings.HasSuffix(r.URL.Path, "/summary"):
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"message": "no summary"}`)
		case strings.HasSuffix(r.URL.Path, "/action_items"):
			fmt.Fprint(w, `[{"description": "Follow up", "completed": false}]`)
		}
	}))
	defer server.Close()

	meeting := &models.Meeting{RecordingID: 9, Title: "Weekly"}
	opts := models.ExportOptions{Transcript: true, Summary: true, ActionItems: true}

	detail, warnings := testClient(server.URL).GetMeetingDetail(context.Background(), meeting, opts)

	if detail.Transcript == nil {
		t.Error("Expected transcript to be fetched")
	}
	if detail.Summary != nil {
		t.Error("Expected summary to be missing")
	}
	if len(detail.ActionItems) != 1 {
		t.Errorf("Expected 1 action item, got %d", len(detail.ActionItems))
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "summary") {
		t.Errorf("Expected a summary warning, got %v", warnings)
	}
}
