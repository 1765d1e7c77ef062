package models

import "encoding/json"

// Contact represents a person attached to a meeting (host or invitee)
type Contact struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// Meeting represents a recorded meeting as returned by the Fathom API
type Meeting struct {
	RecordingID              int64     `json:"recording_id"`
	Title                    string    `json:"title"`
	MeetingTitle             string    `json:"meeting_title,omitempty"`
	URL                      string    `json:"url"`
	ShareURL                 string    `json:"share_url,omitempty"`
	CreatedAt                string    `json:"created_at"`
	RecordingStartTime       string    `json:"recording_start_time,omitempty"`
	RecordingEndTime         string    `json:"recording_end_time,omitempty"`
	RecordedBy               *Contact  `json:"recorded_by,omitempty"`
	CalendarInvitees         []Contact `json:"calendar_invitees,omitempty"`
	CalendarInviteesDomains  string    `json:"calendar_invitees_domains_type,omitempty"`
	TranscriptLanguage       string    `json:"transcript_language,omitempty"`
}

// DisplayTitle returns the best available title for folder and UI naming
func (m *Meeting) DisplayTitle() string {
	if m.Title != "" {
		return m.Title
	}
	if m.MeetingTitle != "" {
		return m.MeetingTitle
	}
	return "Untitled Meeting"
}

// Summary represents an AI-generated meeting summary
type Summary struct {
	TemplateName      string `json:"template_name"`
	MarkdownFormatted string `json:"markdown_formatted"`
}

// ActionItem represents a single action item extracted from a recording
type ActionItem struct {
	Description          string   `json:"description"`
	Completed            bool     `json:"completed"`
	Assignee             *Contact `json:"assignee,omitempty"`
	RecordingTimestamp   string   `json:"recording_timestamp,omitempty"`
	RecordingPlaybackURL string   `json:"recording_playback_url,omitempty"`
}

// MeetingDetail bundles a meeting with the artifacts fetched for it.
// Transcript is kept as raw JSON because the API has shipped several
// shapes for it; the organizer renders it tolerantly.
type MeetingDetail struct {
	Meeting     *Meeting
	Transcript  json.RawMessage
	Summary     *Summary
	ActionItems []ActionItem
}
