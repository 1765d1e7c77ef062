package models

// ExportOptions selects which artifacts to export for each meeting
type ExportOptions struct {
	Transcript  bool `json:"transcript"`
	Summary     bool `json:"summary"`
	ActionItems bool `json:"action_items"`
	Video       bool `json:"video"`
}

// ExportRequest is the body of an export job submission
type ExportRequest struct {
	MeetingIDs []int64       `json:"meeting_ids"`
	Options    ExportOptions `json:"options"`
}
