package fathom

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"

	"github.com/fathomarr/fathomarr/internal/models"
)

// meetingsPage represents one page of the paginated meetings listing
type meetingsPage struct {
	Items      []models.Meeting `json:"items"`
	NextCursor string           `json:"next_cursor"`
}

// ListMeetings fetches all meetings, following pagination cursors until
// exhausted, and returns them sorted newest first.
func (c *Client) ListMeetings(ctx context.Context) ([]models.Meeting, error) {
	var all []models.Meeting
	cursor := ""

	for {
		params := url.Values{}
		if cursor != "" {
			params.Set("cursor", cursor)
		}

		var page meetingsPage
		if err := c.doRequest(ctx, "/meetings", params, &page); err != nil {
			return nil, err
		}

		all = append(all, page.Items...)

		if page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}

	// Timestamps are ISO 8601, so lexicographic order is chronological
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].CreatedAt > all[j].CreatedAt
	})

	c.logger.WithField("count", len(all)).Debug("Fetched meetings from Fathom API")

	return all, nil
}

// GetTranscript fetches the transcript for a recording. The payload is kept
// raw because its shape varies between recordings.
func (c *Client) GetTranscript(ctx context.Context, recordingID int64) (json.RawMessage, error) {
	var transcript json.RawMessage
	path := fmt.Sprintf("/recordings/%d/transcript", recordingID)
	if err := c.doRequest(ctx, path, nil, &transcript); err != nil {
		return nil, err
	}
	return transcript, nil
}

// GetSummary fetches the summary for a recording
func (c *Client) GetSummary(ctx context.Context, recordingID int64) (*models.Summary, error) {
	var summary models.Summary
	path := fmt.Sprintf("/recordings/%d/summary", recordingID)
	if err := c.doRequest(ctx, path, nil, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// GetActionItems fetches the action items for a recording
func (c *Client) GetActionItems(ctx context.Context, recordingID int64) ([]models.ActionItem, error) {
	var items []models.ActionItem
	path := fmt.Sprintf("/recordings/%d/action_items", recordingID)
	if err := c.doRequest(ctx, path, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// GetMeetingDetail assembles a meeting's artifacts according to the export
// options. Artifact fetch failures do not fail the whole detail; they are
// reported back so the caller can surface per-artifact warnings.
func (c *Client) GetMeetingDetail(ctx context.Context, meeting *models.Meeting, opts models.ExportOptions) (*models.MeetingDetail, []string) {
	detail := &models.MeetingDetail{Meeting: meeting}
	var warnings []string

	if opts.Transcript {
		transcript, err := c.GetTranscript(ctx, meeting.RecordingID)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("transcript: %v", err))
		} else {
			detail.Transcript = transcript
		}
	}

	if opts.Summary {
		summary, err := c.GetSummary(ctx, meeting.RecordingID)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("summary: %v", err))
		} else {
			detail.Summary = summary
		}
	}

	if opts.ActionItems {
		items, err := c.GetActionItems(ctx, meeting.RecordingID)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("action items: %v", err))
		} else {
			detail.ActionItems = items
		}
	}

	return detail, warnings
}
