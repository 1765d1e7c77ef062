package controllers

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fathomarr/fathomarr/internal/models"
	"github.com/fathomarr/fathomarr/internal/organizer"
	"github.com/fathomarr/fathomarr/internal/progress"
	"github.com/fathomarr/fathomarr/internal/settings"
)

// MeetingAPI is the slice of the Fathom API the export flow needs
type MeetingAPI interface {
	ListMeetings(ctx context.Context) ([]models.Meeting, error)
	GetMeetingDetail(ctx context.Context, meeting *models.Meeting, opts models.ExportOptions) (*models.MeetingDetail, []string)
}

// VideoDownloader saves a recording's video given its page URL
type VideoDownloader interface {
	Download(pageURL, outputFolder, filename string) error
}

// ExportController runs export jobs: it walks the selected meetings,
// fetches each one's artifacts, and writes them to disk while streaming
// progress events to the job's channel.
type ExportController struct {
	settings         *settings.Store
	hub              *progress.Hub
	newAPI           func(apiKey string) MeetingAPI
	video            VideoDownloader
	sessionAvailable func() bool
	closeBrowser     func() error
	itemDelay        time.Duration
	videoDelay       time.Duration
	logger           *logrus.Logger
}

// NewExportController creates the export controller
func NewExportController(
	store *settings.Store,
	hub *progress.Hub,
	newAPI func(apiKey string) MeetingAPI,
	video VideoDownloader,
	sessionAvailable func() bool,
	closeBrowser func() error,
	itemDelay time.Duration,
	videoDelay time.Duration,
	logger *logrus.Logger,
) *ExportController {
	return &ExportController{
		settings:         store,
		hub:              hub,
		newAPI:           newAPI,
		video:            video,
		sessionAvailable: sessionAvailable,
		closeBrowser:     closeBrowser,
		itemDelay:        itemDelay,
		videoDelay:       videoDelay,
		logger:           logger,
	}
}

// Start validates the request and launches the export in the background,
// returning the job id for progress streaming.
func (c *ExportController) Start(req models.ExportRequest) (string, error) {
	if len(req.MeetingIDs) == 0 {
		return "", fmt.Errorf("no meetings selected")
	}

	cfg, err := c.settings.Load()
	if err != nil {
		return "", fmt.Errorf("failed to load settings: %w", err)
	}
	if cfg.APIKey == "" {
		return "", fmt.Errorf("API key not configured")
	}

	jobID, events := c.hub.Create()

	go c.run(jobID, events, req, cfg.APIKey)

	return jobID, nil
}

// emit delivers a progress event without ever blocking the worker. When no
// subscriber is draining the channel and its buffer fills up, events are
// dropped; the export itself must keep moving.
func (c *ExportController) emit(events chan progress.Event, ev progress.Event) {
	select {
	case events <- ev:
	default:
		c.logger.WithField("type", ev.Type).Debug("Dropped progress event, no subscriber draining the channel")
	}
}

func (c *ExportController) run(jobID string, events chan progress.Event, req models.ExportRequest, apiKey string) {
	ctx := context.Background()

	// The worker owns the job's lifetime; once it is done the hub entry is
	// gone even if no client ever subscribed
	defer c.hub.Remove(jobID)

	downloadDir := c.settings.DownloadDir()

	org, err := organizer.NewOrganizer(downloadDir)
	if err != nil {
		c.emit(events, progress.Event{Type: progress.TypeError, Message: fmt.Sprintf("Could not prepare download directory: %v", err)})
		return
	}

	if req.Options.Video {
		if !c.sessionAvailable() {
			c.emit(events, progress.Event{Type: progress.TypeError, Message: "Video export requires a Google sign-in. Use the Sign in with Google button first."})
			return
		}
		if len(req.MeetingIDs) > 5 {
			c.emit(events, progress.Event{Type: progress.TypeStatus, Message: fmt.Sprintf("Exporting videos for %d meetings, this will take a while.", len(req.MeetingIDs))})
		}

		defer func() {
			if err := c.closeBrowser(); err != nil {
				c.logger.WithError(err).Warn("Failed to close browser after export")
			}
		}()
	}

	api := c.newAPI(apiKey)

	c.emit(events, progress.Event{Type: progress.TypeStatus, Message: "Fetching meeting list..."})

	meetings, err := api.ListMeetings(ctx)
	if err != nil {
		c.emit(events, progress.Event{Type: progress.TypeError, Message: fmt.Sprintf("Could not fetch meetings: %v", err)})
		return
	}

	byID := make(map[int64]*models.Meeting, len(meetings))
	for i := range meetings {
		byID[meetings[i].RecordingID] = &meetings[i]
	}

	total := len(req.MeetingIDs)
	for i, id := range req.MeetingIDs {
		c.emit(events, progress.Event{
			Type:    progress.TypeProgress,
			Message: fmt.Sprintf("Processing meeting %d of %d...", i+1, total),
			Current: i + 1,
			Total:   total,
		})

		meeting, ok := byID[id]
		if !ok {
			c.emit(events, progress.Event{Type: progress.TypeWarning, Message: fmt.Sprintf("Meeting %d not found, skipping", id)})
			continue
		}

		c.exportMeeting(ctx, events, api, org, meeting, req.Options)

		if i < total-1 && c.itemDelay > 0 {
			time.Sleep(c.itemDelay)
		}
	}

	c.emit(events, progress.Event{
		Type:    progress.TypeComplete,
		Message: fmt.Sprintf("Export complete! %d meetings processed.", total),
		Folder:  downloadDir,
	})
}

// exportMeeting saves one meeting's artifacts. A panic or failure in one
// meeting never aborts the rest of the batch.
func (c *ExportController) exportMeeting(ctx context.Context, events chan progress.Event, api MeetingAPI, org *organizer.Organizer, meeting *models.Meeting, opts models.ExportOptions) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.WithField("recording_id", meeting.RecordingID).Errorf("Panic while exporting meeting: %v", r)
			c.emit(events, progress.Event{Type: progress.TypeWarning, Message: fmt.Sprintf("Failed to export %s: %v", meeting.DisplayTitle(), r)})
		}
	}()

	detail, warnings := api.GetMeetingDetail(ctx, meeting, opts)
	for _, w := range warnings {
		c.emit(events, progress.Event{Type: progress.TypeWarning, Message: fmt.Sprintf("%s: %s", meeting.DisplayTitle(), w)})
	}

	folder, err := org.MeetingFolder(meeting)
	if err != nil {
		c.emit(events, progress.Event{Type: progress.TypeWarning, Message: fmt.Sprintf("Could not create folder for %s: %v", meeting.DisplayTitle(), err)})
		return
	}

	if err := org.SaveMetadata(folder, meeting); err != nil {
		c.emit(events, progress.Event{Type: progress.TypeWarning, Message: fmt.Sprintf("Could not save metadata for %s: %v", meeting.DisplayTitle(), err)})
	}

	if opts.Transcript && detail.Transcript != nil {
		c.emit(events, progress.Event{Type: progress.TypeStatus, Message: "Saving transcript..."})
		if err := org.SaveTranscript(folder, detail.Transcript); err != nil {
			c.emit(events, progress.Event{Type: progress.TypeWarning, Message: fmt.Sprintf("Could not save transcript: %v", err)})
		}
	}

	if opts.Summary && detail.Summary != nil {
		c.emit(events, progress.Event{Type: progress.TypeStatus, Message: "Saving summary..."})
		if err := org.SaveSummary(folder, detail.Summary); err != nil {
			c.emit(events, progress.Event{Type: progress.TypeWarning, Message: fmt.Sprintf("Could not save summary: %v", err)})
		}
	}

	if opts.ActionItems && detail.ActionItems != nil {
		c.emit(events, progress.Event{Type: progress.TypeStatus, Message: "Saving action items..."})
		if err := org.SaveActionItems(folder, detail.ActionItems); err != nil {
			c.emit(events, progress.Event{Type: progress.TypeWarning, Message: fmt.Sprintf("Could not save action items: %v", err)})
		}
	}

	if opts.Video {
		c.emit(events, progress.Event{Type: progress.TypeStatus, Message: "Downloading video (this may take a few minutes)..."})
		if err := c.video.Download(meeting.URL, folder, "video.mp4"); err != nil {
			c.emit(events, progress.Event{Type: progress.TypeWarning, Message: fmt.Sprintf("Video download failed: %v", err)})
		} else {
			c.emit(events, progress.Event{Type: progress.TypeStatus, Message: "Video downloaded successfully"})
		}
		if c.videoDelay > 0 {
			time.Sleep(c.videoDelay)
		}
	}
}
