package organizer

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
)

// SaveTranscript writes the raw transcript JSON and a readable text
// rendering. Transcript payloads vary between recordings, so rendering is
// tolerant: anything it cannot interpret still lands in the JSON file.
func (o *Organizer) SaveTranscript(folder string, raw json.RawMessage) error {
	if err := safeWrite(filepath.Join(folder, "transcript.json"), raw); err != nil {
		return err
	}

	text := renderTranscript(raw)
	if text == "" {
		return nil
	}
	return safeWrite(filepath.Join(folder, "transcript.txt"), []byte(text))
}

func renderTranscript(raw json.RawMessage) string {
	var payload interface{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ""
	}

	entries := transcriptEntries(payload)
	if entries == nil {
		return ""
	}

	var b strings.Builder
	for _, entry := range entries {
		switch e := entry.(type) {
		case string:
			b.WriteString(e)
			b.WriteString("\n")
		case map[string]interface{}:
			speaker := entrySpeaker(e)
			timestamp := entryString(e, "timestamp", "start_time", "time")
			text := entryString(e, "text", "content", "transcript")

			if timestamp != "" {
				fmt.Fprintf(&b, "[%s] ", timestamp)
			}
			if speaker != "" {
				fmt.Fprintf(&b, "%s:\n", speaker)
			}
			b.WriteString(text)
			b.WriteString("\n\n")
		}
	}

	return b.String()
}

// transcriptEntries digs the list of utterances out of the payload,
// whichever key the recording used for it.
func transcriptEntries(payload interface{}) []interface{} {
	switch p := payload.(type) {
	case []interface{}:
		return p
	case map[string]interface{}:
		for _, key := range []string{"entries", "segments", "transcript"} {
			if list, ok := p[key].([]interface{}); ok {
				return list
			}
		}
	}
	return nil
}

func entrySpeaker(entry map[string]interface{}) string {
	switch s := entry["speaker"].(type) {
	case string:
		return s
	case map[string]interface{}:
		for _, key := range []string{"display_name", "name"} {
			if name, ok := s[key].(string); ok && name != "" {
				return name
			}
		}
		return "Unknown"
	}
	return ""
}

func entryString(entry map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if v, ok := entry[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
