package progress

import (
	"sync"

	"github.com/google/uuid"
)

// EventType classifies a progress event
type EventType string

const (
	TypeProgress  EventType = "progress"
	TypeStatus    EventType = "status"
	TypeWarning   EventType = "warning"
	TypeError     EventType = "error"
	TypeComplete  EventType = "complete"
	TypeKeepalive EventType = "keepalive"
)

// Event is one update on an export job's progress stream
type Event struct {
	Type    EventType `json:"type"`
	Message string    `json:"message,omitempty"`
	Current int       `json:"current,omitempty"`
	Total   int       `json:"total,omitempty"`
	Folder  string    `json:"folder,omitempty"`
}

// Terminal reports whether this event ends the stream
func (e Event) Terminal() bool {
	return e.Type == TypeComplete || e.Type == TypeError
}

// Hub tracks the progress channel for each running export job
type Hub struct {
	mu   sync.Mutex
	jobs map[string]chan Event
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{jobs: make(map[string]chan Event)}
}

// Create registers a new job and returns its id and event channel. The
// channel is buffered so a slow or absent subscriber does not stall the
// export worker.
func (h *Hub) Create() (string, chan Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := uuid.NewString()
	ch := make(chan Event, 256)
	h.jobs[id] = ch
	return id, ch
}

// Get returns the event channel for a job
func (h *Hub) Get(id string) (chan Event, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch, ok := h.jobs[id]
	return ch, ok
}

// Remove forgets a finished job
func (h *Hub) Remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.jobs, id)
}
