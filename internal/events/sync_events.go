package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents different types of sync lifecycle events
type EventType string

const (
	EventSyncCompleted EventType = "sync.completed"
	EventSyncFailed    EventType = "sync.failed"
)

// SyncEvent is the envelope for all sync lifecycle events
type SyncEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// SyncCompletedEvent is published after a successful batch write
type SyncCompletedEvent struct {
	RunID          string `json:"run_id"`
	CourseID       string `json:"course_id"`
	TaskColumns    int    `json:"task_columns"`
	SkippedColumns int    `json:"skipped_columns"`
	Students       int    `json:"students"`
	CellsWritten   int    `json:"cells_written"`
	DurationMS     int64  `json:"duration_ms"`
}

// SyncFailedEvent is published when a run aborts before its batch write
type SyncFailedEvent struct {
	RunID      string `json:"run_id"`
	CourseID   string `json:"course_id"`
	Error      string `json:"error"`
	DurationMS int64  `json:"duration_ms"`
}

// NewSyncEvent wraps a payload in the standard envelope.
func NewSyncEvent(eventType EventType, data interface{}) *SyncEvent {
	return &SyncEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Source:    "sync-service",
		Version:   "1.0",
		Data:      data,
	}
}
