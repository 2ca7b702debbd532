package models

import (
	"time"

	"gorm.io/datatypes"
)

type SyncRunStatus string

const (
	SyncRunRunning   SyncRunStatus = "running"
	SyncRunCompleted SyncRunStatus = "completed"
	SyncRunFailed    SyncRunStatus = "failed"
)

// SyncRun is the persisted audit record of one sync pass. It records run
// outcomes only, never the synced matrix itself - the spreadsheet remains the
// single source of synced data.
type SyncRun struct {
	ID       uint          `json:"id" gorm:"primaryKey"`
	RunID    string        `json:"run_id" gorm:"not null;size:36;uniqueIndex"`
	CourseID string        `json:"course_id" gorm:"not null;size:32;index"`
	Status   SyncRunStatus `json:"status" gorm:"not null;size:16;index"`
	Trigger  string        `json:"trigger" gorm:"size:16"` // "schedule", "manual", "startup"

	// Counters for the completed pass
	TaskColumns    int `json:"task_columns"`
	SkippedColumns int `json:"skipped_columns"`
	Students       int `json:"students"`
	CellsWritten   int `json:"cells_written"`

	// Per-column diagnostics (skipped codes and their resolution errors)
	ColumnErrors datatypes.JSON `json:"column_errors" gorm:"type:jsonb"`

	Error      string     `json:"error,omitempty" gorm:"type:text"`
	DurationMS int64      `json:"duration_ms"`
	StartedAt  time.Time  `json:"started_at" gorm:"not null;index"`
	FinishedAt *time.Time `json:"finished_at"`
	CreatedAt  time.Time  `json:"created_at"`
}
