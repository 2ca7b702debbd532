package repositories

import (
	"context"
	"time"

	"github.com/stepik-tools/sync-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type SyncRunFilters struct {
	Status    *models.SyncRunStatus `json:"status"`
	CourseID  *string               `json:"course_id"`
	DateFrom  *time.Time            `json:"date_from"`
	DateTo    *time.Time            `json:"date_to"`
	Limit     int                   `json:"limit"`
	Offset    int                   `json:"offset"`
	SortOrder string                `json:"sort_order"` // "asc", "desc"
}

// ===== REPOSITORY INTERFACES =====

// SyncRunRepository persists run history. A nil repository is a valid
// configuration: history recording is optional and the orchestrator treats
// persistence failures as log-and-continue, never as run failures.
type SyncRunRepository interface {
	Create(ctx context.Context, run *models.SyncRun) error
	Update(ctx context.Context, run *models.SyncRun) error
	GetByRunID(ctx context.Context, runID string) (*models.SyncRun, error)
	List(ctx context.Context, filters SyncRunFilters) ([]models.SyncRun, error)
}
