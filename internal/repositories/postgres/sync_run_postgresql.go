package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/stepik-tools/sync-service/internal/models"
	"github.com/stepik-tools/sync-service/internal/repositories"
)

type SyncRunPostgreSQL struct {
	db *gorm.DB
}

func NewSyncRunPostgreSQL(db *gorm.DB) repositories.SyncRunRepository {
	return &SyncRunPostgreSQL{db: db}
}

func (r SyncRunPostgreSQL) Create(ctx context.Context, run *models.SyncRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

func (r SyncRunPostgreSQL) Update(ctx context.Context, run *models.SyncRun) error {
	return r.db.WithContext(ctx).Save(run).Error
}

func (r SyncRunPostgreSQL) GetByRunID(ctx context.Context, runID string) (*models.SyncRun, error) {
	var run models.SyncRun
	if err := r.db.WithContext(ctx).Where("run_id = ?", runID).First(&run).Error; err != nil {
		return nil, err
	}
	return &run, nil
}

func (r SyncRunPostgreSQL) List(ctx context.Context, filters repositories.SyncRunFilters) ([]models.SyncRun, error) {
	var runs []models.SyncRun

	query := r.db.WithContext(ctx).Model(&models.SyncRun{})
	query = r.applyFilters(query, filters)

	if err := query.Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}

func (r SyncRunPostgreSQL) applyFilters(query *gorm.DB, filters repositories.SyncRunFilters) *gorm.DB {
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.CourseID != nil {
		query = query.Where("course_id = ?", *filters.CourseID)
	}
	if filters.DateFrom != nil {
		query = query.Where("started_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("started_at <= ?", *filters.DateTo)
	}

	order := "started_at DESC"
	if filters.SortOrder == "asc" {
		order = "started_at ASC"
	}
	query = query.Order(order)

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}
	return query
}
