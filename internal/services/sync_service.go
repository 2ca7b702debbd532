package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/stepik-tools/sync-service/internal/cache"
	"github.com/stepik-tools/sync-service/internal/events"
	"github.com/stepik-tools/sync-service/internal/models"
	"github.com/stepik-tools/sync-service/internal/repositories"
	"github.com/stepik-tools/sync-service/internal/sheets"
	"github.com/stepik-tools/sync-service/internal/utils"
)

const latestResultKey = "sync:latest_result"

// CourseScanner builds the course structure snapshot for a run.
type CourseScanner interface {
	ScanCourse(ctx context.Context, courseID string) (*models.CourseStructure, error)
}

// UserResolver computes the set of users that solved a step.
type UserResolver interface {
	SuccessfulUsers(ctx context.Context, stepID int64) (models.UserSet, error)
}

// SyncService runs one full completion-matrix sync per call.
type SyncService interface {
	// Sync executes a run end to end. Remote failures abort the run before
	// any sheet write; unresolvable task-code columns are skipped and
	// reported in the result.
	Sync(ctx context.Context, trigger string) (*SyncResult, error)

	// LatestResult returns the most recent run report, or nil when none is
	// available.
	LatestResult(ctx context.Context) (*SyncResult, error)
}

// ColumnError describes one skipped task-code column.
type ColumnError struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

// SyncResult is the report of one run.
type SyncResult struct {
	RunID          string               `json:"run_id"`
	CourseID       string               `json:"course_id"`
	Trigger        string               `json:"trigger"`
	Status         models.SyncRunStatus `json:"status"`
	TaskColumns    int                  `json:"task_columns"`
	SkippedColumns int                  `json:"skipped_columns"`
	Students       int                  `json:"students"`
	CellsWritten   int                  `json:"cells_written"`
	ColumnErrors   []ColumnError        `json:"column_errors,omitempty"`
	Error          string               `json:"error,omitempty"`
	StartedAt      time.Time            `json:"started_at"`
	DurationMS     int64                `json:"duration_ms"`
}

type SyncServiceConfig struct {
	CourseID string
	// ResultTTL bounds how long the latest report stays readable via the
	// status endpoint. Zero means keep until overwritten.
	ResultTTL time.Duration
}

type syncService struct {
	scanner   CourseScanner
	resolver  UserResolver
	sheet     sheets.Sheet
	publisher events.EventPublisher
	runs      repositories.SyncRunRepository // optional, may be nil
	cache     cache.CacheService             // optional, may be nil
	logger    utils.Logger
	config    SyncServiceConfig
	oplog     *ServiceLogger
}

func NewSyncService(
	scanner CourseScanner,
	resolver UserResolver,
	sheet sheets.Sheet,
	publisher events.EventPublisher,
	runs repositories.SyncRunRepository,
	cacheService cache.CacheService,
	logger utils.Logger,
	config SyncServiceConfig,
) SyncService {
	return &syncService{
		scanner:   scanner,
		resolver:  resolver,
		sheet:     sheet,
		publisher: publisher,
		runs:      runs,
		cache:     cacheService,
		logger:    logger,
		config:    config,
		oplog: NewServiceLogger(utils.ToSlogLogger(logger), LogConfig{
			Service:   "sync-service",
			Component: "sync",
		}),
	}
}

func (s *syncService) Sync(ctx context.Context, trigger string) (*SyncResult, error) {
	started := time.Now()
	result := &SyncResult{
		RunID:     uuid.NewString(),
		CourseID:  s.config.CourseID,
		Trigger:   trigger,
		Status:    models.SyncRunRunning,
		StartedAt: started,
	}

	s.logger.Info("sync run started",
		"run_id", result.RunID,
		"course_id", result.CourseID,
		"trigger", trigger)

	run := s.recordStart(ctx, result)

	err := s.execute(ctx, result)
	result.DurationMS = time.Since(started).Milliseconds()
	s.oplog.LogOperation(ctx, "sync", result.RunID, time.Since(started), err)

	if err != nil {
		result.Status = models.SyncRunFailed
		result.Error = err.Error()
		s.finish(ctx, result, run)
		return result, fmt.Errorf("sync run %s: %w", result.RunID, err)
	}

	result.Status = models.SyncRunCompleted
	s.finish(ctx, result, run)
	return result, nil
}

// execute performs the actual pass and fills the result counters.
func (s *syncService) execute(ctx context.Context, result *SyncResult) error {
	structure, err := s.scanner.ScanCourse(ctx, s.config.CourseID)
	if err != nil {
		return err
	}

	codes, err := s.sheet.TaskCodes()
	if err != nil {
		return fmt.Errorf("read task codes: %w", err)
	}
	students, err := s.sheet.Students()
	if err != nil {
		return fmt.Errorf("read students: %w", err)
	}
	if len(codes) == 0 || len(students) == 0 {
		return fmt.Errorf("%w: %d task codes, %d students", ErrSheetEmpty, len(codes), len(students))
	}

	result.TaskColumns = len(codes)
	result.Students = len(students)

	updates := make([]sheets.CellUpdate, 0, len(codes)*len(students))
	for _, column := range codes {
		stepID, err := ResolveTaskCode(column.Code, structure)
		if err != nil {
			// A malformed header cell must not block the whole sheet.
			s.logger.Warn("skipping task column",
				"run_id", result.RunID,
				"code", column.Code,
				"error", err)
			result.SkippedColumns++
			result.ColumnErrors = append(result.ColumnErrors, ColumnError{
				Code:  column.Code,
				Error: err.Error(),
			})
			continue
		}

		solved, err := s.resolver.SuccessfulUsers(ctx, stepID)
		if err != nil {
			return fmt.Errorf("task %s: %w", column.Code, err)
		}

		for _, student := range students {
			flag := 0
			if solved.Contains(student.UserID) {
				flag = 1
			}
			updates = append(updates, sheets.CellUpdate{
				Row:   student.Row,
				Col:   column.Col,
				Value: flag,
			})
		}
	}

	// One batch write per run: the sheet never sees a half-finished matrix.
	if err := s.sheet.BatchUpdate(updates); err != nil {
		return fmt.Errorf("batch update: %w", err)
	}
	result.CellsWritten = len(updates)

	return nil
}

func (s *syncService) LatestResult(ctx context.Context) (*SyncResult, error) {
	if s.cache == nil {
		return nil, nil
	}
	var result SyncResult
	if err := s.cache.Get(ctx, latestResultKey, &result); err != nil {
		if err == cache.ErrCacheMiss {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

// ===== RUN BOOKKEEPING =====
//
// History, events and the cached report are best-effort: their failures are
// logged but never fail a run that already synced (or decided to abort).

func (s *syncService) recordStart(ctx context.Context, result *SyncResult) *models.SyncRun {
	if s.runs == nil {
		return nil
	}
	run := &models.SyncRun{
		RunID:     result.RunID,
		CourseID:  result.CourseID,
		Status:    models.SyncRunRunning,
		Trigger:   result.Trigger,
		StartedAt: result.StartedAt,
	}
	if err := s.runs.Create(ctx, run); err != nil {
		s.logger.LogError(err, "failed to record sync run start", "run_id", result.RunID)
		return nil
	}
	return run
}

func (s *syncService) finish(ctx context.Context, result *SyncResult, run *models.SyncRun) {
	s.publishEvent(ctx, result)
	s.recordFinish(ctx, result, run)
	s.storeResult(ctx, result)

	if result.Status == models.SyncRunCompleted {
		s.logger.Info("sync run completed",
			"run_id", result.RunID,
			"task_columns", result.TaskColumns,
			"skipped_columns", result.SkippedColumns,
			"students", result.Students,
			"cells_written", result.CellsWritten,
			"duration_ms", result.DurationMS)
	}
}

func (s *syncService) publishEvent(ctx context.Context, result *SyncResult) {
	var event *events.SyncEvent
	if result.Status == models.SyncRunCompleted {
		event = events.NewSyncEvent(events.EventSyncCompleted, events.SyncCompletedEvent{
			RunID:          result.RunID,
			CourseID:       result.CourseID,
			TaskColumns:    result.TaskColumns,
			SkippedColumns: result.SkippedColumns,
			Students:       result.Students,
			CellsWritten:   result.CellsWritten,
			DurationMS:     result.DurationMS,
		})
	} else {
		event = events.NewSyncEvent(events.EventSyncFailed, events.SyncFailedEvent{
			RunID:      result.RunID,
			CourseID:   result.CourseID,
			Error:      result.Error,
			DurationMS: result.DurationMS,
		})
	}
	if err := s.publisher.PublishSyncEvent(ctx, event); err != nil {
		s.logger.LogError(err, "failed to publish sync event", "run_id", result.RunID)
	}
}

func (s *syncService) recordFinish(ctx context.Context, result *SyncResult, run *models.SyncRun) {
	if s.runs == nil || run == nil {
		return
	}
	now := time.Now()
	run.Status = result.Status
	run.TaskColumns = result.TaskColumns
	run.SkippedColumns = result.SkippedColumns
	run.Students = result.Students
	run.CellsWritten = result.CellsWritten
	run.Error = result.Error
	run.DurationMS = result.DurationMS
	run.FinishedAt = &now
	if len(result.ColumnErrors) > 0 {
		if detail, err := json.Marshal(result.ColumnErrors); err == nil {
			run.ColumnErrors = datatypes.JSON(detail)
		}
	}
	if err := s.runs.Update(ctx, run); err != nil {
		s.logger.LogError(err, "failed to record sync run finish", "run_id", result.RunID)
	}
}

func (s *syncService) storeResult(ctx context.Context, result *SyncResult) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, latestResultKey, result, s.config.ResultTTL); err != nil {
		s.logger.LogError(err, "failed to cache sync result", "run_id", result.RunID)
	}
}
