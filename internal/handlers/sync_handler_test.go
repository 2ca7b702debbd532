package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/stepik-tools/sync-service/internal/models"
	"github.com/stepik-tools/sync-service/internal/repositories"
	"github.com/stepik-tools/sync-service/internal/scheduler"
	"github.com/stepik-tools/sync-service/internal/services"
	"github.com/stepik-tools/sync-service/internal/utils"
)

type stubSyncService struct {
	latest *services.SyncResult
	err    error
}

func (s *stubSyncService) Sync(ctx context.Context, trigger string) (*services.SyncResult, error) {
	return &services.SyncResult{Trigger: trigger}, nil
}

func (s *stubSyncService) LatestResult(ctx context.Context) (*services.SyncResult, error) {
	return s.latest, s.err
}

type stubRunRepository struct {
	runs []models.SyncRun
	err  error
}

func (r *stubRunRepository) Create(ctx context.Context, run *models.SyncRun) error { return nil }
func (r *stubRunRepository) Update(ctx context.Context, run *models.SyncRun) error { return nil }

func (r *stubRunRepository) GetByRunID(ctx context.Context, runID string) (*models.SyncRun, error) {
	if r.err != nil {
		return nil, r.err
	}
	for i := range r.runs {
		if r.runs[i].RunID == runID {
			return &r.runs[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubRunRepository) List(ctx context.Context, filters repositories.SyncRunFilters) ([]models.SyncRun, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.runs, nil
}

func setupRouter(svc services.SyncService, runs repositories.SyncRunRepository) (*gin.Engine, *scheduler.Scheduler) {
	gin.SetMode(gin.TestMode)
	logger := utils.NewDevelopmentLogger()

	// Not started: triggers land in the queue, which is what the handler
	// contract is about.
	sched := scheduler.New(svc, logger)

	router := gin.New()
	NewHandlerManager(svc, sched, runs, logger).SetupRoutes(router)
	return router, sched
}

func TestHealthCheck(t *testing.T) {
	router, _ := setupRouter(&stubSyncService{}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "sync-service")
}

func TestTriggerSync(t *testing.T) {
	router, _ := setupRouter(&stubSyncService{}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sync", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusAccepted, w.Code)

	// The queue already holds a pending trigger, so the next one conflicts
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/sync", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestGetSyncStatus_NoRunsYet(t *testing.T) {
	router, _ := setupRouter(&stubSyncService{}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/sync/status", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetSyncStatus(t *testing.T) {
	router, _ := setupRouter(&stubSyncService{latest: &services.SyncResult{
		RunID:        "run-1",
		CourseID:     "42",
		Status:       models.SyncRunCompleted,
		CellsWritten: 10,
	}}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/sync/status", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "run-1")
	assert.Contains(t, w.Body.String(), `"cells_written":10`)
}

func TestListSyncRuns(t *testing.T) {
	repo := &stubRunRepository{runs: []models.SyncRun{
		{RunID: "run-2", CourseID: "42", Status: models.SyncRunCompleted},
		{RunID: "run-1", CourseID: "42", Status: models.SyncRunFailed},
	}}
	router, _ := setupRouter(&stubSyncService{}, repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/sync/runs", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "run-2")
	assert.Contains(t, w.Body.String(), `"count":2`)
}

func TestListSyncRuns_InvalidLimit(t *testing.T) {
	router, _ := setupRouter(&stubSyncService{}, &stubRunRepository{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/sync/runs?limit=0", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListSyncRuns_HistoryDisabled(t *testing.T) {
	router, _ := setupRouter(&stubSyncService{}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/sync/runs", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetSyncRun(t *testing.T) {
	repo := &stubRunRepository{runs: []models.SyncRun{
		{RunID: "run-1", CourseID: "42", Status: models.SyncRunCompleted},
	}}
	router, _ := setupRouter(&stubSyncService{}, repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/sync/runs/run-1", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "run-1")

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/sync/runs/run-404", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
