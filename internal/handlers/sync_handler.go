package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/stepik-tools/sync-service/internal/models"
	"github.com/stepik-tools/sync-service/internal/repositories"
	"github.com/stepik-tools/sync-service/internal/scheduler"
	"github.com/stepik-tools/sync-service/internal/services"
	"github.com/stepik-tools/sync-service/internal/utils"
)

// SyncHandler exposes the operational surface of the sync pipeline: manual
// triggering, visibility into the latest run and the persisted run history.
// It never runs a sync on the request goroutine; triggers go through the
// scheduler's queue so the one-run-at-a-time guarantee holds for manual runs
// too.
type SyncHandler struct {
	syncService services.SyncService
	scheduler   *scheduler.Scheduler
	runs        repositories.SyncRunRepository // optional, may be nil
	logger      utils.Logger
}

func NewSyncHandler(
	syncService services.SyncService,
	sched *scheduler.Scheduler,
	runs repositories.SyncRunRepository,
	logger utils.Logger,
) *SyncHandler {
	return &SyncHandler{
		syncService: syncService,
		scheduler:   sched,
		runs:        runs,
		logger:      logger,
	}
}

// TriggerSync queues a manual run. Responds 202 when queued and 409 when a
// run is already active with another trigger waiting behind it.
func (h *SyncHandler) TriggerSync(c *gin.Context) {
	if !h.scheduler.Trigger(scheduler.TriggerManual) {
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "a sync is already running and another is queued",
		})
		return
	}

	h.logger.Info("manual sync queued", "client_ip", c.ClientIP())
	c.JSON(http.StatusAccepted, SuccessResponse{
		Message: "sync queued",
	})
}

// GetSyncStatus returns the latest run report.
func (h *SyncHandler) GetSyncStatus(c *gin.Context) {
	result, err := h.syncService.LatestResult(c.Request.Context())
	if err != nil {
		h.logger.LogError(err, "failed to load latest sync result")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "failed to load latest sync result",
		})
		return
	}
	if result == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "no sync has completed yet",
		})
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "latest sync result",
		Data: gin.H{
			"result":  result,
			"running": h.scheduler.IsRunning(),
		},
	})
}

// ListSyncRuns returns persisted run history, newest first.
func (h *SyncHandler) ListSyncRuns(c *gin.Context) {
	if h.runs == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "run history is not enabled",
		})
		return
	}

	filters := repositories.SyncRunFilters{
		Limit:     20,
		SortOrder: "desc",
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > 100 {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "limit must be an integer between 1 and 100",
			})
			return
		}
		filters.Limit = limit
	}
	if raw := c.Query("status"); raw != "" {
		status := models.SyncRunStatus(raw)
		filters.Status = &status
	}

	runs, err := h.runs.List(c.Request.Context(), filters)
	if err != nil {
		h.logger.LogError(err, "failed to list sync runs")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "failed to list sync runs",
		})
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "sync run history",
		Data: gin.H{
			"runs":  runs,
			"count": len(runs),
		},
	})
}

// GetSyncRun returns one persisted run by its run id.
func (h *SyncHandler) GetSyncRun(c *gin.Context) {
	if h.runs == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "run history is not enabled",
		})
		return
	}

	runID := c.Param("run_id")
	run, err := h.runs.GetByRunID(c.Request.Context(), runID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Message: "sync run not found",
			})
			return
		}
		h.logger.LogError(err, "failed to load sync run", "run_id", runID)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "failed to load sync run",
		})
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "sync run",
		Data:    run,
	})
}
