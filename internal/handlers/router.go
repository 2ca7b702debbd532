package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/stepik-tools/sync-service/internal/repositories"
	"github.com/stepik-tools/sync-service/internal/scheduler"
	"github.com/stepik-tools/sync-service/internal/services"
	"github.com/stepik-tools/sync-service/internal/utils"
)

type HandlerManager struct {
	syncHandler *SyncHandler
}

func NewHandlerManager(
	syncService services.SyncService,
	sched *scheduler.Scheduler,
	runs repositories.SyncRunRepository,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		syncHandler: NewSyncHandler(syncService, sched, runs, logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// Health check endpoint
	router.GET("/health", HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		sync := v1.Group("/sync")
		{
			sync.POST("", hm.syncHandler.TriggerSync)
			sync.GET("/status", hm.syncHandler.GetSyncStatus)
			sync.GET("/runs", hm.syncHandler.ListSyncRuns)
			sync.GET("/runs/:run_id", hm.syncHandler.GetSyncRun)
		}
	}
}
