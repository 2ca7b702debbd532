// Package scheduler fires sync runs on a cron interval and serializes them
// through a single worker, so two runs can never write the sheet at the same
// time. A trigger arriving while a run is active is queued; once one trigger
// is already waiting, further ones are coalesced into it - a full-recompute
// job gains nothing from a deeper queue.
package scheduler

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/robfig/cron/v3"

	"github.com/stepik-tools/sync-service/internal/services"
	"github.com/stepik-tools/sync-service/internal/utils"
)

const (
	TriggerSchedule = "schedule"
	TriggerManual   = "manual"
	TriggerStartup  = "startup"
)

type Scheduler struct {
	syncService services.SyncService
	logger      utils.Logger

	cron    *cron.Cron
	queue   chan string
	done    chan struct{}
	wg      sync.WaitGroup
	running atomic.Bool
}

func New(syncService services.SyncService, logger utils.Logger) *Scheduler {
	return &Scheduler{
		syncService: syncService,
		logger:      logger,
		cron:        cron.New(),
		queue:       make(chan string, 1),
		done:        make(chan struct{}),
	}
}

// Start launches the worker and registers the cron entry. An immediate
// startup run is queued before the first scheduled tick.
func (s *Scheduler) Start(cronSpec string) error {
	s.wg.Add(1)
	go s.worker()

	if _, err := s.cron.AddFunc(cronSpec, func() {
		s.Trigger(TriggerSchedule)
	}); err != nil {
		return err
	}
	s.cron.Start()

	s.Trigger(TriggerStartup)
	s.logger.Info("scheduler started", "cron", cronSpec)
	return nil
}

// Trigger queues a run. It reports false when the trigger was coalesced into
// an already-pending one.
func (s *Scheduler) Trigger(trigger string) bool {
	select {
	case s.queue <- trigger:
		return true
	default:
		s.logger.Debug("sync already pending, trigger coalesced", "trigger", trigger)
		return false
	}
}

// IsRunning reports whether a run is currently executing.
func (s *Scheduler) IsRunning() bool {
	return s.running.Load()
}

// Stop halts the cron entries and waits for an in-flight run to finish, up
// to the context deadline.
func (s *Scheduler) Stop(ctx context.Context) error {
	cronCtx := s.cron.Stop()
	<-cronCtx.Done()

	close(s.done)

	finished := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(finished)
	}()
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) worker() {
	defer s.wg.Done()
	for {
		select {
		case <-s.done:
			return
		case trigger := <-s.queue:
			s.running.Store(true)
			if _, err := s.syncService.Sync(context.Background(), trigger); err != nil {
				// Already logged with run context by the service; the next
				// trigger is the retry.
				s.logger.Debug("sync run failed", "trigger", trigger)
			}
			s.running.Store(false)
		}
	}
}
