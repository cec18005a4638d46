package usecase

import (
	"context"
	"log/slog"
	"time"

	"truthtracker/internal/ports"
)

// Scheduler wires the timer-driven invoker with the sync orchestrators.
type Scheduler struct {
	driver    ports.Scheduler
	promises  *PromiseSync
	incidents *IncidentSync
	logger    *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring sync runs.
func NewScheduler(driver ports.Scheduler, promises *PromiseSync, incidents *IncidentSync, log *slog.Logger) *Scheduler {
	return &Scheduler{driver: driver, promises: promises, incidents: incidents, logger: log}
}

// Start registers the sync runs with the provided driver. Pipelines run one
// after another; each writes its own run summary.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	job := func(trigger time.Time) {
		if s.logger != nil {
			s.logger.Info("scheduled sync triggered", "at", trigger.Format(time.RFC3339))
		}
		if s.promises != nil {
			s.promises.Sync(ctx)
		}
		if s.incidents != nil {
			s.incidents.Sync(ctx)
		}
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying driver.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}
	return s.driver.Stop(ctx)
}
