// Package scheduler runs the periodic batch sync on a cron schedule and
// exposes a manual trigger for on-demand runs.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"datasprint/leaderboard/internal/syncer"
)

// BatchRunner executes one full sync batch.
type BatchRunner interface {
	SyncAll(ctx context.Context) (syncer.BatchResult, error)
}

// Scheduler manages the recurring leaderboard sync job.
type Scheduler struct {
	runner   BatchRunner
	spec     string
	location *time.Location

	mu      sync.Mutex
	cron    *cron.Cron
	running bool
}

// NewScheduler creates a scheduler that runs the batch per the cron spec in
// the given timezone.
func NewScheduler(runner BatchRunner, spec string, location *time.Location) *Scheduler {
	if location == nil {
		location = time.UTC
	}
	return &Scheduler{
		runner:   runner,
		spec:     spec,
		location: location,
	}
}

// Start registers the cron job and begins scheduling. Calling Start on an
// already running scheduler is a no-op.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		log.Warn().Msg("Scheduler already running, ignoring start")
		return nil
	}

	c := cron.New(cron.WithLocation(s.location))
	if _, err := c.AddFunc(s.spec, func() {
		log.Info().Msg("Running scheduled leaderboard sync")
		if _, err := s.runner.SyncAll(ctx); err != nil {
			log.Error().Err(err).Msg("Scheduled sync failed")
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule sync job: %w", err)
	}

	c.Start()
	s.cron = c
	s.running = true

	log.Info().
		Str("schedule", s.spec).
		Str("timezone", s.location.String()).
		Msg("Leaderboard sync scheduled")

	return nil
}

// Stop halts scheduling. Jobs already in flight run to completion.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.cron.Stop()
	s.cron = nil
	s.running = false
	log.Info().Msg("Scheduler stopped")
}

// Running reports whether the scheduler has been started.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// TriggerManual runs one batch immediately on the caller's goroutine,
// independent of the cron schedule.
func (s *Scheduler) TriggerManual(ctx context.Context) (syncer.BatchResult, error) {
	log.Info().Msg("Manual sync triggered")
	return s.runner.SyncAll(ctx)
}
