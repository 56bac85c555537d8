package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Scheduler manages all cron tasks.
type Scheduler struct {
	Cron   *cron.Cron
	Backup *Backup
	log    zerolog.Logger
}

// NewScheduler creates a new Scheduler.
func NewScheduler(backup *Backup, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		Cron:   cron.New(cron.WithSeconds()),
		Backup: backup,
		log:    log.With().Str("component", "scheduler").Logger(),
	}
}

// RegisterBackup schedules the backup task.
func (s *Scheduler) RegisterBackup(spec string) error {
	if _, err := s.Cron.AddFunc(spec, s.backupTask); err != nil {
		return fmt.Errorf("register backup task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info().Msg("scheduler started")
}

// Stop stops the scheduler and waits for a running task to finish or ctx
// to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.Cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.log.Warn().Msg("scheduler stop timed out")
	}
	s.log.Info().Msg("scheduler stopped")
}

func (s *Scheduler) backupTask() {
	s.log.Info().Msg("running backup task")
	if _, err := s.Backup.Run(); err != nil {
		s.log.Error().Err(err).Msg("backup failed")
	}
}
