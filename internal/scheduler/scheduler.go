// Package scheduler runs periodic maintenance jobs.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/oxgrid/tictactoe/internal/model"
)

// auditTimeout bounds a single audit run
const auditTimeout = time.Minute

// Auditor checks stored player stats for inconsistent counters
type Auditor interface {
	Audit(ctx context.Context) ([]model.PlayerID, error)
}

// Scheduler runs the stats audit on a cron schedule
type Scheduler struct {
	cron     *cron.Cron
	auditor  Auditor
	schedule string
	logger   *slog.Logger
}

// New creates a scheduler for the given cron spec (standard five fields or
// descriptors such as "@hourly"). An empty spec disables the audit job.
func New(auditor Auditor, schedule string, logger *slog.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:     cron.New(),
		auditor:  auditor,
		schedule: schedule,
		logger:   logger,
	}
	if schedule == "" {
		return s, nil
	}
	if _, err := s.cron.AddFunc(schedule, s.runAudit); err != nil {
		return nil, fmt.Errorf("invalid audit schedule %q: %w", schedule, err)
	}
	return s, nil
}

// Enabled reports whether any job is scheduled
func (s *Scheduler) Enabled() bool {
	return len(s.cron.Entries()) > 0
}

// Start begins running jobs in the background
func (s *Scheduler) Start() {
	if !s.Enabled() {
		s.logger.Info("scheduler disabled")
		return
	}
	s.cron.Start()
	s.logger.Info("scheduler started", "audit_schedule", s.schedule)
}

// Stop halts the scheduler and waits for running jobs to finish
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

// RunAuditNow runs the audit immediately and returns the inconsistent player ids
func (s *Scheduler) RunAuditNow(ctx context.Context) ([]model.PlayerID, error) {
	return s.auditor.Audit(ctx)
}

func (s *Scheduler) runAudit() {
	ctx, cancel := context.WithTimeout(context.Background(), auditTimeout)
	defer cancel()

	start := time.Now()
	bad, err := s.auditor.Audit(ctx)
	if err != nil {
		s.logger.Error("stats audit failed", "error", err)
		return
	}
	s.logger.Info("stats audit finished",
		"violations", len(bad),
		"duration", time.Since(start),
	)
}
