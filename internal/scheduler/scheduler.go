// Package scheduler runs the periodic post-game sweep and model-state
// snapshot jobs on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/courtside/internal/datasource"
	"github.com/yourusername/courtside/internal/models"
	"github.com/yourusername/courtside/internal/monitor"
	"github.com/yourusername/courtside/internal/pipeline"
)

// Scheduler manages the periodic model maintenance jobs
type Scheduler struct {
	cron            *cron.Cron
	orchestrator    *pipeline.Orchestrator
	source          datasource.GameSource
	monitor         *monitor.Monitor
	logger          *logrus.Logger
	mu              sync.RWMutex
	isRunning       bool
	jobIDs          []cron.EntryID
	gracefulTimeout time.Duration
}

// NewScheduler creates a new scheduler
func NewScheduler(orchestrator *pipeline.Orchestrator, source datasource.GameSource, mon *monitor.Monitor, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:            cron.New(cron.WithLocation(time.UTC)),
		orchestrator:    orchestrator,
		source:          source,
		monitor:         mon,
		logger:          logger,
		jobIDs:          make([]cron.EntryID, 0),
		gracefulTimeout: 30 * time.Second,
	}
}

// SchedulePostGameSweep schedules the sweep that processes the previous
// day's completed games through the update pipeline.
func (s *Scheduler) SchedulePostGameSweep(cronExpression string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	jobFunc := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Hour)
		defer cancel()

		date := time.Now().UTC().Add(-24 * time.Hour)
		s.logger.WithField("date", date.Format("2006-01-02")).Info("Starting scheduled post-game sweep")

		gameIDs, err := s.source.FetchGamesByDate(ctx, date)
		if err != nil {
			s.logger.WithError(err).Error("Post-game sweep failed to list games")
			return
		}

		results := s.orchestrator.ProcessGames(ctx, gameIDs)

		updated, skipped, failed := 0, 0, 0
		for _, r := range results {
			switch r.Outcome {
			case models.OutcomeUpdated:
				updated++
			case models.OutcomeSkipped:
				skipped++
			default:
				failed++
			}
		}
		s.logger.WithFields(logrus.Fields{
			"games":   len(results),
			"updated": updated,
			"skipped": skipped,
			"failed":  failed,
		}).Info("Scheduled post-game sweep completed")
	}

	entryID, err := s.cron.AddFunc(cronExpression, jobFunc)
	if err != nil {
		return fmt.Errorf("failed to add job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithField("cron", cronExpression).Info("Scheduled post-game sweep job")

	return nil
}

// ScheduleStateSnapshot schedules a periodic monitor report, logged for
// operational trend review.
func (s *Scheduler) ScheduleStateSnapshot(cronExpression string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	jobFunc := func() {
		report := s.monitor.Report()
		converged := 0
		for _, t := range report.Teams {
			if t.Converged {
				converged++
			}
		}
		s.logger.WithFields(logrus.Fields{
			"records":         report.RecordCount,
			"recent_accuracy": report.RecentAccuracy,
			"feedback_rate":   report.FeedbackRate,
			"trend":           report.Trend,
			"teams_tracked":   len(report.Teams),
			"teams_converged": converged,
		}).Info("Model state snapshot")
	}

	entryID, err := s.cron.AddFunc(cronExpression, jobFunc)
	if err != nil {
		return fmt.Errorf("failed to add job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithField("cron", cronExpression).Info("Scheduled state snapshot job")

	return nil
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}

	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")

	return nil
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.gracefulTimeout)
	defer cancel()

	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.logger.Warn("Scheduler stop timed out waiting for running jobs")
	}
	s.isRunning = false
	s.logger.Info("Scheduler stopped")

	return nil
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRun returns the time of the next scheduled job run
func (s *Scheduler) GetNextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning || len(s.jobIDs) == 0 {
		return time.Time{}
	}

	nextRun := time.Time{}
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			nextTime := entry.Next
			if nextRun.IsZero() || nextTime.Before(nextRun) {
				nextRun = nextTime
			}
		}
	}

	return nextRun
}
