package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"tariff_digest/internal/domain/report"
)

// DailyRunner runs one process invocation. Its Run must honor the forced
// date override, so the scheduler never bypasses it.
type DailyRunner interface {
	Run(ctx context.Context) (report.Outcome, error)
}

// ReportScheduler triggers the daily report on a cron spec. Runs never overlap.
type ReportScheduler struct {
	cronEngine *cron.Cron
	runner     DailyRunner
	logger     *logrus.Entry
	cronSpec   string
	jobTimeout time.Duration
	runLock    sync.Mutex
}

func NewReportScheduler(runner DailyRunner, logger *logrus.Entry, loc *time.Location, cronSpec string, jobTimeout time.Duration) *ReportScheduler {
	return &ReportScheduler{
		cronEngine: cron.New(cron.WithLocation(loc)), // schedule in the report timezone
		runner:     runner,
		logger:     logger.WithField("component", "scheduler"),
		cronSpec:   cronSpec,
		jobTimeout: jobTimeout,
	}
}

// Start registers the daily job and starts the cron engine.
func (s *ReportScheduler) Start() error {
	s.logger.WithField("cron_spec", s.cronSpec).Info("Starting report scheduler...")
	if _, err := s.cronEngine.AddFunc(s.cronSpec, s.RunOnce); err != nil {
		return err
	}
	s.cronEngine.Start()
	return nil
}

// RunOnce runs the daily flow unless a previous run is still in progress.
func (s *ReportScheduler) RunOnce() {
	if !s.runLock.TryLock() {
		s.logger.Warn("Previous report run still in progress, skipping this trigger")
		return
	}
	defer s.runLock.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
	defer cancel()

	s.logger.Info("Cron job triggered for daily report.")
	outcome, err := s.runner.Run(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Daily report run failed")
		return
	}
	entry := s.logger.WithFields(logrus.Fields{"report_date": outcome.Date.String(), "status": string(outcome.Status)})
	if outcome.Err != nil {
		entry.WithError(outcome.Err).Warn("Daily report finished with failure")
		return
	}
	entry.Info("Daily report finished")
}

// Stop waits for a running job to finish.
func (s *ReportScheduler) Stop() {
	s.logger.Info("Stopping report scheduler...")
	ctx := s.cronEngine.Stop()
	<-ctx.Done()
	s.logger.Info("Report scheduler gracefully stopped.")
}
