// internal/app/backfill_service.go
package app

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"tariff_digest/internal/domain/report"
)

// Rebuilder is the single-date operation the backfill drives.
type Rebuilder interface {
	Rebuild(ctx context.Context, date report.Date, force bool) (report.Outcome, error)
}

// BackfillService rebuilds every calendar date of a range, strictly in order.
type BackfillService struct {
	rebuilder Rebuilder
	logger    *logrus.Entry
}

func NewBackfillService(rebuilder Rebuilder, logger *logrus.Entry) *BackfillService {
	return &BackfillService{
		rebuilder: rebuilder,
		logger:    logger.WithField("component", "backfill"),
	}
}

// Backfill processes [req.From, req.To] inclusive. Weekends and holidays are
// not skipped here. With AbortAll the first FAILED date ends the run; the
// result then holds every date up to and including the failing one.
//
// A non-nil error means the run could not proceed at all (invalid range,
// configuration or store error); the partial result is still returned.
func (s *BackfillService) Backfill(ctx context.Context, req report.BackfillRequest) (report.BackfillResult, error) {
	if err := req.Validate(); err != nil {
		return report.BackfillResult{}, err
	}
	if req.OnError == "" {
		req.OnError = report.AbortAll
	}

	log := s.logger.WithFields(logrus.Fields{
		"from":     req.From.String(),
		"to":       req.To.String(),
		"force":    req.Force,
		"on_error": string(req.OnError),
	})
	log.Infof("Starting backfill of %d day(s)", req.Days())

	result := report.BackfillResult{Outcomes: make([]report.Outcome, 0, req.Days())}
	for date := req.From; !date.After(req.To); date = date.AddDays(1) {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("backfill interrupted before %s: %w", date, err)
		}

		outcome, err := s.rebuilder.Rebuild(ctx, date, req.Force)
		if err != nil {
			return result, fmt.Errorf("backfill stopped at %s: %w", date, err)
		}
		result.Outcomes = append(result.Outcomes, outcome)

		if outcome.Status == report.OutcomeFailed && req.OnError == report.AbortAll {
			result.Aborted = true
			log.WithField("report_date", date.String()).WithError(outcome.Err).Warn("Backfill aborted on failure")
			return result, nil
		}
	}

	log.WithFields(logrus.Fields{
		"built":   result.Count(report.OutcomeBuilt),
		"skipped": result.Count(report.OutcomeSkipped),
		"failed":  result.Count(report.OutcomeFailed),
	}).Info("Backfill finished")
	return result, nil
}
