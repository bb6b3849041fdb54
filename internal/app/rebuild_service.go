// internal/app/rebuild_service.go
package app

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"tariff_digest/internal/domain/report"
)

// RebuildService regenerates the report for one date through the identity store.
type RebuildService struct {
	repo     report.Repository
	resolver *WindowResolver
	renderer report.Renderer
	logger   *logrus.Entry
}

func NewRebuildService(repo report.Repository, resolver *WindowResolver, renderer report.Renderer, logger *logrus.Entry) *RebuildService {
	return &RebuildService{
		repo:     repo,
		resolver: resolver,
		renderer: renderer,
		logger:   logger.WithField("component", "rebuild"),
	}
}

// Rebuild builds the report for date. Without force, an already BUILT date
// returns SKIPPED without touching the renderer. Collaborator failures are
// recorded and returned as a FAILED outcome; only configuration and store
// errors are returned as err.
func (s *RebuildService) Rebuild(ctx context.Context, date report.Date, force bool) (report.Outcome, error) {
	log := s.logger.WithFields(logrus.Fields{"report_date": date.String(), "force": force})

	if !force {
		existing, err := s.repo.Get(ctx, date)
		switch {
		case err == nil && existing.IsBuilt():
			log.WithField("fingerprint", existing.Fingerprint).Info("Report already built, skipping")
			return report.Outcome{
				Date:        date,
				Status:      report.OutcomeSkipped,
				Fingerprint: report.Fingerprint{Value: existing.Fingerprint, ItemCount: existing.ItemCount},
			}, nil
		case err != nil && !errors.Is(err, report.ErrRecordNotFound):
			return report.Outcome{}, err
		}
	}

	// The window is resolved before the record moves to PENDING so that a
	// broken calendar leaves no half-started record behind.
	window, err := s.resolver.Resolve(date)
	if err != nil {
		log.WithError(err).Error("Could not resolve report window")
		return report.Outcome{}, err
	}

	if err := s.repo.MarkBuilding(ctx, date); err != nil {
		return report.Outcome{}, err
	}
	log = log.WithField("window", window.String())
	log.Info("Building report")

	result, renderErr := s.renderer.Render(ctx, date, window)

	// A PENDING record must always reach BUILT or FAILED, even when ctx was
	// cancelled during the render.
	storeCtx := context.WithoutCancel(ctx)
	if renderErr != nil {
		log.WithError(renderErr).Warn("Report build failed")
		if err := s.repo.MarkFailed(storeCtx, date, renderErr); err != nil {
			return report.Outcome{}, err
		}
		return report.Outcome{Date: date, Status: report.OutcomeFailed, Err: renderErr}, nil
	}

	if err := s.repo.MarkBuilt(storeCtx, date, result.Fingerprint); err != nil {
		return report.Outcome{}, err
	}
	log.WithFields(logrus.Fields{
		"fingerprint": result.Fingerprint.String(),
		"artifact":    result.Artifact,
	}).Info("Report built")

	return report.Outcome{
		Date:        date,
		Status:      report.OutcomeBuilt,
		Fingerprint: result.Fingerprint,
		Artifact:    result.Artifact,
	}, nil
}
