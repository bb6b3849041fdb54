// internal/app/dispatcher.go
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"tariff_digest/internal/domain/report"
)

// Dispatcher decides between forced single-date mode and the default
// "report for today" flow.
type Dispatcher struct {
	rebuilder   Rebuilder
	location    *time.Location
	forcedDate  *report.Date
	newNotifier NotifierFactory
	calendar    BusinessCalendar // nil: report every calendar day
	now         func() time.Time
	logger      *logrus.Entry
}

// DispatcherOption customizes a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithForcedDate switches the dispatcher to forced single-date mode.
func WithForcedDate(d *report.Date) DispatcherOption {
	return func(ds *Dispatcher) { ds.forcedDate = d }
}

// WithBusinessDaysOnly makes the default flow skip non-business days.
func WithBusinessDaysOnly(cal BusinessCalendar) DispatcherOption {
	return func(ds *Dispatcher) { ds.calendar = cal }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) DispatcherOption {
	return func(ds *Dispatcher) { ds.now = now }
}

func NewDispatcher(rebuilder Rebuilder, loc *time.Location, newNotifier NotifierFactory, logger *logrus.Entry, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		rebuilder:   rebuilder,
		location:    loc,
		newNotifier: newNotifier,
		now:         time.Now,
		logger:      logger.WithField("component", "dispatcher"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run executes one process invocation. A forced date is rebuilt with force
// and returned immediately, before the notifier factory is ever touched.
func (d *Dispatcher) Run(ctx context.Context) (report.Outcome, error) {
	if d.forcedDate != nil {
		d.logger.WithField("report_date", d.forcedDate.String()).Info("Forced report date set, rebuilding single report")
		return d.rebuilder.Rebuild(ctx, *d.forcedDate, true)
	}
	return d.RunToday(ctx)
}

// RunToday is the default flow: build today's report and announce it.
func (d *Dispatcher) RunToday(ctx context.Context) (report.Outcome, error) {
	today := report.Today(d.now(), d.location)
	log := d.logger.WithField("report_date", today.String())

	if d.calendar != nil {
		ok, err := d.calendar.IsBusinessDay(today)
		if err != nil {
			return report.Outcome{}, err
		}
		if !ok {
			log.Info("Today is not a business day, nothing to report")
			return report.Outcome{Date: today, Status: report.OutcomeSkipped}, nil
		}
	}

	outcome, err := d.rebuilder.Rebuild(ctx, today, false)
	if err != nil {
		return outcome, err
	}
	if outcome.Status != report.OutcomeBuilt {
		return outcome, nil
	}

	if err := d.notify(ctx, outcome); err != nil {
		log.WithError(err).Warn("Report built but announcement failed")
	}
	return outcome, nil
}

func (d *Dispatcher) notify(ctx context.Context, outcome report.Outcome) error {
	if d.newNotifier == nil {
		return fmt.Errorf("%w: no notifier configured", report.ErrNotification)
	}
	notifier, err := d.newNotifier()
	if err != nil {
		if errors.Is(err, report.ErrNotification) {
			return err
		}
		return fmt.Errorf("%w: %v", report.ErrNotification, err)
	}
	return notifier.AnnounceReport(ctx, outcome)
}
