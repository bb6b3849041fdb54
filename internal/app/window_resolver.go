// internal/app/window_resolver.go
package app

import (
	"fmt"
	"time"

	"tariff_digest/internal/domain/report"
)

// DefaultMaxLookbackDays bounds the backward walk for the prior business day.
const DefaultMaxLookbackDays = 30

// BusinessCalendar is the part of the calendar service the resolver needs.
type BusinessCalendar interface {
	IsBusinessDay(d report.Date) (bool, error)
}

// WindowResolver maps a report date to the content window it summarizes.
type WindowResolver struct {
	calendar    BusinessCalendar
	location    *time.Location
	maxLookback int
}

func NewWindowResolver(cal BusinessCalendar, loc *time.Location, maxLookbackDays int) *WindowResolver {
	if maxLookbackDays <= 0 {
		maxLookbackDays = DefaultMaxLookbackDays
	}
	return &WindowResolver{
		calendar:    cal,
		location:    loc,
		maxLookback: maxLookbackDays,
	}
}

// Location is the reference timezone of every window.
func (r *WindowResolver) Location() *time.Location {
	return r.location
}

// Resolve returns [start of the most recent business day strictly before
// date, start of date). The report date itself may be a non-business day.
func (r *WindowResolver) Resolve(date report.Date) (report.Window, error) {
	prev, err := r.PreviousBusinessDay(date)
	if err != nil {
		return report.Window{}, err
	}
	return report.NewWindow(prev.Start(r.location), date.Start(r.location))
}

// PreviousBusinessDay walks backward from date-1 until a business day is found.
func (r *WindowResolver) PreviousBusinessDay(date report.Date) (report.Date, error) {
	for i := 1; i <= r.maxLookback; i++ {
		candidate := date.AddDays(-i)
		ok, err := r.calendar.IsBusinessDay(candidate)
		if err != nil {
			return report.Date{}, fmt.Errorf("resolving window for %s: %w", date, err)
		}
		if ok {
			return candidate, nil
		}
	}
	return report.Date{}, fmt.Errorf("%w: no business day within %d days before %s",
		report.ErrConfiguration, r.maxLookback, date)
}
