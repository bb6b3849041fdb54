// internal/domain/calendar/calendar.go
package calendar

import (
	"fmt"
	"sort"
	"time"

	"tariff_digest/internal/domain/report"
)

// Calendar answers business-day questions for one jurisdiction over a fixed
// year range. It is immutable once built and safe to share.
type Calendar struct {
	jurisdiction string
	fromYear     int
	toYear       int
	weekend      map[time.Weekday]bool
	holidays     map[report.Date]string
}

// DefaultWeekend is Saturday and Sunday.
var DefaultWeekend = []time.Weekday{time.Saturday, time.Sunday}

// Holiday is a single non-business date.
type Holiday struct {
	Date report.Date
	Name string
}

// New builds a Calendar supporting years [fromYear, toYear]. A nil weekend
// means DefaultWeekend. Holidays outside the year range are rejected.
func New(jurisdiction string, fromYear, toYear int, weekend []time.Weekday, holidays []Holiday) (*Calendar, error) {
	if fromYear > toYear {
		return nil, fmt.Errorf("%w: calendar %q year range %d..%d is empty", report.ErrConfiguration, jurisdiction, fromYear, toYear)
	}
	if weekend == nil {
		weekend = DefaultWeekend
	}
	c := &Calendar{
		jurisdiction: jurisdiction,
		fromYear:     fromYear,
		toYear:       toYear,
		weekend:      make(map[time.Weekday]bool, len(weekend)),
		holidays:     make(map[report.Date]string, len(holidays)),
	}
	for _, wd := range weekend {
		c.weekend[wd] = true
	}
	if len(c.weekend) == 7 {
		return nil, fmt.Errorf("%w: calendar %q has no working weekdays", report.ErrConfiguration, jurisdiction)
	}
	for _, h := range holidays {
		if !c.Supports(h.Date) {
			return nil, fmt.Errorf("%w: holiday %s (%s) is outside calendar %q range %d..%d",
				report.ErrConfiguration, h.Date, h.Name, jurisdiction, fromYear, toYear)
		}
		c.holidays[h.Date] = h.Name
	}
	return c, nil
}

// Jurisdiction the holiday table belongs to.
func (c *Calendar) Jurisdiction() string { return c.jurisdiction }

// YearRange returns the supported inclusive year range.
func (c *Calendar) YearRange() (int, int) { return c.fromYear, c.toYear }

// Supports reports whether d's year is covered by the loaded table.
func (c *Calendar) Supports(d report.Date) bool {
	return d.Year >= c.fromYear && d.Year <= c.toYear
}

// IsBusinessDay reports whether d is neither a weekend day nor a holiday.
// Asking about an unsupported year is a configuration error.
func (c *Calendar) IsBusinessDay(d report.Date) (bool, error) {
	if !c.Supports(d) {
		return false, fmt.Errorf("%w: %s is outside calendar %q range %d..%d",
			report.ErrConfiguration, d, c.jurisdiction, c.fromYear, c.toYear)
	}
	if c.weekend[d.Weekday()] {
		return false, nil
	}
	_, holiday := c.holidays[d]
	return !holiday, nil
}

// HolidayName returns the holiday name for d, if any.
func (c *Calendar) HolidayName(d report.Date) (string, bool) {
	name, ok := c.holidays[d]
	return name, ok
}

// Holidays returns all holidays in ascending order.
func (c *Calendar) Holidays() []Holiday {
	out := make([]Holiday, 0, len(c.holidays))
	for d, name := range c.holidays {
		out = append(out, Holiday{Date: d, Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}
