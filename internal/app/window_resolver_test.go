package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tariff_digest/internal/domain/calendar"
	"tariff_digest/internal/domain/report"
)

func tokyo(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)
	return loc
}

func TestResolveMondayCoversWeekend(t *testing.T) {
	loc := tokyo(t)
	r := NewWindowResolver(testCalendar(t), loc, 0)

	w, err := r.Resolve(day(8)) // Monday
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.January, 5, 0, 0, 0, 0, loc), w.Start) // Friday
	assert.Equal(t, time.Date(2024, time.January, 8, 0, 0, 0, 0, loc), w.End)
	assert.Equal(t, 72*time.Hour, w.Duration())
}

func TestResolveOrdinaryWeekday(t *testing.T) {
	loc := tokyo(t)
	r := NewWindowResolver(testCalendar(t), loc, 0)

	w, err := r.Resolve(day(10)) // Wednesday
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.January, 9, 0, 0, 0, 0, loc), w.Start)
	assert.Equal(t, 24*time.Hour, w.Duration())
}

func TestResolveAfterMultiDayHoliday(t *testing.T) {
	loc := tokyo(t)
	r := NewWindowResolver(testCalendar(t), loc, 0)

	// Sat 13, Sun 14, holidays Mon 15 and Tue 16: Wednesday covers from Friday 12.
	w, err := r.Resolve(day(17))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.January, 12, 0, 0, 0, 0, loc), w.Start)
	assert.Equal(t, time.Date(2024, time.January, 17, 0, 0, 0, 0, loc), w.End)
}

func TestResolveNonBusinessReportDate(t *testing.T) {
	loc := tokyo(t)
	r := NewWindowResolver(testCalendar(t), loc, 0)

	w, err := r.Resolve(day(7)) // Sunday
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.January, 5, 0, 0, 0, 0, loc), w.Start)
	assert.Equal(t, time.Date(2024, time.January, 7, 0, 0, 0, 0, loc), w.End)
}

func TestResolveNeverReturnsEmptyWindow(t *testing.T) {
	loc := tokyo(t)
	r := NewWindowResolver(testCalendar(t), loc, 0)

	for d := day(3); !d.After(day(31)); d = d.AddDays(1) {
		w, err := r.Resolve(d)
		require.NoError(t, err, d.String())
		assert.True(t, w.Start.Before(w.End), d.String())
		assert.Equal(t, d.Start(loc), w.End)
	}
}

func TestResolveOutsideCalendarRange(t *testing.T) {
	r := NewWindowResolver(testCalendar(t), tokyo(t), 0)

	// Jan 2 2024: stepping back lands in 2023, which is not loaded.
	_, err := r.Resolve(day(2))
	assert.ErrorIs(t, err, report.ErrConfiguration)
}

func TestResolveBoundedLookback(t *testing.T) {
	var holidays []calendar.Holiday
	for d := report.NewDate(2024, time.March, 1); d.Before(report.NewDate(2024, time.April, 15)); d = d.AddDays(1) {
		holidays = append(holidays, calendar.Holiday{Date: d, Name: "closed"})
	}
	cal, err := calendar.New("closed", 2024, 2024, nil, holidays)
	require.NoError(t, err)

	r := NewWindowResolver(cal, time.UTC, 10)
	_, err = r.Resolve(report.NewDate(2024, time.April, 10))
	assert.ErrorIs(t, err, report.ErrConfiguration)
}

func TestResolveAcrossDST(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	cal, err := calendar.New("us", 2024, 2024, nil, nil)
	require.NoError(t, err)

	// Monday 2024-03-11 after the spring-forward Sunday.
	w, err := NewWindowResolver(cal, ny, 0).Resolve(report.NewDate(2024, time.March, 11))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.March, 8, 0, 0, 0, 0, ny), w.Start)
	assert.Equal(t, 71*time.Hour, w.Duration())
}
