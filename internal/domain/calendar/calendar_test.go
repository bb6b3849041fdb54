package calendar

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tariff_digest/internal/domain/report"
)

func testCalendar(t *testing.T) *Calendar {
	t.Helper()
	cal, err := New("test", 2024, 2024, nil, []Holiday{
		{Date: report.NewDate(2024, time.January, 1), Name: "New Year"},
		{Date: report.NewDate(2024, time.January, 10), Name: "Mid-week holiday"},
	})
	require.NoError(t, err)
	return cal
}

func TestIsBusinessDay(t *testing.T) {
	cal := testCalendar(t)

	cases := []struct {
		date report.Date
		want bool
	}{
		{report.NewDate(2024, time.January, 1), false},  // Monday holiday
		{report.NewDate(2024, time.January, 2), true},   // Tuesday
		{report.NewDate(2024, time.January, 6), false},  // Saturday
		{report.NewDate(2024, time.January, 7), false},  // Sunday
		{report.NewDate(2024, time.January, 8), true},   // Monday
		{report.NewDate(2024, time.January, 10), false}, // Wednesday holiday
	}
	for _, tc := range cases {
		got, err := cal.IsBusinessDay(tc.date)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, tc.date.String())
	}
}

func TestIsBusinessDayOutsideRange(t *testing.T) {
	cal := testCalendar(t)

	_, err := cal.IsBusinessDay(report.NewDate(2025, time.January, 2))
	require.Error(t, err)
	assert.True(t, errors.Is(err, report.ErrConfiguration))

	_, err = cal.IsBusinessDay(report.NewDate(2023, time.December, 29))
	assert.ErrorIs(t, err, report.ErrConfiguration)
}

func TestNewRejectsHolidayOutsideRange(t *testing.T) {
	_, err := New("test", 2024, 2024, nil, []Holiday{
		{Date: report.NewDate(2025, time.January, 1), Name: "New Year"},
	})
	assert.ErrorIs(t, err, report.ErrConfiguration)
}

func TestNewRejectsAllWeekend(t *testing.T) {
	all := []time.Weekday{time.Sunday, time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday}
	_, err := New("test", 2024, 2024, all, nil)
	assert.ErrorIs(t, err, report.ErrConfiguration)
}

func TestCustomWeekend(t *testing.T) {
	cal, err := New("gulf", 2024, 2024, []time.Weekday{time.Friday, time.Saturday}, nil)
	require.NoError(t, err)

	sunday, err := cal.IsBusinessDay(report.NewDate(2024, time.January, 7))
	require.NoError(t, err)
	assert.True(t, sunday)

	friday, err := cal.IsBusinessDay(report.NewDate(2024, time.January, 5))
	require.NoError(t, err)
	assert.False(t, friday)
}

func TestHolidaysSorted(t *testing.T) {
	hs := testCalendar(t).Holidays()
	require.Len(t, hs, 2)
	assert.Equal(t, "New Year", hs[0].Name)
	assert.Equal(t, report.NewDate(2024, time.January, 10), hs[1].Date)
}
