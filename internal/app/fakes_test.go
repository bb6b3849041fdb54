package app

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"tariff_digest/internal/domain/calendar"
	"tariff_digest/internal/domain/report"
)

// Jan 2024: the 1st is a Monday holiday, weekends on 6/7, 13/14, 20/21.
// The 15th and 16th are holidays, giving a Sat..Tue gap.
func testCalendar(t *testing.T) *calendar.Calendar {
	t.Helper()
	cal, err := calendar.New("test", 2024, 2024, nil, []calendar.Holiday{
		{Date: report.NewDate(2024, time.January, 1), Name: "New Year"},
		{Date: report.NewDate(2024, time.January, 15), Name: "Holiday A"},
		{Date: report.NewDate(2024, time.January, 16), Name: "Holiday B"},
	})
	require.NoError(t, err)
	return cal
}

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func day(d int) report.Date {
	return report.NewDate(2024, time.January, d)
}

type memRepo struct {
	mu       sync.Mutex
	records  map[report.Date]*report.Record
	now      func() time.Time
	writeErr error // returned by every Mark* call when set
}

// write mimics a database: a cancelled context fails the statement.
func (m *memRepo) write(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return m.writeErr
}

func newMemRepo() *memRepo {
	return &memRepo{records: map[report.Date]*report.Record{}, now: time.Now}
}

func (m *memRepo) Get(_ context.Context, date report.Date) (*report.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[date]
	if !ok {
		return nil, report.ErrRecordNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memRepo) record(date report.Date) *report.Record {
	r, ok := m.records[date]
	if !ok {
		r = &report.Record{Date: date}
		m.records[date] = r
	}
	return r
}

func (m *memRepo) MarkBuilding(ctx context.Context, date report.Date) error {
	if err := m.write(ctx); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.record(date)
	r.Status = report.StatusPending
	r.StartedAt = m.now()
	r.UpdatedAt = r.StartedAt
	return nil
}

func (m *memRepo) MarkBuilt(ctx context.Context, date report.Date, fp report.Fingerprint) error {
	if err := m.write(ctx); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.record(date)
	r.Status = report.StatusBuilt
	r.Fingerprint = fp.Value
	r.ItemCount = fp.ItemCount
	r.LastError = ""
	r.BuiltAt = sql.NullTime{Time: m.now(), Valid: true}
	r.UpdatedAt = r.BuiltAt.Time
	return nil
}

func (m *memRepo) MarkFailed(ctx context.Context, date report.Date, cause error) error {
	if err := m.write(ctx); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.record(date)
	r.Status = report.StatusFailed
	r.LastError = cause.Error()
	r.UpdatedAt = m.now()
	return nil
}

func (m *memRepo) IsBuilt(ctx context.Context, date report.Date) (bool, error) {
	r, err := m.Get(ctx, date)
	if err != nil {
		return false, nil
	}
	return r.IsBuilt(), nil
}

func (m *memRepo) List(_ context.Context, from, to report.Date) ([]*report.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*report.Record
	for d, r := range m.records {
		if !d.Before(from) && !d.After(to) {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// fakeRenderer counts calls and fails on configured dates.
type fakeRenderer struct {
	mu      sync.Mutex
	calls   []report.Date
	windows map[report.Date]report.Window
	failOn  map[report.Date]error
	items   int

	// onRender runs inside Render, before the result is returned.
	onRender func(date report.Date)
}

func newFakeRenderer() *fakeRenderer {
	return &fakeRenderer{windows: map[report.Date]report.Window{}, failOn: map[report.Date]error{}, items: 3}
}

func (f *fakeRenderer) Render(_ context.Context, date report.Date, window report.Window) (report.RenderResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, date)
	f.windows[date] = window
	if f.onRender != nil {
		f.onRender(date)
	}
	if err, ok := f.failOn[date]; ok {
		return report.RenderResult{}, err
	}
	return report.RenderResult{
		Fingerprint: report.Fingerprint{Value: fmt.Sprintf("fp-%s-%d", date, f.items), ItemCount: f.items},
		Artifact:    date.String() + ".html",
	}, nil
}

func (f *fakeRenderer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}
