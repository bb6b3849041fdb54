package app

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tariff_digest/internal/domain/report"
)

func newTestRebuild(t *testing.T) (*RebuildService, *memRepo, *fakeRenderer) {
	t.Helper()
	repo := newMemRepo()
	renderer := newFakeRenderer()
	resolver := NewWindowResolver(testCalendar(t), time.UTC, 0)
	return NewRebuildService(repo, resolver, renderer, testLogger()), repo, renderer
}

func TestRebuildThenSkip(t *testing.T) {
	svc, repo, renderer := newTestRebuild(t)
	ctx := context.Background()

	first, err := svc.Rebuild(ctx, day(8), false)
	require.NoError(t, err)
	assert.Equal(t, report.OutcomeBuilt, first.Status)

	second, err := svc.Rebuild(ctx, day(8), false)
	require.NoError(t, err)
	assert.Equal(t, report.OutcomeSkipped, second.Status)
	assert.Equal(t, first.Fingerprint, second.Fingerprint)
	assert.Equal(t, 1, renderer.callCount(), "skip must not fetch")

	rec, err := repo.Get(ctx, day(8))
	require.NoError(t, err)
	assert.Equal(t, report.StatusBuilt, rec.Status)
	assert.Equal(t, first.Fingerprint.Value, rec.Fingerprint)
}

func TestRebuildPassesResolvedWindow(t *testing.T) {
	svc, _, renderer := newTestRebuild(t)

	_, err := svc.Rebuild(context.Background(), day(8), false)
	require.NoError(t, err)

	w := renderer.windows[day(8)]
	assert.Equal(t, time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC), w.Start)
	assert.Equal(t, time.Date(2024, time.January, 8, 0, 0, 0, 0, time.UTC), w.End)
}

func TestForcedRebuildAlwaysRenders(t *testing.T) {
	svc, repo, renderer := newTestRebuild(t)
	ctx := context.Background()

	_, err := svc.Rebuild(ctx, day(9), false)
	require.NoError(t, err)

	renderer.items = 5
	out, err := svc.Rebuild(ctx, day(9), true)
	require.NoError(t, err)
	assert.Equal(t, report.OutcomeBuilt, out.Status)
	assert.Equal(t, 2, renderer.callCount())

	rec, err := repo.Get(ctx, day(9))
	require.NoError(t, err)
	assert.Equal(t, 5, rec.ItemCount)
	assert.Equal(t, out.Fingerprint.Value, rec.Fingerprint)
}

func TestRebuildFailureKeepsLastGoodFingerprint(t *testing.T) {
	svc, repo, renderer := newTestRebuild(t)
	ctx := context.Background()

	good, err := svc.Rebuild(ctx, day(9), false)
	require.NoError(t, err)

	renderer.failOn[day(9)] = fmt.Errorf("%w: upstream 503", report.ErrFetch)
	out, err := svc.Rebuild(ctx, day(9), true)
	require.NoError(t, err)
	assert.Equal(t, report.OutcomeFailed, out.Status)
	assert.ErrorIs(t, out.Err, report.ErrFetch)

	rec, err := repo.Get(ctx, day(9))
	require.NoError(t, err)
	assert.Equal(t, report.StatusFailed, rec.Status)
	assert.Equal(t, good.Fingerprint.Value, rec.Fingerprint)
	assert.Contains(t, rec.LastError, "upstream 503")
}

func TestRebuildAfterFailureRetries(t *testing.T) {
	svc, _, renderer := newTestRebuild(t)
	ctx := context.Background()

	renderer.failOn[day(10)] = fmt.Errorf("%w: template", report.ErrRender)
	out, err := svc.Rebuild(ctx, day(10), false)
	require.NoError(t, err)
	require.Equal(t, report.OutcomeFailed, out.Status)

	delete(renderer.failOn, day(10))
	out, err = svc.Rebuild(ctx, day(10), false)
	require.NoError(t, err)
	assert.Equal(t, report.OutcomeBuilt, out.Status)
}

func TestRebuildConfigurationErrorPropagates(t *testing.T) {
	svc, repo, renderer := newTestRebuild(t)
	ctx := context.Background()

	_, err := svc.Rebuild(ctx, report.NewDate(2025, time.March, 3), false)
	assert.ErrorIs(t, err, report.ErrConfiguration)
	assert.Zero(t, renderer.callCount())

	_, err = repo.Get(ctx, report.NewDate(2025, time.March, 3))
	assert.ErrorIs(t, err, report.ErrRecordNotFound)
}

func TestRebuildCancelledDuringRenderStillRecordsFailure(t *testing.T) {
	svc, repo, renderer := newTestRebuild(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	renderer.failOn[day(10)] = fmt.Errorf("%w: %v", report.ErrFetch, context.Canceled)
	renderer.onRender = func(report.Date) { cancel() }

	out, err := svc.Rebuild(ctx, day(10), false)
	require.NoError(t, err, "a fetch failure is a per-date outcome, not a store error")
	assert.Equal(t, report.OutcomeFailed, out.Status)

	rec, err := repo.Get(context.Background(), day(10))
	require.NoError(t, err)
	assert.Equal(t, report.StatusFailed, rec.Status, "record must not stay PENDING")
}

func TestRebuildCancelledAfterRenderStillRecordsBuilt(t *testing.T) {
	svc, repo, renderer := newTestRebuild(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	renderer.onRender = func(report.Date) { cancel() }

	out, err := svc.Rebuild(ctx, day(10), false)
	require.NoError(t, err)
	assert.Equal(t, report.OutcomeBuilt, out.Status)

	built, err := repo.IsBuilt(context.Background(), day(10))
	require.NoError(t, err)
	assert.True(t, built)
}

func TestRebuildReturnsStoreErrorUnwrapped(t *testing.T) {
	svc, repo, renderer := newTestRebuild(t)
	storeErr := fmt.Errorf("error marking report %s as building: disk full", day(10))
	repo.writeErr = storeErr

	_, err := svc.Rebuild(context.Background(), day(10), false)
	assert.Equal(t, storeErr, err, "the store already names the date and step")
	assert.Zero(t, renderer.callCount())
}
