// internal/domain/report/errors.go
package report

import "errors"

var (
	// ErrConfiguration means the calendar (or other static configuration) is
	// incomplete or misconfigured. Fatal, never retried.
	ErrConfiguration = errors.New("configuration error")
	// ErrInvalidRange rejects a malformed backfill request before any work starts.
	ErrInvalidRange = errors.New("invalid backfill range")
	// ErrFetch and ErrRender are failures of the fetch/render collaborator.
	// They are recorded per date as FAILED.
	ErrFetch  = errors.New("fetch failed")
	ErrRender = errors.New("render failed")
	// ErrNotification is best-effort and never affects build status.
	ErrNotification = errors.New("notification failed")

	ErrRecordNotFound = errors.New("report record not found")
)
