// internal/domain/report/repository.go
package report

import "context"

// Repository is the Report Identity Store. It exclusively owns the Record
// lifecycle; nothing else writes records.
//
// It assumes a single writer per process run.
type Repository interface {
	// Get returns ErrRecordNotFound when no record exists for date.
	Get(ctx context.Context, date Date) (*Record, error)
	// MarkBuilding creates or moves the record to PENDING, stamped with now.
	MarkBuilding(ctx context.Context, date Date) error
	// MarkBuilt moves the record to BUILT and stores the fingerprint.
	MarkBuilt(ctx context.Context, date Date, fp Fingerprint) error
	// MarkFailed moves the record to FAILED, keeping the last known fingerprint.
	MarkFailed(ctx context.Context, date Date, cause error) error
	IsBuilt(ctx context.Context, date Date) (bool, error)
	// List returns records in [from, to] in ascending date order.
	List(ctx context.Context, from, to Date) ([]*Record, error)
}
