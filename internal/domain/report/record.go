// internal/domain/report/record.go
package report

import (
	"database/sql"
	"time"
)

// Status of a report date.
type Status string

const (
	StatusPending Status = "PENDING"
	StatusBuilt   Status = "BUILT"
	StatusFailed  Status = "FAILED"
)

// Record is the build metadata stored for a single report date.
// Corresponds to the 'report_records' table.
type Record struct {
	Date        Date
	Status      Status
	Fingerprint string // empty until the first successful build
	ItemCount   int
	LastError   string
	StartedAt   time.Time    // last markBuilding
	BuiltAt     sql.NullTime // last markBuilt
	UpdatedAt   time.Time
}

// IsBuilt reports whether the record is in the BUILT state.
func (r *Record) IsBuilt() bool {
	return r != nil && r.Status == StatusBuilt
}
