// internal/domain/report/outcome.go
package report

import "fmt"

// OutcomeStatus is the result of a single rebuild. SKIPPED is a normal result.
type OutcomeStatus string

const (
	OutcomeBuilt   OutcomeStatus = "BUILT"
	OutcomeSkipped OutcomeStatus = "SKIPPED"
	OutcomeFailed  OutcomeStatus = "FAILED"
)

// Outcome of rebuilding one date.
type Outcome struct {
	Date        Date
	Status      OutcomeStatus
	Fingerprint Fingerprint // set when BUILT, or the stored one when SKIPPED
	Artifact    string
	Err         error // set when FAILED
}

func (o Outcome) String() string {
	if o.Err != nil {
		return fmt.Sprintf("%s %s: %v", o.Date, o.Status, o.Err)
	}
	return fmt.Sprintf("%s %s", o.Date, o.Status)
}

// ErrorPolicy selects what backfill does when a date fails.
type ErrorPolicy string

const (
	AbortAll           ErrorPolicy = "abort"
	ContinueAndCollect ErrorPolicy = "continue"
)

// ParseErrorPolicy accepts "abort" or "continue".
func ParseErrorPolicy(s string) (ErrorPolicy, error) {
	switch p := ErrorPolicy(s); p {
	case AbortAll, ContinueAndCollect:
		return p, nil
	default:
		return "", fmt.Errorf("unknown error policy %q (want %q or %q)", s, AbortAll, ContinueAndCollect)
	}
}

// BackfillRequest is an inclusive date range plus rebuild options.
type BackfillRequest struct {
	From    Date
	To      Date
	Force   bool
	OnError ErrorPolicy
}

// Validate rejects from > to.
func (r BackfillRequest) Validate() error {
	if r.From.After(r.To) {
		return fmt.Errorf("%w: from %s is after to %s", ErrInvalidRange, r.From, r.To)
	}
	return nil
}

// Days is the number of calendar days covered by the request.
func (r BackfillRequest) Days() int {
	return r.From.DaysUntil(r.To) + 1
}

// BackfillResult holds per-date outcomes in ascending date order.
type BackfillResult struct {
	Outcomes []Outcome
	Aborted  bool
}

// Count returns how many outcomes have the given status.
func (r BackfillResult) Count(status OutcomeStatus) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == status {
			n++
		}
	}
	return n
}

// FailedDates lists the dates to hand back to a retrying caller.
func (r BackfillResult) FailedDates() []Date {
	var dates []Date
	for _, o := range r.Outcomes {
		if o.Status == OutcomeFailed {
			dates = append(dates, o.Date)
		}
	}
	return dates
}
