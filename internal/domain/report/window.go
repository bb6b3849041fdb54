// internal/domain/report/window.go
package report

import (
	"fmt"
	"time"
)

// Window is the half-open interval [Start, End) of source content a report
// summarizes. Both bounds are in the same reference location.
type Window struct {
	Start time.Time
	End   time.Time
}

// NewWindow validates start < end.
func NewWindow(start, end time.Time) (Window, error) {
	if !start.Before(end) {
		return Window{}, fmt.Errorf("%w: window start %s is not before end %s",
			ErrConfiguration, start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return Window{Start: start, End: end}, nil
}

// Contains reports whether t falls inside [Start, End).
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Duration of the window.
func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

func (w Window) String() string {
	return fmt.Sprintf("[%s, %s)", w.Start.Format(time.RFC3339), w.End.Format(time.RFC3339))
}
