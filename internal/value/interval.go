package value

import (
	"fmt"
	"time"
)

// Interval is the half-open instant range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// NewInterval returns [start, end). end must not precede start.
func NewInterval(start, end time.Time) (Interval, error) {
	if end.Before(start) {
		return Interval{}, fmt.Errorf("interval end %s precedes start %s", end.Format(time.RFC3339Nano), start.Format(time.RFC3339Nano))
	}
	return Interval{Start: start, End: end}, nil
}

// Contains reports start <= t < end.
// Start is inclusive and End exclusive; an empty interval contains nothing.
func (i Interval) Contains(t time.Time) bool {
	return !t.Before(i.Start) && t.Before(i.End)
}

// String renders "start/end" in RFC 3339 (ISO 8601 interval notation).
func (i Interval) String() string {
	return i.Start.Format(time.RFC3339Nano) + "/" + i.End.Format(time.RFC3339Nano)
}
