package stats

import "time"

// TimeSpan is a UTC interval. Callers keep Start <= Stop; the type itself
// only offers the IsNegativeOrZero check.
type TimeSpan struct {
	Start time.Time
	Stop  time.Time
}

// NewTimeSpan creates a span from start to stop.
func NewTimeSpan(start, stop time.Time) TimeSpan {
	return TimeSpan{Start: start, Stop: stop}
}

// IsNegativeOrZero reports whether the span has no positive extent.
func (s TimeSpan) IsNegativeOrZero() bool {
	return !s.Stop.After(s.Start)
}

// Duration returns Stop - Start. Negative for inverted spans.
func (s TimeSpan) Duration() time.Duration {
	return s.Stop.Sub(s.Start)
}
