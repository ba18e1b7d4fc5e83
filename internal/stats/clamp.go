package stats

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// ErrOutsideUptime marks a presence interval that cannot be attributed to
// any reconstructed uptime window. This is expected with noisy logs: callers
// drop the interval and move on.
var ErrOutsideUptime = errors.New("interval outside observer uptime")

// Clamp intersects span with the observer's uptime timeline and returns the
// portion(s) of span during which the observer was actually up: the whole
// span, one trimmed end, or both ends around a mid-span outage. It returns
// ErrOutsideUptime when no portion of the span is attributable. Any other
// error is an integrity fault and aborts the run.
func (tl Timeline) Clamp(span TimeSpan) ([]TimeSpan, error) {
	if len(tl) == 0 {
		// No uptime was ever established, so nothing can be attributed.
		return nil, ErrOutsideUptime
	}

	// Event at or immediately before span.Start: exact hits are used as-is,
	// otherwise step back from the insertion point.
	startIdx := tl.search(span.Start)
	if startIdx == len(tl) || !tl[startIdx].Timestamp.Equal(span.Start) {
		startIdx--
	}
	if startIdx < 0 {
		return nil, fmt.Errorf("uptime timeline does not cover interval starting %s",
			span.Start.Format(time.RFC3339))
	}

	// Insertion point for span.Stop. Equal to len(tl) when the span ends
	// after the last recorded event.
	stopIdx := tl.search(span.Stop)
	stopNormal := stopIdx < len(tl) && tl[stopIdx].Kind == UptimeStop

	if tl[startIdx].Kind == UptimeStop {
		// The observer was down when the span began.
		if !stopNormal {
			// ...and the span does not end against a clean Stop boundary
			// either. Nothing here can be attributed to uptime.
			return nil, ErrOutsideUptime
		}
		// Down at the start but a clean end: only the tail was observed,
		// from the Start that precedes the closing Stop.
		return []TimeSpan{NewTimeSpan(tl[stopIdx-1].Timestamp, span.Stop)}, nil
	}

	if !stopNormal {
		// Up at the start, but the observer went down before the span
		// ended: only the head was observed.
		return []TimeSpan{NewTimeSpan(span.Start, tl[startIdx+1].Timestamp)}, nil
	}

	if startIdx != stopIdx-1 {
		// The observer went down and came back up strictly inside the
		// span; the outage in the middle is not attributable.
		return []TimeSpan{
			NewTimeSpan(span.Start, tl[startIdx+1].Timestamp),
			NewTimeSpan(tl[stopIdx-1].Timestamp, span.Stop),
		}, nil
	}

	// Start..Stop brackets the whole span; the observer saw all of it.
	return []TimeSpan{span}, nil
}

// search returns the first index whose timestamp is not before t, which may
// be len(tl).
func (tl Timeline) search(t time.Time) int {
	return sort.Search(len(tl), func(i int) bool {
		return !tl[i].Timestamp.Before(t)
	})
}
