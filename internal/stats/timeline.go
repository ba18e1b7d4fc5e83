package stats

import (
	"fmt"
	"time"
)

// UptimeEventKind tags a point on the observer's inferred up/down timeline.
type UptimeEventKind int

const (
	// UptimeStart marks the observer coming up.
	UptimeStart UptimeEventKind = iota
	// UptimeStop marks the observer going down.
	UptimeStop
)

func (k UptimeEventKind) String() string {
	if k == UptimeStart {
		return "Start"
	}
	return "Stop"
}

// UptimeEvent marks where the observing application started or stopped
// running.
type UptimeEvent struct {
	Timestamp time.Time
	Kind      UptimeEventKind
}

// Timeline is the observer's inferred uptime as a strictly alternating
// Start, Stop, Start, Stop, ... sequence, always terminated by a Stop.
// Built once per run by ReconstructUptime and read-only afterwards.
type Timeline []UptimeEvent

// ReconstructUptime infers when the observer was running from its activity
// log. Consecutive timestamps no further apart than threshold mean the
// observer was continuously up across the gap; a larger gap means it went
// idle at the gap's left edge. Every within-threshold gap is also registered
// against the grid's activity dates, so bucket sample sizes reflect
// confirmed observation time.
//
// Timestamps must be non-decreasing; a negative gap is an input integrity
// error. An empty or single-element log yields an empty timeline.
func ReconstructUptime(timestamps []time.Time, threshold time.Duration, grid *Grid) (Timeline, error) {
	var timeline Timeline
	running := false
	for i := 1; i < len(timestamps); i++ {
		t1, t2 := timestamps[i-1], timestamps[i]
		gap := t2.Sub(t1)
		switch {
		case gap < 0:
			return nil, fmt.Errorf("activity log out of order: %s followed by %s",
				t1.Format(time.RFC3339), t2.Format(time.RFC3339))
		case gap <= threshold:
			if !running {
				running = true
				timeline = append(timeline, UptimeEvent{Timestamp: t1, Kind: UptimeStart})
			}
			grid.MarkActive(NewTimeSpan(t1, t2))
		case running:
			running = false
			timeline = append(timeline, UptimeEvent{Timestamp: t1, Kind: UptimeStop})
		}
	}

	// The timeline must always end on a Stop; if the log ran out while the
	// observer was still up, close it at the last timestamp.
	if running {
		timeline = append(timeline, UptimeEvent{Timestamp: timestamps[len(timestamps)-1], Kind: UptimeStop})
	}
	return timeline, nil
}
