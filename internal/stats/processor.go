package stats

import (
	"errors"
	"fmt"
	"time"

	"optime/internal/eventlog"

	"github.com/rs/zerolog/log"
)

// Options configures a pipeline run.
type Options struct {
	// Threshold is the running-detection gap: consecutive activity
	// timestamps closer together than this imply the observer was up for
	// the whole gap.
	Threshold time.Duration
	// FriendIDs, when non-nil, restricts presence rows to these user ids.
	FriendIDs map[string]struct{}
	// StartTime, when set, ignores presence rows before this instant.
	StartTime time.Time
}

// Processor folds one run's event streams into a bucket grid: activity
// timestamps become the uptime timeline, presence rows become clamped
// intervals, clamped intervals become bucket counts. Single-threaded by
// design; the grid has exactly one writer.
type Processor struct {
	grid *Grid
	opts Options

	timeline Timeline
	online   map[string]time.Time

	clamped int
	dropped int
}

// NewProcessor creates a processor writing into grid.
func NewProcessor(grid *Grid, opts Options) *Processor {
	return &Processor{
		grid:   grid,
		opts:   opts,
		online: make(map[string]time.Time),
	}
}

// Run executes the full pipeline: uptime reconstruction over the activity
// log, then clamping and aggregation of every presence interval.
func (p *Processor) Run(activity []time.Time, presence []eventlog.PresenceEvent) error {
	timeline, err := ReconstructUptime(activity, p.opts.Threshold, p.grid)
	if err != nil {
		return err
	}
	p.timeline = timeline
	log.Debug().Int("events", len(timeline)).Msg("Reconstructed observer uptime timeline")

	for _, row := range presence {
		if err := p.consume(row); err != nil {
			return err
		}
	}
	log.Info().
		Int("intervals", p.clamped).
		Int("dropped", p.dropped).
		Msg("Presence analysis complete")
	return nil
}

// Timeline returns the uptime timeline reconstructed by the last Run.
func (p *Processor) Timeline() Timeline {
	return p.timeline
}

// Dropped returns how many presence intervals fell entirely outside
// observer uptime during the last Run.
func (p *Processor) Dropped() int {
	return p.dropped
}

func (p *Processor) consume(row eventlog.PresenceEvent) error {
	if !p.opts.StartTime.IsZero() && row.CreatedAt.Before(p.opts.StartTime) {
		return nil
	}
	if p.opts.FriendIDs != nil {
		if _, ok := p.opts.FriendIDs[row.UserID]; !ok {
			return nil
		}
	}

	switch row.Kind {
	case eventlog.Online:
		// A second Online with no Offline in between replaces the first:
		// the earlier sighting has no usable end.
		p.online[row.UserID] = row.CreatedAt
	case eventlog.Offline:
		onlineAt, ok := p.online[row.UserID]
		if !ok {
			// Offline with no matching Online; nothing to pair.
			return nil
		}
		delete(p.online, row.UserID)

		span := NewTimeSpan(onlineAt, row.CreatedAt)
		if span.IsNegativeOrZero() {
			return fmt.Errorf("non-positive presence interval for %s: online %s, offline %s",
				row.DisplayName, onlineAt.Format(time.RFC3339), row.CreatedAt.Format(time.RFC3339))
		}

		spans, err := p.timeline.Clamp(span)
		if err != nil {
			if errors.Is(err, ErrOutsideUptime) {
				p.dropped++
				return nil
			}
			return err
		}
		for _, s := range spans {
			if s.IsNegativeOrZero() {
				return fmt.Errorf("non-positive clamped interval for %s", row.DisplayName)
			}
			p.grid.AddSpan(s)
		}
		p.clamped++
	}
	return nil
}
