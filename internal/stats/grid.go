package stats

import (
	"time"
)

const (
	daysPerWeek   = 7
	minutesPerDay = 24 * 60
)

// localDate identifies one calendar date in the grid's location.
type localDate struct {
	year  int
	month time.Month
	day   int
}

// Cell is one weekday x time-of-day slot of the weekly histogram.
type Cell struct {
	// OnlineCount accumulates one increment per bucket step a clamped
	// presence interval touches.
	OnlineCount int

	// activityDates holds the distinct local dates on which the observer
	// was confirmed running during this slot. Its size is the cell's
	// sample size for bias correction.
	activityDates map[localDate]struct{}
}

func (c *Cell) registerDate(t time.Time) {
	if c.activityDates == nil {
		c.activityDates = make(map[localDate]struct{})
	}
	y, m, d := t.Date()
	c.activityDates[localDate{year: y, month: m, day: d}] = struct{}{}
}

// ActivityDateCount returns the number of distinct local dates the observer
// was active during this slot.
func (c *Cell) ActivityDateCount() int {
	return len(c.activityDates)
}

// Grid is the 7xB weekly histogram, B = minutes-per-day / bucket width.
// Weekday rows use the Monday=0 convention. All bucketing happens on the
// wall clock of the configured location.
type Grid struct {
	bucketMinutes int
	bucketDur     time.Duration
	perDay        int
	loc           *time.Location
	cells         [][]Cell
}

// NewGrid builds an empty grid. bucketMinutes must evenly divide a day;
// configuration validates that, not the grid.
func NewGrid(bucketMinutes int, loc *time.Location) *Grid {
	perDay := minutesPerDay / bucketMinutes
	cells := make([][]Cell, daysPerWeek)
	for i := range cells {
		cells[i] = make([]Cell, perDay)
	}
	return &Grid{
		bucketMinutes: bucketMinutes,
		bucketDur:     time.Duration(bucketMinutes) * time.Minute,
		perDay:        perDay,
		loc:           loc,
		cells:         cells,
	}
}

// BucketsPerDay returns the number of time-of-day buckets per weekday.
func (g *Grid) BucketsPerDay() int {
	return g.perDay
}

// BucketMinutes returns the configured bucket width in minutes.
func (g *Grid) BucketMinutes() int {
	return g.bucketMinutes
}

// Cell returns the cell at the given weekday (Monday=0) and bucket index.
func (g *Grid) Cell(day, bucket int) *Cell {
	return &g.cells[day][bucket]
}

// cellFor maps a local instant onto its cell.
func (g *Grid) cellFor(local time.Time) *Cell {
	minutes := local.Hour()*60 + local.Minute()
	return &g.cells[mondayIndex(local.Weekday())][minutes/g.bucketMinutes]
}

// mondayIndex converts Go's Sunday-first weekday to the Monday=0 convention.
func mondayIndex(d time.Weekday) int {
	return (int(d) + 6) % 7
}

// truncateToBucket floors a local instant to its bucket boundary on the
// local wall clock.
func (g *Grid) truncateToBucket(t time.Time) time.Time {
	minutes := (t.Hour()*60 + t.Minute()) / g.bucketMinutes * g.bucketMinutes
	return time.Date(t.Year(), t.Month(), t.Day(), minutes/60, minutes%60, 0, 0, g.loc)
}

// AddSpan attributes a clamped presence interval to every bucket it touches.
// The start is truncated down to its bucket boundary and the walk advances
// one bucket width at a time while still before the interval's end,
// incrementing each touched cell once. A sub-bucket sliver at the very start
// still yields a full increment for the bucket it truncates into.
func (g *Grid) AddSpan(span TimeSpan) {
	end := span.Stop.In(g.loc)
	cur := g.truncateToBucket(span.Start.In(g.loc))
	for cur.Before(end) {
		cell := g.cellFor(cur)
		cell.OnlineCount++
		// The observer had to be up to see this interval, so the date
		// counts as observed as well.
		cell.registerDate(cur)
		cur = cur.Add(g.bucketDur)
	}
}

// MarkActive records that the observer was confirmed running across span,
// updating activity dates only. Boundary buckets covered for half a bucket
// width or less are skipped so sliver exposure does not inflate sample
// sizes; fully covered buckets always register. This is deliberately
// stricter than the exact truncation AddSpan uses.
func (g *Grid) MarkActive(span TimeSpan) {
	start := span.Start.In(g.loc)
	end := span.Stop.In(g.loc)

	first := g.truncateToBucket(start)
	cur := first
	if !first.Equal(start) {
		// Leading partial bucket; the span may also end inside it.
		boundary := first.Add(g.bucketDur)
		covered := boundary.Sub(start)
		if end.Before(boundary) {
			covered = end.Sub(start)
		}
		if covered > g.bucketDur/2 {
			g.cellFor(first).registerDate(first)
		}
		cur = boundary
	}

	// Fully covered buckets.
	for !cur.Add(g.bucketDur).After(end) {
		g.cellFor(cur).registerDate(cur)
		cur = cur.Add(g.bucketDur)
	}

	// Trailing partial bucket.
	if cur.Before(end) && end.Sub(cur) > g.bucketDur/2 {
		g.cellFor(cur).registerDate(cur)
	}
}
