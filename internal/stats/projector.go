package stats

// ValueKind says how a projected cell should be rendered.
type ValueKind int

const (
	// NoData marks a cell below the activation floor, rendered blank.
	NoData ValueKind = iota
	// Zero marks a below-floor cell rendered as a literal zero.
	Zero
	// Count carries a raw online count.
	Count
	// Ratio carries a bias-corrected count-per-active-date rate.
	Ratio
)

// Value is one projected cell.
type Value struct {
	Kind  ValueKind
	Count int
	Ratio float64
}

// ProjectorOptions controls how grid cells are folded into output values.
type ProjectorOptions struct {
	// Normalize divides each count by the cell's sample size, correcting
	// for the observer being up more often on some weekdays than others.
	Normalize bool
	// MinActivations is the smallest sample size a cell needs before its
	// value is reported at all. At least 1.
	MinActivations int
	// NoDataZero renders below-floor cells as a literal zero instead of
	// leaving them blank.
	NoDataZero bool
}

// Project folds the grid into renderable values, one per cell, indexed
// [weekday][bucket] with Monday first.
func (g *Grid) Project(opts ProjectorOptions) [][]Value {
	out := make([][]Value, daysPerWeek)
	for day := range out {
		out[day] = make([]Value, g.perDay)
		for b := range out[day] {
			cell := &g.cells[day][b]
			n := cell.ActivityDateCount()
			switch {
			case n < opts.MinActivations:
				if opts.NoDataZero {
					out[day][b] = Value{Kind: Zero}
				} else {
					out[day][b] = Value{Kind: NoData}
				}
			case opts.Normalize:
				out[day][b] = Value{
					Kind:  Ratio,
					Count: cell.OnlineCount,
					Ratio: float64(cell.OnlineCount) / float64(n),
				}
			default:
				out[day][b] = Value{Kind: Count, Count: cell.OnlineCount}
			}
		}
	}
	return out
}
