package visuals

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"optime/internal/stats"
)

var weekdays = [...]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

const cellWidth = 8

// Options controls table rendering.
type Options struct {
	// Color enables the heat-shaded view. Callers normally tie this to
	// stdout being a terminal.
	Color bool
}

// RenderTable writes the projected grid as one row per time-of-day bucket
// and one column per weekday, Monday first. With color enabled, cells are
// shaded relative to the hottest cell in the grid.
func RenderTable(w io.Writer, grid [][]stats.Value, bucketMinutes int, opts Options) error {
	if len(grid) == 0 {
		return nil
	}
	perDay := len(grid[0])
	max := maxMagnitude(grid)

	var b strings.Builder
	b.WriteString(pad("bucket", 7))
	for _, day := range weekdays {
		cell := pad(day, cellWidth)
		if opts.Color {
			cell = color.New(color.Bold).Sprint(cell)
		}
		b.WriteString(cell)
	}
	b.WriteByte('\n')

	for bucket := 0; bucket < perDay; bucket++ {
		b.WriteString(pad(bucketLabel(bucketMinutes, bucket), 7))
		for day := range grid {
			v := grid[day][bucket]
			cell := pad(formatValue(v), cellWidth)
			if opts.Color {
				cell = heatColor(magnitude(v), max).Sprint(cell)
			}
			b.WriteString(cell)
		}
		b.WriteByte('\n')
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// bucketLabel renders a bucket index as its HH:MM start-of-bucket time.
func bucketLabel(bucketMinutes, index int) string {
	minutes := bucketMinutes * index
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

func formatValue(v stats.Value) string {
	switch v.Kind {
	case stats.NoData:
		return ""
	case stats.Zero:
		return "0"
	case stats.Count:
		return strconv.Itoa(v.Count)
	default:
		return strconv.FormatFloat(v.Ratio, 'g', 4, 64)
	}
}

// magnitude is the comparable size of a cell regardless of projection mode.
func magnitude(v stats.Value) float64 {
	switch v.Kind {
	case stats.Count:
		return float64(v.Count)
	case stats.Ratio:
		return v.Ratio
	default:
		return 0
	}
}

func maxMagnitude(grid [][]stats.Value) float64 {
	var max float64
	for _, day := range grid {
		for _, v := range day {
			if m := magnitude(v); m > max {
				max = m
			}
		}
	}
	return max
}

// heatColor shades a cell by how close it is to the hottest cell.
func heatColor(m, max float64) *color.Color {
	if max <= 0 || m <= 0 {
		return color.New(color.FgHiBlack)
	}
	switch {
	case m >= 0.75*max:
		return color.New(color.FgRed)
	case m >= 0.5*max:
		return color.New(color.FgYellow)
	case m >= 0.25*max:
		return color.New(color.FgWhite)
	default:
		return color.New(color.FgHiBlack)
	}
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s + " "
	}
	return s + strings.Repeat(" ", width-len(s))
}
