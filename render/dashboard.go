// Package render draws the battery voltage dashboard: a left voltage axis, a
// bottom battery index legend, and one vertical bar per battery.
package render

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// Styles for the panels and the bars. tcell styles replace ncurses-style
// colour-pair registration.
var (
	legendStyle     = tcell.StyleDefault.Foreground(tcell.ColorAqua)
	legendBoldStyle = legendStyle.Bold(true)
	barStyle        = tcell.StyleDefault.Foreground(tcell.ColorWhite).Reverse(true)
	blankStyle      = tcell.StyleDefault
)

// Dashboard is the full-screen bar chart primitive. It holds nothing beyond
// the geometry and the readings of the current frame.
type Dashboard struct {
	*tview.Box
	geo      Geometry
	readings []int
}

// NewDashboard creates a dashboard for the given geometry.
func NewDashboard(geo Geometry) *Dashboard {
	return &Dashboard{Box: tview.NewBox(), geo: geo}
}

// SetReadings replaces the readings shown on the next draw. The slice is
// copied, so the caller may reuse it. Out-of-range values are clamped at
// draw time, never rejected.
func (d *Dashboard) SetReadings(readings []int) {
	d.readings = append(d.readings[:0], readings...)
}

// Draw paints the axis legend, the battery index row, and one bar per
// reading, then parks the cursor on the status row. Bars are painted in two
// phases on every frame with no diffing: filled cells from the baseline up
// to the bar height, blank cells from there to the panel top, so a lower
// reading erases the taller bar of the previous frame.
func (d *Dashboard) Draw(screen tcell.Screen) {
	d.Box.DrawForSubclass(screen, d)
	g := d.geo

	printAt(screen, OffsetLeft-6, 0, legendBoldStyle, "Volts:")
	for level := 0; level <= g.Levels(); level += 2 {
		volts := (float64(g.VoltsMin) + float64(level)*g.VoltsStep()) / 10
		printAt(screen, OffsetLeft-6, g.Row(level), legendStyle, fmt.Sprintf("%5.1f", volts))
	}
	printAt(screen, 1, g.Row(-1), legendBoldStyle, "Battery:")
	for i := range d.readings {
		printAt(screen, g.Column(i, 0), g.Row(-1), legendStyle, fmt.Sprintf("%2d", i+1))
	}

	for i, v := range d.readings {
		height := g.BarHeight(v)
		for level := 0; level <= g.Levels(); level++ {
			style := barStyle
			if level > height {
				style = blankStyle
			}
			for sub := 0; sub < g.BarWidth; sub++ {
				screen.SetContent(g.Column(i, sub), g.Row(level), ' ', nil, style)
			}
		}
	}

	screen.ShowCursor(0, g.Row(-2))
}

func printAt(screen tcell.Screen, x, y int, style tcell.Style, s string) {
	for i, r := range s {
		screen.SetContent(x+i, y, r, nil, style)
	}
}
