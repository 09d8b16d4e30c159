package render

import (
	"math"

	"battmon/config"
)

// Fixed panel offsets, in screen cells. The left margin holds the voltage
// axis labels; the rows below the bar baseline hold the battery index legend
// and the cursor-rest line.
const (
	OffsetLeft   = 10
	OffsetBottom = 3
)

// Geometry maps voltage readings and battery indices onto screen cells. It
// is a pure value; level zero sits on the baseline row and negative levels
// address the reserved legend rows below it.
type Geometry struct {
	ScreenHeight int
	BarWidth     int
	BarSpacing   int
	VoltsMin     int // tenths of a volt
	VoltsMax     int // tenths of a volt
}

// NewGeometry derives the drawing geometry from the runtime configuration.
func NewGeometry(cfg config.Config) Geometry {
	return Geometry{
		ScreenHeight: cfg.ScreenHeight,
		BarWidth:     cfg.BarWidth,
		BarSpacing:   cfg.SpaceBetweenBars,
		VoltsMin:     cfg.VoltsMin,
		VoltsMax:     cfg.VoltsMax,
	}
}

// OffsetTop is the topmost usable screen row.
func (g Geometry) OffsetTop() int {
	return g.ScreenHeight - 1
}

// Levels is the highest drawable level above the baseline.
func (g Geometry) Levels() int {
	return g.OffsetTop() - OffsetBottom
}

// VoltsStep is the voltage represented by one screen row, in tenths.
func (g Geometry) VoltsStep() float64 {
	return float64(g.VoltsMax-g.VoltsMin) / float64(g.Levels())
}

// Row converts a level above the baseline to a screen row.
func (g Geometry) Row(level int) int {
	return g.ScreenHeight - OffsetBottom - level
}

// Column converts a battery index and a sub-column within its bar to a
// screen column.
func (g Geometry) Column(bar, sub int) int {
	return 1 + OffsetLeft + (g.BarSpacing+g.BarWidth)*bar + sub
}

// Clamp bounds a reading to the displayable voltage range.
func (g Geometry) Clamp(v int) int {
	if v < g.VoltsMin {
		return g.VoltsMin
	}
	if v > g.VoltsMax {
		return g.VoltsMax
	}
	return v
}

// BarHeight converts a reading to the topmost filled level of its bar,
// rounding half away from zero. The bar occupies levels 0 through BarHeight
// inclusive, so a reading at VoltsMin still fills the baseline row.
func (g Geometry) BarHeight(v int) int {
	return int(math.Round(float64(g.Clamp(v)-g.VoltsMin) / g.VoltsStep()))
}
