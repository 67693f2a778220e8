// Package grid models the responsive tile grid: breakpoint tiers, layout
// rectangles, per-breakpoint layout maps, new-tile placement, and the
// engine that moves and resizes tiles inside one breakpoint's columns.
//
// All geometry is in grid units (columns and rows). Mapping grid units to
// terminal cells is the caller's job.
package grid

// Breakpoint names a viewport-width tier.
type Breakpoint string

const (
	LG  Breakpoint = "lg"
	MD  Breakpoint = "md"
	SM  Breakpoint = "sm"
	XS  Breakpoint = "xs"
	XXS Breakpoint = "xxs"
)

// Canonical is the breakpoint whose geometry is persisted server-side.
const Canonical = LG

// Tier pairs a breakpoint with its pixel lower bound and column count.
type Tier struct {
	Name     Breakpoint
	MinWidth int
	Cols     int
}

// tiers is ordered widest first; Resolve depends on that order.
var tiers = []Tier{
	{Name: LG, MinWidth: 1200, Cols: 12},
	{Name: MD, MinWidth: 996, Cols: 10},
	{Name: SM, MinWidth: 768, Cols: 6},
	{Name: XS, MinWidth: 480, Cols: 4},
	{Name: XXS, MinWidth: 0, Cols: 2},
}

// Breakpoints returns every breakpoint name, widest first.
func Breakpoints() []Breakpoint {
	out := make([]Breakpoint, len(tiers))
	for i, t := range tiers {
		out[i] = t.Name
	}
	return out
}

// Resolve returns the breakpoint for a viewport of the given pixel width:
// the tier with the largest lower bound that is <= width. Negative widths
// resolve to the narrowest tier.
func Resolve(width int) Breakpoint {
	for _, t := range tiers {
		if width >= t.MinWidth {
			return t.Name
		}
	}
	return tiers[len(tiers)-1].Name
}

// Columns returns the column count for bp, or 0 if bp is unknown.
func Columns(bp Breakpoint) int {
	for _, t := range tiers {
		if t.Name == bp {
			return t.Cols
		}
	}
	return 0
}

// Valid reports whether bp is one of the fixed tiers.
func (bp Breakpoint) Valid() bool {
	return Columns(bp) > 0
}

// String implements fmt.Stringer.
func (bp Breakpoint) String() string {
	return string(bp)
}
