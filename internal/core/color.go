package core

// Color represents a foreground color for a canvas cell.
// The platform layer maps it to a terminal color.
type Color uint8

// Palette used by the viewer.
const (
	ColorDefault Color = iota
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorWhite
	ColorBrightRed
	ColorBrightGreen
	ColorBrightYellow
	ColorBrightBlue
	ColorBrightMagenta
	ColorBrightCyan
	ColorBrightWhite
	ColorOrange
	ColorGray
)

// depthRamp goes from the lowest layer to the highest.
var depthRamp = []Color{
	ColorBlue,
	ColorCyan,
	ColorGreen,
	ColorBrightGreen,
	ColorYellow,
	ColorOrange,
	ColorBrightRed,
}

// DepthColor picks a color for height z within [lo, hi], so bodies on
// different layers are told apart at a glance.
func DepthColor(z, lo, hi float64) Color {
	if hi <= lo {
		return depthRamp[0]
	}
	t := ClampF((z-lo)/(hi-lo), 0, 1)
	return depthRamp[int(t*float64(len(depthRamp)-1)+0.5)]
}
