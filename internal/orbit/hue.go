package orbit

import (
	"math/rand/v2"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Default HSL components applied to subset hues.
const (
	DefaultSaturation = 0.8
	DefaultLightness  = 0.5
)

// HueTable maps subset index to a hue in [0, 1).
type HueTable []float64

// AssignHues draws a fresh hue for each of n subsets.
func AssignHues(rng *rand.Rand, n int) HueTable {
	h := make(HueTable, n)
	for i := range h {
		h[i] = rng.Float64()
	}
	return h
}

// Hue returns the hue for subset s, or 0 if s is out of range.
func (h HueTable) Hue(s int) float64 {
	if s < 0 || s >= len(h) {
		return 0
	}
	return h[s]
}

// Color converts the hue of subset s into an RGB colour.
func (h HueTable) Color(s int, saturation, lightness float64) colorful.Color {
	return HueColor(h.Hue(s), saturation, lightness)
}

// HueColor converts a [0, 1) hue into a clamped RGB colour.
func HueColor(hue, saturation, lightness float64) colorful.Color {
	return colorful.Hsl(hue*360, saturation, lightness).Clamped()
}
