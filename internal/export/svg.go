package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/hopalong/internal/orbit"
)

type SVGOptions struct {
	Size       int
	Radius     float64
	Background string
	Saturation float64
	Lightness  float64
	// MaxPoints caps the circles written per subset; 0 writes all.
	MaxPoints int
}

func DefaultSVGOptions() SVGOptions {
	return SVGOptions{
		Size:       1024,
		Radius:     0.6,
		Background: "#000000",
		Saturation: orbit.DefaultSaturation,
		Lightness:  orbit.DefaultLightness,
	}
}

// OrbitToSVG draws the display positions of every subset as a scatter, one
// group per subset filled with its hue.
func OrbitToSVG(o *orbit.Orbit, hues orbit.HueTable, opts SVGOptions) string {
	if o == nil || o.NumPoints() == 0 {
		return ""
	}
	if opts.Size <= 0 {
		opts.Size = DefaultSVGOptions().Size
	}
	if opts.Radius <= 0 {
		opts.Radius = DefaultSVGOptions().Radius
	}
	if opts.Background == "" {
		opts.Background = "#000000"
	}

	size := float64(opts.Size)
	span := 2 * o.Scale

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, opts.Size, opts.Size, opts.Size, opts.Size, opts.Background)

	for s, cloud := range o.Subsets {
		fill := hues.Color(s, opts.Saturation, opts.Lightness).Hex()
		fmt.Fprintf(&sb, "<g fill=\"%s\" data-subset=\"%d\">\n", fill, s)

		stride := 1
		if opts.MaxPoints > 0 && len(cloud) > opts.MaxPoints {
			stride = (len(cloud) + opts.MaxPoints - 1) / opts.MaxPoints
		}
		for i := 0; i < len(cloud); i += stride {
			p := cloud[i].Display
			cx := (p.X + o.Scale) / span * size
			cy := size - (p.Y+o.Scale)/span*size
			fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n", cx, cy, opts.Radius)
		}
		sb.WriteString("</g>\n")
	}

	sb.WriteString("</svg>")
	return sb.String()
}
