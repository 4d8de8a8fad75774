package viz

import (
	"math"
	"sort"

	"github.com/charmbracelet/lipgloss"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/san-kum/hopalong/internal/levels"
	"github.com/san-kum/hopalong/internal/orbit"
)

type Vec3 struct {
	X, Y, Z float64
}

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

// RotateZ spins v about the depth axis.
func (v Vec3) RotateZ(a float64) Vec3 {
	c, s := math.Cos(a), math.Sin(a)
	return Vec3{v.X*c - v.Y*s, v.X*s + v.Y*c, v.Z}
}

// Projector is a perspective camera that always looks at the origin.
type Projector struct {
	FOV       float64 // vertical, degrees
	Near, Far float64
}

func NewProjector(fov, scale float64) Projector {
	return Projector{FOV: fov, Near: 1, Far: 3 * scale}
}

// Project maps a world point onto a sw x sh screen seen from eye. It returns
// the screen position, the distance along the view axis and whether the
// point falls inside the frustum.
func (p Projector) Project(pt, eye Vec3, sw, sh int) (int, int, float64, bool) {
	rel := pt.Sub(eye)

	// yaw then pitch so the eye faces the origin
	r := math.Hypot(eye.X, eye.Z)
	yaw := math.Atan2(eye.X, eye.Z)
	yc, ys := math.Cos(yaw), math.Sin(yaw)
	rel.X, rel.Z = rel.X*yc-rel.Z*ys, rel.X*ys+rel.Z*yc

	pitch := math.Atan2(eye.Y, r)
	pc, ps := math.Cos(pitch), math.Sin(pitch)
	rel.Y, rel.Z = rel.Y*pc-rel.Z*ps, rel.Y*ps+rel.Z*pc

	d := -rel.Z
	if d < p.Near || d > p.Far {
		return 0, 0, d, false
	}

	f := float64(sh) / 2 / math.Tan(p.FOV*math.Pi/360)
	sx := int(math.Round(float64(sw)/2 + rel.X*f/d))
	sy := int(math.Round(float64(sh)/2 - rel.Y*f/d))
	return sx, sy, d, sx >= 0 && sx < sw && sy >= 0 && sy < sh
}

const (
	// DefaultFogDensity thins out the farthest levels.
	DefaultFogDensity = 0.0005
	// DefaultMaxPoints bounds how many points of one group are plotted per frame.
	DefaultMaxPoints = 2000

	fogBands = 8
	minFog   = 0.05
)

type inkKey struct {
	gen    uint64
	subset int
	band   int
}

// Renderer draws the level pool onto a canvas. Each (generation, subset, fog
// band) gets one palette entry.
type Renderer struct {
	Projector
	Saturation float64
	Lightness  float64
	FogDensity float64
	MaxPoints  int

	palette []lipgloss.Style
	inks    map[inkKey]int
}

func NewRenderer(p Projector, saturation, lightness float64) *Renderer {
	return &Renderer{
		Projector:  p,
		Saturation: saturation,
		Lightness:  lightness,
		FogDensity: DefaultFogDensity,
		MaxPoints:  DefaultMaxPoints,
		inks:       make(map[inkKey]int),
	}
}

// Palette is valid until the next Draw.
func (r *Renderer) Palette() []lipgloss.Style { return r.palette }

// Draw clears c and plots every group, farthest first so nearer levels win
// contested cells. It returns the number of dots plotted.
func (r *Renderer) Draw(c *Canvas, groups []levels.Group, eye Vec3) int {
	c.Clear()
	r.palette = r.palette[:0]
	clear(r.inks)

	order := make([]int, len(groups))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return groups[order[a]].Depth < groups[order[b]].Depth
	})

	sw, sh := c.SubWidth(), c.SubHeight()
	plotted := 0
	for _, i := range order {
		g := &groups[i]
		gen := g.Generation()
		if gen == nil {
			continue
		}
		pts := g.Points()
		stride := 1
		if r.MaxPoints > 0 && len(pts) > r.MaxPoints {
			stride = (len(pts) + r.MaxPoints - 1) / r.MaxPoints
		}

		for k := 0; k < len(pts); k += stride {
			w := Vec3{pts[k].Display.X, pts[k].Display.Y, 0}.RotateZ(g.Rotation)
			w.Z = g.Depth
			x, y, d, ok := r.Project(w, eye, sw, sh)
			if !ok {
				continue
			}
			band, visible := r.fogBand(d)
			if !visible {
				continue
			}
			c.Set(x, y, r.ink(inkKey{gen.ID, g.Subset, band}, g.Hue()))
			plotted++
		}
	}
	return plotted
}

// fogBand quantizes exp(-(density*d)^2) so nearby points share a colour.
func (r *Renderer) fogBand(d float64) (int, bool) {
	if r.FogDensity <= 0 {
		return 0, true
	}
	x := r.FogDensity * d
	f := math.Exp(-x * x)
	if f < minFog {
		return 0, false
	}
	return int((1 - f) * fogBands), true
}

func (r *Renderer) ink(k inkKey, hue float64) int {
	if i, ok := r.inks[k]; ok {
		return i
	}
	fog := 1 - float64(k.band)/fogBands
	col := hueHex(hue, r.Saturation, r.Lightness*fog)
	r.palette = append(r.palette, lipgloss.NewStyle().Foreground(lipgloss.Color(col)))
	r.inks[k] = len(r.palette) - 1
	return r.inks[k]
}

func hueHex(hue, saturation, lightness float64) string {
	return orbit.HueColor(hue, saturation, lightness).Hex()
}

// Blend mixes two theme colours in HCL space.
func Blend(a, b lipgloss.Color, t float64) lipgloss.Color {
	ca, err := colorful.Hex(string(a))
	if err != nil {
		return b
	}
	cb, err := colorful.Hex(string(b))
	if err != nil {
		return a
	}
	return lipgloss.Color(ca.BlendHcl(cb, t).Clamped().Hex())
}
