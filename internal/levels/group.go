package levels

import "github.com/san-kum/hopalong/internal/orbit"

// State is the per-tick transition a group went through.
type State int

const (
	Scrolling State = iota
	Recycled
	Repainting
)

func (s State) String() string {
	switch s {
	case Scrolling:
		return "scrolling"
	case Recycled:
		return "recycled"
	case Repainting:
		return "repainting"
	}
	return "unknown"
}

// Generation is one published orbit together with its hue table.
type Generation struct {
	ID    uint64
	Orbit *orbit.Orbit
	Hues  orbit.HueTable
}

// Params returns the parameters the generation was built from.
func (g *Generation) Params() orbit.Params {
	return g.Orbit.Params
}

// Group is one rendering unit of the pool.
type Group struct {
	Level    int
	Subset   int
	Depth    float64
	Rotation float64

	NeedsRepaint bool
	State        State
	Repaints     int

	gen *Generation
}

// Generation is the handle the group was last painted from, or nil.
func (g *Group) Generation() *Generation { return g.gen }

// Points returns the shared display cloud for the group's subset.
func (g *Group) Points() orbit.PointCloud {
	if g.gen == nil || g.Subset >= len(g.gen.Orbit.Subsets) {
		return nil
	}
	return g.gen.Orbit.Subsets[g.Subset]
}

// Hue returns the painted hue for the group's subset.
func (g *Group) Hue() float64 {
	if g.gen == nil {
		return 0
	}
	return g.gen.Hues.Hue(g.Subset)
}

// Params returns the parameters active when the group was last painted.
func (g *Group) Params() (orbit.Params, bool) {
	if g.gen == nil {
		return orbit.Params{}, false
	}
	return g.gen.Params(), true
}

func (g *Group) paint(gen *Generation) {
	g.gen = gen
	g.NeedsRepaint = false
	g.Repaints++
}
