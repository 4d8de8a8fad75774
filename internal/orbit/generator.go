package orbit

import (
	"fmt"
	"math"
	"math/rand/v2"

	"golang.org/x/sync/errgroup"
)

const (
	// DefaultScale is the half-width of the display square points are mapped into.
	DefaultScale = 1500.0

	// SeedScale spaces the starting offsets of consecutive subsets.
	SeedScale = 0.005

	// MinSpan is the narrowest bounding-box side that is still normalized.
	MinSpan = 1e-9
)

type Vec2 struct {
	X, Y float64
}

// Point keeps the raw recurrence output alongside its display position.
type Point struct {
	Raw     Vec2
	Display Vec2
}

// PointCloud is the ordered output of one subset.
type PointCloud []Point

// Orbit is one complete generation. It is built wholesale and never patched.
type Orbit struct {
	Params Params

	XMin, XMax float64
	YMin, YMax float64
	ScaleX     float64
	ScaleY     float64
	Scale      float64

	Subsets []PointCloud

	// Reseeds counts steps that produced non-finite values and were restarted.
	Reseeds int
	// DegenerateX and DegenerateY flag axes collapsed to display 0.
	DegenerateX bool
	DegenerateY bool
}

// NumPoints is the total point count across subsets.
func (o *Orbit) NumPoints() int {
	n := 0
	for _, s := range o.Subsets {
		n += len(s)
	}
	return n
}

// Extent returns the raw bounding-box width and height.
func (o *Orbit) Extent() (float64, float64) {
	return o.XMax - o.XMin, o.YMax - o.YMin
}

// Step applies one iteration of the recurrence.
func Step(p Params, x, y float64) (float64, float64) {
	m := math.Abs(p.B*x - p.C)

	var z float64
	switch p.Branch() {
	case BranchSqrt:
		z = p.D + math.Sqrt(m)
	case BranchFourthRoot:
		z = p.D + math.Sqrt(math.Sqrt(m))
	default:
		z = p.D + math.Log(2+math.Sqrt(m))
	}

	var x1 float64
	switch {
	case x > 0:
		x1 = y - z
	case x == 0:
		x1 = y
	default:
		x1 = y + z
	}

	return x1 + p.E, p.A - x
}

// Generator turns parameter sets into normalized orbits.
type Generator struct {
	rng     *rand.Rand
	scale   float64
	workers int
}

func NewGenerator(rng *rand.Rand, scale float64) *Generator {
	if scale <= 0 {
		scale = DefaultScale
	}
	return &Generator{rng: rng, scale: scale, workers: 4}
}

// SetWorkers bounds how many subsets are iterated concurrently.
func (g *Generator) SetWorkers(n int) {
	if n < 1 {
		n = 1
	}
	g.workers = n
}

func (g *Generator) Scale() float64 { return g.scale }

type subsetResult struct {
	points                 PointCloud
	xMin, xMax, yMin, yMax float64
	reseeds                int
}

// Generate iterates every subset, then normalizes all points against the
// bounding box shared by the whole orbit.
func (g *Generator) Generate(p Params, subsetCount, pointsPerSubset int) (*Orbit, error) {
	if subsetCount <= 0 || pointsPerSubset <= 0 {
		return nil, fmt.Errorf("%w: subsets=%d points=%d", ErrInvalidDimensions, subsetCount, pointsPerSubset)
	}

	// Seeds are drawn up front so output does not depend on scheduling.
	seeds := make([]Vec2, subsetCount)
	for s := range seeds {
		k := float64(s) * SeedScale
		seeds[s] = Vec2{
			X: k * (p.XPreset - g.rng.Float64()),
			Y: k * (p.YPreset - g.rng.Float64()),
		}
	}

	results := make([]subsetResult, subsetCount)
	var eg errgroup.Group
	eg.SetLimit(g.workers)
	for s := 0; s < subsetCount; s++ {
		eg.Go(func() error {
			results[s] = iterate(p, seeds[s], pointsPerSubset)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	o := &Orbit{
		Params:  p,
		Scale:   g.scale,
		Subsets: make([]PointCloud, subsetCount),
		XMin:    results[0].xMin,
		XMax:    results[0].xMax,
		YMin:    results[0].yMin,
		YMax:    results[0].yMax,
	}
	for s, r := range results {
		o.Subsets[s] = r.points
		o.Reseeds += r.reseeds
		o.XMin = math.Min(o.XMin, r.xMin)
		o.XMax = math.Max(o.XMax, r.xMax)
		o.YMin = math.Min(o.YMin, r.yMin)
		o.YMax = math.Max(o.YMax, r.yMax)
	}

	o.normalize()
	return o, nil
}

func iterate(p Params, seed Vec2, n int) subsetResult {
	r := subsetResult{points: make(PointCloud, n)}
	x, y := seed.X, seed.Y
	for i := 0; i < n; i++ {
		nx, ny := Step(p, x, y)
		if !finite(nx) || !finite(ny) {
			nx, ny = seed.X, seed.Y
			r.reseeds++
		}
		x, y = nx, ny
		r.points[i].Raw = Vec2{x, y}

		if i == 0 {
			r.xMin, r.xMax, r.yMin, r.yMax = x, x, y, y
			continue
		}
		if x < r.xMin {
			r.xMin = x
		}
		if x > r.xMax {
			r.xMax = x
		}
		if y < r.yMin {
			r.yMin = y
		}
		if y > r.yMax {
			r.yMax = y
		}
	}
	return r
}

// normalize is the second pass; bounds are only known once every point exists.
func (o *Orbit) normalize() {
	xs := newAxis(o.XMin, o.XMax, o.Scale)
	ys := newAxis(o.YMin, o.YMax, o.Scale)
	o.ScaleX, o.DegenerateX = xs.k, xs.degenerate
	o.ScaleY, o.DegenerateY = ys.k, ys.degenerate

	for _, cloud := range o.Subsets {
		for i := range cloud {
			pt := &cloud[i]
			pt.Display.X = xs.apply(pt.Raw.X)
			pt.Display.Y = ys.apply(pt.Raw.Y)
		}
	}
}

// axis maps raw values onto [-scale, scale] as k*(raw-origin) + base.
type axis struct {
	origin, k, base float64
	degenerate      bool
}

// newAxis builds the mapping for one side of the bounding box. A span below
// MinSpan, or one that overflows, collapses the axis to 0.
func newAxis(lo, hi, scale float64) axis {
	span := hi - lo
	if math.IsInf(span, 0) || math.IsNaN(span) || span < MinSpan {
		return axis{degenerate: true}
	}
	return axis{origin: lo, k: 2 * scale / span, base: -scale}
}

func (a axis) apply(v float64) float64 {
	if a.k == 0 {
		return 0
	}
	return a.k*(v-a.origin) + a.base
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
