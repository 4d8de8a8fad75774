package orbit

import (
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
)

// Range is a closed interval used to constrain and sample coefficients.
type Range struct {
	Min, Max float64
}

// Contains reports whether v lies inside the interval.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Random draws uniformly from [Min, Max).
func (r Range) Random(rng *rand.Rand) float64 {
	return r.Min + rng.Float64()*(r.Max-r.Min)
}

// Constraint intervals for randomly generated coefficients.
var (
	RangeA = Range{-30, 30}
	RangeB = Range{0.2, 1.8}
	RangeC = Range{5, 17}
	RangeD = Range{0, 10}
	RangeE = Range{0, 12}
)

// Params is the coefficient tuple for one orbit generation. Once handed to
// the generator it is never mutated.
type Params struct {
	ID        string    `json:"id" yaml:"-"`
	A         float64   `json:"a" yaml:"a"`
	B         float64   `json:"b" yaml:"b"`
	C         float64   `json:"c" yaml:"c"`
	D         float64   `json:"d" yaml:"d"`
	E         float64   `json:"e" yaml:"e"`
	Choice    float64   `json:"choice" yaml:"choice"`
	XPreset   float64   `json:"x_preset" yaml:"x_preset"`
	YPreset   float64   `json:"y_preset" yaml:"y_preset"`
	CreatedAt time.Time `json:"created_at" yaml:"-"`
}

// RandomParams samples every coefficient from its constraint interval and
// the three mode scalars from [0, 1).
func RandomParams(rng *rand.Rand, now time.Time) Params {
	return Params{
		ID:        uuid.NewString(),
		A:         RangeA.Random(rng),
		B:         RangeB.Random(rng),
		C:         RangeC.Random(rng),
		D:         RangeD.Random(rng),
		E:         RangeE.Random(rng),
		Choice:    rng.Float64(),
		XPreset:   rng.Float64(),
		YPreset:   rng.Float64(),
		CreatedAt: now,
	}
}

// Validate checks the coefficients against the randomized-mode intervals.
// Catalog entries are trusted and never validated.
func (p Params) Validate() error {
	checks := []struct {
		name string
		v    float64
		r    Range
	}{
		{"a", p.A, RangeA},
		{"b", p.B, RangeB},
		{"c", p.C, RangeC},
		{"d", p.D, RangeD},
		{"e", p.E, RangeE},
	}
	for _, c := range checks {
		if !c.r.Contains(c.v) {
			return &BoundsError{Name: c.name, Value: c.v, Range: c.r}
		}
	}
	return nil
}

// Branch identifies which z formula the choice scalar selects.
type Branch int

const (
	BranchSqrt Branch = iota
	BranchFourthRoot
	BranchLog
)

func (b Branch) String() string {
	switch b {
	case BranchSqrt:
		return "sqrt"
	case BranchFourthRoot:
		return "fourth-root"
	case BranchLog:
		return "log"
	}
	return "unknown"
}

// Branch maps Choice onto the recurrence variant.
func (p Params) Branch() Branch {
	switch {
	case p.Choice < 0.5:
		return BranchSqrt
	case p.Choice < 0.75:
		return BranchFourthRoot
	default:
		return BranchLog
	}
}
