package metrics

import "github.com/san-kum/hopalong/internal/levels"

// Sample is what the engine reports after a frame or a regeneration.
// Published is nil for frame samples; Crossings is nil for publishes.
type Sample struct {
	Crossings []levels.Crossing
	Pending   int
	Groups    int
	Published *levels.Generation
}

type Metric interface {
	Name() string
	Observe(s Sample)
	Value() float64
	Reset()
}

// Defaults is the set the run command reports.
func Defaults() []Metric {
	return []Metric{
		NewFreshness(),
		NewRepaintRate(),
		NewSpread(),
		NewReseedRatio(),
	}
}
