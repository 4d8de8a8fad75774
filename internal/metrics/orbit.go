package metrics

// Spread is the mean raw bounding-box area of published orbits.
type Spread struct {
	name  string
	sum   float64
	count int
}

func NewSpread() *Spread {
	return &Spread{
		name: "spread",
	}
}

func (s *Spread) Name() string {
	return s.name
}

func (s *Spread) Observe(x Sample) {
	if x.Published == nil || x.Published.Orbit == nil {
		return
	}
	w, h := x.Published.Orbit.Extent()
	s.sum += w * h
	s.count++
}

func (s *Spread) Value() float64 {
	if s.count == 0 {
		return 0
	}
	return s.sum / float64(s.count)
}

func (s *Spread) Reset() {
	s.sum = 0
	s.count = 0
}

// ReseedRatio is the share of generated points that came from a restart
// after the recurrence left the finite range.
type ReseedRatio struct {
	name    string
	reseeds int
	points  int
}

func NewReseedRatio() *ReseedRatio {
	return &ReseedRatio{
		name: "reseed_ratio",
	}
}

func (r *ReseedRatio) Name() string {
	return r.name
}

func (r *ReseedRatio) Observe(s Sample) {
	if s.Published == nil || s.Published.Orbit == nil {
		return
	}
	r.reseeds += s.Published.Orbit.Reseeds
	r.points += s.Published.Orbit.NumPoints()
}

func (r *ReseedRatio) Value() float64 {
	if r.points == 0 {
		return 0
	}
	return float64(r.reseeds) / float64(r.points)
}

func (r *ReseedRatio) Reset() {
	r.reseeds = 0
	r.points = 0
}
