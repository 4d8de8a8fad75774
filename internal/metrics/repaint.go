package metrics

// RepaintRate counts repainted crossings per frame.
type RepaintRate struct {
	name    string
	repaint int
	frames  int
}

func NewRepaintRate() *RepaintRate {
	return &RepaintRate{
		name: "repaint_rate",
	}
}

func (r *RepaintRate) Name() string {
	return r.name
}

func (r *RepaintRate) Observe(s Sample) {
	if s.Published != nil {
		return
	}
	for _, c := range s.Crossings {
		if c.Repainted {
			r.repaint++
		}
	}
	r.frames++
}

func (r *RepaintRate) Value() float64 {
	if r.frames == 0 {
		return 0
	}
	return float64(r.repaint) / float64(r.frames)
}

func (r *RepaintRate) Reset() {
	r.repaint = 0
	r.frames = 0
}
