package metrics

// Freshness is the mean share of groups already showing the published
// generation, sampled once per frame.
type Freshness struct {
	name    string
	sum     float64
	samples int
}

func NewFreshness() *Freshness {
	return &Freshness{
		name: "freshness",
	}
}

func (f *Freshness) Name() string {
	return f.name
}

func (f *Freshness) Observe(s Sample) {
	if s.Published != nil || s.Groups <= 0 {
		return
	}
	f.sum += 1.0 - float64(s.Pending)/float64(s.Groups)
	f.samples++
}

func (f *Freshness) Value() float64 {
	if f.samples == 0 {
		return 1.0
	}
	return f.sum / float64(f.samples)
}

func (f *Freshness) Reset() {
	f.sum = 0
	f.samples = 0
}
