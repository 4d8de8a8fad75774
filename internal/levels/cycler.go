package levels

import (
	"errors"
	"fmt"
)

// DefaultLevelDepth is the scroll distance between consecutive levels.
const DefaultLevelDepth = 600.0

var ErrInvalidPool = errors.New("levels: level and subset counts must be positive")

type Config struct {
	Levels     int
	Subsets    int
	LevelDepth float64
	// CameraZ is the depth of the viewer plane groups cross.
	CameraZ float64
}

// Crossing describes one group passing the camera during a tick.
type Crossing struct {
	Level      int
	Subset     int
	Repainted  bool
	Generation uint64
}

// Cycler owns the group pool and the currently published generation.
type Cycler struct {
	cfg     Config
	groups  []Group
	current *Generation
	ticks   uint64
}

func New(cfg Config) (*Cycler, error) {
	if cfg.Levels <= 0 || cfg.Subsets <= 0 {
		return nil, fmt.Errorf("%w: levels=%d subsets=%d", ErrInvalidPool, cfg.Levels, cfg.Subsets)
	}
	if cfg.LevelDepth <= 0 {
		cfg.LevelDepth = DefaultLevelDepth
	}

	c := &Cycler{
		cfg:    cfg,
		groups: make([]Group, cfg.Levels*cfg.Subsets),
	}
	for l := 0; l < cfg.Levels; l++ {
		for s := 0; s < cfg.Subsets; s++ {
			c.groups[c.index(l, s)] = Group{
				Level:  l,
				Subset: s,
				Depth:  c.StartDepth(l, s),
			}
		}
	}
	return c, nil
}

func (c *Cycler) index(level, subset int) int {
	return level*c.cfg.Subsets + subset
}

func (c *Cycler) Config() Config { return c.cfg }

// StartDepth staggers groups by level and subset so they arrive in sequence.
func (c *Cycler) StartDepth(level, subset int) float64 {
	d := c.cfg.LevelDepth
	return -d*float64(level) - float64(subset)*d/float64(c.cfg.Subsets) + c.cfg.CameraZ
}

// BackDepth is where a recycled group is sent.
func (c *Cycler) BackDepth() float64 {
	return -float64(c.cfg.Levels-1) * c.cfg.LevelDepth
}

// Len is the fixed pool size.
func (c *Cycler) Len() int { return len(c.groups) }

// Ticks counts calls to Tick.
func (c *Cycler) Ticks() uint64 { return c.ticks }

// Group returns the group at (level, subset), or nil when out of range.
func (c *Cycler) Group(level, subset int) *Group {
	if level < 0 || level >= c.cfg.Levels || subset < 0 || subset >= c.cfg.Subsets {
		return nil
	}
	return &c.groups[c.index(level, subset)]
}

// Groups returns a snapshot of the pool in (level, subset) order.
func (c *Cycler) Groups() []Group {
	out := make([]Group, len(c.groups))
	copy(out, c.groups)
	return out
}

// Current is the most recently published generation.
func (c *Cycler) Current() *Generation { return c.current }

// PaintAll applies gen to every group immediately. Used once at start-up so
// the first pass through the camera is not empty.
func (c *Cycler) PaintAll(gen *Generation) {
	c.current = gen
	for i := range c.groups {
		c.groups[i].paint(gen)
	}
}

// Publish replaces the shared generation and flags every group for repaint.
// Nothing is repainted here; groups pick the generation up as they cross.
func (c *Cycler) Publish(gen *Generation) {
	c.current = gen
	for i := range c.groups {
		c.groups[i].NeedsRepaint = true
	}
}

// Pending counts groups still waiting to adopt the current generation.
func (c *Cycler) Pending() int {
	n := 0
	for i := range c.groups {
		if c.groups[i].NeedsRepaint {
			n++
		}
	}
	return n
}

// Tick advances every group by speed and rotationSpeed and recycles the ones
// that passed the camera plane.
func (c *Cycler) Tick(speed, rotationSpeed float64) []Crossing {
	c.ticks++
	var crossings []Crossing
	for i := range c.groups {
		g := &c.groups[i]
		g.State = Scrolling
		g.Depth += speed
		g.Rotation += rotationSpeed

		if g.Depth <= c.cfg.CameraZ {
			continue
		}

		g.Depth = c.BackDepth()
		g.State = Recycled
		cr := Crossing{Level: g.Level, Subset: g.Subset}
		if g.NeedsRepaint && c.current != nil {
			g.State = Repainting
			g.paint(c.current)
			cr.Repainted = true
		}
		if g.gen != nil {
			cr.Generation = g.gen.ID
		}
		crossings = append(crossings, cr)
	}
	return crossings
}

// ActiveParams returns the most recently created parameters among the ones
// the groups are currently painted with. Equal timestamps resolve to the
// later generation.
func (c *Cycler) ActiveParams() (*Generation, bool) {
	var best *Generation
	for i := range c.groups {
		gen := c.groups[i].gen
		if gen == nil || gen == best {
			continue
		}
		if best == nil {
			best = gen
			continue
		}
		bt, gt := best.Orbit.Params.CreatedAt, gen.Orbit.Params.CreatedAt
		if gt.After(bt) || (gt.Equal(bt) && gen.ID > best.ID) {
			best = gen
		}
	}
	return best, best != nil
}
