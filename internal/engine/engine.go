// Package engine owns the complete animation state and exposes the two
// update entry points, Frame and Regenerate, plus the inbound input surface.
package engine

import (
	"fmt"
	"log"
	"math/rand/v2"
	"time"

	"github.com/san-kum/hopalong/internal/clock"
	"github.com/san-kum/hopalong/internal/levels"
	"github.com/san-kum/hopalong/internal/metrics"
	"github.com/san-kum/hopalong/internal/orbit"
	"github.com/san-kum/hopalong/internal/settings"
)

type Config struct {
	Levels          int
	Subsets         int
	PointsPerSubset int
	LevelDepth      float64
	Scale           float64
	CameraBound     float64
	CameraEasing    float64
	Workers         int
	Seed            uint64
	Settings        settings.Snapshot
}

// DefaultConfig mirrors the classic visualizer.
func DefaultConfig() Config {
	return Config{
		Levels:          7,
		Subsets:         7,
		PointsPerSubset: 32000,
		LevelDepth:      levels.DefaultLevelDepth,
		Scale:           orbit.DefaultScale,
		CameraBound:     clock.DefaultCameraBound,
		CameraEasing:    clock.DefaultEasing,
		Workers:         4,
		Settings:        settings.Defaults(),
	}
}

// Stats are running counters for display.
type Stats struct {
	Frames        uint64
	Regenerations uint64
	Crossings     uint64
	Repaints      uint64
	Pending       int
	LastCrossings int
	Metrics       map[string]float64
}

type Engine struct {
	cfg Config

	rng       *rand.Rand
	selector  *orbit.Selector
	generator *orbit.Generator
	cycler    *levels.Cycler
	settings  *settings.Settings
	camera    *clock.Camera

	nextGen uint64
	stats   Stats
	metrics []metrics.Metric
	onRegen func(*levels.Generation)
}

// New builds the engine and paints generation 0 on every group.
func New(cfg Config, catalog orbit.Catalog) (*Engine, error) {
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewPCG(seed, seed>>1|1))

	cycler, err := levels.New(levels.Config{
		Levels:     cfg.Levels,
		Subsets:    cfg.Subsets,
		LevelDepth: cfg.LevelDepth,
		CameraZ:    cfg.Scale / 2,
	})
	if err != nil {
		return nil, err
	}
	if cfg.PointsPerSubset <= 0 {
		return nil, fmt.Errorf("%w: points=%d", orbit.ErrInvalidDimensions, cfg.PointsPerSubset)
	}

	gen := orbit.NewGenerator(rng, cfg.Scale)
	gen.SetWorkers(cfg.Workers)

	e := &Engine{
		cfg:       cfg,
		rng:       rng,
		selector:  orbit.NewSelector(catalog, rng),
		generator: gen,
		cycler:    cycler,
		settings:  settings.New(cfg.Settings),
		camera:    clock.NewCamera(cfg.Scale/2, cfg.CameraBound, cfg.CameraEasing),
	}

	first, err := e.build()
	if err != nil {
		return nil, err
	}
	e.cycler.PaintAll(first)
	return e, nil
}

func (e *Engine) build() (*levels.Generation, error) {
	mode := orbit.ModeRandom
	if e.settings.CuratedMode() {
		mode = orbit.ModeCurated
	}
	p := e.selector.Select(mode)

	o, err := e.generator.Generate(p, e.cfg.Subsets, e.cfg.PointsPerSubset)
	if err != nil {
		return nil, fmt.Errorf("engine: generate: %w", err)
	}
	gen := &levels.Generation{
		ID:    e.nextGen,
		Orbit: o,
		Hues:  orbit.AssignHues(e.rng, e.cfg.Subsets),
	}
	e.nextGen++
	return gen, nil
}

// Frame is the per-frame task: ease the camera, then scroll the levels.
func (e *Engine) Frame() []levels.Crossing {
	e.camera.Ease()
	crossings := e.cycler.Tick(e.settings.Speed(), e.settings.RotationSpeed())

	e.stats.Frames++
	e.stats.LastCrossings = len(crossings)
	e.stats.Crossings += uint64(len(crossings))
	for _, c := range crossings {
		if c.Repainted {
			e.stats.Repaints++
		}
	}
	e.observe(metrics.Sample{
		Crossings: crossings,
		Pending:   e.cycler.Pending(),
		Groups:    e.cycler.Len(),
	})
	return crossings
}

// Regenerate is the fixed-interval task: select parameters, build a new
// orbit and hue table, publish them and flag every group.
func (e *Engine) Regenerate() (*levels.Generation, error) {
	gen, err := e.build()
	if err != nil {
		return nil, err
	}
	e.cycler.Publish(gen)
	e.stats.Regenerations++
	e.observe(metrics.Sample{
		Pending:   e.cycler.Pending(),
		Groups:    e.cycler.Len(),
		Published: gen,
	})
	if e.onRegen != nil {
		e.onRegen(gen)
	}
	return gen, nil
}

// AddMetric attaches a metric. It first observes the generation on screen.
func (e *Engine) AddMetric(m metrics.Metric) {
	m.Observe(metrics.Sample{
		Pending:   e.cycler.Pending(),
		Groups:    e.cycler.Len(),
		Published: e.cycler.Current(),
	})
	e.metrics = append(e.metrics, m)
}

func (e *Engine) observe(s metrics.Sample) {
	for _, m := range e.metrics {
		m.Observe(s)
	}
}

// OnRegenerate registers a hook called after each publish.
func (e *Engine) OnRegenerate(fn func(*levels.Generation)) { e.onRegen = fn }

// Scheduler binds Frame and Regenerate to a two-cadence scheduler.
func (e *Engine) Scheduler(frameEvery, regenEvery time.Duration) *clock.Scheduler {
	return clock.NewScheduler(frameEvery, regenEvery,
		func(time.Time) { e.Frame() },
		func(time.Time) {
			if _, err := e.Regenerate(); err != nil {
				log.Printf("engine: regenerate: %v", err)
			}
		},
	)
}

// Command applies a discrete key action.
func (e *Engine) Command(c Command) {
	switch c {
	case SpeedUp:
		e.settings.AdjustSpeed(settings.SpeedStep)
	case SpeedDown:
		e.settings.AdjustSpeed(-settings.SpeedStep)
	case RotateLeft:
		e.settings.AdjustRotationSpeed(settings.RotationStep)
	case RotateRight:
		e.settings.AdjustRotationSpeed(-settings.RotationStep)
	case Reset:
		e.settings.Reset()
	case TogglePointerLock:
		e.settings.TogglePointerLock()
	case Recenter:
		e.camera.Recenter()
	case ToggleMode:
		e.settings.SetCuratedMode(!e.settings.CuratedMode())
	}
}

// PointerAt handles an absolute pointer position. Ignored while locked.
func (e *Engine) PointerAt(x, y float64) {
	if e.settings.PointerLocked() {
		return
	}
	e.camera.PointAt(x, y)
}

// PointerMove handles a relative pointer delta. Only used while locked.
func (e *Engine) PointerMove(dx, dy float64) {
	if !e.settings.PointerLocked() {
		return
	}
	e.camera.Move(dx, dy)
}

// Resize records new viewport dimensions.
func (e *Engine) Resize(width, height int) { e.camera.Resize(width, height) }

// Apply merges a settings patch.
func (e *Engine) Apply(p settings.Patch) { e.settings.Apply(p) }

// OnSettingsChange registers the single settings listener.
func (e *Engine) OnSettingsChange(l settings.Listener) { e.settings.OnChange(l) }

func (e *Engine) Settings() settings.Snapshot { return e.settings.Snapshot() }

// CurrentParams returns the parameters most recently activated on any group.
func (e *Engine) CurrentParams() (orbit.Params, bool) {
	gen, ok := e.cycler.ActiveParams()
	if !ok {
		return orbit.Params{}, false
	}
	return gen.Params(), true
}

func (e *Engine) History() []orbit.Entry { return e.selector.History() }

func (e *Engine) Rate(id string, rating int) error { return e.selector.Rate(id, rating) }

func (e *Engine) Camera() *clock.Camera { return e.camera }

func (e *Engine) Cycler() *levels.Cycler { return e.cycler }

func (e *Engine) Config() Config { return e.cfg }

func (e *Engine) Stats() Stats {
	s := e.stats
	s.Pending = e.cycler.Pending()
	if len(e.metrics) > 0 {
		s.Metrics = make(map[string]float64, len(e.metrics))
		for _, m := range e.metrics {
			s.Metrics[m.Name()] = m.Value()
		}
	}
	return s
}
