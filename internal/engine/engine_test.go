package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/san-kum/hopalong/internal/levels"
	"github.com/san-kum/hopalong/internal/metrics"
	"github.com/san-kum/hopalong/internal/orbit"
	"github.com/san-kum/hopalong/internal/settings"
)

func smallConfig() Config {
	cfg := DefaultConfig()
	cfg.Levels = 3
	cfg.Subsets = 2
	cfg.PointsPerSubset = 64
	cfg.Seed = 42
	cfg.Workers = 2
	return cfg
}

func newEngine(t *testing.T, cfg Config) *Engine {
	t.Helper()
	e, err := New(cfg, orbit.DefaultCatalog())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

func TestNew_PaintsEveryGroup(t *testing.T) {
	e := newEngine(t, smallConfig())

	for _, g := range e.Cycler().Groups() {
		if g.Generation() == nil {
			t.Fatalf("group %d/%d unpainted", g.Level, g.Subset)
		}
		if g.NeedsRepaint {
			t.Errorf("group %d/%d flagged at start-up", g.Level, g.Subset)
		}
		if len(g.Points()) != 64 {
			t.Errorf("group %d/%d has %d points", g.Level, g.Subset, len(g.Points()))
		}
	}
	if _, ok := e.CurrentParams(); !ok {
		t.Error("no current params after start-up")
	}
	if len(e.History()) != 1 {
		t.Errorf("history len = %d, want 1", len(e.History()))
	}
}

func TestNew_InvalidDimensions(t *testing.T) {
	tests := []struct {
		name string
		mod  func(*Config)
		want error
	}{
		{"no levels", func(c *Config) { c.Levels = 0 }, levels.ErrInvalidPool},
		{"no subsets", func(c *Config) { c.Subsets = 0 }, levels.ErrInvalidPool},
		{"no points", func(c *Config) { c.PointsPerSubset = 0 }, orbit.ErrInvalidDimensions},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := smallConfig()
			tt.mod(&cfg)
			_, err := New(cfg, nil)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRegenerate_FlagsWithoutRepainting(t *testing.T) {
	e := newEngine(t, smallConfig())
	before, _ := e.CurrentParams()

	gen, err := e.Regenerate()
	if err != nil {
		t.Fatalf("Regenerate: %v", err)
	}
	if gen.ID != 1 {
		t.Errorf("generation id = %d, want 1", gen.ID)
	}
	if got := e.Stats().Pending; got != 6 {
		t.Errorf("pending = %d, want 6", got)
	}
	after, _ := e.CurrentParams()
	if after.ID != before.ID {
		t.Error("current params changed before any crossing")
	}
	if len(gen.Hues) != 2 {
		t.Errorf("hue table len = %d", len(gen.Hues))
	}
}

func TestFrame_CrossingAdoptsNewGeneration(t *testing.T) {
	e := newEngine(t, smallConfig())
	gen, err := e.Regenerate()
	if err != nil {
		t.Fatal(err)
	}

	// level 0 subset 0 starts exactly at the camera plane
	crossings := e.Frame()
	if len(crossings) == 0 {
		t.Fatal("expected the front group to cross on the first frame")
	}
	if !crossings[0].Repainted || crossings[0].Generation != gen.ID {
		t.Errorf("crossing = %+v", crossings[0])
	}

	cur, ok := e.CurrentParams()
	if !ok || cur.ID != gen.Params().ID {
		t.Errorf("current params = %s, want %s", cur.ID, gen.Params().ID)
	}

	st := e.Stats()
	if st.Frames != 1 || st.Repaints == 0 || st.Regenerations != 1 {
		t.Errorf("stats = %+v", st)
	}
}

func TestFrame_ZeroSpeedNeverCrosses(t *testing.T) {
	cfg := smallConfig()
	cfg.Settings.Speed = 0
	e := newEngine(t, cfg)

	// the front group sits on the plane and only crosses once it moves past it
	for i := 0; i < 100; i++ {
		if c := e.Frame(); len(c) != 0 {
			t.Fatalf("frame %d: unexpected crossings %+v", i, c)
		}
	}
}

func TestCommand(t *testing.T) {
	tests := []struct {
		cmd   Command
		check func(settings.Snapshot) bool
	}{
		{SpeedUp, func(s settings.Snapshot) bool { return s.Speed == settings.DefaultSpeed+settings.SpeedStep }},
		{SpeedDown, func(s settings.Snapshot) bool { return s.Speed == settings.DefaultSpeed-settings.SpeedStep }},
		{RotateLeft, func(s settings.Snapshot) bool {
			return s.RotationSpeed > settings.DefaultRotationSpeed
		}},
		{RotateRight, func(s settings.Snapshot) bool {
			return s.RotationSpeed < settings.DefaultRotationSpeed
		}},
		{TogglePointerLock, func(s settings.Snapshot) bool { return s.PointerLocked }},
		{ToggleMode, func(s settings.Snapshot) bool { return s.CuratedMode }},
		{Reset, func(s settings.Snapshot) bool { return s == settings.Defaults() }},
	}
	for _, tt := range tests {
		t.Run(tt.cmd.String(), func(t *testing.T) {
			e := newEngine(t, smallConfig())
			e.Command(tt.cmd)
			if got := e.Settings(); !tt.check(got) {
				t.Errorf("settings after %s = %+v", tt.cmd, got)
			}
		})
	}
}

func TestCommand_ResetAfterChanges(t *testing.T) {
	e := newEngine(t, smallConfig())
	e.Command(SpeedUp)
	e.Command(TogglePointerLock)
	e.Command(Reset)
	if got := e.Settings(); got != settings.Defaults() {
		t.Errorf("settings = %+v, want defaults", got)
	}
}

func TestPointer_RespectsLock(t *testing.T) {
	e := newEngine(t, smallConfig())
	e.Resize(800, 600)

	e.PointerAt(500, 300)
	if x, _ := e.Camera().Target(); x != 100 {
		t.Errorf("unlocked target x = %v, want 100", x)
	}
	e.PointerMove(50, 0)
	if x, _ := e.Camera().Target(); x != 100 {
		t.Errorf("relative move applied while unlocked: %v", x)
	}

	e.Command(TogglePointerLock)
	e.PointerAt(0, 0)
	if x, _ := e.Camera().Target(); x != 100 {
		t.Errorf("absolute move applied while locked: %v", x)
	}
	e.PointerMove(50, 0)
	if x, _ := e.Camera().Target(); x != 150 {
		t.Errorf("locked target x = %v, want 150", x)
	}

	e.Command(Recenter)
	if x, y := e.Camera().Target(); x != 0 || y != 0 {
		t.Errorf("recentered target = %v,%v", x, y)
	}
}

func TestSettingsListener(t *testing.T) {
	e := newEngine(t, smallConfig())
	var calls int
	var last settings.Snapshot
	e.OnSettingsChange(func(s settings.Snapshot) {
		calls++
		last = s
	})

	speed := 3.0
	e.Apply(settings.Patch{Speed: &speed})
	if calls != 1 || last.Speed != 3 {
		t.Errorf("calls = %d, last = %+v", calls, last)
	}
}

func TestCuratedModeWalksCatalog(t *testing.T) {
	cfg := smallConfig()
	cfg.Settings.CuratedMode = true
	cat := orbit.DefaultCatalog()
	e := newEngine(t, cfg)

	if _, err := e.Regenerate(); err != nil {
		t.Fatal(err)
	}
	h := e.History()
	for i, entry := range h {
		if entry.Mode != "curated" {
			t.Errorf("entry %d mode = %s", i, entry.Mode)
		}
		if entry.Params.A != cat[i].A || entry.Params.B != cat[i].B {
			t.Errorf("entry %d = %+v, want catalog[%d]", i, entry.Params, i)
		}
	}
}

func TestRate(t *testing.T) {
	e := newEngine(t, smallConfig())
	p, _ := e.CurrentParams()

	if err := e.Rate(p.ID, 4); err != nil {
		t.Fatalf("Rate: %v", err)
	}
	if got := e.History()[0].Rating; got != 4 {
		t.Errorf("rating = %d", got)
	}
	if err := e.Rate("missing", 3); !errors.Is(err, orbit.ErrUnknownEntry) {
		t.Errorf("err = %v", err)
	}
}

func TestOnRegenerateHook(t *testing.T) {
	e := newEngine(t, smallConfig())
	var seen []uint64
	e.OnRegenerate(func(g *levels.Generation) { seen = append(seen, g.ID) })

	for i := 0; i < 3; i++ {
		if _, err := e.Regenerate(); err != nil {
			t.Fatal(err)
		}
	}
	if len(seen) != 3 || seen[0] != 1 || seen[2] != 3 {
		t.Errorf("seen = %v", seen)
	}
}

func TestScheduler_Binds(t *testing.T) {
	e := newEngine(t, smallConfig())
	s := e.Scheduler(time.Second/60, 3*time.Second)
	if s == nil {
		t.Fatal("nil scheduler")
	}
	if s.Stopped() {
		t.Error("fresh scheduler reports stopped")
	}
}

func TestParseCommand(t *testing.T) {
	for _, name := range CommandNames() {
		c, err := ParseCommand(name)
		if err != nil {
			t.Errorf("ParseCommand(%q): %v", name, err)
			continue
		}
		if c.String() != name {
			t.Errorf("round trip %q -> %q", name, c.String())
		}
	}
	if _, err := ParseCommand("jump"); err == nil {
		t.Error("expected error for unknown command")
	}
}

func TestMetricsObserveFramesAndPublishes(t *testing.T) {
	e := newEngine(t, smallConfig())
	if e.Stats().Metrics != nil {
		t.Error("expected no metrics before AddMetric")
	}

	spread := metrics.NewSpread()
	fresh := metrics.NewFreshness()
	e.AddMetric(spread)
	e.AddMetric(fresh)

	if spread.Value() <= 0 {
		t.Errorf("initial generation not observed, spread=%f", spread.Value())
	}

	if _, err := e.Regenerate(); err != nil {
		t.Fatalf("Regenerate: %v", err)
	}
	stop := 0.0
	e.Apply(settings.Patch{Speed: &stop})
	e.Frame()

	// nothing crossed, so every group still shows generation 0
	if fresh.Value() != 0 {
		t.Errorf("expected freshness 0, got %f", fresh.Value())
	}

	st := e.Stats()
	if _, ok := st.Metrics["spread"]; !ok {
		t.Errorf("stats missing spread: %v", st.Metrics)
	}
	if _, ok := st.Metrics["freshness"]; !ok {
		t.Errorf("stats missing freshness: %v", st.Metrics)
	}
}
