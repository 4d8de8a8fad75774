// Package settings holds the runtime-tunable animation parameters and
// notifies a single listener after every change.
package settings

import "math"

const (
	DefaultSpeed         = 8.0
	DefaultRotationSpeed = 0.005
	DefaultFieldOfView   = 60.0

	MaxSpeed       = 20.0
	MinFieldOfView = 10.0
	MaxFieldOfView = 120.0

	// Key command increments.
	SpeedStep    = 0.5
	RotationStep = 0.001
)

// Snapshot is the value handed to the listener.
type Snapshot struct {
	Speed         float64 `json:"speed" yaml:"speed"`
	RotationSpeed float64 `json:"rotationSpeed" yaml:"rotation_speed"`
	PointerLocked bool    `json:"pointerLocked" yaml:"pointer_locked"`
	FieldOfView   float64 `json:"fieldOfView" yaml:"field_of_view"`
	CuratedMode   bool    `json:"curatedMode" yaml:"curated_mode"`
}

// Defaults is the bundle Reset restores.
func Defaults() Snapshot {
	return Snapshot{
		Speed:         DefaultSpeed,
		RotationSpeed: DefaultRotationSpeed,
		FieldOfView:   DefaultFieldOfView,
	}
}

// Patch carries optional updates; nil fields are left alone.
type Patch struct {
	Speed         *float64 `json:"speed,omitempty"`
	RotationSpeed *float64 `json:"rotationSpeed,omitempty"`
	PointerLocked *bool    `json:"pointerLocked,omitempty"`
	FieldOfView   *float64 `json:"fieldOfView,omitempty"`
	CuratedMode   *bool    `json:"curatedMode,omitempty"`
}

// Empty reports whether the patch sets nothing.
func (p Patch) Empty() bool {
	return p.Speed == nil && p.RotationSpeed == nil && p.PointerLocked == nil &&
		p.FieldOfView == nil && p.CuratedMode == nil
}

// Listener receives a snapshot after each mutation.
type Listener func(Snapshot)

// Settings is the mutable state. Not safe for concurrent use.
type Settings struct {
	cur      Snapshot
	defaults Snapshot
	listener Listener
}

// New starts from initial, which also becomes the Reset bundle.
func New(initial Snapshot) *Settings {
	initial.Speed = clampSpeed(initial.Speed)
	initial.FieldOfView = clampFOV(initial.FieldOfView)
	return &Settings{cur: initial, defaults: initial}
}

// OnChange registers the listener, replacing any previous one.
func (s *Settings) OnChange(l Listener) { s.listener = l }

func (s *Settings) Snapshot() Snapshot { return s.cur }

func (s *Settings) Speed() float64         { return s.cur.Speed }
func (s *Settings) RotationSpeed() float64 { return s.cur.RotationSpeed }
func (s *Settings) PointerLocked() bool    { return s.cur.PointerLocked }
func (s *Settings) FieldOfView() float64   { return s.cur.FieldOfView }
func (s *Settings) CuratedMode() bool      { return s.cur.CuratedMode }

func (s *Settings) notify() {
	if s.listener != nil {
		s.listener(s.cur)
	}
}

// SetSpeed clamps to [0, MaxSpeed].
func (s *Settings) SetSpeed(v float64) {
	s.cur.Speed = clampSpeed(v)
	s.notify()
}

// AdjustSpeed adds delta to the current speed; the result never goes negative.
func (s *Settings) AdjustSpeed(delta float64) {
	s.SetSpeed(s.cur.Speed + delta)
}

// SetRotationSpeed is unclamped; negative values reverse the spin.
func (s *Settings) SetRotationSpeed(v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return
	}
	s.cur.RotationSpeed = v
	s.notify()
}

func (s *Settings) AdjustRotationSpeed(delta float64) {
	s.SetRotationSpeed(s.cur.RotationSpeed + delta)
}

func (s *Settings) SetFieldOfView(v float64) {
	s.cur.FieldOfView = clampFOV(v)
	s.notify()
}

func (s *Settings) SetPointerLocked(v bool) {
	s.cur.PointerLocked = v
	s.notify()
}

func (s *Settings) TogglePointerLock() {
	s.SetPointerLocked(!s.cur.PointerLocked)
}

func (s *Settings) SetCuratedMode(v bool) {
	s.cur.CuratedMode = v
	s.notify()
}

// Apply sets every field present in p and notifies once.
func (s *Settings) Apply(p Patch) {
	if p.Empty() {
		return
	}
	if p.Speed != nil {
		s.cur.Speed = clampSpeed(*p.Speed)
	}
	if p.RotationSpeed != nil && !math.IsNaN(*p.RotationSpeed) && !math.IsInf(*p.RotationSpeed, 0) {
		s.cur.RotationSpeed = *p.RotationSpeed
	}
	if p.PointerLocked != nil {
		s.cur.PointerLocked = *p.PointerLocked
	}
	if p.FieldOfView != nil {
		s.cur.FieldOfView = clampFOV(*p.FieldOfView)
	}
	if p.CuratedMode != nil {
		s.cur.CuratedMode = *p.CuratedMode
	}
	s.notify()
}

// Reset restores the default bundle.
func (s *Settings) Reset() {
	s.cur = s.defaults
	s.notify()
}

func clampSpeed(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return math.Min(v, MaxSpeed)
}

func clampFOV(v float64) float64 {
	if math.IsNaN(v) || v == 0 {
		return DefaultFieldOfView
	}
	return math.Max(MinFieldOfView, math.Min(MaxFieldOfView, v))
}
