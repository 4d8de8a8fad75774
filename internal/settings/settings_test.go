package settings

import "testing"

func ptr[T any](v T) *T { return &v }

func TestSpeedClampsAtZero(t *testing.T) {
	s := New(Defaults())
	s.AdjustSpeed(-100)

	if s.Speed() != 0 {
		t.Errorf("speed = %v, want exactly 0", s.Speed())
	}
	s.AdjustSpeed(-SpeedStep)
	if s.Speed() != 0 {
		t.Errorf("speed went negative: %v", s.Speed())
	}
}

func TestSpeedClampsAtMax(t *testing.T) {
	s := New(Defaults())
	s.SetSpeed(MaxSpeed + 5)
	if s.Speed() != MaxSpeed {
		t.Errorf("speed = %v, want %v", s.Speed(), MaxSpeed)
	}
}

func TestRotationSpeedUnclamped(t *testing.T) {
	s := New(Defaults())
	for i := 0; i < 10; i++ {
		s.AdjustRotationSpeed(-RotationStep)
	}
	want := DefaultRotationSpeed - 10*RotationStep
	if diff := s.RotationSpeed() - want; diff > 1e-12 || diff < -1e-12 {
		t.Errorf("rotation speed = %v, want %v", s.RotationSpeed(), want)
	}
	if s.RotationSpeed() >= 0 {
		t.Error("expected reversed spin")
	}
}

func TestListenerNotifiedOnEveryMutation(t *testing.T) {
	s := New(Defaults())
	var got []Snapshot
	s.OnChange(func(snap Snapshot) { got = append(got, snap) })

	s.SetSpeed(3)
	s.SetRotationSpeed(-0.01)
	s.SetFieldOfView(75)
	s.TogglePointerLock()
	s.SetCuratedMode(true)
	s.Reset()

	if len(got) != 6 {
		t.Fatalf("expected 6 notifications, got %d", len(got))
	}
	if got[0].Speed != 3 {
		t.Errorf("first snapshot speed = %v", got[0].Speed)
	}
	if !got[3].PointerLocked || !got[4].CuratedMode {
		t.Errorf("unexpected snapshots: %+v", got[3:5])
	}
	if got[5] != Defaults() {
		t.Errorf("reset snapshot = %+v, want defaults", got[5])
	}
}

func TestApplyPatch(t *testing.T) {
	s := New(Defaults())
	calls := 0
	s.OnChange(func(Snapshot) { calls++ })

	s.Apply(Patch{Speed: ptr(-4.0), FieldOfView: ptr(500.0), PointerLocked: ptr(true)})

	snap := s.Snapshot()
	if snap.Speed != 0 {
		t.Errorf("speed = %v, want 0", snap.Speed)
	}
	if snap.FieldOfView != MaxFieldOfView {
		t.Errorf("fov = %v, want %v", snap.FieldOfView, MaxFieldOfView)
	}
	if !snap.PointerLocked {
		t.Error("pointer lock not applied")
	}
	if snap.RotationSpeed != DefaultRotationSpeed {
		t.Error("untouched field changed")
	}
	if calls != 1 {
		t.Errorf("expected one notification per patch, got %d", calls)
	}

	s.Apply(Patch{})
	if calls != 1 {
		t.Error("empty patch should not notify")
	}
}

func TestResetRestoresInitialBundle(t *testing.T) {
	initial := Snapshot{Speed: 4, RotationSpeed: -0.002, FieldOfView: 45, CuratedMode: true}
	s := New(initial)
	s.SetSpeed(12)
	s.SetCuratedMode(false)

	s.Reset()
	if s.Snapshot() != initial {
		t.Errorf("reset = %+v, want %+v", s.Snapshot(), initial)
	}
}

func TestFieldOfViewClamp(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{5, MinFieldOfView},
		{60, 60},
		{200, MaxFieldOfView},
		{0, DefaultFieldOfView},
	}
	for _, tt := range tests {
		s := New(Defaults())
		s.SetFieldOfView(tt.in)
		if s.FieldOfView() != tt.want {
			t.Errorf("SetFieldOfView(%v) = %v, want %v", tt.in, s.FieldOfView(), tt.want)
		}
	}
}
