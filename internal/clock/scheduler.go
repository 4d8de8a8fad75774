package clock

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultRegenInterval is the wall-clock period between orbit regenerations.
const DefaultRegenInterval = 3 * time.Second

var ErrStopped = errors.New("clock: scheduler stopped")

// Ticker is the subset of time.Ticker the scheduler needs.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFunc creates a ticker firing every d.
type TickerFunc func(d time.Duration) Ticker

type realTicker struct{ t *time.Ticker }

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

// NewRealTicker wraps time.NewTicker.
func NewRealTicker(d time.Duration) Ticker {
	return realTicker{time.NewTicker(d)}
}

// Task is invoked on the scheduler goroutine.
type Task func(now time.Time)

// Scheduler runs a frame task and a regeneration task on one goroutine.
type Scheduler struct {
	frameEvery time.Duration
	regenEvery time.Duration
	newTicker  TickerFunc

	onFrame Task
	onRegen Task

	calls     chan func()
	stop      chan struct{}
	stopOnce  sync.Once
	done      chan struct{}
	running   atomic.Bool
	destroyed atomic.Bool

	frames atomic.Uint64
	regens atomic.Uint64
}

func NewScheduler(frameEvery, regenEvery time.Duration, onFrame, onRegen Task) *Scheduler {
	if regenEvery <= 0 {
		regenEvery = DefaultRegenInterval
	}
	if frameEvery <= 0 {
		frameEvery = time.Second / 60
	}
	return &Scheduler{
		frameEvery: frameEvery,
		regenEvery: regenEvery,
		newTicker:  NewRealTicker,
		onFrame:    onFrame,
		onRegen:    onRegen,
		calls:      make(chan func()),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// SetTickerFunc swaps the ticker source; call before Run.
func (s *Scheduler) SetTickerFunc(f TickerFunc) { s.newTicker = f }

// Frames and Regens count executed tasks.
func (s *Scheduler) Frames() uint64 { return s.frames.Load() }
func (s *Scheduler) Regens() uint64 { return s.regens.Load() }

// Run blocks until ctx is cancelled or Stop is called.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.destroyed.Load() {
		return ErrStopped
	}
	if !s.running.CompareAndSwap(false, true) {
		return errors.New("clock: scheduler already running")
	}
	defer close(s.done)

	frame := s.newTicker(s.frameEvery)
	defer frame.Stop()
	regen := s.newTicker(s.regenEvery)
	defer regen.Stop()

	for {
		select {
		case <-ctx.Done():
			s.destroyed.Store(true)
			return ctx.Err()
		case <-s.stop:
			return nil
		case now := <-frame.C():
			if s.destroyed.Load() {
				return nil
			}
			s.frames.Add(1)
			if s.onFrame != nil {
				s.onFrame(now)
			}
		case now := <-regen.C():
			if s.destroyed.Load() {
				return nil
			}
			s.regens.Add(1)
			if s.onRegen != nil {
				s.onRegen(now)
			}
		case fn := <-s.calls:
			fn()
		}
	}
}

// Do runs fn on the scheduler goroutine and waits for it to finish.
func (s *Scheduler) Do(ctx context.Context, fn func()) error {
	if s.destroyed.Load() {
		return ErrStopped
	}
	finished := make(chan struct{})
	wrapped := func() {
		defer close(finished)
		fn()
	}
	select {
	case s.calls <- wrapped:
	case <-s.stop:
		return ErrStopped
	case <-s.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	<-finished
	return nil
}

// Stop ends Run and waits for it to return. Further calls are no-ops.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.destroyed.Store(true)
		close(s.stop)
		if s.running.Load() {
			<-s.done
		}
	})
}

// Stopped reports whether the scheduler has been torn down.
func (s *Scheduler) Stopped() bool { return s.destroyed.Load() }
