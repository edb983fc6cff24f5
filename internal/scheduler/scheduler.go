// Package scheduler runs the fixed-rate playback loop: it advances
// virtual time, drives the engine's position update and render, and
// hands finished frames to an output sink (spec component C6).
package scheduler

import (
	"time"

	"github.com/CoderFake/led-animation-playback-engine/internal/color"
	"github.com/CoderFake/led-animation-playback-engine/internal/telemetry"
)

// Clock abstracts wall time so the loop can be driven deterministically
// in tests without a real timer, matching the "render(now) is pure"
// design goal of the engine state.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// RealClock uses the standard library's time package.
type RealClock struct{}

func (RealClock) Now() time.Time        { return time.Now() }
func (RealClock) Sleep(d time.Duration) { time.Sleep(d) }

// Engine is the subset of engine.State the scheduler drives each tick.
type Engine interface {
	UpdateAnimation(dt float64, now time.Time)
	Render(now time.Time) []color.RGB
	Paused() bool
	SpeedPercent() int
	ActiveSceneFPS() int
}

// Sink receives one finished frame per tick.
type Sink interface {
	Emit(frame []color.RGB)
}

// Scheduler runs the dedicated frame-production worker.
type Scheduler struct {
	engine   Engine
	sink     Sink
	clock    Clock
	counters *telemetry.Counters

	stop chan struct{}
	done chan struct{}
}

// New builds a scheduler. clock may be nil to use RealClock; counters may
// be nil, in which case a private counter set is created so the drop
// count is always observable.
func New(engine Engine, sink Sink, clock Clock, counters *telemetry.Counters) *Scheduler {
	if clock == nil {
		clock = RealClock{}
	}
	if counters == nil {
		counters = telemetry.NewCounters()
	}
	return &Scheduler{
		engine:   engine,
		sink:     sink,
		clock:    clock,
		counters: counters,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Run drives the loop until Stop is called, completing its current frame
// before returning. Intended to be called in its own goroutine.
func (s *Scheduler) Run() {
	defer close(s.done)

	last := s.clock.Now()

	for {
		select {
		case <-s.stop:
			return
		default:
		}

		fps := s.engine.ActiveSceneFPS()
		if fps <= 0 {
			fps = 60
		}
		interval := time.Second / time.Duration(fps)

		now := s.clock.Now()
		dtReal := now.Sub(last)
		if dtReal < interval {
			s.clock.Sleep(interval - dtReal)
			now = s.clock.Now()
			dtReal = now.Sub(last)
		}
		// Never accumulate backlog: a missed period is dropped, not
		// caught up on the next tick.
		if dtReal > interval {
			dtReal = interval
			s.counters.IncFramesDropped()
		}
		last = now

		var frame []color.RGB
		if s.engine.Paused() {
			frame = s.engine.Render(now)
		} else {
			speed := s.engine.SpeedPercent()
			dt := dtReal.Seconds() * float64(speed) / 100.0
			s.engine.UpdateAnimation(dt, now)
			frame = s.engine.Render(now)
		}

		s.sink.Emit(frame)
	}
}

// Stop requests the loop exit after finishing its current frame.
func (s *Scheduler) Stop() {
	close(s.stop)
	<-s.done
}

// Tick drives exactly one iteration without sleeping, for deterministic
// tests. dt is passed straight through to UpdateAnimation; now is the
// instant handed to both UpdateAnimation and Render.
func Tick(engine Engine, sink Sink, now time.Time, dt float64) {
	if engine.Paused() {
		sink.Emit(engine.Render(now))
		return
	}
	engine.UpdateAnimation(dt, now)
	sink.Emit(engine.Render(now))
}
