package scheduler

import (
	"testing"
	"time"

	"github.com/CoderFake/led-animation-playback-engine/internal/color"
	"github.com/CoderFake/led-animation-playback-engine/internal/telemetry"
)

type fakeEngine struct {
	paused    bool
	speed     int
	fps       int
	dtSeen    []float64
	renderAt  []time.Time
}

func (f *fakeEngine) UpdateAnimation(dt float64, now time.Time) {
	f.dtSeen = append(f.dtSeen, dt)
}
func (f *fakeEngine) Render(now time.Time) []color.RGB {
	f.renderAt = append(f.renderAt, now)
	return []color.RGB{{R: 1}}
}
func (f *fakeEngine) Paused() bool        { return f.paused }
func (f *fakeEngine) SpeedPercent() int   { return f.speed }
func (f *fakeEngine) ActiveSceneFPS() int { return f.fps }

type fakeSink struct {
	frames [][]color.RGB
}

func (f *fakeSink) Emit(frame []color.RGB) {
	f.frames = append(f.frames, frame)
}

func TestTickAdvancesAnimationWhenNotPaused(t *testing.T) {
	eng := &fakeEngine{speed: 100, fps: 60}
	sink := &fakeSink{}

	Tick(eng, sink, time.Unix(0, 0), 0.5)

	if len(eng.dtSeen) != 1 || eng.dtSeen[0] != 0.5 {
		t.Fatalf("expected UpdateAnimation called once with dt=0.5, got %v", eng.dtSeen)
	}
	if len(sink.frames) != 1 {
		t.Fatalf("expected one frame emitted, got %d", len(sink.frames))
	}
}

func TestTickSkipsAnimationWhenPaused(t *testing.T) {
	eng := &fakeEngine{paused: true}
	sink := &fakeSink{}

	Tick(eng, sink, time.Unix(0, 0), 0.5)

	if len(eng.dtSeen) != 0 {
		t.Fatalf("paused tick must not call UpdateAnimation, got %v", eng.dtSeen)
	}
	if len(sink.frames) != 1 {
		t.Fatalf("paused tick must still emit a frame, got %d", len(sink.frames))
	}
}

type stepClock struct {
	now   time.Time
	steps []time.Duration
	i     int
}

func (c *stepClock) Now() time.Time {
	return c.now
}

func (c *stepClock) Sleep(d time.Duration) {
	if c.i < len(c.steps) {
		c.now = c.now.Add(c.steps[c.i])
		c.i++
		return
	}
	c.now = c.now.Add(d)
}

func TestRunStopsAfterCurrentFrame(t *testing.T) {
	eng := &fakeEngine{speed: 100, fps: 60}
	sink := &fakeSink{}
	clk := &stepClock{now: time.Unix(0, 0), steps: []time.Duration{17 * time.Millisecond}}

	s := New(eng, sink, clk, nil)
	go s.Run()

	time.Sleep(20 * time.Millisecond)
	s.Stop()

	if len(sink.frames) == 0 {
		t.Fatalf("expected at least one frame emitted before stop")
	}
}

func TestRunCountsDroppedFrameWhenTickRunsLong(t *testing.T) {
	eng := &fakeEngine{speed: 100, fps: 60}
	sink := &fakeSink{}
	counters := telemetry.NewCounters()
	// 30ms real elapsed against a ~16.6ms interval: the loop must clamp
	// dtReal to interval and count the dropped frame, not catch up.
	clk := &stepClock{now: time.Unix(0, 0), steps: []time.Duration{30 * time.Millisecond}}

	s := New(eng, sink, clk, counters)
	go s.Run()

	time.Sleep(20 * time.Millisecond)
	s.Stop()

	if counters.Snapshot().FramesDropped == 0 {
		t.Fatalf("expected at least one dropped frame counted, got snapshot %+v", counters.Snapshot())
	}
}
