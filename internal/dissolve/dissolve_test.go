package dissolve

import (
	"testing"
	"time"

	"github.com/CoderFake/led-animation-playback-engine/internal/color"
)

func TestBlendMultiBand(t *testing.T) {
	start := time.Unix(0, 0)
	from := make([]color.RGB, 10)
	to := make([]color.RGB, 10)
	for i := range to {
		to[i] = color.RGB{R: 200, G: 200, B: 200}
	}

	a := NewActive(from, start, Pattern{
		{DelayMs: 0, DurationMs: 100, StartLED: 0, EndLED: 4},
		{DelayMs: 200, DurationMs: 100, StartLED: 5, EndLED: 9},
	}, 10)

	out := a.Blend(to, start.Add(50*time.Millisecond))
	if out[0].R == 0 || out[0].R == 200 {
		t.Fatalf("led0 at t+50ms should be mid-blend, got %v", out[0].R)
	}
	if out[5] != color.Black {
		t.Fatalf("led5 at t+50ms should still be on from_frame, got %v", out[5])
	}

	out = a.Blend(to, start.Add(250*time.Millisecond))
	if out[0] != (color.RGB{R: 200, G: 200, B: 200}) {
		t.Fatalf("led0 at t+250ms should be fully dissolved, got %v", out[0])
	}
	if out[5].R == 0 || out[5].R == 200 {
		t.Fatalf("led5 at t+250ms should be mid-blend, got %v", out[5].R)
	}
}

func TestTerminatedZeroBands(t *testing.T) {
	a := NewActive(make([]color.RGB, 4), time.Unix(0, 0), Pattern{}, 4)
	if !a.Terminated(time.Unix(0, 0)) {
		t.Fatalf("zero-band pattern must terminate immediately")
	}
}

func TestTerminatedAfterAllBandsComplete(t *testing.T) {
	start := time.Unix(0, 0)
	a := NewActive(make([]color.RGB, 10), start, Pattern{
		{DelayMs: 0, DurationMs: 100, StartLED: 0, EndLED: 4},
		{DelayMs: 200, DurationMs: 100, StartLED: 5, EndLED: 9},
	}, 10)

	if a.Terminated(start.Add(250 * time.Millisecond)) {
		t.Fatalf("dissolve should not have terminated before last band completes")
	}
	if !a.Terminated(start.Add(300 * time.Millisecond)) {
		t.Fatalf("dissolve should terminate once every covered led reaches progress 1")
	}
}

func TestClipOutOfRangeBand(t *testing.T) {
	b := Band{StartLED: -5, EndLED: 100}
	s, e := b.Clip(10)
	if s != 0 || e != 9 {
		t.Fatalf("clip = [%d,%d], want [0,9]", s, e)
	}
}
