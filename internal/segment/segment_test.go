package segment

import (
	"testing"
	"time"

	"github.com/CoderFake/led-animation-playback-engine/internal/color"
)

func TestBrightnessAtFlatCycle(t *testing.T) {
	start := time.Unix(0, 0)
	s := &Segment{
		DimmerTime:       []DimmerPhase{{DurationMs: 1000, StartPercent: 0, EndPercent: 100}},
		SegmentStartTime: start,
	}

	if got := s.BrightnessAt(start); got != 0 {
		t.Fatalf("brightness at phase start = %v, want 0", got)
	}
	if got := s.BrightnessAt(start.Add(500 * time.Millisecond)); got < 0.45 || got > 0.55 {
		t.Fatalf("brightness at half phase = %v, want ~0.5", got)
	}
}

func TestBrightnessAtNoPhasesIsFull(t *testing.T) {
	s := &Segment{}
	if got := s.BrightnessAt(time.Now()); got != 1.0 {
		t.Fatalf("brightness with no dimmer_time = %v, want 1.0", got)
	}
}

func TestBrightnessAtWrapsAcrossCycle(t *testing.T) {
	start := time.Unix(0, 0)
	s := &Segment{
		DimmerTime: []DimmerPhase{
			{DurationMs: 500, StartPercent: 0, EndPercent: 100},
			{DurationMs: 500, StartPercent: 100, EndPercent: 0},
		},
		SegmentStartTime: start,
	}

	// One full cycle later we should be back at the same point in phase 0.
	got := s.BrightnessAt(start.Add(1200 * time.Millisecond))
	want := s.BrightnessAt(start.Add(200 * time.Millisecond))
	if got != want {
		t.Fatalf("brightness did not wrap: got %v at t+1200ms, want %v (same as t+200ms)", got, want)
	}
}

func TestUpdatePositionReflectsAtBoundary(t *testing.T) {
	now := time.Unix(0, 0)
	s := &Segment{
		MoveSpeed:       10,
		MoveRangeLo:     0,
		MoveRangeHi:     5,
		IsEdgeReflect:   true,
		CurrentPosition: 4,
	}

	s.UpdatePosition(1, now)

	if s.CurrentPosition != 5 {
		t.Fatalf("current position = %d, want clamped to 5", s.CurrentPosition)
	}
	if s.MoveSpeed >= 0 {
		t.Fatalf("move speed = %v, want negated after hitting hi bound", s.MoveSpeed)
	}
}

func TestUpdatePositionWrapsBelowLo(t *testing.T) {
	now := time.Unix(0, 0)
	s := &Segment{
		MoveSpeed:       -10,
		MoveRangeLo:     0,
		MoveRangeHi:     5,
		IsEdgeReflect:   false,
		CurrentPosition: 1,
	}

	s.UpdatePosition(1, now)

	if s.CurrentPosition < 0 || s.CurrentPosition > 5 {
		t.Fatalf("wrapped position out of range: %d", s.CurrentPosition)
	}
}

func TestUpdatePositionAutoSwapsInvertedRange(t *testing.T) {
	now := time.Unix(0, 0)
	s := &Segment{
		MoveSpeed:       10,
		MoveRangeLo:     9,
		MoveRangeHi:     2,
		IsEdgeReflect:   true,
		CurrentPosition: 1,
	}

	s.UpdatePosition(1, now)

	if s.CurrentPosition < 2 || s.CurrentPosition > 9 {
		t.Fatalf("position %d escaped auto-swapped range [2,9]", s.CurrentPosition)
	}
}

func TestRenderToAddsWithinBounds(t *testing.T) {
	now := time.Unix(0, 0)
	s := &Segment{
		Color:            []int{0},
		Transparency:     []float64{0},
		Length:           []int{3},
		CurrentPosition:  2,
		SegmentStartTime: now,
	}
	palette := []color.RGB{{R: 100, G: 100, B: 100}}
	frame := make([]color.RGB, 10)

	s.RenderTo(frame, palette, now)

	for i := 2; i < 5; i++ {
		if frame[i] == color.Black {
			t.Fatalf("expected frame[%d] to be lit, got black", i)
		}
	}
	if frame[0] != color.Black || frame[6] != color.Black {
		t.Fatalf("render bled outside segment span")
	}
}

func TestRenderToClipsNegativeBase(t *testing.T) {
	now := time.Unix(0, 0)
	s := &Segment{
		Color:            []int{0},
		Transparency:     []float64{0},
		Length:           []int{5},
		CurrentPosition:  -2,
		SegmentStartTime: now,
	}
	palette := []color.RGB{{R: 50, G: 50, B: 50}}
	frame := make([]color.RGB, 10)

	s.RenderTo(frame, palette, now)

	if frame[0] == color.Black {
		t.Fatalf("expected clipped segment to still light frame[0]")
	}
}
