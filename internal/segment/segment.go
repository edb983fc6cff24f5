// Package segment implements the per-segment dimmer timing, fractional
// position update, and additive render-to-frame kernel (spec component C2).
package segment

import (
	"time"

	"github.com/CoderFake/led-animation-playback-engine/internal/color"
)

// DimmerPhase is one linear brightness ramp in a segment's cycle.
type DimmerPhase struct {
	DurationMs    int64
	StartPercent  float64
	EndPercent    float64
}

// Segment is the atomic renderable unit described in spec.md §3.
type Segment struct {
	ID int

	Color         []int
	Transparency  []float64
	Length        []int
	MoveSpeed     float64
	MoveRangeLo   int
	MoveRangeHi   int
	IsEdgeReflect bool
	DimmerTime    []DimmerPhase

	// CurrentPosition is the integer LED index of part-0's leftmost LED.
	CurrentPosition int
	// frac is the hidden sub-LED accumulator: carries fractional motion
	// between ticks and, at render time, drives edge-fade intensity.
	frac float64

	SegmentStartTime time.Time
}

// normalizedRange returns MoveRangeLo/Hi with lo <= hi, auto-swapping
// whatever was stored if it is inverted (spec.md §7 OutOfRange policy).
func (s *Segment) normalizedRange() (lo, hi int) {
	if s.MoveRangeLo <= s.MoveRangeHi {
		return s.MoveRangeLo, s.MoveRangeHi
	}
	return s.MoveRangeHi, s.MoveRangeLo
}

// ResetTiming restarts the dimmer phase and zeroes the motion accumulator.
// This is the only source of dimmer restart besides a fresh load/commit.
func (s *Segment) ResetTiming(now time.Time) {
	s.SegmentStartTime = now
	s.frac = 0
}

// BrightnessAt evaluates the segment's time-based dimmer cycle at now.
func (s *Segment) BrightnessAt(now time.Time) float64 {
	if len(s.DimmerTime) == 0 {
		return 1.0
	}

	var cycleMs int64
	for _, p := range s.DimmerTime {
		cycleMs += max64(1, p.DurationMs)
	}
	if cycleMs <= 0 {
		return 1.0
	}

	elapsedMs := now.Sub(s.SegmentStartTime).Seconds() * 1000
	if elapsedMs < 0 {
		elapsedMs = 0
	}

	cycles := int64(elapsedMs / float64(cycleMs))
	phaseF := elapsedMs - float64(cycles)*float64(cycleMs)
	if phaseF == 0 && elapsedMs > 0 {
		phaseF = float64(cycleMs)
	}

	var currentMs float64
	for _, p := range s.DimmerTime {
		duration := float64(max64(1, p.DurationMs))
		if phaseF <= currentMs+duration {
			progress := 0.0
			if duration > 0 {
				progress = (phaseF - currentMs) / duration
			}
			progress = clamp01(progress)
			brightness := (p.StartPercent + (p.EndPercent-p.StartPercent)*progress) / 100.0
			return clamp01(brightness)
		}
		currentMs += duration
	}

	last := s.DimmerTime[len(s.DimmerTime)-1]
	return clamp01(last.EndPercent / 100.0)
}

// UpdatePosition advances the segment's position by dt virtual seconds,
// applying boundary reflection or wrap per spec.md §4.2.
func (s *Segment) UpdatePosition(dt float64, now time.Time) {
	if abs(s.MoveSpeed) < 0.001 {
		return
	}

	s.frac += s.MoveSpeed * dt
	if abs(s.frac) >= 1 {
		step := trunc(s.frac)
		s.CurrentPosition += step
		s.frac -= float64(step)
	}

	lo, hi := s.normalizedRange()

	if s.IsEdgeReflect {
		if s.CurrentPosition <= lo {
			s.CurrentPosition = lo
			s.MoveSpeed = abs(s.MoveSpeed)
			s.ResetTiming(now)
		} else if s.CurrentPosition >= hi {
			s.CurrentPosition = hi
			s.MoveSpeed = -abs(s.MoveSpeed)
			s.ResetTiming(now)
		}
		return
	}

	if hi == lo {
		s.CurrentPosition = lo
		return
	}
	if s.CurrentPosition < lo {
		s.CurrentPosition = hi - mod(lo-s.CurrentPosition, hi-lo)
	} else if s.CurrentPosition > hi {
		s.CurrentPosition = lo + mod(s.CurrentPosition-hi, hi-lo)
	}
}

// expandedColor is one LED-worth of fully-scaled color, pre-fade.
type expandedColor struct {
	c color.RGB
}

// expand builds the ordered sequence of per-LED colors this segment emits
// before fractional edge fade and placement (spec.md §4.2 steps 1-2).
func (s *Segment) expand(palette []color.RGB, brightness float64) []expandedColor {
	var out []expandedColor

	for i, length := range s.Length {
		n := length
		if n < 0 {
			n = 0
		}
		if n == 0 {
			continue
		}
		base := paletteColor(palette, colorIndexAt(s.Color, i))
		t := transparencyAt(s.Transparency, i)
		c := color.Scale(base, t, brightness)
		for j := 0; j < n; j++ {
			out = append(out, expandedColor{c})
		}
	}

	for i := len(s.Length); i < len(s.Color); i++ {
		base := paletteColor(palette, s.Color[i])
		t := transparencyAt(s.Transparency, i)
		c := color.Scale(base, t, brightness)
		out = append(out, expandedColor{c})
	}

	return out
}

func colorIndexAt(colorIdx []int, i int) int {
	if i < len(colorIdx) {
		return colorIdx[i]
	}
	return 0
}

func transparencyAt(transparency []float64, i int) float64 {
	if i < len(transparency) {
		return transparency[i]
	}
	return 0.0
}

func paletteColor(palette []color.RGB, idx int) color.RGB {
	if idx < 0 || idx >= len(palette) {
		return color.Black
	}
	return palette[idx]
}

// RenderTo additively composites this segment into frame at the given
// instant, per spec.md §4.2 "Render to frame".
func (s *Segment) RenderTo(frame []color.RGB, palette []color.RGB, now time.Time) {
	brightness := s.BrightnessAt(now)
	if brightness <= 0 {
		return
	}

	expanded := s.expand(palette, brightness)
	n := len(expanded)
	if n == 0 {
		return
	}

	base := s.CurrentPosition
	fracPart := s.frac

	if base < 0 {
		if -base >= n {
			return
		}
		expanded = expanded[-base:]
		n = len(expanded)
		base = 0
		fracPart = 0
	}

	for i, ec := range expanded {
		c := ec.c
		if n > 1 && fracPart > 0 {
			if i == 0 {
				c = color.Fade(c, max(0.1, fracPart))
			} else if i == n-1 {
				c = color.Fade(c, max(0.1, 1-fracPart))
			}
		}
		ledIndex := base + i
		if ledIndex < 0 || ledIndex >= len(frame) {
			continue
		}
		color.AddSaturating(&frame[ledIndex], c)
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func trunc(v float64) int {
	return int(v)
}

func mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
