// Package dissolve implements the per-LED-band timed cross-fade between
// two frames that backs a scene/effect/palette commit (spec component C5).
package dissolve

import (
	"time"

	"github.com/CoderFake/led-animation-playback-engine/internal/color"
)

// Band is one timed cross-fade region. StartLED/EndLED are inclusive.
type Band struct {
	DelayMs    int64
	DurationMs int64
	StartLED   int
	EndLED     int
}

// Pattern is an ordered sequence of bands; bands may overlap in range or
// time and there is no required coverage of every LED.
type Pattern []Band

// Clip normalizes s, e to a half-open-safe inclusive range within
// [0, ledCount) and swaps them if inverted.
func (b Band) Clip(ledCount int) (start, end int) {
	start, end = b.StartLED, b.EndLED
	if start > end {
		start, end = end, start
	}
	if start < 0 {
		start = 0
	}
	if end >= ledCount {
		end = ledCount - 1
	}
	return start, end
}

// progressAt computes this band's blend progress at elapsedMs, the time
// since the dissolve's start_instant, in milliseconds.
func (b Band) progressAt(elapsedMs float64) float64 {
	t := elapsedMs - float64(b.DelayMs)
	duration := float64(b.DurationMs)
	if duration <= 0 {
		if t >= 0 {
			return 1
		}
		return 0
	}
	if t <= 0 {
		return 0
	}
	if t >= duration {
		return 1
	}
	return t / duration
}

// Active is a live dissolve transition: an immutable snapshot of the
// pre-commit frame, faded into whatever the engine renders live now.
type Active struct {
	FromFrame    []color.RGB
	StartInstant time.Time
	Pattern      Pattern
	LEDCount     int
}

// NewActive snapshots fromFrame (copied, never aliased) and starts a
// dissolve using pattern.
func NewActive(fromFrame []color.RGB, now time.Time, pattern Pattern, ledCount int) *Active {
	snapshot := make([]color.RGB, len(fromFrame))
	copy(snapshot, fromFrame)
	return &Active{
		FromFrame:    snapshot,
		StartInstant: now,
		Pattern:      pattern,
		LEDCount:     ledCount,
	}
}

// Blend combines a.FromFrame with toFrame (the freshly rendered active
// scene) at instant now, using per-LED max progress across covering bands.
func (a *Active) Blend(toFrame []color.RGB, now time.Time) []color.RGB {
	out := make([]color.RGB, a.LEDCount)
	elapsedMs := now.Sub(a.StartInstant).Seconds() * 1000

	for i := 0; i < a.LEDCount; i++ {
		p := 0.0
		for _, band := range a.Pattern {
			s, e := band.Clip(a.LEDCount)
			if i < s || i > e {
				continue
			}
			if bp := band.progressAt(elapsedMs); bp > p {
				p = bp
			}
		}
		from := color.Black
		if i < len(a.FromFrame) {
			from = a.FromFrame[i]
		}
		to := color.Black
		if i < len(toFrame) {
			to = toFrame[i]
		}
		out[i] = color.Blend(from, to, p)
	}
	return out
}

// Terminated reports whether every LED covered by any band has reached
// progress 1 by now. A zero-band pattern terminates immediately.
func (a *Active) Terminated(now time.Time) bool {
	if len(a.Pattern) == 0 {
		return true
	}
	elapsedMs := now.Sub(a.StartInstant).Seconds() * 1000

	touched := make(map[int]bool)
	for _, band := range a.Pattern {
		s, e := band.Clip(a.LEDCount)
		for i := s; i <= e; i++ {
			touched[i] = true
		}
	}

	for i := range touched {
		if !a.ledDone(i, elapsedMs) {
			return false
		}
	}
	return true
}

// ledDone reports whether every band covering LED i has reached progress
// 1 at elapsedMs. An LED that no band covers reports false; Terminated
// only asks about covered LEDs, so uncovered ones never block termination.
func (a *Active) ledDone(i int, elapsedMs float64) bool {
	touched := false
	for _, band := range a.Pattern {
		s, e := band.Clip(a.LEDCount)
		if i < s || i > e {
			continue
		}
		touched = true
		if band.progressAt(elapsedMs) < 1 {
			return false
		}
	}
	return touched
}
