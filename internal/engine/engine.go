// Package engine owns EngineState: the single mutex-guarded scene graph,
// staged/active ids, and dissolve state, plus the Scene Manager operations
// that mutate it (spec component C4).
package engine

import (
	"sync"
	"time"

	"github.com/CoderFake/led-animation-playback-engine/internal/color"
	"github.com/CoderFake/led-animation-playback-engine/internal/dissolve"
	"github.com/CoderFake/led-animation-playback-engine/internal/scene"
	"github.com/CoderFake/led-animation-playback-engine/internal/telemetry"
)

// State is the process-wide engine state, guarded by one mutex. Every
// public method except Counters acquires it; render(now) is designed to be pure given
// the state it reads, so it is testable by injecting a clock.
type State struct {
	mu sync.Mutex

	scenes map[int]*scene.Scene

	activeSceneID, activeEffectID, activePaletteID int
	stagedSceneID, stagedEffectID, stagedPaletteID int

	dissolvePatterns        map[int]dissolve.Pattern
	activeDissolvePatternID int
	dissolveActive          *dissolve.Active

	speedPercent     int
	masterBrightness uint8
	paused           bool

	counters *telemetry.Counters
}

// New returns an empty engine state. counters may be nil, in which case
// a private counter set is created so callers can always observe it.
func New(counters *telemetry.Counters) *State {
	if counters == nil {
		counters = telemetry.NewCounters()
	}
	return &State{
		scenes:           make(map[int]*scene.Scene),
		dissolvePatterns: make(map[int]dissolve.Pattern),
		masterBrightness: 255,
		counters:         counters,
	}
}

// Counters exposes the engine's telemetry counters for the ambient health
// surface; the core itself only ever calls Inc* through this field.
func (s *State) Counters() *telemetry.Counters {
	return s.counters
}

// LoadScenes replaces the scene map atomically, resets active and staged
// ids to the first scene (by bundle order) with effect/palette 0, clears
// any active dissolve, and resets every segment's animation timing.
func (s *State) LoadScenes(bundle *scene.Bundle, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	scenes := make(map[int]*scene.Scene, len(bundle.Scenes))
	for _, sc := range bundle.Scenes {
		scenes[sc.SceneID] = sc
	}
	s.scenes = scenes
	s.dissolveActive = nil

	if len(bundle.Scenes) == 0 {
		s.activeSceneID, s.stagedSceneID = 0, 0
		s.activeEffectID, s.stagedEffectID = 0, 0
		s.activePaletteID, s.stagedPaletteID = 0, 0
		return
	}

	first := bundle.Scenes[0]
	s.activeSceneID = first.SceneID
	s.stagedSceneID = first.SceneID
	s.activeEffectID = 0
	s.stagedEffectID = 0
	s.activePaletteID = 0
	s.stagedPaletteID = 0

	for _, sc := range bundle.Scenes {
		resetSceneTimings(sc, now)
	}
}

func resetSceneTimings(sc *scene.Scene, now time.Time) {
	for _, e := range sc.Effects {
		for _, seg := range e.Segments {
			seg.ResetTiming(now)
		}
	}
}

// CacheChangeScene stages a scene id if it exists.
func (s *State) CacheChangeScene(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.scenes[id]; !ok {
		s.counters.IncMissingResource()
		return
	}
	s.stagedSceneID = id
}

// CacheChangeEffect stages an effect id if present in the staged scene.
func (s *State) CacheChangeEffect(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sc, ok := s.scenes[s.stagedSceneID]
	if !ok {
		s.counters.IncMissingResource()
		return
	}
	if _, ok := sc.EffectByID(id); !ok {
		s.counters.IncMissingResource()
		return
	}
	s.stagedEffectID = id
}

// CacheChangePalette stages a palette id if in range on the staged scene.
func (s *State) CacheChangePalette(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sc, ok := s.scenes[s.stagedSceneID]
	if !ok {
		s.counters.IncMissingResource()
		return
	}
	if id < 0 || id >= len(sc.Palettes) {
		s.counters.IncOutOfRange()
		return
	}
	s.stagedPaletteID = id
}

// SetPaletteColor mutates a palette entry on the active scene directly.
// Takes effect next frame, no dissolve.
func (s *State) SetPaletteColor(paletteID, colorID int, c color.RGB) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sc, ok := s.scenes[s.activeSceneID]
	if !ok {
		s.counters.IncMissingResource()
		return
	}
	if !sc.SetPaletteColor(paletteID, colorID, c) {
		s.counters.IncOutOfRange()
	}
}

// SetDissolvePattern selects the active dissolve pattern id if present.
func (s *State) SetDissolvePattern(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.dissolvePatterns[id]; !ok {
		s.counters.IncMissingResource()
		return
	}
	s.activeDissolvePatternID = id
}

// LoadDissolvePatterns replaces the dissolve pattern map wholesale.
func (s *State) LoadDissolvePatterns(patterns map[int]dissolve.Pattern) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dissolvePatterns = patterns
}

// Pause freezes rendering: the next frame is all black and position /
// dimmer clocks do not advance.
func (s *State) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = true
}

// Resume unfreezes rendering.
func (s *State) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = false
}

// Paused reports the current pause state.
func (s *State) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

// SetSpeed clamps p to [0,1023] and stores it.
func (s *State) SetSpeed(p int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p < 0 {
		p = 0
	}
	if p > 1023 {
		p = 1023
	}
	s.speedPercent = p
}

// SetMasterBrightness stores b. b is already a byte, so the [0,255]
// clamp of the raw control argument is done by the caller (app.Conductor)
// before this setter is reached.
func (s *State) SetMasterBrightness(b uint8) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.masterBrightness = b
}

// CommitPattern adopts all staged ids as active if any differ, snapshots
// the current render as from_frame, resets affected segment timings, and
// begins a dissolve using the active dissolve pattern. A commit with no
// staged difference is a no-op.
func (s *State) CommitPattern(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := s.stagedSceneID != s.activeSceneID ||
		s.stagedEffectID != s.activeEffectID ||
		s.stagedPaletteID != s.activePaletteID
	if !changed {
		return
	}

	fromFrame := s.renderLocked(now)

	s.activeSceneID = s.stagedSceneID
	s.activeEffectID = s.stagedEffectID
	s.activePaletteID = s.stagedPaletteID

	if sc, ok := s.scenes[s.activeSceneID]; ok {
		sc.CurrentEffectID = s.activeEffectID
		sc.CurrentPaletteID = s.activePaletteID
		resetSceneTimings(sc, now)
	}

	ledCount := 0
	if sc, ok := s.scenes[s.activeSceneID]; ok {
		ledCount = sc.LEDCount
	}

	pattern := s.dissolvePatterns[s.activeDissolvePatternID]
	s.dissolveActive = dissolve.NewActive(fromFrame, now, pattern, ledCount)
}

// UpdateAnimation advances every active segment's position by dt virtual
// seconds. Called by the scheduler before render(now); no-op while
// paused (the scheduler must not call this with a nonzero dt while
// paused, but guarding here keeps State self-consistent under direct
// testing too).
func (s *State) UpdateAnimation(dt float64, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.paused {
		return
	}
	sc, ok := s.scenes[s.activeSceneID]
	if !ok {
		return
	}
	effect, ok := sc.EffectByID(s.activeEffectID)
	if !ok {
		return
	}
	for _, seg := range effect.Segments {
		seg.UpdatePosition(dt, now)
	}
}

// Render produces the next frame. While paused it returns an all-black
// frame of the active scene's led_count without touching any clocks.
func (s *State) Render(now time.Time) []color.RGB {
	s.mu.Lock()
	defer s.mu.Unlock()
	frame := s.renderLocked(now)
	s.counters.IncFramesRendered()
	return frame
}

func (s *State) renderLocked(now time.Time) []color.RGB {
	sc, ok := s.scenes[s.activeSceneID]
	if !ok {
		return nil
	}

	if s.paused {
		return make([]color.RGB, sc.LEDCount)
	}

	frame := make([]color.RGB, sc.LEDCount)

	effect, ok := sc.EffectByID(s.activeEffectID)
	if ok {
		palette := scene.BlackPalette
		if s.activePaletteID >= 0 && s.activePaletteID < len(sc.Palettes) {
			palette = sc.Palettes[s.activePaletteID]
		}
		for _, seg := range effect.Segments {
			seg.RenderTo(frame, palette.Slice(), now)
		}
	}

	if s.dissolveActive != nil {
		frame = s.dissolveActive.Blend(frame, now)
		if s.dissolveActive.Terminated(now) {
			s.dissolveActive = nil
		}
	}

	color.ApplyMaster(frame, s.masterBrightness)
	return frame
}

// ActiveSceneLEDCount returns the led_count of the active scene, or 0 if
// none is loaded, without exposing scene internals to the caller.
func (s *State) ActiveSceneLEDCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sc, ok := s.scenes[s.activeSceneID]; ok {
		return sc.LEDCount
	}
	return 0
}

// ActiveSceneFPS returns the active scene's fps, or 0 if none is loaded.
// The scheduler re-reads this every tick per spec.md §4.6.
func (s *State) ActiveSceneFPS() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sc, ok := s.scenes[s.activeSceneID]; ok {
		return sc.FPS
	}
	return 0
}

// SpeedPercent returns the current speed scale.
func (s *State) SpeedPercent() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.speedPercent
}
