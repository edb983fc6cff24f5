// Package scene holds the container types the engine core operates on:
// palettes, effects built from segments, and the scenes that own them.
package scene

import (
	"github.com/CoderFake/led-animation-playback-engine/internal/color"
	"github.com/CoderFake/led-animation-playback-engine/internal/segment"
)

// PaletteSize is the fixed number of color slots in every palette.
const PaletteSize = 6

// Palette is an ordered sequence of exactly PaletteSize RGB triples.
type Palette [PaletteSize]color.RGB

// BlackPalette is substituted whenever a lookup falls out of range.
var BlackPalette = Palette{}

// Slice returns the palette as a []color.RGB for segment rendering.
func (p Palette) Slice() []color.RGB {
	return p[:]
}

// Effect is an ordered sequence of segments sharing one identity.
type Effect struct {
	EffectID int
	Segments []*segment.Segment
}

// Scene owns a set of palettes and effects, plus which of each is active.
type Scene struct {
	SceneID           int
	LEDCount          int
	FPS               int
	CurrentEffectID   int
	CurrentPaletteID  int
	Palettes          []Palette
	Effects           []*Effect
}

// CurrentEffect returns the effect whose EffectID matches CurrentEffectID.
func (s *Scene) CurrentEffect() (*Effect, bool) {
	for _, e := range s.Effects {
		if e.EffectID == s.CurrentEffectID {
			return e, true
		}
	}
	return nil, false
}

// CurrentPalette returns Palettes[CurrentPaletteID], or BlackPalette if the
// index is out of range.
func (s *Scene) CurrentPalette() Palette {
	if s.CurrentPaletteID < 0 || s.CurrentPaletteID >= len(s.Palettes) {
		return BlackPalette
	}
	return s.Palettes[s.CurrentPaletteID]
}

// SetPaletteColor mutates one channel triple in place. Out-of-range
// palette_id or color_id is a no-op, left for the caller to count as
// OutOfRange.
func (s *Scene) SetPaletteColor(paletteID, colorID int, c color.RGB) bool {
	if paletteID < 0 || paletteID >= len(s.Palettes) {
		return false
	}
	if colorID < 0 || colorID >= PaletteSize {
		return false
	}
	s.Palettes[paletteID][colorID] = c
	return true
}

// EffectByID finds an effect by id regardless of whether it is current.
func (s *Scene) EffectByID(id int) (*Effect, bool) {
	for _, e := range s.Effects {
		if e.EffectID == id {
			return e, true
		}
	}
	return nil, false
}

// Bundle is the top-level loaded document: an ordered sequence of scenes.
type Bundle struct {
	Scenes []*Scene
}

// ByID finds a scene by id within the bundle.
func (b *Bundle) ByID(id int) (*Scene, bool) {
	for _, s := range b.Scenes {
		if s.SceneID == id {
			return s, true
		}
	}
	return nil, false
}
