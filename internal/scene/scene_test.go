package scene_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/CoderFake/led-animation-playback-engine/internal/color"
	"github.com/CoderFake/led-animation-playback-engine/internal/scene"
)

func newTestScene() *scene.Scene {
	return &scene.Scene{
		SceneID:          1,
		LEDCount:         10,
		FPS:              60,
		CurrentEffectID:  2,
		CurrentPaletteID: 0,
		Palettes:         []scene.Palette{{}, {}},
		Effects: []*scene.Effect{
			{EffectID: 1},
			{EffectID: 2},
		},
	}
}

func TestCurrentEffectFound(t *testing.T) {
	s := newTestScene()
	e, ok := s.CurrentEffect()
	assert.True(t, ok)
	assert.Equal(t, 2, e.EffectID)
}

func TestCurrentEffectMissing(t *testing.T) {
	s := newTestScene()
	s.CurrentEffectID = 99
	_, ok := s.CurrentEffect()
	assert.False(t, ok)
}

func TestCurrentPaletteOutOfRangeIsBlack(t *testing.T) {
	s := newTestScene()
	s.CurrentPaletteID = 99
	assert.Equal(t, scene.BlackPalette, s.CurrentPalette())
}

func TestSetPaletteColorInPlace(t *testing.T) {
	s := newTestScene()
	ok := s.SetPaletteColor(0, 3, color.RGB{R: 1, G: 2, B: 3})
	assert.True(t, ok)
	assert.Equal(t, color.RGB{R: 1, G: 2, B: 3}, s.Palettes[0][3])
}

func TestSetPaletteColorOutOfRange(t *testing.T) {
	s := newTestScene()
	assert.False(t, s.SetPaletteColor(5, 0, color.RGB{}))
	assert.False(t, s.SetPaletteColor(0, 6, color.RGB{}))
}

func TestBundleByID(t *testing.T) {
	b := &scene.Bundle{Scenes: []*scene.Scene{newTestScene()}}
	s, ok := b.ByID(1)
	assert.True(t, ok)
	assert.Equal(t, 1, s.SceneID)

	_, ok = b.ByID(404)
	assert.False(t, ok)
}
