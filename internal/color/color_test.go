package color_test

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/CoderFake/led-animation-playback-engine/internal/color"
)

var transparencyCases = []struct {
	C      uint8
	T      float64
	Expect uint8
}{
	{255, 0.0, 255},
	{255, 1.0, 0},
	{200, 0.5, 100},
	{10, 2.0, 0},   // t clamped to 1
	{10, -1.0, 10}, // t clamped to 0
}

func TestApplyTransparency(t *testing.T) {
	for k, v := range transparencyCases {
		t.Run("case"+strconv.Itoa(k), func(t *testing.T) {
			assert.Equal(t, v.Expect, color.ApplyTransparency(v.C, v.T))
		})
	}
}

var blendCases = []struct {
	A, B   color.RGB
	P      float64
	Expect color.RGB
}{
	{color.RGB{0, 0, 0}, color.RGB{255, 255, 255}, 0, color.RGB{0, 0, 0}},
	{color.RGB{0, 0, 0}, color.RGB{255, 255, 255}, 1, color.RGB{255, 255, 255}},
	{color.RGB{0, 0, 0}, color.RGB{254, 254, 254}, 0.5, color.RGB{127, 127, 127}},
}

func TestBlend(t *testing.T) {
	for k, v := range blendCases {
		t.Run("case"+strconv.Itoa(k), func(t *testing.T) {
			assert.Equal(t, v.Expect, color.Blend(v.A, v.B, v.P))
		})
	}
}

func TestAddSaturating(t *testing.T) {
	dst := color.RGB{R: 250, G: 10, B: 0}
	color.AddSaturating(&dst, color.RGB{R: 20, G: 20, B: 5})
	assert.Equal(t, color.RGB{R: 255, G: 30, B: 5}, dst)
}

func TestApplyMaster(t *testing.T) {
	frame := []color.RGB{{100, 100, 100}, {200, 50, 10}}

	full := append([]color.RGB{}, frame...)
	color.ApplyMaster(full, 255)
	assert.Equal(t, frame, full)

	zero := append([]color.RGB{}, frame...)
	color.ApplyMaster(zero, 0)
	for _, c := range zero {
		assert.Equal(t, color.Black, c)
	}

	half := append([]color.RGB{}, frame...)
	color.ApplyMaster(half, 128)
	assert.Less(t, half[0].R, frame[0].R)
	assert.Greater(t, half[0].R, uint8(0))
}
