package localdrv

import (
	"testing"

	"github.com/CoderFake/led-animation-playback-engine/internal/color"
)

func TestSimWriteStoresLastFrame(t *testing.T) {
	sim := NewSim()
	frame := []color.RGB{{R: 1, G: 2, B: 3}, {R: 4, G: 5, B: 6}}

	if err := sim.Write(frame); err != nil {
		t.Fatalf("write: %v", err)
	}
	if len(sim.Last) != 2 || sim.Last[1].G != 5 {
		t.Fatalf("last frame not stored correctly: %v", sim.Last)
	}

	frame[0].R = 99
	if sim.Last[0].R == 99 {
		t.Fatalf("sim must copy the frame, not alias the caller's slice")
	}
}
