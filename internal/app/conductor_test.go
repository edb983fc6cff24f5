package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/CoderFake/led-animation-playback-engine/internal/control"
	"github.com/CoderFake/led-animation-playback-engine/internal/engine"
)

const oneSceneJSON = `{
  "scenes": [
    {
      "scene_id": 0,
      "led_count": 4,
      "palettes": [[[9,9,9],[0,0,0],[0,0,0],[0,0,0],[0,0,0],[0,0,0]]],
      "effects": [
        {
          "effect_id": 0,
          "segments": [
            {
              "segment_id": 0,
              "color": [0],
              "transparency": [0],
              "length": [4],
              "move_range": [0, 0],
              "is_edge_reflect": true,
              "dimmer_time": [[1000, 100, 100]]
            }
          ]
        }
      ]
    }
  ]
}`

func TestConductorHandlesLoadJSONAndRenders(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scenes.json")
	if err := os.WriteFile(path, []byte(oneSceneJSON), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	eng := engine.New(nil)
	c := NewConductor(eng)
	c.Clock = func() time.Time { return time.Unix(0, 0) }

	if err := c.HandleEvent(control.Event{Kind: control.LoadJSON, Path: path}); err != nil {
		t.Fatalf("handle load_json: %v", err)
	}

	if got := eng.ActiveSceneLEDCount(); got != 4 {
		t.Fatalf("active led_count = %d, want 4", got)
	}

	frame := eng.Render(time.Unix(0, 0))
	if frame[0].R != 9 {
		t.Fatalf("frame[0].R = %d, want 9", frame[0].R)
	}
}

func TestConductorHandlesPauseResume(t *testing.T) {
	eng := engine.New(nil)
	c := NewConductor(eng)

	if err := c.HandleEvent(control.Event{Kind: control.Pause}); err != nil {
		t.Fatalf("handle pause: %v", err)
	}
	if !eng.Paused() {
		t.Fatalf("expected engine paused after /pause event")
	}
	if err := c.HandleEvent(control.Event{Kind: control.Resume}); err != nil {
		t.Fatalf("handle resume: %v", err)
	}
	if eng.Paused() {
		t.Fatalf("expected engine resumed after /resume event")
	}
}

func TestConductorLoadJSONMissingFileIsLoadFailure(t *testing.T) {
	eng := engine.New(nil)
	c := NewConductor(eng)

	err := c.HandleEvent(control.Event{Kind: control.LoadJSON, Path: "/nonexistent/scenes.json"})
	if err == nil {
		t.Fatalf("expected error for missing scene file")
	}
	if eng.Counters().Snapshot().LoadFailure != 1 {
		t.Fatalf("expected one load failure counted")
	}
}
