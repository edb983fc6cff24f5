// Package app wires the core engine to its ambient collaborators:
// control ingress, scene/dissolve loading from disk, output fan-out,
// and the frame scheduler. This is the same bootstrap/conductor split
// the teacher lineage used to keep its entrypoint thin.
package app

import (
	"fmt"
	"os"
	"time"

	"github.com/CoderFake/led-animation-playback-engine/internal/color"
	"github.com/CoderFake/led-animation-playback-engine/internal/control"
	"github.com/CoderFake/led-animation-playback-engine/internal/engine"
	"github.com/CoderFake/led-animation-playback-engine/internal/sceneio"
)

// Conductor adapts decoded control.Event values onto engine.State's
// Scene Manager operations, plus the scene/dissolve file loaders the
// core itself has no knowledge of.
type Conductor struct {
	Engine *engine.State
	// Clock lets tests inject a fixed instant; defaults to time.Now.
	Clock func() time.Time
}

// NewConductor builds a Conductor bound to engine.
func NewConductor(eng *engine.State) *Conductor {
	return &Conductor{Engine: eng, Clock: time.Now}
}

func (c *Conductor) now() time.Time {
	if c.Clock != nil {
		return c.Clock()
	}
	return time.Now()
}

// HandleEvent applies ev to the engine under whatever locking
// engine.State's methods already provide.
func (c *Conductor) HandleEvent(ev control.Event) error {
	now := c.now()

	switch ev.Kind {
	case control.LoadJSON:
		data, err := os.ReadFile(ev.Path)
		if err != nil {
			c.Engine.Counters().IncLoadFailure()
			return fmt.Errorf("app: read scene file %s: %w", ev.Path, err)
		}
		bundle, err := sceneio.LoadSceneBundle(data)
		if err != nil {
			c.Engine.Counters().IncLoadFailure()
			return fmt.Errorf("app: load scene bundle %s: %w", ev.Path, err)
		}
		c.Engine.LoadScenes(bundle, now)

	case control.LoadDissolveJSON:
		data, err := os.ReadFile(ev.Path)
		if err != nil {
			c.Engine.Counters().IncLoadFailure()
			return fmt.Errorf("app: read dissolve file %s: %w", ev.Path, err)
		}
		patterns, err := sceneio.LoadDissolveBundle(data)
		if err != nil {
			c.Engine.Counters().IncLoadFailure()
			return fmt.Errorf("app: load dissolve bundle %s: %w", ev.Path, err)
		}
		c.Engine.LoadDissolvePatterns(patterns)

	case control.ChangeScene:
		c.Engine.CacheChangeScene(ev.ID)

	case control.ChangeEffect:
		c.Engine.CacheChangeEffect(ev.ID)

	case control.ChangePalette:
		c.Engine.CacheChangePalette(ev.ID)

	case control.ChangePattern:
		c.Engine.CommitPattern(now)

	case control.Pause:
		c.Engine.Pause()

	case control.Resume:
		c.Engine.Resume()

	case control.PaletteColor:
		c.Engine.SetPaletteColor(ev.PaletteID, ev.ColorID, color.RGB{
			R: clampByteArg(ev.R), G: clampByteArg(ev.G), B: clampByteArg(ev.B),
		})

	case control.SetDissolvePattern:
		c.Engine.SetDissolvePattern(ev.ID)

	case control.SetSpeedPercent:
		c.Engine.SetSpeed(ev.Percent)

	case control.MasterBrightness:
		c.Engine.SetMasterBrightness(clampByteArg(ev.Brightness))

	default:
		return fmt.Errorf("app: unhandled control event kind %d", ev.Kind)
	}

	return nil
}

func clampByteArg(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
