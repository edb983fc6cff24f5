// Package sceneio decodes scene and dissolve JSON documents into the
// core's scene.Bundle and dissolve.Pattern values. It is the tolerant
// boundary spec.md's design notes describe: partial documents, defaults,
// and a legacy flat dimmer_time format are accepted here. The only
// entity it rejects is a segment with an empty dimmer_time; other
// out-of-range values (dimmer durations below 1, brightness outside
// [0,100], an inverted move_range or band, part arrays of unequal
// length) are passed to the core unchanged.
package sceneio

import (
	"encoding/json"
	"fmt"

	"github.com/CoderFake/led-animation-playback-engine/internal/color"
	"github.com/CoderFake/led-animation-playback-engine/internal/dissolve"
	"github.com/CoderFake/led-animation-playback-engine/internal/scene"
	"github.com/CoderFake/led-animation-playback-engine/internal/segment"
)

const (
	defaultLEDCount = 225
	defaultFPS      = 60
)

type sceneDoc struct {
	Scenes []sceneJSON `json:"scenes"`
}

type sceneJSON struct {
	SceneID          int           `json:"scene_id"`
	LEDCount         int           `json:"led_count"`
	FPS              int           `json:"fps"`
	CurrentEffectID  int           `json:"current_effect_id"`
	CurrentPaletteID int           `json:"current_palette_id"`
	Palettes         [][]rgbJSON   `json:"palettes"`
	Effects          []effectJSON  `json:"effects"`
}

type rgbJSON struct {
	R, G, B int
}

func (c *rgbJSON) UnmarshalJSON(b []byte) error {
	var arr [3]int
	if err := json.Unmarshal(b, &arr); err != nil {
		return err
	}
	c.R, c.G, c.B = arr[0], arr[1], arr[2]
	return nil
}

type effectJSON struct {
	EffectID int           `json:"effect_id"`
	Segments []segmentJSON `json:"segments"`
}

type segmentJSON struct {
	SegmentID       int               `json:"segment_id"`
	Color           []int             `json:"color"`
	Transparency    []float64         `json:"transparency"`
	Length          []int             `json:"length"`
	MoveSpeed       float64           `json:"move_speed"`
	MoveRange       [2]int            `json:"move_range"`
	CurrentPosition int               `json:"current_position"`
	IsEdgeReflect   bool              `json:"is_edge_reflect"`
	DimmerTime      json.RawMessage   `json:"dimmer_time"`
}

// LoadSceneBundle parses a scene JSON document into a scene.Bundle,
// applying defaults and rejecting any segment whose dimmer_time is empty
// or unparseable. A non-nil error means the caller must
// leave prior engine state untouched (LoadFailure, §7).
func LoadSceneBundle(data []byte) (*scene.Bundle, error) {
	var doc sceneDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("sceneio: parse: %w", err)
	}

	bundle := &scene.Bundle{}
	for _, sj := range doc.Scenes {
		sc, err := convertScene(sj)
		if err != nil {
			return nil, fmt.Errorf("sceneio: scene %d: %w", sj.SceneID, err)
		}
		bundle.Scenes = append(bundle.Scenes, sc)
	}
	return bundle, nil
}

func convertScene(sj sceneJSON) (*scene.Scene, error) {
	ledCount := sj.LEDCount
	if ledCount <= 0 {
		ledCount = defaultLEDCount
	}
	fps := sj.FPS
	if fps <= 0 {
		fps = defaultFPS
	}

	palettes := make([]scene.Palette, 0, len(sj.Palettes))
	for _, p := range sj.Palettes {
		var pal scene.Palette
		for i := 0; i < scene.PaletteSize && i < len(p); i++ {
			pal[i] = color.RGB{R: clampChannel(p[i].R), G: clampChannel(p[i].G), B: clampChannel(p[i].B)}
		}
		palettes = append(palettes, pal)
	}
	if len(palettes) == 0 {
		palettes = []scene.Palette{scene.BlackPalette}
	}

	effects := make([]*scene.Effect, 0, len(sj.Effects))
	for _, ej := range sj.Effects {
		e := &scene.Effect{EffectID: ej.EffectID}
		for _, segJ := range ej.Segments {
			seg, err := convertSegment(segJ)
			if err != nil {
				return nil, fmt.Errorf("effect %d: %w", ej.EffectID, err)
			}
			e.Segments = append(e.Segments, seg)
		}
		effects = append(effects, e)
	}

	return &scene.Scene{
		SceneID:          sj.SceneID,
		LEDCount:         ledCount,
		FPS:              fps,
		CurrentEffectID:  sj.CurrentEffectID,
		CurrentPaletteID: sj.CurrentPaletteID,
		Palettes:         palettes,
		Effects:          effects,
	}, nil
}

func clampChannel(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

func convertSegment(sj segmentJSON) (*segment.Segment, error) {
	phases, err := decodeDimmerTime(sj.DimmerTime)
	if err != nil {
		return nil, err
	}
	if len(phases) == 0 {
		return nil, fmt.Errorf("segment %d: dimmer_time must be non-empty", sj.SegmentID)
	}

	return &segment.Segment{
		ID:              sj.SegmentID,
		Color:           sj.Color,
		Transparency:    sj.Transparency,
		Length:          sj.Length,
		MoveSpeed:       sj.MoveSpeed,
		MoveRangeLo:     sj.MoveRange[0],
		MoveRangeHi:     sj.MoveRange[1],
		IsEdgeReflect:   sj.IsEdgeReflect,
		DimmerTime:      phases,
		CurrentPosition: sj.CurrentPosition,
	}, nil
}

// decodeDimmerTime accepts either the current ordered-triple format
// ([[duration_ms, start_pct, end_pct], ...]) or the legacy flat
// brightness sequence ([b0, b1, b2, ...]), converting each adjacent
// pair (b_i, b_{i+1}) to [1000, b_i, b_{i+1}] per spec.md §6.
func decodeDimmerTime(raw json.RawMessage) ([]segment.DimmerPhase, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var triples [][3]float64
	if err := json.Unmarshal(raw, &triples); err == nil {
		phases := make([]segment.DimmerPhase, 0, len(triples))
		for _, t := range triples {
			phases = append(phases, segment.DimmerPhase{
				DurationMs:   int64(t[0]),
				StartPercent: t[1],
				EndPercent:   t[2],
			})
		}
		return phases, nil
	}

	var flat []float64
	if err := json.Unmarshal(raw, &flat); err != nil {
		return nil, fmt.Errorf("dimmer_time: unrecognized format: %w", err)
	}
	if len(flat) < 2 {
		return nil, fmt.Errorf("dimmer_time: legacy format needs at least two brightness values")
	}
	phases := make([]segment.DimmerPhase, 0, len(flat)-1)
	for i := 0; i < len(flat)-1; i++ {
		phases = append(phases, segment.DimmerPhase{
			DurationMs:   1000,
			StartPercent: flat[i],
			EndPercent:   flat[i+1],
		})
	}
	return phases, nil
}

type dissolveDoc struct {
	Patterns map[string][][4]int64 `json:"dissolve_patterns"`
}

// LoadDissolveBundle parses a dissolve JSON document into a
// map[int]dissolve.Pattern keyed by pattern id.
func LoadDissolveBundle(data []byte) (map[int]dissolve.Pattern, error) {
	var doc dissolveDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("sceneio: parse dissolve: %w", err)
	}

	out := make(map[int]dissolve.Pattern, len(doc.Patterns))
	for key, bands := range doc.Patterns {
		id, err := parsePatternID(key)
		if err != nil {
			return nil, err
		}
		pattern := make(dissolve.Pattern, 0, len(bands))
		for _, b := range bands {
			pattern = append(pattern, dissolve.Band{
				DelayMs:    b[0],
				DurationMs: b[1],
				StartLED:   int(b[2]),
				EndLED:     int(b[3]),
			})
		}
		out[id] = pattern
	}
	return out, nil
}

func parsePatternID(key string) (int, error) {
	var id int
	if _, err := fmt.Sscanf(key, "%d", &id); err != nil {
		return 0, fmt.Errorf("sceneio: dissolve pattern key %q is not a decimal integer: %w", key, err)
	}
	return id, nil
}
