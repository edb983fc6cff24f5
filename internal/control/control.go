// Package control decodes OSC datagrams from the wire into ControlEvent
// values the engine's Scene Manager and scheduler operations understand
// (spec component C8).
package control

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/CoderFake/led-animation-playback-engine/internal/oscwire"
)

// Kind identifies which Scene Manager or scheduler mutator an Event maps
// to.
type Kind int

const (
	LoadJSON Kind = iota
	ChangeScene
	ChangeEffect
	ChangePalette
	ChangePattern
	Pause
	Resume
	PaletteColor
	LoadDissolveJSON
	SetDissolvePattern
	SetSpeedPercent
	MasterBrightness
)

// Event is a decoded control message, already validated enough to be
// handed straight to the corresponding Scene Manager op.
type Event struct {
	Kind Kind

	Path string // LoadJSON, LoadDissolveJSON

	ID int // ChangeScene, ChangeEffect, ChangePalette, SetDissolvePattern

	PaletteID int // PaletteColor
	ColorID   int // PaletteColor
	R, G, B   int // PaletteColor

	Percent int // SetSpeedPercent

	Brightness int // MasterBrightness
}

// DefaultSceneExtension and DefaultDissolveExtension are appended to a
// load path with no extension, matching the loader's own default format.
const (
	DefaultSceneExtension    = ".json"
	DefaultDissolveExtension = ".json"
)

func withDefaultExtension(path, ext string) string {
	if filepath.Ext(path) == "" {
		return path + ext
	}
	return path
}

// Decode parses an OSC datagram into an Event. ok is false for anything
// malformed or for an address this engine does not recognize; callers
// must count that as MalformedInput and drop the event.
func Decode(raw []byte) (Event, bool) {
	msg, err := oscwire.Decode(raw)
	if err != nil {
		return Event{}, false
	}
	return fromMessage(msg)
}

func fromMessage(msg oscwire.Message) (Event, bool) {
	addr := msg.Address

	if paletteID, colorID, ok := parsePaletteAddress(addr); ok {
		r, g, b, ok := intArgs3(msg.Args)
		if !ok {
			return Event{}, false
		}
		return Event{Kind: PaletteColor, PaletteID: paletteID, ColorID: colorID, R: r, G: g, B: b}, true
	}

	switch addr {
	case "/load_json":
		path, ok := stringArg(msg.Args, 0)
		if !ok {
			return Event{}, false
		}
		return Event{Kind: LoadJSON, Path: withDefaultExtension(path, DefaultSceneExtension)}, true

	case "/load_dissolve_json":
		path, ok := stringArg(msg.Args, 0)
		if !ok {
			return Event{}, false
		}
		return Event{Kind: LoadDissolveJSON, Path: withDefaultExtension(path, DefaultDissolveExtension)}, true

	case "/change_scene":
		id, ok := intArg(msg.Args, 0)
		if !ok {
			return Event{}, false
		}
		return Event{Kind: ChangeScene, ID: id}, true

	case "/change_effect":
		id, ok := intArg(msg.Args, 0)
		if !ok {
			return Event{}, false
		}
		return Event{Kind: ChangeEffect, ID: id}, true

	case "/change_palette":
		id, ok := intArg(msg.Args, 0)
		if !ok {
			return Event{}, false
		}
		return Event{Kind: ChangePalette, ID: id}, true

	case "/change_pattern":
		return Event{Kind: ChangePattern}, true

	case "/pause":
		return Event{Kind: Pause}, true

	case "/resume":
		return Event{Kind: Resume}, true

	case "/set_dissolve_pattern":
		id, ok := intArg(msg.Args, 0)
		if !ok {
			return Event{}, false
		}
		return Event{Kind: SetDissolvePattern, ID: id}, true

	case "/set_speed_percent":
		p, ok := intArg(msg.Args, 0)
		if !ok {
			return Event{}, false
		}
		return Event{Kind: SetSpeedPercent, Percent: p}, true

	case "/master_brightness":
		b, ok := intArg(msg.Args, 0)
		if !ok {
			return Event{}, false
		}
		return Event{Kind: MasterBrightness, Brightness: b}, true
	}

	return Event{}, false
}

// parsePaletteAddress matches "/palette/{p}/{c}" where p is either a
// zero-origin integer or a legacy letter A-E, and c is an integer.
// Letters convert via ord(letter)-ord('A'). Neither id is range-checked
// here; scene.SetPaletteColor rejects out-of-range ids.
func parsePaletteAddress(addr string) (paletteID, colorID int, ok bool) {
	parts := strings.Split(strings.TrimPrefix(addr, "/"), "/")
	if len(parts) != 3 || parts[0] != "palette" {
		return 0, 0, false
	}

	pToken, cToken := parts[1], parts[2]

	if len(pToken) == 1 && pToken[0] >= 'A' && pToken[0] <= 'E' {
		paletteID = int(pToken[0] - 'A')
	} else {
		n, err := strconv.Atoi(pToken)
		if err != nil {
			return 0, 0, false
		}
		paletteID = n
	}

	c, err := strconv.Atoi(cToken)
	if err != nil {
		return 0, 0, false
	}
	colorID = c

	return paletteID, colorID, true
}

func intArg(args []interface{}, i int) (int, bool) {
	if i >= len(args) {
		return 0, false
	}
	v, ok := args[i].(int32)
	if !ok {
		return 0, false
	}
	return int(v), true
}

func intArgs3(args []interface{}) (a, b, c int, ok bool) {
	if len(args) != 3 {
		return 0, 0, 0, false
	}
	x, ok1 := args[0].(int32)
	y, ok2 := args[1].(int32)
	z, ok3 := args[2].(int32)
	if !ok1 || !ok2 || !ok3 {
		return 0, 0, 0, false
	}
	return int(x), int(y), int(z), true
}

func stringArg(args []interface{}, i int) (string, bool) {
	if i >= len(args) {
		return "", false
	}
	v, ok := args[i].(string)
	return v, ok
}
