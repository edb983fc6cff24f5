// Package telemetry tracks the engine's error counters and exposes them
// over HTTP/WebSocket for external health collaborators. The counters
// themselves have no dependency on the transport, but server.go in the
// same package imports zerolog and gorilla/websocket, so any importer of
// this package links both.
package telemetry

import "sync/atomic"

// Counters tracks the five error kinds plus frame accounting. All fields
// are accessed through sync/atomic so any component can increment them
// without holding the engine mutex.
type Counters struct {
	malformedInput   uint64
	outOfRange       uint64
	missingResource  uint64
	ioFailure        uint64
	loadFailure      uint64
	framesRendered   uint64
	framesDropped    uint64
}

// NewCounters returns a zeroed counter set.
func NewCounters() *Counters {
	return &Counters{}
}

func (c *Counters) IncMalformedInput()  { atomic.AddUint64(&c.malformedInput, 1) }
func (c *Counters) IncOutOfRange()      { atomic.AddUint64(&c.outOfRange, 1) }
func (c *Counters) IncMissingResource() { atomic.AddUint64(&c.missingResource, 1) }
func (c *Counters) IncIOFailure()       { atomic.AddUint64(&c.ioFailure, 1) }
func (c *Counters) IncLoadFailure()     { atomic.AddUint64(&c.loadFailure, 1) }
func (c *Counters) IncFramesRendered()  { atomic.AddUint64(&c.framesRendered, 1) }
func (c *Counters) IncFramesDropped()   { atomic.AddUint64(&c.framesDropped, 1) }

// Snapshot is a point-in-time copy suitable for JSON/WS encoding.
type Snapshot struct {
	MalformedInput  uint64 `json:"malformed_input"`
	OutOfRange      uint64 `json:"out_of_range"`
	MissingResource uint64 `json:"missing_resource"`
	IOFailure       uint64 `json:"io_failure"`
	LoadFailure     uint64 `json:"load_failure"`
	FramesRendered  uint64 `json:"frames_rendered"`
	FramesDropped   uint64 `json:"frames_dropped"`
}

func (c *Counters) Snapshot() Snapshot {
	return Snapshot{
		MalformedInput:  atomic.LoadUint64(&c.malformedInput),
		OutOfRange:      atomic.LoadUint64(&c.outOfRange),
		MissingResource: atomic.LoadUint64(&c.missingResource),
		IOFailure:       atomic.LoadUint64(&c.ioFailure),
		LoadFailure:     atomic.LoadUint64(&c.loadFailure),
		FramesRendered:  atomic.LoadUint64(&c.framesRendered),
		FramesDropped:   atomic.LoadUint64(&c.framesDropped),
	}
}
