// Package output fans a finished frame out to every configured
// destination: a full-copy or range-mode byte slice framed as an OSC
// message over UDP, or written directly to a local driver (spec
// component C7, supplemented per SPEC_FULL.md with a "local" mode).
package output

import (
	"net"
	"time"

	"github.com/CoderFake/led-animation-playback-engine/internal/color"
	"github.com/CoderFake/led-animation-playback-engine/internal/localdrv"
	"github.com/CoderFake/led-animation-playback-engine/internal/oscwire"
	"github.com/CoderFake/led-animation-playback-engine/internal/telemetry"
)

// DefaultAddress is the OSC address UDP destinations receive frames on
// when a destination does not override it.
const DefaultAddress = "/light/serial"

// Destination is one output target: either a remote UDP datagram
// receiver or a directly-attached local driver.
type Destination struct {
	Mode string // "udp" or "local"

	IP       string
	Port     int
	Address  string // OSC address for udp mode; DefaultAddress if empty

	StartLED int
	EndLED   int // -1 means led_count-1
	CopyMode bool

	Local localdrv.Driver

	conn *net.UDPConn
}

// FanOut owns every configured destination and the UDP sockets backing
// the remote ones.
type FanOut struct {
	destinations []*Destination
	ledCount     int
	sendTimeout  time.Duration
	counters     *telemetry.Counters
}

// New dials a UDP socket for every udp-mode destination eagerly so a
// per-frame send never pays connection-setup cost; local destinations
// are used as given.
func New(destinations []*Destination, ledCount int, counters *telemetry.Counters) (*FanOut, error) {
	if counters == nil {
		counters = telemetry.NewCounters()
	}
	for _, d := range destinations {
		if d.Mode != "udp" {
			continue
		}
		addr := &net.UDPAddr{IP: net.ParseIP(d.IP), Port: d.Port}
		conn, err := net.DialUDP("udp", nil, addr)
		if err != nil {
			return nil, err
		}
		d.conn = conn
	}
	return &FanOut{
		destinations: destinations,
		ledCount:     ledCount,
		sendTimeout:  5 * time.Millisecond,
		counters:     counters,
	}, nil
}

func (d *Destination) slice(frame []color.RGB, ledCount int) []color.RGB {
	if d.CopyMode {
		return frame
	}
	start, end := d.StartLED, d.EndLED
	if end < 0 {
		end = ledCount - 1
	}
	if start < 0 {
		start = 0
	}
	if end >= ledCount {
		end = ledCount - 1
	}
	if start > end {
		return nil
	}
	return frame[start : end+1]
}

func encodeRGBBytes(leds []color.RGB) []byte {
	out := make([]byte, 0, len(leds)*3)
	for _, c := range leds {
		out = append(out, c.R, c.G, c.B)
	}
	return out
}

// Emit sends frame to every destination. A send failure on one
// destination is counted and does not affect the others; there is no
// retry within the same frame.
func (f *FanOut) Emit(frame []color.RGB) {
	for _, d := range f.destinations {
		leds := d.slice(frame, f.ledCount)

		if d.Mode == "local" {
			if err := d.Local.Write(leds); err != nil {
				f.counters.IncIOFailure()
			}
			continue
		}

		addr := d.Address
		if addr == "" {
			addr = DefaultAddress
		}
		msg := oscwire.Message{Address: addr, Args: []interface{}{encodeRGBBytes(leds)}}
		payload := msg.Encode()

		d.conn.SetWriteDeadline(time.Now().Add(f.sendTimeout))
		if _, err := d.conn.Write(payload); err != nil {
			f.counters.IncIOFailure()
		}
	}
}

// Close releases every UDP socket and local driver owned by the fan-out.
func (f *FanOut) Close() {
	for _, d := range f.destinations {
		if d.conn != nil {
			d.conn.Close()
		}
		if d.Local != nil {
			d.Local.Close()
		}
	}
}
