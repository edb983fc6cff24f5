package control

import (
	"net"

	"github.com/rs/zerolog/log"

	"github.com/CoderFake/led-animation-playback-engine/internal/telemetry"
)

// Handler applies a decoded Event to the engine's Scene Manager and
// scheduler mutators, plus the scene/dissolve loaders.
type Handler interface {
	HandleEvent(Event) error
}

// Ingress is thread T1: it reads datagrams off a UDP socket, decodes
// them, and dispatches to Handler under whatever locking Handler
// implements (normally engine.State's own mutex).
type Ingress struct {
	conn     *net.UDPConn
	handler  Handler
	counters *telemetry.Counters

	stop chan struct{}
	done chan struct{}
}

// Listen opens a UDP listener on addr:port for control traffic.
func Listen(addr string, port int, handler Handler, counters *telemetry.Counters) (*Ingress, error) {
	if counters == nil {
		counters = telemetry.NewCounters()
	}
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.ParseIP(addr), Port: port})
	if err != nil {
		return nil, err
	}
	return &Ingress{
		conn:     conn,
		handler:  handler,
		counters: counters,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}, nil
}

// Run reads datagrams until Stop closes the socket. A fatal I/O error
// on the socket terminates the loop; per-event decode/handle failures
// never do.
func (ig *Ingress) Run() {
	defer close(ig.done)

	buf := make([]byte, 65535)
	for {
		n, _, err := ig.conn.ReadFromUDP(buf)
		if err != nil {
			select {
			case <-ig.stop:
				return
			default:
			}
			log.Error().Err(err).Msg("control ingress: fatal socket error")
			return
		}

		ev, ok := Decode(buf[:n])
		if !ok {
			ig.counters.IncMalformedInput()
			continue
		}
		if err := ig.handler.HandleEvent(ev); err != nil {
			log.Warn().Err(err).Msg("control ingress: event handling failed")
		}
	}
}

// Stop closes the socket and waits for Run to exit.
func (ig *Ingress) Stop() {
	close(ig.stop)
	ig.conn.Close()
	<-ig.done
}
