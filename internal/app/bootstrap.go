package app

import (
	"fmt"

	"github.com/CoderFake/led-animation-playback-engine/internal/config"
	"github.com/CoderFake/led-animation-playback-engine/internal/control"
	"github.com/CoderFake/led-animation-playback-engine/internal/engine"
	"github.com/CoderFake/led-animation-playback-engine/internal/localdrv"
	"github.com/CoderFake/led-animation-playback-engine/internal/output"
	"github.com/CoderFake/led-animation-playback-engine/internal/scheduler"
	"github.com/CoderFake/led-animation-playback-engine/internal/telemetry"
)

// Runtime bundles every long-lived worker Bootstrap wires up, for the
// entrypoint to start and stop as a unit.
type Runtime struct {
	Engine    *engine.State
	Conductor *Conductor
	FanOut    *output.FanOut
	Scheduler *scheduler.Scheduler
	Ingress   *control.Ingress
	Telemetry *telemetry.Server
}

// Bootstrap builds every component from cfg and wires them together,
// the way ledcube's app package assembled its conductor from config
// before handing control to the entrypoint.
func Bootstrap(cfg config.Config) (*Runtime, error) {
	counters := telemetry.NewCounters()
	eng := engine.New(counters)
	conductor := NewConductor(eng)

	destinations := make([]*output.Destination, 0, len(cfg.Destinations))
	for _, dc := range cfg.Destinations {
		d := &output.Destination{
			Mode:     dc.Mode,
			IP:       dc.IP,
			Port:     dc.Port,
			Address:  dc.Address,
			StartLED: dc.StartLED,
			EndLED:   dc.EndLED,
			CopyMode: dc.CopyMode,
		}
		if dc.Mode == "local" {
			drv, err := localdrv.Open(cfg.DefaultLEDCount, dc.SPIPort)
			if err != nil {
				return nil, fmt.Errorf("app: open local driver: %w", err)
			}
			d.Local = drv
		}
		destinations = append(destinations, d)
	}

	fanOut, err := output.New(destinations, cfg.DefaultLEDCount, counters)
	if err != nil {
		return nil, fmt.Errorf("app: build output fan-out: %w", err)
	}

	sched := scheduler.New(eng, fanOut, nil, counters)

	ingress, err := control.Listen(cfg.ListenAddr, cfg.ListenPort, conductor, counters)
	if err != nil {
		return nil, fmt.Errorf("app: listen for control traffic: %w", err)
	}

	return &Runtime{
		Engine:    eng,
		Conductor: conductor,
		FanOut:    fanOut,
		Scheduler: sched,
		Ingress:   ingress,
		Telemetry: telemetry.NewServer(counters, 0),
	}, nil
}

// Run starts the scheduler and control ingress workers; call Stop to
// shut both down in the order spec.md §5's cancellation model expects.
func (r *Runtime) Run() {
	go r.Ingress.Run()
	go r.Scheduler.Run()
}

// Stop closes the control socket and waits for the ingress loop to exit,
// lets the scheduler finish its current frame, then closes the fan-out's
// destinations.
func (r *Runtime) Stop() {
	r.Ingress.Stop()
	r.Scheduler.Stop()
	r.FanOut.Close()
}
