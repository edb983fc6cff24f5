// Package localdrv drives a directly-attached LED strip on the same
// host as the engine process: a periph.io SPI/nrzled device when one is
// present, falling back to a console preview, or an in-memory sim
// driver for tests. This is the "local" Destination.Mode that
// supplements the UDP datagram fan-out (spec component C7).
package localdrv

import (
	"fmt"
	"image"
	stdcolor "image/color"

	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"
	"periph.io/x/extra/devices/screen"
	"periph.io/x/host/v3"

	"github.com/CoderFake/led-animation-playback-engine/internal/color"
)

// Driver writes one finished frame to a physically- or virtually-
// attached strip.
type Driver interface {
	Write(frame []color.RGB) error
	Close() error
}

// Sim is an in-memory driver used by tests and by callers that want to
// observe frames without any hardware.
type Sim struct {
	Last []color.RGB
}

func NewSim() *Sim { return &Sim{} }

func (s *Sim) Write(frame []color.RGB) error {
	s.Last = append(s.Last[:0], frame...)
	return nil
}

func (s *Sim) Close() error { return nil }

// spiDriver drives a real WS281x-family strip over SPI via nrzled,
// following the initialization pattern the teacher's top-level
// arcaluminis package used for its 3D cube.
type spiDriver struct {
	dev *nrzled.Dev
	n   int
}

// screenDriver renders frames to a console preview when no SPI device
// is present, the same no-hardware fallback the teacher's
// initLedDrawer used.
type screenDriver struct {
	dev *screen.Dev
	n   int
}

// Open selects a real SPI/nrzled device if one is available, otherwise
// falls back to the console screen preview. n is the LED count this
// destination is responsible for.
func Open(n int, spiPort string) (Driver, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("localdrv: host init: %w", err)
	}

	p, err := spireg.Open(spiPort)
	if err == nil {
		dev, derr := nrzled.NewSPI(p, &nrzled.Opts{
			NumPixels: n,
			Channels:  3,
			Freq:      2500000,
		})
		if derr == nil {
			return &spiDriver{dev: dev, n: n}, nil
		}
	}

	dev := screen.New(n)
	return &screenDriver{dev: dev, n: n}, nil
}

func frameToImage(frame []color.RGB) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, len(frame), 1))
	for i, c := range frame {
		img.SetNRGBA(i, 0, stdcolor.NRGBA{R: c.R, G: c.G, B: c.B, A: 255})
	}
	return img
}

func (s *spiDriver) Write(frame []color.RGB) error {
	img := frameToImage(frame)
	return s.dev.Draw(img.Bounds(), img, image.Point{})
}

func (s *spiDriver) Close() error {
	return s.dev.Halt()
}

func (s *screenDriver) Write(frame []color.RGB) error {
	img := frameToImage(frame)
	return s.dev.Draw(img.Bounds(), img, image.Point{})
}

func (s *screenDriver) Close() error {
	return s.dev.Halt()
}
