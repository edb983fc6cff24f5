// Command ledengine runs the LED animation playback engine: it loads a
// YAML configuration document, wires up the control ingress, frame
// scheduler, and output fan-out, and serves the engine's health
// telemetry until it receives a shutdown signal.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/CoderFake/led-animation-playback-engine/internal/app"
	"github.com/CoderFake/led-animation-playback-engine/internal/config"
)

func main() {
	configPath := flag.String("config", "engine.yaml", "path to the engine's YAML configuration document")
	listenAddr := flag.String("listen-addr", "", "override listen_addr from config")
	listenPort := flag.Int("listen-port", 0, "override listen_port from config")
	dev := flag.Bool("dev", false, "use a human-readable console log writer")
	flag.Parse()

	if *dev {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Warn().Err(err).Str("path", *configPath).Msg("falling back to default configuration")
		cfg = config.Default()
	}
	if *listenAddr != "" {
		cfg.ListenAddr = *listenAddr
	}
	if *listenPort != 0 {
		cfg.ListenPort = *listenPort
	}

	runtime, err := app.Bootstrap(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to bootstrap engine")
	}

	healthSrv := &http.Server{Addr: cfg.HealthAddr, Handler: runtime.Telemetry.Handler()}
	go func() {
		if err := healthSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("health server stopped")
		}
	}()

	runtime.Run()
	log.Info().
		Str("listen_addr", cfg.ListenAddr).
		Int("listen_port", cfg.ListenPort).
		Int("destinations", len(cfg.Destinations)).
		Msg("engine started")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Info().Msg("shutting down")
	runtime.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := healthSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("health server shutdown")
	}
}
