// Package config loads the engine's startup configuration: listen
// address, output destinations, and default frame rate. The entrypoint
// layers its command-line flags on top of the YAML document: a flag that
// is set (non-empty or non-zero) overrides the loaded field.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DestinationConfig is one entry of the output section.
type DestinationConfig struct {
	Mode     string `yaml:"mode"` // "udp" or "local"
	IP       string `yaml:"ip,omitempty"`
	Port     int    `yaml:"port,omitempty"`
	Address  string `yaml:"address,omitempty"`
	StartLED int    `yaml:"start_led"`
	EndLED   int    `yaml:"end_led"`
	CopyMode bool   `yaml:"copy_mode"`
	SPIPort  string `yaml:"spi_port,omitempty"`
}

// Config is the engine's full startup configuration document.
type Config struct {
	ListenAddr string `yaml:"listen_addr"`
	ListenPort int    `yaml:"listen_port"`

	DefaultFPS     int    `yaml:"default_fps"`
	DefaultLEDCount int   `yaml:"default_led_count"`

	HealthAddr string `yaml:"health_addr"`

	Destinations []DestinationConfig `yaml:"destinations"`
}

// Default returns the configuration used when no file is found.
func Default() Config {
	return Config{
		ListenAddr:      "0.0.0.0",
		ListenPort:      9000,
		DefaultFPS:      60,
		DefaultLEDCount: 225,
		HealthAddr:      ":8080",
	}
}

// Load reads and parses a YAML config document at path, layering it
// over Default() so a partial document is still usable.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if cfg.DefaultFPS == 0 {
		cfg.DefaultFPS = 60
	}
	if cfg.DefaultLEDCount == 0 {
		cfg.DefaultLEDCount = 225
	}
	return cfg, nil
}

// Save writes cfg back out as YAML, used by operator tooling rather
// than the engine itself.
func Save(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
