// Package config provides configuration loading and management.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Device backend names accepted in configuration.
const (
	DeviceSoft = "soft"
	DeviceGL   = "gl"
)

// Config represents the full configuration for framecast.
type Config struct {
	// Input/Output
	Input     string `yaml:"input"`
	OutputDir string `yaml:"output_dir"`

	// Playback
	Device   string `yaml:"device"`
	FPS      int    `yaml:"fps"`
	RealTime bool   `yaml:"real_time"`
	Shuffle  bool   `yaml:"shuffle"`
	Seed     int64  `yaml:"seed"`

	// Decoding
	FFmpegPath string `yaml:"ffmpeg_path"`

	// Reporting
	LogLevel string `yaml:"log_level"`
	Summary  string `yaml:"summary"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		Device:   DeviceSoft,
		FPS:      60,
		RealTime: true,
		LogLevel: "info",
	}
}

// LoadFromFile loads configuration from a YAML file over the defaults.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Validate checks the configuration for usable values.
func (c Config) Validate() error {
	if c.Device != DeviceSoft && c.Device != DeviceGL {
		return fmt.Errorf("unknown device %q (want %s or %s)", c.Device, DeviceSoft, DeviceGL)
	}
	if c.FPS <= 0 || c.FPS > 240 {
		return fmt.Errorf("fps %d out of range (1-240)", c.FPS)
	}
	return nil
}
