package main

import (
	"os"

	"gopkg.in/yaml.v3"
)

// bootConfig is the YAML document describing which composition recipe
// forgedemo boots into and how long it runs; hot-reloaded on file change.
type bootConfig struct {
	Recipe       string `yaml:"recipe"`
	Frames       int    `yaml:"frames"`
	Width        int    `yaml:"width"`
	Height       int    `yaml:"height"`
	StrictIOPass bool   `yaml:"strict_io_pass"`
}

var defaultBootConfig = bootConfig{
	Recipe: "forward",
	Frames: 60,
	Width:  320,
	Height: 180,
}

func loadBootConfig(path string) (bootConfig, error) {
	cfg := defaultBootConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.Frames <= 0 {
		cfg.Frames = defaultBootConfig.Frames
	}
	if cfg.Width <= 0 {
		cfg.Width = defaultBootConfig.Width
	}
	if cfg.Height <= 0 {
		cfg.Height = defaultBootConfig.Height
	}
	return cfg, nil
}
