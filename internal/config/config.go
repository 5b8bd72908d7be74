package config

import (
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/pranshuparmar/expost/internal/display"
	"github.com/pranshuparmar/expost/internal/proc"
	"github.com/pranshuparmar/expost/internal/sampler"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Interval time.Duration
	ProcRoot string
	Display  display.Mode
	BarWidth int
	LogLevel logrus.Level
	Color    bool
}

func Default() Config {
	return Config{
		Interval: sampler.DefaultInterval,
		ProcRoot: proc.DefaultRoot,
		Display:  display.ModeAuto,
		BarWidth: 64,
		LogLevel: logrus.WarnLevel,
		Color:    true,
	}
}

// yamlConfig mirrors Config with the textual forms used in files
type yamlConfig struct {
	Interval string `yaml:"interval"`
	ProcRoot string `yaml:"proc_root"`
	Display  string `yaml:"display"`
	BarWidth int    `yaml:"bar_width"`
	LogLevel string `yaml:"log_level"`
	Color    *bool  `yaml:"color"`
}

// LoadFromFile loads configuration from a YAML file on top of Default()
func LoadFromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}

	cfg := Default()

	if yc.Interval != "" {
		d, err := time.ParseDuration(yc.Interval)
		if err != nil {
			return Config{}, fmt.Errorf("parse interval: %w", err)
		}
		cfg.Interval = d
	}
	if yc.ProcRoot != "" {
		cfg.ProcRoot = yc.ProcRoot
	}
	if yc.Display != "" {
		cfg.Display = display.Mode(yc.Display)
	}
	if yc.BarWidth != 0 {
		cfg.BarWidth = yc.BarWidth
	}
	if yc.LogLevel != "" {
		level, err := logrus.ParseLevel(yc.LogLevel)
		if err != nil {
			return Config{}, fmt.Errorf("parse log_level: %w", err)
		}
		cfg.LogLevel = level
	}
	if yc.Color != nil {
		cfg.Color = *yc.Color
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Interval <= 0 {
		return fmt.Errorf("interval must be positive, got %s", c.Interval)
	}
	if c.BarWidth <= 0 {
		return fmt.Errorf("bar_width must be positive, got %d", c.BarWidth)
	}
	if !slices.Contains(display.Modes(), string(c.Display)) {
		return fmt.Errorf("unknown display %q", c.Display)
	}
	return nil
}
