package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/creasty/defaults"
)

type config struct {
	Slots     int           `mapstructure:"slots" default:"3"`
	Producers int           `mapstructure:"producers" default:"100"`
	Rounds    int           `mapstructure:"rounds" default:"2"`
	MaxSleep  time.Duration `mapstructure:"max-sleep" default:"100ms"`
	Rate      float64       `mapstructure:"rate" default:"0"`
	Pin       bool          `mapstructure:"pin"`
	Probe     string        `mapstructure:"probe" default:"auto"`
	LogFormat string        `mapstructure:"log-format" default:"dev"`
	Timeout   time.Duration `mapstructure:"timeout" default:"30s"`
	Out       string        `mapstructure:"out"`
}

func newConfig() (config, error) {
	var c config
	if err := defaults.Set(&c); err != nil {
		return c, fmt.Errorf("failed to set config defaults: %w", err)
	}
	return c, nil
}

func (c config) Validate() error {
	if c.Slots <= 0 {
		return fmt.Errorf("invalid slots %d: must be positive", c.Slots)
	}
	if c.Producers <= 0 {
		return fmt.Errorf("invalid producers %d: must be positive", c.Producers)
	}
	if c.Rounds <= 0 {
		return fmt.Errorf("invalid rounds %d: must be positive", c.Rounds)
	}
	if c.MaxSleep < 0 {
		return errors.New("max-sleep must not be negative")
	}
	if c.Rate < 0 {
		return errors.New("rate must not be negative")
	}
	if c.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}
	if c.LogFormat != "dev" && c.LogFormat != "prod" {
		return fmt.Errorf("invalid log-format %q: must be 'dev' or 'prod'", c.LogFormat)
	}
	return nil
}
