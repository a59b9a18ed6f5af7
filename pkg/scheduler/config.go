package scheduler

import (
	"errors"
	"log/slog"
)

type (
	// Config holds construction settings for a Scheduler. The zero value of
	// any field is replaced with its default, so callers only set what they
	// need to override. Clock and MakeTimer exist for deterministic tests
	Config struct {
		Clock        Clock
		MakeTimer    TimerConstructor
		Logger       *slog.Logger
		CapacityHint int
	}
)

// DefaultCapacityHint pre-sizes the store for a modest timer population
const DefaultCapacityHint = 16

// ErrNegativeCapacity is raised for a capacity hint below zero
var ErrNegativeCapacity = errors.New("capacity hint cannot be negative")

// NewDefaultConfig creates a configuration with the system clock, a
// system-backed dispatcher timer, and the default slog logger
func NewDefaultConfig() *Config {
	return &Config{
		Clock:        SystemClock,
		MakeTimer:    NewTimer,
		Logger:       slog.Default(),
		CapacityHint: DefaultCapacityHint,
	}
}

// Validate checks the configuration for out-of-range settings
func (c *Config) Validate() error {
	if c.CapacityHint < 0 {
		return ErrNegativeCapacity
	}
	return nil
}

func (c *Config) clock() Clock {
	if c.Clock != nil {
		return c.Clock
	}
	return SystemClock
}

func (c *Config) makeTimer() TimerConstructor {
	if c.MakeTimer != nil {
		return c.MakeTimer
	}
	return NewTimer
}

func (c *Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}
