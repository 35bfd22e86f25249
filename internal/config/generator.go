package config

import (
	"fmt"
	"time"
)

// LineFormat represents the format of generated lines
type LineFormat string

const (
	// LineFormatPlain writes "<unix-seconds> <payload>" lines
	LineFormatPlain LineFormat = "plain"
	// LineFormatJSON writes one JSON object per line
	LineFormatJSON LineFormat = "json"

	// DefaultSizeBytes is the default payload size of a record
	DefaultSizeBytes = 10
	// DefaultRate is the default number of records per second
	DefaultRate = 10
	// DefaultCount is the default number of ticks. Negative runs indefinitely.
	DefaultCount = -1
	// DefaultWorkers is the default number of workers
	DefaultWorkers = 1
	// DefaultInterval is the default tick cadence
	DefaultInterval = time.Second
)

// Generator contains configuration for the log generator
type Generator struct {
	// SizeBytes is the payload size of every record
	SizeBytes int `yaml:"sizeBytes,omitempty" mapstructure:"sizeBytes,omitempty"`
	// Rate is the total number of records written per tick across all workers
	Rate int `yaml:"rate,omitempty" mapstructure:"rate,omitempty"`
	// Count is the number of ticks to run for. Zero or less runs indefinitely.
	Count int `yaml:"count,omitempty" mapstructure:"count,omitempty"`
	// Workers is the number of independent workers sharing the rate
	Workers int `yaml:"workers,omitempty" mapstructure:"workers,omitempty"`
	// Interval is the tick cadence and the overrun budget of each tick
	Interval time.Duration `yaml:"interval,omitempty" mapstructure:"interval,omitempty"`
	// Format is the line format
	Format LineFormat `yaml:"format,omitempty" mapstructure:"format,omitempty"`
	// Seed seeds the random payloads. Zero uses a random seed per worker.
	Seed int64 `yaml:"seed,omitempty" mapstructure:"seed,omitempty"`
}

// Validate validates the generator configuration
func (g *Generator) Validate() error {
	if g.SizeBytes < 0 {
		return fmt.Errorf("generator size must be 0 or greater, got %d", g.SizeBytes)
	}

	if g.Rate < 0 {
		return fmt.Errorf("generator rate must be 0 or greater, got %d", g.Rate)
	}

	if g.Workers < 1 {
		return fmt.Errorf("generator workers must be 1 or greater, got %d", g.Workers)
	}

	if g.Interval < 0 {
		return fmt.Errorf("generator interval cannot be negative, got %v", g.Interval)
	}

	switch g.Format {
	case "", LineFormatPlain, LineFormatJSON:
	default:
		return fmt.Errorf("invalid generator format: %s, must be one of: plain, json", g.Format)
	}

	return nil
}
