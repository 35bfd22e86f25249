// Package config contains the top level configuration structures and logic
package config

import (
	"time"
)

// Config is the configuration for tailgen.
type Config struct {
	// Logging configuration for the logger
	Logging Logging `yaml:"logging,omitempty" mapstructure:"logging,omitempty"`
	// Generator configuration
	Generator Generator `yaml:"generator,omitempty" mapstructure:"generator,omitempty"`
	// Output configuration
	Output Output `yaml:"output,omitempty" mapstructure:"output,omitempty"`
	// Metrics configuration
	Metrics Metrics `yaml:"metrics,omitempty" mapstructure:"metrics,omitempty"`
	// Retry configuration
	Retry Retry `yaml:"retry,omitempty" mapstructure:"retry,omitempty"`
}

// Validate validates the entire configuration
func (c *Config) Validate() error {
	if err := c.Logging.Validate(); err != nil {
		return err
	}
	if err := c.Generator.Validate(); err != nil {
		return err
	}
	if err := c.Output.Validate(); err != nil {
		return err
	}
	if err := c.Metrics.Validate(); err != nil {
		return err
	}
	if err := c.Retry.Validate(); err != nil {
		return err
	}
	return nil
}

// NewConfig returns a new config
func NewConfig() *Config {
	return &Config{}
}

// ApplyDefaults applies default values to fields where the zero value
// is not meaningful. Size, rate and count are left alone because zero
// is a valid setting for each of them.
func (c *Config) ApplyDefaults() {
	// Apply logging defaults
	c.Logging.Normalize()
	if c.Logging.Type == "" {
		c.Logging.Type = LoggingTypeStderr
	}
	if c.Logging.Level == "" {
		c.Logging.Level = LogLevelInfo
	}

	// Apply generator defaults
	if c.Generator.Workers == 0 {
		c.Generator.Workers = DefaultWorkers
	}
	if c.Generator.Interval == 0 {
		c.Generator.Interval = DefaultInterval
	}
	if c.Generator.Format == "" {
		c.Generator.Format = LineFormatPlain
	}

	// Apply output defaults
	if c.Output.Type == "" {
		c.Output.Type = OutputTypeFile
	}
	if c.Output.File.Path == "" {
		c.Output.File.Path = DefaultFilePath
	}

	// Apply metrics defaults
	if c.Metrics.Host == "" {
		c.Metrics.Host = DefaultMetricsHost
	}
	if c.Metrics.Port == 0 {
		c.Metrics.Port = DefaultMetricsPort
	}

	// Apply retry defaults
	if c.Retry.InitialInterval == 0 {
		c.Retry.InitialInterval = DefaultRetryInitialInterval
	}
	if c.Retry.MaxInterval == 0 {
		c.Retry.MaxInterval = DefaultRetryMaxInterval
	}
}

// durationOrDefault returns d, or def when d is zero
func durationOrDefault(d, def time.Duration) time.Duration {
	if d == 0 {
		return def
	}
	return d
}
