package config

import (
	"fmt"
	"time"
)

const (
	// DefaultRetryInitialInterval is the default delay before the first retry
	DefaultRetryInitialInterval = time.Second
	// DefaultRetryMaxInterval is the default upper bound of the retry delay
	DefaultRetryMaxInterval = 30 * time.Second
)

// Retry contains configuration for rerunning a failed generation run
type Retry struct {
	// MaxAttempts is the number of retries after a failed run. Zero disables retries.
	MaxAttempts int `yaml:"maxAttempts,omitempty" mapstructure:"maxAttempts,omitempty"`
	// InitialInterval is the delay before the first retry
	InitialInterval time.Duration `yaml:"initialInterval,omitempty" mapstructure:"initialInterval,omitempty"`
	// MaxInterval is the upper bound of the delay between retries
	MaxInterval time.Duration `yaml:"maxInterval,omitempty" mapstructure:"maxInterval,omitempty"`
}

// Validate validates the retry configuration
func (r *Retry) Validate() error {
	if r.MaxAttempts < 0 {
		return fmt.Errorf("retry max attempts cannot be negative, got %d", r.MaxAttempts)
	}

	if r.InitialInterval < 0 {
		return fmt.Errorf("retry initial interval cannot be negative, got %v", r.InitialInterval)
	}

	if r.MaxInterval < 0 {
		return fmt.Errorf("retry max interval cannot be negative, got %v", r.MaxInterval)
	}

	initial := durationOrDefault(r.InitialInterval, DefaultRetryInitialInterval)
	maxInterval := durationOrDefault(r.MaxInterval, DefaultRetryMaxInterval)
	if initial > maxInterval {
		return fmt.Errorf("retry initial interval %v exceeds max interval %v", initial, maxInterval)
	}

	return nil
}
