package config

import (
	"fmt"
)

// OutputType represents the type of output
type OutputType string

const (
	// OutputTypeNop represents NOP output
	OutputTypeNop OutputType = "nop"
	// OutputTypeFile represents file output
	OutputTypeFile OutputType = "file"

	// DefaultFilePath is the default file written by the file output
	DefaultFilePath = "tail_log"
)

// Output contains configuration for output destinations
type Output struct {
	// Type specifies the output type (file or nop)
	Type OutputType `yaml:"type,omitempty" mapstructure:"type,omitempty"`
	// File contains file output configuration
	File FileOutputConfig `yaml:"file,omitempty" mapstructure:"file,omitempty"`
}

// Validate validates the output configuration
func (o *Output) Validate() error {
	// Allow empty type - defaults will be applied by override system
	if o.Type == "" {
		return nil
	}

	switch o.Type {
	case OutputTypeNop:
		// NOP output requires no additional validation
	case OutputTypeFile:
		if err := o.File.Validate(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("invalid output type: %s, must be one of: nop, file", o.Type)
	}

	return nil
}

// FileOutputConfig contains configuration for file output
type FileOutputConfig struct {
	// Path is the file records are appended to
	Path string `yaml:"path,omitempty" mapstructure:"path,omitempty"`
}

// Validate validates the file output configuration
func (c *FileOutputConfig) Validate() error {
	if err := ValidatePath(c.Path); err != nil {
		return fmt.Errorf("file output path validation failed: %w", err)
	}
	return nil
}
