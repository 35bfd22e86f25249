package config

import (
	"errors"
	"fmt"
	"strings"
)

// LoggingType is the destination of tailgen's own logs. The generated
// records never go through it.
type LoggingType string

// LogLevel is a zap level name.
type LogLevel string

const (
	// LoggingTypeStderr writes logs to stderr
	LoggingTypeStderr LoggingType = "stderr"
	// LoggingTypeStdout writes logs to stdout
	LoggingTypeStdout LoggingType = "stdout"

	// LogLevelDebug logs every tick and record count
	LogLevelDebug LogLevel = "debug"
	// LogLevelInfo is the default level
	LogLevelInfo LogLevel = "info"
	// LogLevelWarn is the warn level
	LogLevelWarn LogLevel = "warn"
	// LogLevelError only logs failures and overruns
	LogLevelError LogLevel = "error"
)

var (
	errInvalidLoggingType  = errors.New("invalid logging type")
	errInvalidLoggingLevel = errors.New("invalid logging level")

	loggingTypes = []LoggingType{LoggingTypeStderr, LoggingTypeStdout}
	logLevels    = []LogLevel{LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError}
)

// Logging contains configuration for tailgen's own logger
type Logging struct {
	// Type is stderr or stdout
	Type LoggingType `yaml:"type,omitempty" mapstructure:"type,omitempty"`
	// Level is debug, info, warn or error
	Level LogLevel `yaml:"level,omitempty" mapstructure:"level,omitempty"`
}

// Normalize lower cases and trims the type and level so that
// "STDOUT " and "stdout" are the same setting.
func (l *Logging) Normalize() {
	l.Type = LoggingType(strings.ToLower(strings.TrimSpace(string(l.Type))))
	l.Level = LogLevel(strings.ToLower(strings.TrimSpace(string(l.Level))))
}

// Validate validates the logging configuration. Empty values are
// accepted and replaced by ApplyDefaults.
func (l Logging) Validate() error {
	l.Normalize()

	if l.Type != "" && !contains(loggingTypes, l.Type) {
		return fmt.Errorf("%w: %s, must be one of: %s", errInvalidLoggingType, l.Type, join(loggingTypes))
	}

	if l.Level != "" && !contains(logLevels, l.Level) {
		return fmt.Errorf("%w: %s, must be one of: %s", errInvalidLoggingLevel, l.Level, join(logLevels))
	}

	return nil
}

func contains[T comparable](values []T, v T) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

func join[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}
