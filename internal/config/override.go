package config

import (
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// envPrefix is prepended to every environment variable override
const envPrefix = "TAILGEN_"

// Override is a configuration override
type Override struct {
	// Field is the config field to override
	Field string
	// Flag is the flag that will override the field
	Flag string
	// Env is the environment variable that will override the field
	Env string
	// Usage is the usage for the override
	Usage string
	// Default is the default value for the override
	Default any
}

// NewOverride creates a new override with flag and environment
// variable names derived from the field
func NewOverride(field, usage string, def any) *Override {
	return &Override{
		Field:   field,
		Flag:    createFlagName(field),
		Env:     createEnvName(field),
		Usage:   usage,
		Default: def,
	}
}

// NewNamedOverride creates an override whose flag and environment
// variable use name instead of the field path
func NewNamedOverride(field, name, usage string, def any) *Override {
	return &Override{
		Field:   field,
		Flag:    name,
		Env:     createEnvName(name),
		Usage:   usage,
		Default: def,
	}
}

// Bind binds the override to the viper instance
func (o *Override) Bind(flags *pflag.FlagSet) error {
	flag := o.createFlag(flags)
	if err := viper.BindPFlag(o.Field, flag); err != nil {
		return err
	}
	if err := viper.BindEnv(o.Field, o.Env); err != nil {
		return err
	}
	return nil
}

// createFlag creates a flag for the override
func (o *Override) createFlag(flags *pflag.FlagSet) *pflag.Flag {
	if exitingFlag := flags.Lookup(o.Flag); exitingFlag != nil {
		return exitingFlag
	}

	switch v := o.Default.(type) {
	case string:
		_ = flags.String(o.Flag, v, o.Usage)
	case LoggingType:
		_ = flags.String(o.Flag, string(v), o.Usage)
	case LogLevel:
		_ = flags.String(o.Flag, string(v), o.Usage)
	case OutputType:
		_ = flags.String(o.Flag, string(v), o.Usage)
	case LineFormat:
		_ = flags.String(o.Flag, string(v), o.Usage)
	case int:
		_ = flags.Int(o.Flag, v, o.Usage)
	case int64:
		_ = flags.Int64(o.Flag, v, o.Usage)
	case time.Duration:
		_ = flags.Duration(o.Flag, v, o.Usage)
	case bool:
		_ = flags.Bool(o.Flag, v, o.Usage)
	default:
		_ = flags.String(o.Flag, "", o.Usage)
	}

	return flags.Lookup(o.Flag)
}

// createFlagName creates a flag name from a field
func createFlagName(field string) string {
	updatedField := strings.ReplaceAll(field, ".", "-")
	return strings.ToLower(updatedField)
}

// createEnvName creates an environment variable name from a field or flag name
func createEnvName(name string) string {
	updated := strings.NewReplacer(".", "_", "-", "_").Replace(name)
	return envPrefix + strings.ToUpper(updated)
}

// generatorOverrides keep the flag names operators already use to drive the
// generator from benchmark scripts
func generatorOverrides() []*Override {
	return []*Override{
		NewNamedOverride("generator.sizeBytes", "log-size-in-bytes", "the size of each log entry in bytes", DefaultSizeBytes),
		NewNamedOverride("generator.rate", "log-rate", "the number of log entries per second across all workers", DefaultRate),
		NewNamedOverride("generator.count", "count", "how many seconds to send logs for. If zero or negative, send indefinitely", DefaultCount),
		NewNamedOverride("generator.workers", "workers", "how many workers share the log rate", DefaultWorkers),
		NewNamedOverride("output.file.path", "tail-file-path", "the file to which logs will be written", DefaultFilePath),
	}
}

// DefaultOverrides returns all overrides for the application
func DefaultOverrides() []*Override {
	overrides := []*Override{
		NewOverride("logging.type", "output of the log. One of: stderr|stdout", LoggingTypeStderr),
		NewOverride("logging.level", "log level to use. One of: debug|info|warn|error", LogLevelInfo),
	}

	overrides = append(overrides, generatorOverrides()...)
	overrides = append(overrides,
		NewNamedOverride("generator.interval", "interval", "the tick cadence, a tick taking longer is reported as an overrun", DefaultInterval),
		NewNamedOverride("generator.format", "format", "line format. One of: plain|json", LineFormatPlain),
		NewNamedOverride("generator.seed", "seed", "seed for the random payloads, 0 picks a random seed per worker", int64(0)),
		NewOverride("output.type", "output type. One of: file|nop", OutputTypeFile),
		NewOverride("metrics.enabled", "serve Prometheus metrics", false),
		NewOverride("metrics.host", "host the metrics endpoint listens on", DefaultMetricsHost),
		NewOverride("metrics.port", "port the metrics endpoint listens on", DefaultMetricsPort),
		NewNamedOverride("retry.maxAttempts", "retry-max-attempts", "number of times a failed run is retried, 0 disables retries", 0),
		NewNamedOverride("retry.initialInterval", "retry-initial-interval", "delay before the first retry", DefaultRetryInitialInterval),
		NewNamedOverride("retry.maxInterval", "retry-max-interval", "maximum delay between retries", DefaultRetryMaxInterval),
	)
	return overrides
}
