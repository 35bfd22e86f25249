// Package main is the validator command. It reads a tailgen output file
// and prints a JSON report of found, duplicated and missing records.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/observiq/tailgen/internal/config"
	"github.com/observiq/tailgen/internal/logging"
	"github.com/observiq/tailgen/internal/validator"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	flags := pflag.NewFlagSet("validator", pflag.ExitOnError)
	file := flags.String("file", config.DefaultFilePath, "the file to validate")
	expected := flags.Int("expected", 0, "number of records the generator wrote, 0 skips the loss figures")
	follow := flags.Bool("follow", false, "keep reading appended lines until the idle timeout passes")
	idleTimeout := flags.Duration("idle-timeout", validator.DefaultIdleTimeout, "how long a followed file may stay silent")
	poll := flags.Bool("poll", false, "watch the file by polling instead of inotify")
	level := flags.String("logging-level", string(config.LogLevelInfo), "log level to use. One of: debug|info|warn|error")
	if err := flags.Parse(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to parse flags: %s\n", err.Error())
		os.Exit(1)
	}

	logCfg := config.Logging{Type: config.LoggingTypeStderr, Level: config.LogLevel(*level)}
	logCfg.Normalize()
	if err := logCfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to validate logging config: %s\n", err.Error())
		os.Exit(1)
	}
	logger, err := logging.NewLogger(logCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %s\n", err.Error())
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	results, err := validator.Validate(ctx, logger, validator.Options{
		Path:        *file,
		Expected:    *expected,
		Follow:      *follow,
		IdleTimeout: *idleTimeout,
		Poll:        *poll,
	})
	cancel()
	if err != nil {
		logger.Error("Validation failed", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}

	out, err := results.JSON()
	if err != nil {
		logger.Error("Failed to marshal results", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	fmt.Println(string(out))
	_ = logger.Sync()
}
