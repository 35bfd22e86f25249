// Package main is the main package for tailgen.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/observiq/tailgen/generator"
	"github.com/observiq/tailgen/internal/config"
	"github.com/observiq/tailgen/internal/logging"
	"github.com/observiq/tailgen/internal/service"
	"github.com/observiq/tailgen/internal/telemetry/metrics"
	"github.com/observiq/tailgen/output"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Bind overrides to flags and environment variables
	flags := pflag.NewFlagSet("tailgen", pflag.ExitOnError)
	configFile := flags.String("config", "", "optional YAML config file, flags and environment variables take precedence")
	for _, override := range config.DefaultOverrides() {
		if err := override.Bind(flags); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to bind override %s: %s\n", override.Field, err.Error())
			os.Exit(1)
		}
	}
	if err := flags.Parse(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to parse flags: %s\n", err.Error())
		os.Exit(1)
	}

	// Configure Viper to handle env overrides
	viper.SetConfigType("yaml")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if *configFile != "" {
		viper.SetConfigFile(*configFile)
		if err := viper.ReadInConfig(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read config file %s: %s\n", *configFile, err.Error())
			os.Exit(1)
		}
	}

	cfg := config.NewConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to unmarshal config: %s\n", err.Error())
		os.Exit(1)
	}
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to validate config: %s\n", err.Error())
		os.Exit(1)
	}

	logger, err := logging.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %s\n", err.Error())
		os.Exit(1)
	}

	if err := run(logger, cfg); err != nil {
		logger.Error("tailgen failed", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	_ = logger.Sync()
}

func run(logger *zap.Logger, cfg *config.Config) error {
	logger.Info("tailgen started",
		zap.Int("size_bytes", cfg.Generator.SizeBytes),
		zap.Int("rate", cfg.Generator.Rate),
		zap.Int("count", cfg.Generator.Count),
		zap.Int("workers", cfg.Generator.Workers),
		zap.String("output", string(cfg.Output.Type)),
	)

	// Create signal context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Listen for OS signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("Received signal, initiating graceful shutdown", zap.String("signal", sig.String()))
			cancel()
		case <-ctx.Done():
		}
	}()

	if cfg.Metrics.Enabled {
		provider, err := metrics.NewPrometheus(logger, cfg.Metrics.Host, cfg.Metrics.Port)
		if err != nil {
			return fmt.Errorf("create metrics provider: %w", err)
		}
		if err := provider.Start(ctx); err != nil {
			return fmt.Errorf("start metrics provider: %w", err)
		}
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer shutdownCancel()
			if err := provider.Shutdown(shutdownCtx); err != nil {
				logger.Error("Failed to shutdown metrics provider", zap.Error(err))
			}
		}()
	}

	sinkFactory, err := newSinkFactory(logger, cfg.Output)
	if err != nil {
		return err
	}

	poolCfg := newPoolConfig(cfg.Generator)
	svc, err := service.New(logger, func() (service.Runner, error) {
		return generator.NewPool(logger, poolCfg, sinkFactory)
	}, cfg.Retry)
	if err != nil {
		return fmt.Errorf("create service: %w", err)
	}

	if err := svc.Run(ctx); err != nil {
		return err
	}

	logger.Info("tailgen shutdown complete")
	return nil
}

// newSinkFactory returns the per-worker sink factory for the configured output.
func newSinkFactory(logger *zap.Logger, cfg config.Output) (output.Factory, error) {
	switch cfg.Type {
	case config.OutputTypeFile:
		return output.FileFactory(logger, cfg.File.Path), nil
	case config.OutputTypeNop:
		return output.NopFactory(logger), nil
	default:
		return nil, fmt.Errorf("invalid output type: %s", cfg.Type)
	}
}

func newPoolConfig(cfg config.Generator) generator.PoolConfig {
	return generator.PoolConfig{
		SizeBytes: cfg.SizeBytes,
		Rate:      cfg.Rate,
		Count:     cfg.Count,
		Workers:   cfg.Workers,
		Interval:  cfg.Interval,
		Format:    generator.LineFormat(cfg.Format),
		Seed:      cfg.Seed,
	}
}
