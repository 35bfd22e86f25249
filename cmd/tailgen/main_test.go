package main

import (
	"testing"
	"time"

	"github.com/observiq/tailgen/generator"
	"github.com/observiq/tailgen/internal/config"
	"github.com/observiq/tailgen/output"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestNewSinkFactory(t *testing.T) {
	logger := zaptest.NewLogger(t)

	tests := []struct {
		name        string
		cfg         config.Output
		check       func(t *testing.T, sink output.Sink)
		errContains string
	}{
		{
			name: "file",
			cfg: config.Output{
				Type: config.OutputTypeFile,
				File: config.FileOutputConfig{Path: "bench.log"},
			},
			check: func(t *testing.T, sink output.Sink) {
				f, ok := sink.(*output.File)
				require.True(t, ok)
				assert.Equal(t, "bench.log", f.Path())
			},
		},
		{
			name: "nop",
			cfg:  config.Output{Type: config.OutputTypeNop},
			check: func(t *testing.T, sink output.Sink) {
				_, ok := sink.(*output.Nop)
				assert.True(t, ok)
			},
		},
		{
			name:        "unknown",
			cfg:         config.Output{Type: "kafka"},
			errContains: "invalid output type: kafka",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			factory, err := newSinkFactory(logger, tt.cfg)
			if tt.errContains != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}
			require.NoError(t, err)

			sink, err := factory(0)
			require.NoError(t, err)
			tt.check(t, sink)
		})
	}
}

func TestNewPoolConfig(t *testing.T) {
	cfg := config.Generator{
		SizeBytes: 64,
		Rate:      1000,
		Count:     5,
		Workers:   3,
		Interval:  250 * time.Millisecond,
		Format:    config.LineFormatJSON,
		Seed:      42,
	}

	poolCfg := newPoolConfig(cfg)
	assert.Equal(t, generator.PoolConfig{
		SizeBytes: 64,
		Rate:      1000,
		Count:     5,
		Workers:   3,
		Interval:  250 * time.Millisecond,
		Format:    generator.FormatJSON,
		Seed:      42,
	}, poolCfg)
	require.NoError(t, poolCfg.Validate())
}
