package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogging_Validate(t *testing.T) {
	tests := []struct {
		name        string
		logging     Logging
		errIs       error
		errContains string
	}{
		{name: "empty", logging: Logging{}},
		{name: "stderr", logging: Logging{Type: LoggingTypeStderr, Level: LogLevelInfo}},
		{name: "stdout debug", logging: Logging{Type: LoggingTypeStdout, Level: LogLevelDebug}},
		{name: "mixed case and spaces", logging: Logging{Type: " StdErr ", Level: "WARN"}},
		{name: "error level only", logging: Logging{Level: LogLevelError}},
		{
			name:        "file type",
			logging:     Logging{Type: "file"},
			errIs:       errInvalidLoggingType,
			errContains: "invalid logging type: file, must be one of: stderr, stdout",
		},
		{
			name:        "verbose level",
			logging:     Logging{Type: LoggingTypeStdout, Level: "verbose"},
			errIs:       errInvalidLoggingLevel,
			errContains: "invalid logging level: verbose, must be one of: debug, info, warn, error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.logging.Validate()
			if tt.errIs == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.errIs)
			assert.ErrorContains(t, err, tt.errContains)
		})
	}
}

func TestLogging_ValidateDoesNotModify(t *testing.T) {
	l := Logging{Type: " STDOUT", Level: "Debug"}
	require.NoError(t, l.Validate())
	assert.Equal(t, LoggingType(" STDOUT"), l.Type)
}

func TestLogging_Normalize(t *testing.T) {
	l := Logging{Type: " STDOUT", Level: "Debug "}
	l.Normalize()
	assert.Equal(t, LoggingTypeStdout, l.Type)
	assert.Equal(t, LogLevelDebug, l.Level)
}

func TestApplyDefaults_NormalizesLogging(t *testing.T) {
	cfg := NewConfig()
	cfg.Logging = Logging{Type: "StdOut", Level: "ERROR"}
	cfg.ApplyDefaults()
	assert.Equal(t, Logging{Type: LoggingTypeStdout, Level: LogLevelError}, cfg.Logging)
}
