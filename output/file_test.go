package output

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

func TestNewFile(t *testing.T) {
	tests := []struct {
		name        string
		logger      *zap.Logger
		path        string
		errContains string
	}{
		{
			name:   "valid configuration",
			logger: zap.NewNop(),
			path:   "tail_log",
		},
		{
			name:        "nil logger",
			path:        "tail_log",
			errContains: "logger cannot be nil",
		},
		{
			name:        "empty path",
			logger:      zap.NewNop(),
			errContains: "path cannot be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewFile(tt.logger, tt.path)
			if tt.errContains != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				assert.Nil(t, f)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.path, f.Path())
		})
	}
}

func TestFile_WriteAndClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	f, err := NewFile(zaptest.NewLogger(t), path)
	require.NoError(t, err)

	require.NoError(t, f.Open())
	require.NoError(t, f.Write(context.Background(), LogRecord{Message: []byte("first")}))
	require.NoError(t, f.Write(context.Background(), LogRecord{Message: []byte("second")}))
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "first\nsecond\n", string(data))

	// A second close is a no-op
	assert.NoError(t, f.Close())
}

func TestFile_Appends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	require.NoError(t, os.WriteFile(path, []byte("existing\n"), 0o600))

	f, err := NewFile(zaptest.NewLogger(t), path)
	require.NoError(t, err)
	require.NoError(t, f.Open())
	require.NoError(t, f.Write(context.Background(), LogRecord{Message: []byte("appended")}))
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "existing\nappended\n", string(data))
}

func TestFile_Flush(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	f, err := NewFile(zaptest.NewLogger(t), path)
	require.NoError(t, err)
	require.NoError(t, f.Open())
	defer f.Close()

	require.NoError(t, f.Write(context.Background(), LogRecord{Message: []byte("buffered")}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, data, "record should still be buffered")

	require.NoError(t, f.Flush())

	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "buffered\n", string(data))
}

func TestFile_OpenError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "out.log")
	f, err := NewFile(zaptest.NewLogger(t), path)
	require.NoError(t, err)

	err = f.Open()
	require.Error(t, err)

	var openErr *OpenError
	require.True(t, errors.As(err, &openErr))
	assert.Equal(t, path, openErr.Target)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	// Closing a sink that never opened is a no-op
	assert.NoError(t, f.Close())
}

func TestFile_WriteBeforeOpen(t *testing.T) {
	f, err := NewFile(zaptest.NewLogger(t), filepath.Join(t.TempDir(), "out.log"))
	require.NoError(t, err)

	err = f.Write(context.Background(), LogRecord{Message: []byte("x")})
	require.Error(t, err)

	var writeErr *WriteError
	assert.True(t, errors.As(err, &writeErr))
}

func TestFileFactory_SharedPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	factory := FileFactory(zaptest.NewLogger(t), path)

	const workers = 4
	const lines = 250

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		sink, err := factory(i)
		require.NoError(t, err)
		require.NoError(t, sink.Open())

		wg.Add(1)
		go func(s Sink) {
			defer wg.Done()
			defer s.Close()
			for j := 0; j < lines; j++ {
				if err := s.Write(context.Background(), LogRecord{Message: []byte("line")}); err != nil {
					t.Errorf("write: %v", err)
					return
				}
			}
		}(sink)
	}
	wg.Wait()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	got := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	assert.Len(t, got, workers*lines)
	for _, line := range got {
		assert.Equal(t, "line", line)
	}
}

func TestNop(t *testing.T) {
	_, err := NewNop(nil)
	require.Error(t, err)

	sink, err := NopFactory(zaptest.NewLogger(t))(0)
	require.NoError(t, err)
	require.NoError(t, sink.Open())
	require.NoError(t, sink.Write(context.Background(), LogRecord{Message: []byte("discarded")}))
	require.NoError(t, sink.Close())
}
