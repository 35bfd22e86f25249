package output

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
)

const (
	// DefaultFilePath is the default file written by the file output
	DefaultFilePath = "tail_log"

	// DefaultFileMode is the permission used when the file is created
	DefaultFileMode os.FileMode = 0o644

	// DefaultFileBufferSize is the size of the write buffer in front of the file
	DefaultFileBufferSize = 64 * 1024
)

// File is a sink that appends newline terminated records to a file.
// Several File sinks may target the same path, each one owns its own
// handle and relies on O_APPEND for interleaved writes.
type File struct {
	logger *zap.Logger
	path   string
	file   *os.File
	buf    *bufio.Writer
}

// NewFile creates a new file output. The file is not opened until Open is called.
func NewFile(logger *zap.Logger, path string) (*File, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	if path == "" {
		return nil, fmt.Errorf("path cannot be empty")
	}

	return &File{
		logger: logger.Named("output-file"),
		path:   path,
	}, nil
}

// FileFactory returns a Factory that creates one File sink per worker,
// all appending to path.
func FileFactory(logger *zap.Logger, path string) Factory {
	return func(_ int) (Sink, error) {
		sink, err := NewFile(logger, path)
		if err != nil {
			return nil, err
		}
		return sink, nil
	}
}

// Path returns the path of the file
func (f *File) Path() string {
	return f.path
}

// Open opens the file in append mode, creating it if needed.
func (f *File) Open() error {
	if f.file != nil {
		return nil
	}

	// #nosec G304 -- the path is operator supplied configuration
	file, err := os.OpenFile(f.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, DefaultFileMode)
	if err != nil {
		return &OpenError{Target: f.path, Err: err}
	}

	f.file = file
	f.buf = bufio.NewWriterSize(file, DefaultFileBufferSize)

	f.logger.Debug("Opened file output", zap.String("path", f.path))
	return nil
}

// Write appends the record followed by a newline.
func (f *File) Write(_ context.Context, record LogRecord) error {
	if f.buf == nil {
		return &WriteError{Target: f.path, Err: fmt.Errorf("file is not open")}
	}

	if _, err := f.buf.Write(record.Message); err != nil {
		return &WriteError{Target: f.path, Err: err}
	}
	if err := f.buf.WriteByte('\n'); err != nil {
		return &WriteError{Target: f.path, Err: err}
	}

	return nil
}

// Flush writes any buffered records to the file.
func (f *File) Flush() error {
	if f.buf == nil {
		return nil
	}

	if err := f.buf.Flush(); err != nil {
		return &WriteError{Target: f.path, Err: err}
	}
	return nil
}

// Close flushes buffered records and closes the file.
func (f *File) Close() error {
	if f.file == nil {
		return nil
	}

	flushErr := f.buf.Flush()
	closeErr := f.file.Close()
	f.file = nil
	f.buf = nil

	f.logger.Debug("Closed file output", zap.String("path", f.path))

	if flushErr != nil {
		return &WriteError{Target: f.path, Err: flushErr}
	}
	if closeErr != nil {
		return fmt.Errorf("close %s: %w", f.path, closeErr)
	}
	return nil
}
