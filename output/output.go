package output

import (
	"context"
)

// LogRecord is a single formatted line handed to a sink.
type LogRecord struct {
	// Message is the raw log line, without the trailing newline.
	Message []byte
}

// Writer can consume log records.
type Writer interface {
	// Write writes the record to the output.
	Write(ctx context.Context, record LogRecord) error
}

// Sink is an output with a scoped lifetime. Open acquires the underlying
// resource and Close flushes and releases it. A sink is owned by a single
// worker and is not safe for concurrent use.
type Sink interface {
	Writer

	// Open acquires the resource backing the sink.
	Open() error

	// Close flushes and releases the resource. Close is a no-op
	// if the sink was never opened or is already closed.
	Close() error
}

// Flusher is implemented by sinks that buffer writes.
type Flusher interface {
	Flush() error
}

// Factory creates the sink for the given worker.
type Factory func(workerID int) (Sink, error)
