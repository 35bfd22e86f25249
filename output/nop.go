package output

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Nop is a sink that discards every record. It is used to measure
// the generator without any I/O cost.
type Nop struct {
	logger *zap.Logger
}

// NewNop creates a new no-operation sink
func NewNop(logger *zap.Logger) (*Nop, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	return &Nop{
		logger: logger.Named("output-nop"),
	}, nil
}

// NopFactory returns a Factory that creates Nop sinks.
func NopFactory(logger *zap.Logger) Factory {
	return func(_ int) (Sink, error) {
		sink, err := NewNop(logger)
		if err != nil {
			return nil, err
		}
		return sink, nil
	}
}

// Open performs no work
func (o *Nop) Open() error {
	return nil
}

// Write performs no work (data is discarded)
func (o *Nop) Write(_ context.Context, _ LogRecord) error {
	return nil
}

// Close performs no work
func (o *Nop) Close() error {
	o.logger.Debug("Closing NOP output")
	return nil
}
