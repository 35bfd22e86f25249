package generator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/observiq/tailgen/output"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

const (
	// DefaultInterval is the default tick cadence and overrun budget
	DefaultInterval = time.Second

	// maxTrackedTick is the largest tick duration recorded by the histogram
	maxTrackedTick = time.Hour
)

// EmitterConfig is one worker's share of the workload.
type EmitterConfig struct {
	// SizeBytes is the payload size of every record
	SizeBytes int
	// Rate is the number of records written per tick
	Rate int
	// Interval is the tick cadence. A tick taking longer is an overrun.
	Interval time.Duration
	// Format selects the line format
	Format LineFormat
	// Seed seeds the record factory. Zero draws a random seed.
	Seed int64
	// Tag identifies the run in json lines
	Tag string
}

// Validate validates the emitter configuration
func (c EmitterConfig) Validate() error {
	if c.SizeBytes < 0 {
		return fmt.Errorf("size must be 0 or greater, got %d", c.SizeBytes)
	}
	if c.Rate < 0 {
		return fmt.Errorf("rate must be 0 or greater, got %d", c.Rate)
	}
	if c.Interval < 0 {
		return fmt.Errorf("interval cannot be negative, got %s", c.Interval)
	}
	return nil
}

// TickResult describes a completed tick.
type TickResult struct {
	// Tick is the 1 based tick number
	Tick int
	// Records is the number of records written
	Records int
	// Elapsed is the time spent writing the records
	Elapsed time.Duration
	// Overrun is true when Elapsed exceeded the tick budget
	Overrun bool
}

// TickStats summarizes the ticks of one or more emitters.
type TickStats struct {
	// Ticks counts completed ticks
	Ticks int64
	// Records counts every record written, including those of a failed tick
	Records  int64
	Overruns int64
	P50      time.Duration
	P99      time.Duration
	Max      time.Duration
}

// EmissionError is returned when a record could not be written during a tick.
type EmissionError struct {
	WorkerID int
	Tick     int
	Err      error
}

func (e *EmissionError) Error() string {
	return fmt.Sprintf("worker %d tick %d: %s", e.WorkerID, e.Tick, e.Err)
}

func (e *EmissionError) Unwrap() error {
	return e.Err
}

// RateEmitter writes one worker's share of the rate on every tick.
type RateEmitter struct {
	logger    *zap.Logger
	id        int
	cfg       EmitterConfig
	sink      output.Writer
	factory   *RecordFactory
	formatter *lineFormatter
	attrs     metric.MeasurementOption

	tick     int
	records  atomic.Int64
	overruns atomic.Int64

	histMu sync.Mutex
	hist   *hdrhistogram.Histogram

	recordsEmitted metric.Int64Counter
	overrunCount   metric.Int64Counter
	writeErrors    metric.Int64Counter
	tickDuration   metric.Float64Histogram
}

// NewRateEmitter creates a rate emitter for worker id writing to sink.
func NewRateEmitter(logger *zap.Logger, id int, cfg EmitterConfig, sink output.Writer) (*RateEmitter, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	if sink == nil {
		return nil, fmt.Errorf("sink cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Interval == 0 {
		cfg.Interval = DefaultInterval
	}

	formatter, err := newLineFormatter(cfg.Format, cfg.Tag, id)
	if err != nil {
		return nil, err
	}

	meter := otel.Meter("tailgen-generator")

	recordsEmitted, err := meter.Int64Counter(
		"tailgen.generator.records.emitted",
		metric.WithDescription("Total number of records written to sinks"),
	)
	if err != nil {
		return nil, fmt.Errorf("create records emitted counter: %w", err)
	}

	overrunCount, err := meter.Int64Counter(
		"tailgen.generator.overruns",
		metric.WithDescription("Total number of ticks that exceeded their budget"),
	)
	if err != nil {
		return nil, fmt.Errorf("create overruns counter: %w", err)
	}

	writeErrors, err := meter.Int64Counter(
		"tailgen.generator.write.errors",
		metric.WithDescription("Total number of write errors"),
	)
	if err != nil {
		return nil, fmt.Errorf("create write errors counter: %w", err)
	}

	tickDuration, err := meter.Float64Histogram(
		"tailgen.generator.tick.duration",
		metric.WithDescription("Time spent writing the records of one tick"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create tick duration histogram: %w", err)
	}

	return &RateEmitter{
		logger:    logger.Named("generator-emitter").With(zap.Int("worker_id", id)),
		id:        id,
		cfg:       cfg,
		sink:      sink,
		factory:   NewRecordFactory(cfg.Seed),
		formatter: formatter,
		attrs: metric.WithAttributeSet(
			attribute.NewSet(
				attribute.String("component", "generator_emitter"),
			),
		),
		hist:           hdrhistogram.New(1, maxTrackedTick.Microseconds(), 3),
		recordsEmitted: recordsEmitted,
		overrunCount:   overrunCount,
		writeErrors:    writeErrors,
		tickDuration:   tickDuration,
	}, nil
}

// Rate returns the number of records written per tick
func (e *RateEmitter) Rate() int {
	return e.cfg.Rate
}

// Overruns returns the number of ticks that exceeded their budget
func (e *RateEmitter) Overruns() int64 {
	return e.overruns.Load()
}

// EmitTick writes Rate records to the sink. A failed write aborts the tick
// and is returned as an *EmissionError. Records written before the failure
// are still counted. A tick taking longer than the interval is reported as
// an overrun but is not an error.
func (e *RateEmitter) EmitTick(ctx context.Context) (result TickResult, err error) {
	e.tick++
	result.Tick = e.tick

	defer func() {
		e.records.Add(int64(result.Records))
		e.recordsEmitted.Add(ctx, int64(result.Records), e.attrs)
	}()

	start := time.Now()
	for i := 0; i < e.cfg.Rate; i++ {
		if err := e.emitOne(ctx); err != nil {
			e.recordWriteError(ctx, err)
			return result, &EmissionError{WorkerID: e.id, Tick: e.tick, Err: err}
		}
		result.Records++
	}

	if f, ok := e.sink.(output.Flusher); ok {
		if err := f.Flush(); err != nil {
			e.recordWriteError(ctx, err)
			return result, &EmissionError{WorkerID: e.id, Tick: e.tick, Err: err}
		}
	}
	result.Elapsed = time.Since(start)

	e.tickDuration.Record(ctx, result.Elapsed.Seconds(), e.attrs)
	e.recordTickDuration(result.Elapsed)

	e.logger.Info("Sent log records",
		zap.Int("tick", result.Tick),
		zap.Int("records", result.Records),
		zap.Duration("elapsed", result.Elapsed))

	if result.Elapsed > e.cfg.Interval {
		result.Overrun = true
		e.overruns.Add(1)
		e.overrunCount.Add(ctx, 1, e.attrs)
		e.logger.Error("Detected overrun, failed to keep up with the expected rate",
			zap.Int("tick", result.Tick),
			zap.Int("rate", e.cfg.Rate),
			zap.Duration("elapsed", result.Elapsed),
			zap.Duration("budget", e.cfg.Interval))
	}

	return result, nil
}

// Stats returns a summary of the ticks emitted so far
func (e *RateEmitter) Stats() TickStats {
	return mergeStats([]*RateEmitter{e})
}

// mergeStats combines the tick histograms of several emitters
func mergeStats(emitters []*RateEmitter) TickStats {
	merged := hdrhistogram.New(1, maxTrackedTick.Microseconds(), 3)
	var records, overruns int64
	for _, e := range emitters {
		if e == nil {
			continue
		}
		e.histMu.Lock()
		merged.Merge(e.hist)
		e.histMu.Unlock()
		records += e.records.Load()
		overruns += e.overruns.Load()
	}

	return TickStats{
		Ticks:    merged.TotalCount(),
		Records:  records,
		Overruns: overruns,
		P50:      time.Duration(merged.ValueAtQuantile(50)) * time.Microsecond,
		P99:      time.Duration(merged.ValueAtQuantile(99)) * time.Microsecond,
		Max:      time.Duration(merged.Max()) * time.Microsecond,
	}
}

func (e *RateEmitter) emitOne(ctx context.Context) error {
	line, err := e.formatter.Format(e.factory.Make(e.cfg.SizeBytes))
	if err != nil {
		return fmt.Errorf("format record: %w", err)
	}
	return e.sink.Write(ctx, output.LogRecord{Message: line})
}

func (e *RateEmitter) recordTickDuration(d time.Duration) {
	us := d.Microseconds()
	if us < 1 {
		us = 1
	}
	e.histMu.Lock()
	defer e.histMu.Unlock()
	if err := e.hist.RecordValue(us); err != nil {
		// Only values beyond maxTrackedTick are rejected
		_ = e.hist.RecordValue(maxTrackedTick.Microseconds())
	}
}

func (e *RateEmitter) recordWriteError(ctx context.Context, err error) {
	errorType := "unknown"
	var writeErr *output.WriteError
	switch {
	case errors.As(err, &writeErr):
		errorType = "write"
	case errors.Is(err, context.DeadlineExceeded):
		errorType = "timeout"
	}

	e.writeErrors.Add(ctx, 1,
		metric.WithAttributeSet(
			attribute.NewSet(
				attribute.String("component", "generator_emitter"),
				attribute.String("error_type", errorType),
			),
		),
	)
}
