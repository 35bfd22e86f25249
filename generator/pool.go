package generator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/observiq/tailgen/internal/workermanager"
	"github.com/observiq/tailgen/output"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// PoolConfig is the global workload split across the pool's workers.
type PoolConfig struct {
	// SizeBytes is the payload size of every record
	SizeBytes int
	// Rate is the total number of records per tick across all workers
	Rate int
	// Count is the number of ticks to run. Zero or less runs until cancelled.
	Count int
	// Workers is the number of independent workers
	Workers int
	// Interval is the tick cadence
	Interval time.Duration
	// Format selects the line format
	Format LineFormat
	// Seed seeds worker i with Seed+i. Zero seeds every worker randomly.
	Seed int64
}

// Validate validates the pool configuration
func (c PoolConfig) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be 1 or greater, got %d", c.Workers)
	}
	if c.SizeBytes < 0 {
		return fmt.Errorf("size must be 0 or greater, got %d", c.SizeBytes)
	}
	if c.Rate < 0 {
		return fmt.Errorf("rate must be 0 or greater, got %d", c.Rate)
	}
	if c.Interval < 0 {
		return fmt.Errorf("interval cannot be negative, got %s", c.Interval)
	}
	if _, err := newLineFormatter(c.Format, "", 0); err != nil {
		return err
	}
	return nil
}

// RateShares splits total across workers. Every worker gets total/workers
// and worker 0 also gets the remainder, so the shares always sum to total.
func RateShares(total, workers int) []int {
	if workers < 1 {
		return nil
	}

	shares := make([]int, workers)
	for i := range shares {
		shares[i] = total / workers
	}
	shares[0] += total % workers
	return shares
}

// Pool runs one emitter and scheduler per worker, each with its own sink.
type Pool struct {
	logger      *zap.Logger
	cfg         PoolConfig
	tag         string
	sinkFactory output.Factory
	shares      []int
	emitters    []*RateEmitter

	activeWorkers metric.Int64UpDownCounter
}

// NewPool creates a new worker pool
func NewPool(logger *zap.Logger, cfg PoolConfig, sinkFactory output.Factory) (*Pool, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	if sinkFactory == nil {
		return nil, fmt.Errorf("sink factory cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Interval == 0 {
		cfg.Interval = DefaultInterval
	}

	meter := otel.Meter("tailgen-generator")
	activeWorkers, err := meter.Int64UpDownCounter(
		"tailgen.generator.workers.active",
		metric.WithDescription("Number of active worker goroutines"),
	)
	if err != nil {
		return nil, fmt.Errorf("create active workers counter: %w", err)
	}

	return &Pool{
		logger:        logger.Named("generator-pool"),
		cfg:           cfg,
		tag:           Tag(cfg.SizeBytes, cfg.Rate),
		sinkFactory:   sinkFactory,
		shares:        RateShares(cfg.Rate, cfg.Workers),
		emitters:      make([]*RateEmitter, cfg.Workers),
		activeWorkers: activeWorkers,
	}, nil
}

// Shares returns the rate assigned to each worker
func (p *Pool) Shares() []int {
	return append([]int(nil), p.shares...)
}

// Tag returns the tag identifying this run
func (p *Pool) Tag() string {
	return p.tag
}

// Run runs every worker until it completes its ticks, fails or ctx is
// cancelled. It waits for all workers and returns the first failure.
// Run shall be called at most once.
func (p *Pool) Run(ctx context.Context) error {
	p.logger.Info("Starting log generation",
		zap.String("tag", p.tag),
		zap.Int("size_bytes", p.cfg.SizeBytes),
		zap.Int("rate", p.cfg.Rate),
		zap.Int("count", p.cfg.Count),
		zap.Int("workers", p.cfg.Workers),
		zap.Ints("shares", p.shares),
		zap.Duration("interval", p.cfg.Interval),
		zap.String("format", string(p.cfg.Format)))

	wm, err := workermanager.NewWorkerManager(p.logger, p.cfg.Workers, p.runWorker)
	if err != nil {
		return fmt.Errorf("create worker manager: %w", err)
	}

	start := time.Now()
	runErr := wm.Run(ctx)

	stats := p.Stats()
	p.logger.Info("Log generation finished",
		zap.Duration("duration", time.Since(start)),
		zap.Int64("ticks", stats.Ticks),
		zap.Int64("records", stats.Records),
		zap.Int64("overruns", stats.Overruns),
		zap.Duration("tick_p50", stats.P50),
		zap.Duration("tick_p99", stats.P99),
		zap.Duration("tick_max", stats.Max),
		zap.Bool("failed", runErr != nil))

	return runErr
}

// Stats returns the combined tick statistics of all workers.
// It shall only be called after Run returns.
func (p *Pool) Stats() TickStats {
	return mergeStats(p.emitters)
}

// runWorker owns one sink for the lifetime of the worker. The sink is
// closed on every exit path once it has been opened.
func (p *Pool) runWorker(ctx context.Context, id int) (err error) {
	attrs := metric.WithAttributeSet(
		attribute.NewSet(
			attribute.String("component", "generator_pool"),
		),
	)
	p.activeWorkers.Add(ctx, 1, attrs)
	defer p.activeWorkers.Add(context.WithoutCancel(ctx), -1, attrs)

	sink, err := p.sinkFactory(id)
	if err != nil {
		return fmt.Errorf("worker %d: create sink: %w", id, err)
	}

	if err := sink.Open(); err != nil {
		return fmt.Errorf("worker %d: %w", id, err)
	}
	defer func() {
		if closeErr := sink.Close(); closeErr != nil {
			p.logger.Error("Failed to close sink", zap.Int("worker_id", id), zap.Error(closeErr))
			err = errors.Join(err, fmt.Errorf("worker %d: close sink: %w", id, closeErr))
		}
	}()

	seed := p.cfg.Seed
	if seed != 0 {
		seed += int64(id)
	}

	emitter, err := NewRateEmitter(p.logger, id, EmitterConfig{
		SizeBytes: p.cfg.SizeBytes,
		Rate:      p.shares[id],
		Interval:  p.cfg.Interval,
		Format:    p.cfg.Format,
		Seed:      seed,
		Tag:       p.tag,
	}, sink)
	if err != nil {
		return fmt.Errorf("worker %d: create emitter: %w", id, err)
	}
	p.emitters[id] = emitter

	scheduler, err := NewTickScheduler(p.logger.With(zap.Int("worker_id", id)), emitter, p.cfg.Interval, p.cfg.Count)
	if err != nil {
		return fmt.Errorf("worker %d: create scheduler: %w", id, err)
	}

	return scheduler.Run(ctx)
}
