package generator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// State is the lifecycle state of a TickScheduler.
type State int

const (
	// StateIdle is a scheduler that has not been started
	StateIdle State = iota
	// StateRunning is a scheduler driving ticks
	StateRunning
	// StateStopped is a scheduler that finished, failed or was cancelled
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// errAlreadyStarted is returned when Run is called more than once
var errAlreadyStarted = errors.New("scheduler already started")

// TickEmitter performs the work of a single tick.
type TickEmitter interface {
	EmitTick(ctx context.Context) (TickResult, error)
}

// TickScheduler drives a TickEmitter once per interval.
type TickScheduler struct {
	logger   *zap.Logger
	emitter  TickEmitter
	interval time.Duration
	count    int

	mu    sync.Mutex
	state State
	ticks int
}

// NewTickScheduler creates a scheduler that calls emitter every interval.
// A positive count bounds the run to exactly count ticks, otherwise the
// scheduler runs until its context is cancelled or a tick fails.
func NewTickScheduler(logger *zap.Logger, emitter TickEmitter, interval time.Duration, count int) (*TickScheduler, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	if emitter == nil {
		return nil, fmt.Errorf("emitter cannot be nil")
	}
	if interval < 0 {
		return nil, fmt.Errorf("interval cannot be negative, got %s", interval)
	}
	if interval == 0 {
		interval = DefaultInterval
	}

	return &TickScheduler{
		logger:   logger.Named("generator-scheduler"),
		emitter:  emitter,
		interval: interval,
		count:    count,
		state:    StateIdle,
	}, nil
}

// State returns the current state
func (s *TickScheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Ticks returns the number of ticks completed
func (s *TickScheduler) Ticks() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ticks
}

// Run blocks until the scheduler stops. The first tick happens one
// interval after Run is called. Tick starts are one interval apart; when a
// tick overruns, the next one starts as soon as it finishes. Cancellation
// is checked between ticks, so the tick in progress always completes.
// Run returns nil on cancellation and on a completed bounded run.
func (s *TickScheduler) Run(ctx context.Context) error {
	if err := s.transition(StateIdle, StateRunning); err != nil {
		return err
	}
	defer s.setState(StateStopped)

	remaining := s.count
	s.logger.Debug("Starting scheduler",
		zap.Duration("interval", s.interval),
		zap.Int("count", s.count))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("Scheduler stopping - context cancelled", zap.Int("ticks", s.Ticks()))
			return nil
		case <-ticker.C:
		}

		// A tick and a cancellation may be ready together, prefer stopping
		if ctx.Err() != nil {
			s.logger.Debug("Scheduler stopping - context cancelled", zap.Int("ticks", s.Ticks()))
			return nil
		}

		if _, err := s.emitter.EmitTick(ctx); err != nil {
			return err
		}

		s.mu.Lock()
		s.ticks++
		s.mu.Unlock()

		if s.count > 0 {
			remaining--
			if remaining == 0 {
				s.logger.Debug("Scheduler finished", zap.Int("ticks", s.count))
				return nil
			}
		}
	}
}

func (s *TickScheduler) transition(from, to State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != from {
		return fmt.Errorf("%w: state is %s", errAlreadyStarted, s.state)
	}
	s.state = to
	return nil
}

func (s *TickScheduler) setState(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}
