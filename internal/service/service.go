// Package service runs a generation pool to completion, optionally
// retrying failed runs with exponential backoff.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/observiq/tailgen/internal/config"
	"go.uber.org/zap"
)

// Runner is a single generation run, typically a *generator.Pool.
type Runner interface {
	Run(ctx context.Context) error
}

// RunnerFactory builds a fresh Runner for each attempt. Errors returned
// by the factory are treated as configuration errors and never retried.
type RunnerFactory func() (Runner, error)

// Service drives runs built by a RunnerFactory.
type Service struct {
	logger    *zap.Logger
	newRunner RunnerFactory
	retry     config.Retry
}

// New creates a new Service.
func New(logger *zap.Logger, newRunner RunnerFactory, retry config.Retry) (*Service, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	if newRunner == nil {
		return nil, fmt.Errorf("runner factory cannot be nil")
	}
	if err := retry.Validate(); err != nil {
		return nil, fmt.Errorf("retry config validation failed: %w", err)
	}

	return &Service{
		logger:    logger.Named("service"),
		newRunner: newRunner,
		retry:     retry,
	}, nil
}

// Run executes one run, and when retries are enabled reruns it after
// failures until it succeeds, the attempts are exhausted or ctx is done.
// A run cut short by ctx cancellation is a clean completion.
func (s *Service) Run(ctx context.Context) error {
	attempt := 0
	operation := func() error {
		attempt++
		runner, err := s.newRunner()
		if err != nil {
			return backoff.Permanent(fmt.Errorf("create runner: %w", err))
		}

		s.logger.Info("Starting run", zap.Int("attempt", attempt))
		if err := runner.Run(ctx); err != nil {
			return err
		}
		return nil
	}

	if s.retry.MaxAttempts <= 0 {
		return unwrapPermanent(operation())
	}

	notify := func(err error, next time.Duration) {
		s.logger.Warn("Run failed, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("backoff", next),
			zap.Error(err),
		)
	}

	err := backoff.RetryNotify(operation, s.backOff(ctx), notify)
	if err != nil && ctx.Err() != nil {
		s.logger.Info("Retry cancelled", zap.Int("attempts", attempt), zap.Error(err))
	}
	return unwrapPermanent(err)
}

func (s *Service) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = durationOr(s.retry.InitialInterval, config.DefaultRetryInitialInterval)
	b.MaxInterval = durationOr(s.retry.MaxInterval, config.DefaultRetryMaxInterval)
	// Bounded by attempts, not wall time.
	b.MaxElapsedTime = 0
	b.Reset()

	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(s.retry.MaxAttempts)), ctx)
}

func unwrapPermanent(err error) error {
	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		return permanent.Unwrap()
	}
	return err
}

func durationOr(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}
