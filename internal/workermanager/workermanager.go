// Package workermanager runs a fixed set of worker goroutines to completion.
//
// Every worker receives the same context and its index. The manager waits for
// all workers to reach a terminal state, even when some of them fail, and then
// returns the first error observed. A failing worker does not cancel the
// others and is never restarted.
//
// Example Usage:
//
//	wm, err := workermanager.NewWorkerManager(logger, 4, func(ctx context.Context, id int) error {
//		sink, err := factory(id)
//		if err != nil {
//			return err
//		}
//		if err := sink.Open(); err != nil {
//			return err
//		}
//		defer sink.Close()
//		return run(ctx, sink)
//	})
//	if err != nil {
//		return err
//	}
//	return wm.Run(ctx)
package workermanager

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// errAlreadyRunning is returned when Run is called more than once
var errAlreadyRunning = errors.New("worker manager already ran")

// WorkerFunc is the body of a single worker.
type WorkerFunc func(ctx context.Context, id int) error

// WorkerManager runs worker goroutines and collects their outcome
type WorkerManager struct {
	logger      *zap.Logger
	workerFunc  WorkerFunc
	workerCount int
	started     atomic.Bool
}

// NewWorkerManager creates a new worker manager
func NewWorkerManager(logger *zap.Logger, workerCount int, workerFunc WorkerFunc) (*WorkerManager, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	if workerCount < 1 {
		return nil, fmt.Errorf("workers must be 1 or greater, got %d", workerCount)
	}
	if workerFunc == nil {
		return nil, fmt.Errorf("worker function cannot be nil")
	}

	return &WorkerManager{
		logger:      logger,
		workerFunc:  workerFunc,
		workerCount: workerCount,
	}, nil
}

// Run starts every worker and blocks until all of them return.
// The first non-nil worker error is returned.
func (wm *WorkerManager) Run(ctx context.Context) error {
	if !wm.started.CompareAndSwap(false, true) {
		return errAlreadyRunning
	}

	wm.logger.Info("Starting worker manager", zap.Int("target_workers", wm.workerCount))

	var g errgroup.Group
	for i := 0; i < wm.workerCount; i++ {
		id := i
		g.Go(func() error {
			return wm.runWorker(ctx, id)
		})
	}

	err := g.Wait()
	if err != nil {
		wm.logger.Error("Worker manager finished with errors", zap.Error(err))
		return err
	}

	wm.logger.Info("Worker manager stopped")
	return nil
}

// runWorker runs a single worker and records its outcome
func (wm *WorkerManager) runWorker(ctx context.Context, id int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("worker %d panicked: %v", id, r)
		}
		if err != nil {
			wm.logger.Error("Worker failed", zap.Int("worker_id", id), zap.Error(err))
		}
	}()

	wm.logger.Debug("Starting worker", zap.Int("worker_id", id))
	if err := wm.workerFunc(ctx, id); err != nil {
		return err
	}
	wm.logger.Debug("Worker finished", zap.Int("worker_id", id))
	return nil
}
