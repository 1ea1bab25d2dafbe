package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrDispatcherClosed is logged when Go is called after Shutdown.
var ErrDispatcherClosed = errors.New("dispatcher closed")

// Task is a unit of background work. Its error is logged and dropped.
type Task func(ctx context.Context) error

// Dispatcher runs fire-and-forget side effects (notifications, file I/O)
// off the UI thread. Submission never blocks and never drops: past the
// concurrency limit tasks wait for a free slot.
type Dispatcher struct {
	group  errgroup.Group
	ctx    context.Context
	cancel context.CancelFunc
	logger *zap.Logger

	activeCount int64
	pending     sync.WaitGroup
	isShutdown  atomic.Bool
	// mu orders pending.Add against Shutdown so Wait sees every accepted task
	mu sync.RWMutex
}

// NewDispatcher creates a dispatcher running at most limit tasks at once.
// limit <= 0 means unbounded.
func NewDispatcher(limit int, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		ctx:    ctx,
		cancel: cancel,
		logger: logger.Named("dispatcher"),
	}
	if limit > 0 {
		d.group.SetLimit(limit)
	}
	return d
}

// Go schedules fn under name and returns immediately. Accepted tasks always
// run; it returns false only after Shutdown.
func (d *Dispatcher) Go(name string, fn Task) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.isShutdown.Load() {
		d.logger.Warn("task rejected", zap.String("task", name), zap.Error(ErrDispatcherClosed))
		return false
	}

	atomic.AddInt64(&d.activeCount, 1)
	d.pending.Add(1)
	task := func() error {
		defer d.pending.Done()
		defer atomic.AddInt64(&d.activeCount, -1)
		if err := d.run(name, fn); err != nil {
			d.logger.Warn("task failed", zap.String("task", name), zap.Error(err))
		}
		return nil
	}
	if !d.group.TryGo(task) {
		d.logger.Debug("dispatcher saturated, task queued", zap.String("task", name))
		// group.Go blocks until a slot frees up
		go d.group.Go(task)
	}
	return true
}

func (d *Dispatcher) run(name string, fn Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", name, r)
		}
	}()
	return fn(d.ctx)
}

// ActiveCount returns the number of tasks accepted and not yet finished,
// queued ones included.
func (d *Dispatcher) ActiveCount() int64 {
	return atomic.LoadInt64(&d.activeCount)
}

// IsShuttingDown returns true once Shutdown has been called.
func (d *Dispatcher) IsShuttingDown() bool {
	return d.isShutdown.Load()
}

// Shutdown stops accepting tasks and waits for running ones. When ctx ends
// first, the task context is cancelled and false is returned.
func (d *Dispatcher) Shutdown(ctx context.Context) bool {
	d.mu.Lock()
	d.isShutdown.Store(true)
	d.mu.Unlock()

	active := d.ActiveCount()
	if active == 0 {
		d.logger.Debug("no active tasks, shutdown immediate")
		d.cancel()
		return true
	}
	d.logger.Info("waiting for background tasks", zap.Int64("active", active))

	done := make(chan struct{})
	go func() {
		d.pending.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.cancel()
		return true
	case <-ctx.Done():
		d.cancel()
		d.logger.Warn("shutdown timed out", zap.Int64("active", d.ActiveCount()))
		return false
	}
}
