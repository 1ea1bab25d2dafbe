package core

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestDispatcherRunsTasks(t *testing.T) {
	d := NewDispatcher(4, nil)

	var ran int32
	for i := 0; i < 3; i++ {
		if !d.Go("count", func(ctx context.Context) error {
			atomic.AddInt32(&ran, 1)
			return nil
		}) {
			t.Fatal("Go() = false, want true")
		}
	}

	if !d.Shutdown(context.Background()) {
		t.Fatal("Shutdown() = false, want true")
	}
	if got := atomic.LoadInt32(&ran); got != 3 {
		t.Errorf("ran %d tasks, want 3", got)
	}
	if got := d.ActiveCount(); got != 0 {
		t.Errorf("ActiveCount() = %d after shutdown, want 0", got)
	}
}

func TestDispatcherQueuesWhenSaturated(t *testing.T) {
	d := NewDispatcher(1, nil)
	release := make(chan struct{})

	if !d.Go("blocker", func(ctx context.Context) error {
		<-release
		return nil
	}) {
		t.Fatal("first Go() = false, want true")
	}

	const queued = 5
	var ran int32
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < queued; i++ {
			if !d.Go("queued", func(ctx context.Context) error {
				atomic.AddInt32(&ran, 1)
				return nil
			}) {
				t.Error("Go() on saturated dispatcher = false, want true")
			}
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Go() blocked on a saturated dispatcher")
	}
	if got := atomic.LoadInt32(&ran); got != 0 {
		t.Errorf("%d queued tasks ran while the only slot was busy", got)
	}
	if got := d.ActiveCount(); got != queued+1 {
		t.Errorf("ActiveCount() = %d, want %d", got, queued+1)
	}

	close(release)
	if !d.Shutdown(context.Background()) {
		t.Fatal("Shutdown() = false, want true")
	}
	if got := atomic.LoadInt32(&ran); got != queued {
		t.Errorf("ran %d queued tasks, want %d", got, queued)
	}
}

func TestDispatcherSwallowsErrorsAndPanics(t *testing.T) {
	d := NewDispatcher(0, nil)
	d.Go("fails", func(ctx context.Context) error { return errors.New("boom") })
	d.Go("panics", func(ctx context.Context) error { panic("boom") })

	var after int32
	d.Go("after", func(ctx context.Context) error {
		atomic.StoreInt32(&after, 1)
		return nil
	})

	if !d.Shutdown(context.Background()) {
		t.Fatal("Shutdown() = false, want true")
	}
	if atomic.LoadInt32(&after) != 1 {
		t.Error("task after a failing task did not run")
	}
}

func TestDispatcherRejectsAfterShutdown(t *testing.T) {
	d := NewDispatcher(2, nil)
	d.Shutdown(context.Background())

	if d.Go("late", func(ctx context.Context) error { return nil }) {
		t.Error("Go() after Shutdown = true, want false")
	}
	if !d.IsShuttingDown() {
		t.Error("IsShuttingDown() = false after Shutdown")
	}
}

func TestDispatcherShutdownTimeoutCancelsTasks(t *testing.T) {
	d := NewDispatcher(1, nil)
	cancelled := make(chan struct{})
	d.Go("slow", func(ctx context.Context) error {
		<-ctx.Done()
		close(cancelled)
		return ctx.Err()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if d.Shutdown(ctx) {
		t.Error("Shutdown() = true while a task was still running")
	}

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("task context was not cancelled on shutdown timeout")
	}
}
