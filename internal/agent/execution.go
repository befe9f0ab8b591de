package agent

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

var errUnsupportedScheme = errors.New("unsupported scheme, want http or https")

// ErrTasksClosed is returned by Tasks.Go after Drain has started.
var ErrTasksClosed = errors.New("agent: background tasks closed")

// ExecutionContext lets a handler schedule work that outlives the response.
type ExecutionContext interface {
	// WaitUntil runs fn in the background. The server waits for it during shutdown.
	WaitUntil(fn func(ctx context.Context))
}

// Tasks tracks background work scheduled through ExecutionContext.
type Tasks struct {
	log *zap.Logger

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// NewTasks creates an empty task group.
func NewTasks(log *zap.Logger) *Tasks {
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Tasks{log: log, ctx: ctx, cancel: cancel}
}

// Go starts fn unless the group is draining.
func (t *Tasks) Go(fn func(ctx context.Context)) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return ErrTasksClosed
	}
	t.wg.Add(1)
	t.mu.Unlock()

	go func() {
		defer t.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				t.log.Error("background_task_panicked", zap.Any("error", r))
			}
		}()
		fn(t.ctx)
	}()
	return nil
}

// Drain stops accepting work and waits for running tasks. When ctx expires first the tasks'
// context is cancelled and ctx.Err() is returned.
func (t *Tasks) Drain(ctx context.Context) error {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()

	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		t.cancel()
		return nil
	case <-ctx.Done():
		t.cancel()
		return ctx.Err()
	}
}

// Context returns an ExecutionContext bound to the group.
func (t *Tasks) Context() ExecutionContext {
	return taskContext{tasks: t}
}

type taskContext struct {
	tasks *Tasks
}

func (c taskContext) WaitUntil(fn func(ctx context.Context)) {
	if err := c.tasks.Go(fn); err != nil {
		c.tasks.log.Warn("background_task_rejected", zap.Error(err))
	}
}
