// Package poller runs a task immediately and then again a fixed interval
// after each run completes. Runs of one Handle never overlap.
package poller

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Task is one invocation. ctx is cancelled when the handle is stopped.
type Task func(ctx context.Context) error

// Observer is told about every finished run.
type Observer func(name string, took time.Duration, err error)

type options struct {
	observers []Observer
}

// Option configures Start.
type Option func(*options)

// WithObserver registers fn to be called after each run.
func WithObserver(fn Observer) Option {
	return func(o *options) {
		if fn != nil {
			o.observers = append(o.observers, fn)
		}
	}
}

// Handle controls one running poll loop.
type Handle struct {
	name   string
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Start launches task in its own goroutine. An interval <= 0 runs task once.
func Start(parent context.Context, name string, task Task, interval time.Duration, opts ...Option) *Handle {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	ctx, cancel := context.WithCancel(parent)
	h := &Handle{name: name, ctx: ctx, cancel: cancel, done: make(chan struct{})}
	go h.loop(task, interval, o.observers)
	return h
}

func (h *Handle) loop(task Task, interval time.Duration, observers []Observer) {
	defer close(h.done)
	defer h.cancel()

	var timer *time.Timer
	for {
		start := time.Now()
		err := run(h.ctx, task)
		took := time.Since(start)
		for _, fn := range observers {
			fn(h.name, took, err)
		}

		if interval <= 0 || h.ctx.Err() != nil {
			return
		}

		if timer == nil {
			timer = time.NewTimer(interval)
			defer timer.Stop()
		} else {
			timer.Reset(interval)
		}
		select {
		case <-h.ctx.Done():
			return
		case <-timer.C:
		}
	}
}

func run(ctx context.Context, task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("poller: task panic: %v", r)
		}
	}()
	return task(ctx)
}

// Stop cancels future runs and the context of an in-flight one. It does not
// wait; use Done for that. Safe to call repeatedly and on a nil Handle.
func (h *Handle) Stop() {
	if h == nil {
		return
	}
	h.once.Do(h.cancel)
}

// Done is closed once the loop has exited.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Context is cancelled by Stop.
func (h *Handle) Context() context.Context { return h.ctx }

// Active reports whether the handle has not been stopped.
func (h *Handle) Active() bool {
	return h != nil && h.ctx.Err() == nil
}

// Name returns the name given to Start.
func (h *Handle) Name() string { return h.name }
