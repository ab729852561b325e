// Package dispatch marshals work from any goroutine onto one consumer
// goroutine, in post order.
package dispatch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// ErrClosed is returned when posting to a loop that has stopped.
var ErrClosed = errors.New("dispatch loop closed")

const (
	callPending int32 = iota
	callStarted
	callAbandoned
)

// Loop is an unbounded FIFO drained by a single goroutine.
type Loop struct {
	mu     sync.Mutex
	queue  []func()
	wake   chan struct{}
	closed bool
}

// NewLoop creates an empty loop. Call Run to start draining it.
func NewLoop() *Loop {
	return &Loop{wake: make(chan struct{}, 1)}
}

// Post enqueues fn without blocking. It is safe from any goroutine.
func (l *Loop) Post(fn func()) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return nil
}

// Call posts fn and waits until the loop has executed it.
// It must not be used from inside the loop goroutine.
//
// When ctx ends before fn starts, Call returns ctx.Err() and fn never runs.
// Once fn has started, Call waits for it and returns nil.
func (l *Loop) Call(ctx context.Context, fn func()) error {
	var state atomic.Int32
	done := make(chan struct{})
	if err := l.Post(func() {
		defer close(done)
		if state.CompareAndSwap(callPending, callStarted) {
			fn()
		}
	}); err != nil {
		return err
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		if state.CompareAndSwap(callPending, callAbandoned) {
			return ctx.Err()
		}
		<-done
		return nil
	}
}

// Run executes posted functions one at a time until ctx is done.
// Pending work is dropped once the loop stops.
func (l *Loop) Run(ctx context.Context) error {
	defer func() {
		l.mu.Lock()
		l.closed = true
		l.queue = nil
		l.mu.Unlock()
	}()

	for {
		for {
			fn, ok := l.next()
			if !ok {
				break
			}
			fn()
			if ctx.Err() != nil {
				return ctx.Err()
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}

// next pops the oldest queued function.
func (l *Loop) next() (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.queue) == 0 {
		return nil, false
	}
	fn := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	return fn, true
}
