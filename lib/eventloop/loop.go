// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package eventloop

import (
	"context"
	"sync"
)

// Loop is a serial callback executor.
type Loop struct {
	mu    sync.Mutex
	queue []func()

	// wake has capacity 1. Post does a non-blocking send so that a
	// sleeping Run notices new work; extra wakeups coalesce.
	wake chan struct{}
}

// New returns an idle Loop.
func New() *Loop {
	return &Loop{wake: make(chan struct{}, 1)}
}

// Post queues callback to run on the loop. Safe to call from any
// goroutine, including from inside a callback. Never blocks.
func (l *Loop) Post(callback func()) {
	l.mu.Lock()
	l.queue = append(l.queue, callback)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Run executes callbacks until ctx is done. Callbacks still queued at
// that point are discarded. Run must not be called concurrently with
// itself or with RunUntilIdle.
func (l *Loop) Run(ctx context.Context) error {
	for {
		batch := l.take()
		if len(batch) == 0 {
			select {
			case <-ctx.Done():
				return nil
			case <-l.wake:
				continue
			}
		}
		for _, callback := range batch {
			if ctx.Err() != nil {
				return nil
			}
			callback()
		}
	}
}

// RunUntilIdle executes callbacks, including ones posted while
// running, until the queue is empty. Returns the number executed.
// Intended for tests that drive the loop deterministically.
func (l *Loop) RunUntilIdle() int {
	executed := 0
	for {
		batch := l.take()
		if len(batch) == 0 {
			return executed
		}
		for _, callback := range batch {
			callback()
			executed++
		}
	}
}

// Pending returns the number of queued callbacks.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

func (l *Loop) take() []func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	batch := l.queue
	l.queue = nil
	return batch
}
