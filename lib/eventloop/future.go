// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package eventloop

import "sync"

// Result is the completion of an asynchronous operation. Exactly one
// of Value and Err is meaningful: Value when Err is nil.
type Result[T any] struct {
	Value T
	Err   error
}

// OK reports whether the operation succeeded.
func (r Result[T]) OK() bool { return r.Err == nil }

// Future is an in-flight operation whose Result arrives later.
type Future[T any] struct {
	loop *Loop

	mu        sync.Mutex
	completed bool
	result    Result[T]
	callbacks []func(Result[T])
}

// NewFuture returns an incomplete Future whose callbacks run on loop.
func NewFuture[T any](loop *Loop) *Future[T] {
	return &Future[T]{loop: loop}
}

// Completed returns a Future already completed with value and err.
func Completed[T any](loop *Loop, value T, err error) *Future[T] {
	future := NewFuture[T](loop)
	future.Complete(value, err)
	return future
}

// Go runs operation on a new goroutine and returns a Future for its
// outcome.
func Go[T any](loop *Loop, operation func() (T, error)) *Future[T] {
	future := NewFuture[T](loop)
	go func() {
		value, err := operation()
		future.Complete(value, err)
	}()
	return future
}

// Complete records the outcome and schedules every registered
// callback on the loop. Only the first call has any effect; it
// reports whether this call was the one that completed the Future.
func (f *Future[T]) Complete(value T, err error) bool {
	f.mu.Lock()
	if f.completed {
		f.mu.Unlock()
		return false
	}
	f.completed = true
	f.result = Result[T]{Value: value, Err: err}
	callbacks := f.callbacks
	f.callbacks = nil
	result := f.result
	f.mu.Unlock()

	for _, callback := range callbacks {
		f.loop.Post(func() { callback(result) })
	}
	return true
}

// Then registers callback to run on the loop once the Future
// completes. If it already has, callback is posted immediately.
// Callbacks run in registration order.
func (f *Future[T]) Then(callback func(Result[T])) {
	f.mu.Lock()
	if !f.completed {
		f.callbacks = append(f.callbacks, callback)
		f.mu.Unlock()
		return
	}
	result := f.result
	f.mu.Unlock()
	f.loop.Post(func() { callback(result) })
}

// Done reports whether the Future has completed.
func (f *Future[T]) Done() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.completed
}
