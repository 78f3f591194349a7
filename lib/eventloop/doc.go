// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package eventloop runs the collector's logic on one logical thread.
//
// A [Loop] executes posted callbacks one at a time, in posting order,
// on the goroutine that calls [Loop.Run]. Any goroutine may [Loop.Post]
// without blocking: the queue is unbounded. State that is only touched
// from callbacks needs no locking.
//
// Blocking work (bus round trips) happens elsewhere and reports back
// through a [Future]. A Future is completed exactly once, from any
// goroutine, with a [Result] carrying either a value or an error.
// Callbacks registered with [Future.Then] always run on the loop, never
// on the completing goroutine:
//
//	eventloop.Go(loop, func() ([]string, error) {
//	    return directory.ListNames()
//	}).Then(func(result eventloop.Result[[]string]) {
//	    if result.Err != nil { ... }
//	    for _, name := range result.Value { ... }
//	})
//
// There is no cancellation and no timeout. A Future that is never
// completed simply never runs its callbacks, and does not hold up any
// other Future.
package eventloop
