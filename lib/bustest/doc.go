// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package bustest provides an in-memory message bus for tests of the
// discovery and subscription layers.
//
// [Bus] stands in for the bus daemon: it tracks name ownership,
// answers ListNames and GetNameOwner, and broadcasts ownership
// changes. [Peer] stands in for a process exposing the debug
// interface. Every reply is delivered through the event loop, so a
// test arranges state, runs [eventloop.Loop.RunUntilIdle], and then
// asserts. A "hang" option makes the corresponding call return a
// future that never completes.
//
// The fake is not safe for concurrent use. Drive it from the test
// goroutine, which is also the goroutine running the loop.
package bustest
