// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package debugstream subscribes the collector to one debuggable peer.
//
// [Subscriber.Start] launches three operations against a [Peer] at
// once, none waiting on the others:
//
//   - enable: ask the peer to start emitting NewDebugMessage signals;
//   - history: fetch the messages the peer has buffered so far;
//   - live: register for NewDebugMessage signals from the peer.
//
// Failures are logged with the peer's identity and are permanent for
// that peer: nothing is retried and the peer stays registered. A peer
// that reconnects gets a new unique name and goes through discovery
// again.
//
// History and live messages share one sink with no ordering between
// them, so a peer's replayed history can interleave with live traffic
// (its own or other peers').
package debugstream
