// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package busname classifies bus names for the collector.
//
// A well-known name is human-chosen and reusable: it may be owned by
// zero or one connection at a time and changes hands as processes come
// and go. A unique name (":1.42") is assigned by the bus to a single
// connection and is never reused, which makes it the only stable key
// for a debuggable process.
//
// [Filter] decides whether a well-known name belongs to the target
// application namespace. It is a pure prefix test; it does not touch
// the bus.
package busname
