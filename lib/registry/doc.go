// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package registry tracks which debuggable processes the collector has
// already subscribed to.
//
// Entries are keyed by owner identity (the bus-assigned unique name),
// never by well-known name: one process may own several interesting
// names, and a well-known name may change owner. [Registry.TryRegister]
// is idempotent so that the initial enumeration and a racing
// ownership-change notification can both deliver the same owner
// without producing a second subscription.
//
// The registry is not safe for concurrent use. The collector confines
// it to the event loop goroutine.
package registry
