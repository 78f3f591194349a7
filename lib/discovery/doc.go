// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package discovery finds debuggable processes on the bus and hands
// them to the debug stream subscriber.
//
// The [Coordinator] tracks every interesting well-known name through a
// small state machine:
//
//	unresolved ──lookup──▶ resolving ──owner──▶ resolved ──▶ registered
//	     │                     │                    └──────▶ rejected
//	     └───known owner───────┼──────────────────▶ resolved
//	                           └──no owner────────▶ dropped
//
// Startup subscribes to NameOwnerChanged before listing names, so a
// name claimed between the two steps is still seen. Every resolved
// owner goes through [registry.Registry.TryRegister]; the coordinator
// does no de-duplication of its own, which makes a notification racing
// the initial enumeration harmless.
//
// A lookup that finds no owner is logged and dropped: the process is
// assumed gone, and if it comes back its new claim arrives as a
// NameOwnerChanged. When a unique name leaves the bus the registry
// entry for it is forgotten, closing its live subscription.
//
// All methods must be called from the event loop goroutine (or before
// the loop starts running).
package discovery
