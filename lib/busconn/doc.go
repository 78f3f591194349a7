// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package busconn binds the collector to a real D-Bus connection
// using github.com/godbus/dbus/v5.
//
// [Conn] implements the discovery Directory and PeerFactory
// interfaces. Method calls block, so each one runs on its own
// goroutine through [eventloop.Go] and completes on the event loop.
// Signals arrive on a single dispatch goroutine that decodes them and
// posts the handler invocations to the loop. Handler tables are only
// touched on the loop.
//
// Bus objects used:
//
//	org.freedesktop.DBus            /org/freedesktop/DBus
//	    ListNames() -> as
//	    GetNameOwner(s) -> s
//	    signal NameOwnerChanged(s, s, s)
//
//	<peer>                          /org/freedesktop/Telepathy/debug
//	    org.freedesktop.DBus.Properties.Set(s, "Enabled", v)
//	    org.freedesktop.Telepathy.Debug.GetMessages() -> a(dsus)
//	    signal org.freedesktop.Telepathy.Debug.NewDebugMessage(d, s, u, s)
//
// The debug object path and interface name are configurable.
package busconn
