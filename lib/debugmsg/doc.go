// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package debugmsg defines the normalized debug message that flows from
// a peer's debug stream to the output sink.
//
// Peers publish records as (timestamp, domain, level, text) tuples on
// the Telepathy Debug interface. The wire timestamp is seconds since
// the epoch as a double, the wire domain carries an optional category
// after the first "/", and the wire level is a small enumeration.
// [FromWire] maps that tuple onto [Message], converting the level to
// the GLib log-level bitmask that [LevelString] renders.
package debugmsg
