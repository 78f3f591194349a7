// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package emitter renders debug messages onto the collector's output
// stream.
//
// Three formats are supported:
//
//   - [FormatText]: one human-readable line per message,
//     "2013-02-04 17:12:03.000042 :1.5 gabble/connection DEBUG: text".
//   - [FormatJSON]: one JSON object per line (see [Record]).
//   - [FormatCBOR]: the same records as a CBOR sequence.
//
// An [Emitter] owns the time origin: the timestamp of the first
// message it ever emits. JSON and CBOR records carry each message's
// offset from that origin in microseconds. The origin is set once and
// never moves, so a peer replaying older history after a live message
// produces negative offsets rather than re-basing the stream.
//
// An Emitter is not safe for concurrent use; the collector calls it
// only from the event loop goroutine.
package emitter
