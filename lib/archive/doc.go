// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package archive writes a compressed copy of the collected records
// to a file alongside the live output on stdout.
//
// An archive is a CBOR sequence of emitter records, optionally wrapped
// in a zstd or LZ4 frame stream. [Writer] also keeps a BLAKE3 digest
// of the uncompressed bytes, so an archive can be identified
// independently of the compression it was stored with. [Open] reverses
// the compression for readers.
package archive
