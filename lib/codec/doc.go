// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the collector's CBOR encoding configuration.
//
// The collector writes its machine-readable log in one of two formats:
// JSON lines for people and shell pipelines, and a CBOR sequence (RFC
// 8742) for consumers that want compact, typed records. This package
// holds the shared CBOR modes so that every writer encodes the same
// record identically. The encoder uses Core Deterministic Encoding
// (RFC 8949 §4.2): sorted map keys, smallest integer encoding, no
// indefinite-length items.
//
// Record types carry `json` struct tags only. fxamacker/cbor reads
// them when `cbor` tags are absent, so one tag set names the fields in
// both output formats.
package codec
