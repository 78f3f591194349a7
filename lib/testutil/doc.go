// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for collector packages.
//
// [RequireReceive], [RequireSend], and [RequireClosed] encapsulate the
// timeout safety valve pattern (select with time.After fallback) so
// that individual tests do not need direct time.After calls. They are
// the only place in the test suite where wall-clock timeouts appear,
// and they exist to turn a hang into a failure, not to synchronize.
//
// [UniqueName] hands out bus unique names (":1.N") that never repeat
// within a test binary, mirroring the bus daemon's guarantee that a
// unique name is never reused.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
//
// This package has no collector-internal dependencies.
package testutil
