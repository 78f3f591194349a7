// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// buslog collects the debug streams of every Telepathy process on the
// bus and prints them, one line per message, to stdout.
//
// Usage:
//
//	buslog [--json]
//
// On startup buslog watches NameOwnerChanged, lists the names on the
// bus, and resolves each name under the im.telepathy.v1 prefix to its
// owner. Each distinct owner is asked to enable its debug interface;
// its buffered history is printed, followed by live messages until
// buslog is interrupted. Processes that start later are picked up from
// their ownership announcements.
//
// Text lines look like:
//
//	2013-02-04 17:12:03.000042 :1.5 gabble/connection WARNING: connecting
//
// With --json each line is an object with fields time, usec
// (microseconds since the first printed message), uniqueName, domain,
// category, level (GLib bitmask), message, and stamp (microseconds
// since the Unix epoch).
//
// Diagnostics go to stderr through slog. An optional config file
// named by BUSLOG_CONFIG selects the bus, the name prefix, the debug
// object, the output format (including a CBOR sequence), and level
// colors; see lib/config.
package main
