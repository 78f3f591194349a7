// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package debugmsg

import "strings"

// Level is a GLib log-level bitmask. A message normally carries a
// single level bit, possibly combined with the FATAL or RECURSION flag.
type Level uint32

// GLib log-level bits.
const (
	LevelRecursion Level = 1 << 0
	LevelFatal     Level = 1 << 1
	LevelError     Level = 1 << 2
	LevelCritical  Level = 1 << 3
	LevelWarning   Level = 1 << 4
	LevelMessage   Level = 1 << 5
	LevelInfo      Level = 1 << 6
	LevelDebug     Level = 1 << 7
)

// UnknownLevel is rendered when no recognized bit is set.
const UnknownLevel = "(level?)"

// levelNames is the rendering order. FATAL leads and RECURSION trails
// regardless of their bit positions.
var levelNames = []struct {
	bit  Level
	name string
}{
	{LevelFatal, "FATAL"},
	{LevelError, "ERROR"},
	{LevelCritical, "CRITICAL"},
	{LevelWarning, "WARNING"},
	{LevelMessage, "MESSAGE"},
	{LevelInfo, "INFO"},
	{LevelDebug, "DEBUG"},
	{LevelRecursion, "RECURSION"},
}

// LevelString renders every recognized bit of level, joined by "|".
// Returns [UnknownLevel] if none is set.
func LevelString(level Level) string {
	var bits []string
	for _, entry := range levelNames {
		if level&entry.bit != 0 {
			bits = append(bits, entry.name)
		}
	}
	if len(bits) == 0 {
		return UnknownLevel
	}
	return strings.Join(bits, "|")
}

// String implements fmt.Stringer.
func (l Level) String() string { return LevelString(l) }

// Wire debug levels as defined by the Telepathy Debug interface.
const (
	WireError    uint32 = 0
	WireCritical uint32 = 1
	WireWarning  uint32 = 2
	WireMessage  uint32 = 3
	WireInfo     uint32 = 4
	WireDebug    uint32 = 5
)

// LevelFromWire converts a wire debug level to its bitmask. Values
// outside the enumeration map to zero, which renders as
// [UnknownLevel].
func LevelFromWire(wire uint32) Level {
	switch wire {
	case WireError:
		return LevelError
	case WireCritical:
		return LevelCritical
	case WireWarning:
		return LevelWarning
	case WireMessage:
		return LevelMessage
	case WireInfo:
		return LevelInfo
	case WireDebug:
		return LevelDebug
	default:
		return 0
	}
}

// LevelToWire is the inverse of [LevelFromWire] for single-bit levels.
// Masks with no recognized level bit report DEBUG, matching the sender
// side of the Debug interface.
func LevelToWire(level Level) uint32 {
	switch {
	case level&LevelError != 0:
		return WireError
	case level&LevelCritical != 0:
		return WireCritical
	case level&LevelWarning != 0:
		return WireWarning
	case level&LevelMessage != 0:
		return WireMessage
	case level&LevelInfo != 0:
		return WireInfo
	default:
		return WireDebug
	}
}
