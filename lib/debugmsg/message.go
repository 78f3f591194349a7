// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package debugmsg

import (
	"math"
	"strings"
	"time"
)

// Message is one debug record from one peer. Messages are immutable
// once constructed.
type Message struct {
	// Time is when the peer logged the message, at microsecond
	// precision.
	Time time.Time

	// Source is the unique name of the peer that produced the message.
	Source string

	// Domain is the log domain, without any category suffix.
	Domain string

	// Category is the part of the wire domain after the first "/".
	// Empty when the wire domain has no "/".
	Category string

	// Level is a GLib log-level bitmask.
	Level Level

	// Text is the message body with any trailing newline removed.
	Text string
}

// Record is the wire shape of a debug message: the element type of
// GetMessages' a(dsus) reply and the body of NewDebugMessage.
type Record struct {
	Timestamp float64
	Domain    string
	Level     uint32
	Message   string
}

// FromWire normalizes a wire record received from source.
func FromWire(source string, record Record) Message {
	domain, category, _ := strings.Cut(record.Domain, "/")
	return Message{
		Time:     timeFromSeconds(record.Timestamp),
		Source:   source,
		Domain:   domain,
		Category: category,
		Level:    LevelFromWire(record.Level),
		Text:     strings.TrimSuffix(record.Message, "\n"),
	}
}

// timeFromSeconds converts fractional epoch seconds to a time rounded
// to the nearest microsecond. Doubles carry about 15 significant
// digits, so rounding absorbs the representation error that would
// otherwise turn .000042 into .000041.
func timeFromSeconds(seconds float64) time.Time {
	return time.UnixMicro(int64(math.Round(seconds * 1e6)))
}

// Stamp returns t as microseconds since the Unix epoch.
func Stamp(t time.Time) int64 {
	return t.UnixMicro()
}
