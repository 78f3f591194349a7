// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package debugmsg

import (
	"testing"
	"time"
)

func TestLevelString(t *testing.T) {
	tests := []struct {
		name  string
		level Level
		want  string
	}{
		{"warning", LevelWarning, "WARNING"},
		{"warning and info", LevelWarning | LevelInfo, "WARNING|INFO"},
		{"info and warning given in reverse", LevelInfo | LevelWarning, "WARNING|INFO"},
		{"fatal error", LevelFatal | LevelError, "FATAL|ERROR"},
		{"recursion trails", LevelRecursion | LevelDebug, "DEBUG|RECURSION"},
		{"raw sixteen", Level(16), "WARNING"},
		{"zero", 0, UnknownLevel},
		{"unrecognized bits", Level(1 << 12), UnknownLevel},
		{"all bits", 0xff, "FATAL|ERROR|CRITICAL|WARNING|MESSAGE|INFO|DEBUG|RECURSION"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := LevelString(test.level); got != test.want {
				t.Errorf("LevelString(%d) = %q, want %q", test.level, got, test.want)
			}
		})
	}
}

func TestLevelFromWire(t *testing.T) {
	tests := []struct {
		wire uint32
		want Level
	}{
		{WireError, LevelError},
		{WireCritical, LevelCritical},
		{WireWarning, LevelWarning},
		{WireMessage, LevelMessage},
		{WireInfo, LevelInfo},
		{WireDebug, LevelDebug},
		{6, 0},
		{1000, 0},
	}
	for _, test := range tests {
		if got := LevelFromWire(test.wire); got != test.want {
			t.Errorf("LevelFromWire(%d) = %d, want %d", test.wire, got, test.want)
		}
		if test.want != 0 {
			if back := LevelToWire(test.want); back != test.wire {
				t.Errorf("LevelToWire(%d) = %d, want %d", test.want, back, test.wire)
			}
		}
	}
	if got := LevelToWire(0); got != WireDebug {
		t.Errorf("LevelToWire(0) = %d, want %d", got, WireDebug)
	}
}

func TestFromWire(t *testing.T) {
	message := FromWire(":1.5", Record{
		Timestamp: 1360000000.000042,
		Domain:    "gabble/connection",
		Level:     WireDebug,
		Message:   "connected\n",
	})

	if message.Source != ":1.5" {
		t.Errorf("Source = %q, want :1.5", message.Source)
	}
	if message.Domain != "gabble" || message.Category != "connection" {
		t.Errorf("Domain/Category = %q/%q, want gabble/connection", message.Domain, message.Category)
	}
	if message.Level != LevelDebug {
		t.Errorf("Level = %d, want %d", message.Level, LevelDebug)
	}
	if message.Text != "connected" {
		t.Errorf("Text = %q, want %q", message.Text, "connected")
	}
	want := time.Unix(1360000000, 42000)
	if !message.Time.Equal(want) {
		t.Errorf("Time = %v, want %v", message.Time, want)
	}
	if Stamp(message.Time) != 1360000000000042 {
		t.Errorf("Stamp = %d, want 1360000000000042", Stamp(message.Time))
	}
}

func TestFromWireWithoutCategory(t *testing.T) {
	message := FromWire(":1.6", Record{Domain: "domain1", Level: WireMessage, Message: "message1\n"})
	if message.Domain != "domain1" {
		t.Errorf("Domain = %q, want domain1", message.Domain)
	}
	if message.Category != "" {
		t.Errorf("Category = %q, want empty", message.Category)
	}
	if message.Text != "message1" {
		t.Errorf("Text = %q, want message1", message.Text)
	}
}

func TestFromWireSplitsAtFirstSlash(t *testing.T) {
	message := FromWire(":1.6", Record{Domain: "a/b/c"})
	if message.Domain != "a" || message.Category != "b/c" {
		t.Errorf("Domain/Category = %q/%q, want a/b/c split as a + b/c", message.Domain, message.Category)
	}
}
