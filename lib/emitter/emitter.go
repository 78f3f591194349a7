// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package emitter

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bureau-foundation/buslog/lib/codec"
	"github.com/bureau-foundation/buslog/lib/debugmsg"
)

// Format selects the output encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatCBOR Format = "cbor"
)

// ParseFormat validates a format name.
func ParseFormat(name string) (Format, error) {
	switch format := Format(name); format {
	case FormatText, FormatJSON, FormatCBOR:
		return format, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, json, or cbor)", name)
	}
}

// timeLayout is the date and time part shared by every format.
const timeLayout = "2006-01-02 15:04:05"

// Record is the machine-readable form of one message.
type Record struct {
	// Time is the message time formatted as "YYYY-MM-DD HH:MM:SS".
	Time string `json:"time"`

	// Usec is the offset from the emitter's time origin in
	// microseconds.
	Usec int64 `json:"usec"`

	UniqueName string `json:"uniqueName"`
	Domain     string `json:"domain"`
	Category   string `json:"category"`

	// Level is the raw GLib log-level bitmask.
	Level uint32 `json:"level"`

	Message string `json:"message"`

	// Stamp is the message time in microseconds since the Unix epoch.
	Stamp int64 `json:"stamp"`
}

// Options configures an Emitter.
type Options struct {
	// Format defaults to FormatText.
	Format Format

	// Location is the zone timestamps are rendered in. Defaults to
	// time.Local.
	Location *time.Location

	// Styles colors level labels in text output. Nil means plain text.
	Styles *LevelStyles
}

// Emitter writes messages to an output stream.
type Emitter struct {
	out      io.Writer
	format   Format
	location *time.Location
	styles   *LevelStyles

	json *json.Encoder
	cbor *codec.Encoder

	origin    time.Time
	originSet bool
	emitted   uint64
}

// New returns an Emitter writing to out.
func New(out io.Writer, options Options) *Emitter {
	emitter := &Emitter{
		out:      out,
		format:   options.Format,
		location: options.Location,
		styles:   options.Styles,
	}
	if emitter.format == "" {
		emitter.format = FormatText
	}
	if emitter.location == nil {
		emitter.location = time.Local
	}
	switch emitter.format {
	case FormatJSON:
		emitter.json = json.NewEncoder(out)
		emitter.json.SetEscapeHTML(false)
	case FormatCBOR:
		emitter.cbor = codec.NewEncoder(out)
	}
	return emitter
}

// Emit writes message. The first call fixes the time origin.
func (e *Emitter) Emit(message debugmsg.Message) error {
	if !e.originSet {
		e.origin = message.Time
		e.originSet = true
	}
	e.emitted++

	switch e.format {
	case FormatJSON:
		if err := e.json.Encode(e.record(message)); err != nil {
			return fmt.Errorf("writing json record: %w", err)
		}
	case FormatCBOR:
		if err := e.cbor.Encode(e.record(message)); err != nil {
			return fmt.Errorf("writing cbor record: %w", err)
		}
	default:
		line := e.textLine(message)
		if _, err := io.WriteString(e.out, line); err != nil {
			return fmt.Errorf("writing text line: %w", err)
		}
	}
	return nil
}

// TimeOrigin returns the origin and whether it has been set.
func (e *Emitter) TimeOrigin() (time.Time, bool) {
	return e.origin, e.originSet
}

// Emitted returns the number of messages passed to Emit.
func (e *Emitter) Emitted() uint64 {
	return e.emitted
}

func (e *Emitter) record(message debugmsg.Message) Record {
	return NewRecord(message, e.origin, e.location)
}

func (e *Emitter) textLine(message debugmsg.Message) string {
	label := debugmsg.LevelString(message.Level)
	if e.styles != nil {
		label = e.styles.Render(message.Level, label)
	}
	return formatText(message, label, e.location) + "\n"
}

// NewRecord builds the machine-readable record for message relative
// to origin.
func NewRecord(message debugmsg.Message, origin time.Time, location *time.Location) Record {
	stamp := debugmsg.Stamp(message.Time)
	return Record{
		Time:       message.Time.In(location).Format(timeLayout),
		Usec:       stamp - debugmsg.Stamp(origin),
		UniqueName: message.Source,
		Domain:     message.Domain,
		Category:   message.Category,
		Level:      uint32(message.Level),
		Message:    message.Text,
		Stamp:      stamp,
	}
}

// PlainText renders message as a single text line without a trailing
// newline and without styling.
func PlainText(message debugmsg.Message, location *time.Location) string {
	return formatText(message, debugmsg.LevelString(message.Level), location)
}

func formatText(message debugmsg.Message, label string, location *time.Location) string {
	var builder strings.Builder
	local := message.Time.In(location)
	builder.WriteString(local.Format(timeLayout))
	builder.WriteByte('.')
	builder.WriteString(ZeroPad(local.Nanosecond() / 1000))
	builder.WriteByte(' ')
	builder.WriteString(message.Source)
	builder.WriteByte(' ')
	builder.WriteString(message.Domain)
	if message.Category != "" {
		builder.WriteByte('/')
		builder.WriteString(message.Category)
	}
	builder.WriteByte(' ')
	builder.WriteString(label)
	builder.WriteString(": ")
	builder.WriteString(message.Text)
	return builder.String()
}

// ZeroPad renders a microsecond count as at least six digits.
func ZeroPad(microseconds int) string {
	return fmt.Sprintf("%06d", microseconds)
}
