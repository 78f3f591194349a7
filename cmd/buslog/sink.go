// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"

	"golang.org/x/sys/unix"

	"github.com/bureau-foundation/buslog/lib/debugmsg"
	"github.com/bureau-foundation/buslog/lib/debugstream"
)

// stdoutSink forwards to the stdout emitter and calls onClosed once
// when a write fails because the reader went away.
type stdoutSink struct {
	sink     debugstream.Sink
	onClosed func()
	closed   bool
}

func (s *stdoutSink) Emit(message debugmsg.Message) error {
	err := s.sink.Emit(message)
	if err != nil && !s.closed && errors.Is(err, unix.EPIPE) {
		s.closed = true
		if s.onClosed != nil {
			s.onClosed()
		}
	}
	return err
}

// fanout emits every message to each sink in order. A failing sink
// does not stop the others.
type fanout []debugstream.Sink

func (f fanout) Emit(message debugmsg.Message) error {
	var errs []error
	for _, sink := range f {
		if err := sink.Emit(message); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
