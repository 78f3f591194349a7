// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package debugstream

import (
	"io"
	"log/slog"

	"github.com/bureau-foundation/buslog/lib/debugmsg"
	"github.com/bureau-foundation/buslog/lib/eventloop"
	"github.com/bureau-foundation/buslog/lib/registry"
)

// Peer is the collector's view of one process exposing the debug
// interface. Futures complete on the loop the peer was created for,
// and the Subscribe handler is invoked on that loop.
type Peer interface {
	// Owner returns the unique name the peer is addressed by.
	Owner() string

	// SetEnabled toggles the peer's live forwarding.
	SetEnabled(enabled bool) *eventloop.Future[struct{}]

	// GetMessages fetches the peer's buffered history, oldest first.
	GetMessages() *eventloop.Future[[]debugmsg.Message]

	// Subscribe registers handler for every message the peer emits
	// from now on. Closing the returned subscription stops delivery.
	Subscribe(handler func(debugmsg.Message)) *eventloop.Future[io.Closer]
}

// Sink receives normalized messages. emitter.Emitter implements it.
type Sink interface {
	Emit(message debugmsg.Message) error
}

// Stats counts subscriber activity. Read it from the loop goroutine.
type Stats struct {
	Started         int
	EnableFailures  int
	HistoryFailures int
	LiveFailures    int
	HistoryMessages int
	LiveMessages    int
}

// Subscriber starts debug streams for registered peers.
type Subscriber struct {
	registry *registry.Registry
	sink     Sink
	logger   *slog.Logger

	stats      Stats
	sinkFailed bool
}

// New returns a Subscriber that records peer state in registry and
// writes messages to sink.
func New(registry *registry.Registry, sink Sink, logger *slog.Logger) *Subscriber {
	return &Subscriber{
		registry: registry,
		sink:     sink,
		logger:   logger,
	}
}

// Start launches enable, history, and live subscription for peer. The
// peer must already be registered. Call only from the loop.
func (s *Subscriber) Start(peer Peer) {
	owner := peer.Owner()
	logger := s.logger.With("peer", owner)
	s.stats.Started++

	peer.SetEnabled(true).Then(func(result eventloop.Result[struct{}]) {
		if result.Err != nil {
			s.stats.EnableFailures++
			logger.Warn("unable to enable debug client", "error", result.Err)
			return
		}
		s.registry.MarkEnabled(owner)
		logger.Debug("debug forwarding enabled")
	})

	peer.GetMessages().Then(func(result eventloop.Result[[]debugmsg.Message]) {
		if result.Err != nil {
			s.stats.HistoryFailures++
			logger.Warn("unable to fetch buffered debug messages", "error", result.Err)
			return
		}
		logger.Debug("fetched buffered debug messages", "count", len(result.Value))
		for _, message := range result.Value {
			s.stats.HistoryMessages++
			s.emit(message)
		}
	})

	peer.Subscribe(func(message debugmsg.Message) {
		s.stats.LiveMessages++
		s.emit(message)
	}).Then(func(result eventloop.Result[io.Closer]) {
		if result.Err != nil {
			s.stats.LiveFailures++
			logger.Warn("unable to subscribe to live debug messages", "error", result.Err)
			return
		}
		s.registry.Attach(owner, result.Value)
	})
}

// Stats returns a snapshot of the counters.
func (s *Subscriber) Stats() Stats {
	return s.stats
}

// emit forwards message to the sink. Sink failures are logged once.
func (s *Subscriber) emit(message debugmsg.Message) {
	if err := s.sink.Emit(message); err != nil && !s.sinkFailed {
		s.sinkFailed = true
		s.logger.Error("writing debug message", "peer", message.Source, "error", err)
	}
}
