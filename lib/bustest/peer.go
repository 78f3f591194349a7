// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bustest

import (
	"io"
	"sort"

	"github.com/bureau-foundation/buslog/lib/debugmsg"
	"github.com/bureau-foundation/buslog/lib/eventloop"
)

// Peer is a fake process exposing the debug interface. Set the
// exported fields before the collector reaches the peer.
type Peer struct {
	loop  *eventloop.Loop
	owner string

	// History is returned by GetMessages. Like live messages, each
	// entry is encoded as a wire record and decoded again, so it
	// arrives attributed to the peer's owner with a wire level.
	History []debugmsg.Message

	EnableErr    error
	HistoryErr   error
	SubscribeErr error

	HangEnable    bool
	HangHistory   bool
	HangSubscribe bool

	enabled  bool
	handlers map[int]func(debugmsg.Message)
	nextID   int

	enableCalls    int
	historyCalls   int
	subscribeCalls int
}

func newPeer(loop *eventloop.Loop, owner string) *Peer {
	return &Peer{
		loop:     loop,
		owner:    owner,
		handlers: make(map[int]func(debugmsg.Message)),
	}
}

// Owner returns the peer's unique name.
func (p *Peer) Owner() string { return p.owner }

// SetEnabled records the forwarding state.
func (p *Peer) SetEnabled(enabled bool) *eventloop.Future[struct{}] {
	p.enableCalls++
	if p.HangEnable {
		return eventloop.NewFuture[struct{}](p.loop)
	}
	if p.EnableErr != nil {
		return eventloop.Completed(p.loop, struct{}{}, p.EnableErr)
	}
	p.enabled = enabled
	return eventloop.Completed(p.loop, struct{}{}, nil)
}

// GetMessages returns a copy of History.
func (p *Peer) GetMessages() *eventloop.Future[[]debugmsg.Message] {
	p.historyCalls++
	if p.HangHistory {
		return eventloop.NewFuture[[]debugmsg.Message](p.loop)
	}
	if p.HistoryErr != nil {
		return eventloop.Completed[[]debugmsg.Message](p.loop, nil, p.HistoryErr)
	}
	history := make([]debugmsg.Message, len(p.History))
	for i, message := range p.History {
		history[i] = p.viaWire(message)
	}
	return eventloop.Completed(p.loop, history, nil)
}

// Subscribe registers handler for live messages.
func (p *Peer) Subscribe(handler func(debugmsg.Message)) *eventloop.Future[io.Closer] {
	p.subscribeCalls++
	if p.HangSubscribe {
		return eventloop.NewFuture[io.Closer](p.loop)
	}
	if p.SubscribeErr != nil {
		return eventloop.Completed[io.Closer](p.loop, nil, p.SubscribeErr)
	}
	id := p.nextID
	p.nextID++
	p.handlers[id] = handler
	var subscription io.Closer = closerFunc(func() error {
		delete(p.handlers, id)
		return nil
	})
	return eventloop.Completed(p.loop, subscription, nil)
}

// Log emits message as a live signal. Like a real peer, nothing is
// sent unless forwarding is enabled. Reports whether the signal was
// sent.
func (p *Peer) Log(message debugmsg.Message) bool {
	if !p.enabled {
		return false
	}
	message = p.viaWire(message)
	ids := make([]int, 0, len(p.handlers))
	for id := range p.handlers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		handler := p.handlers[id]
		p.loop.Post(func() { handler(message) })
	}
	return true
}

// Enabled reports whether forwarding is on.
func (p *Peer) Enabled() bool { return p.enabled }

// Subscribers returns the number of open live subscriptions.
func (p *Peer) Subscribers() int { return len(p.handlers) }

// EnableCalls returns how many times SetEnabled was called.
func (p *Peer) EnableCalls() int { return p.enableCalls }

// HistoryCalls returns how many times GetMessages was called.
func (p *Peer) HistoryCalls() int { return p.historyCalls }

// SubscribeCalls returns how many times Subscribe was called.
func (p *Peer) SubscribeCalls() int { return p.subscribeCalls }

// viaWire sends message through the Debug interface encoding.
func (p *Peer) viaWire(message debugmsg.Message) debugmsg.Message {
	domain := message.Domain
	if message.Category != "" {
		domain += "/" + message.Category
	}
	return debugmsg.FromWire(p.owner, debugmsg.Record{
		Timestamp: float64(message.Time.UnixMicro()) / 1e6,
		Domain:    domain,
		Level:     debugmsg.LevelToWire(message.Level),
		Message:   message.Text,
	})
}
