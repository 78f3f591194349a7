// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package busconn

import (
	"fmt"
	"io"

	"github.com/godbus/dbus/v5"

	"github.com/bureau-foundation/buslog/lib/debugmsg"
	"github.com/bureau-foundation/buslog/lib/eventloop"
)

// Peer is a process exposing the debug interface, addressed by its
// unique name.
type Peer struct {
	conn   *Conn
	owner  string
	object dbus.BusObject
}

// Owner returns the peer's unique name.
func (p *Peer) Owner() string { return p.owner }

// SetEnabled sets the peer's Enabled property.
func (p *Peer) SetEnabled(enabled bool) *eventloop.Future[struct{}] {
	return eventloop.Go(p.conn.loop, func() (struct{}, error) {
		call := p.object.Call(propertiesSet, 0, p.conn.debug.Interface, propertyEnabled, dbus.MakeVariant(enabled))
		if call.Err != nil {
			return struct{}{}, fmt.Errorf("setting %s on %s: %w", propertyEnabled, p.owner, call.Err)
		}
		return struct{}{}, nil
	})
}

// GetMessages fetches the peer's buffered messages.
func (p *Peer) GetMessages() *eventloop.Future[[]debugmsg.Message] {
	return eventloop.Go(p.conn.loop, func() ([]debugmsg.Message, error) {
		var records []debugmsg.Record
		err := p.object.Call(p.conn.debug.Interface+"."+memberGetMessages, 0).Store(&records)
		if err != nil {
			return nil, fmt.Errorf("fetching messages from %s: %w", p.owner, err)
		}
		messages := make([]debugmsg.Message, len(records))
		for i, record := range records {
			messages[i] = debugmsg.FromWire(p.owner, record)
		}
		return messages, nil
	})
}

// Subscribe installs a match rule for the peer's NewDebugMessage
// signal. The handler is registered before the rule is added, so no
// signal delivered after the rule takes effect is missed. Call from
// the loop.
func (p *Peer) Subscribe(handler func(debugmsg.Message)) *eventloop.Future[io.Closer] {
	conn := p.conn
	id := conn.addDebugHandler(p.owner, handler)
	options := debugMessageMatch(p.owner, conn.debug)

	result := eventloop.NewFuture[io.Closer](conn.loop)
	eventloop.Go(conn.loop, func() (struct{}, error) {
		return struct{}{}, conn.conn.AddMatchSignal(options...)
	}).Then(func(added eventloop.Result[struct{}]) {
		if added.Err != nil {
			conn.removeDebugHandler(p.owner, id)
			result.Complete(nil, fmt.Errorf("subscribing to %s from %s: %w", memberNewDebugMessage, p.owner, added.Err))
			return
		}
		result.Complete(&watch{
			close: func() error {
				conn.removeDebugHandler(p.owner, id)
				// The peer may already be gone; removing its rule is
				// best-effort and must not block the loop.
				go func() { _ = conn.conn.RemoveMatchSignal(options...) }()
				return nil
			},
		}, nil)
	})
	return result
}
