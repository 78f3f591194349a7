// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package busconn

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/godbus/dbus/v5"

	"github.com/bureau-foundation/buslog/lib/busname"
	"github.com/bureau-foundation/buslog/lib/config"
	"github.com/bureau-foundation/buslog/lib/debugmsg"
	"github.com/bureau-foundation/buslog/lib/debugstream"
	"github.com/bureau-foundation/buslog/lib/eventloop"
)

// Options configures [Dial].
type Options struct {
	Bus    config.BusConfig
	Debug  config.DebugConfig
	Loop   *eventloop.Loop
	Logger *slog.Logger
}

// Conn is a bus connection bound to an event loop.
type Conn struct {
	conn   *dbus.Conn
	loop   *eventloop.Loop
	logger *slog.Logger
	debug  config.DebugConfig

	signals chan *dbus.Signal
	done    chan struct{}

	// Loop-confined handler tables.
	ownerWatchers map[int]func(busname.OwnerChange)
	debugHandlers map[string]map[int]func(debugmsg.Message)
	nextID        int

	closeOnce sync.Once
}

// Dial connects to the bus selected by options.Bus and starts signal
// dispatch.
func Dial(options Options) (*Conn, error) {
	var (
		conn *dbus.Conn
		err  error
	)
	switch options.Bus.Kind {
	case config.SessionBus, "":
		conn, err = dbus.ConnectSessionBus()
	case config.SystemBus:
		conn, err = dbus.ConnectSystemBus()
	case config.AddressBus:
		conn, err = dbus.Connect(options.Bus.Address)
	default:
		return nil, fmt.Errorf("unknown bus kind %q", options.Bus.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("connecting to %s bus: %w", kindLabel(options.Bus.Kind), err)
	}
	return newConn(conn, options), nil
}

func newConn(conn *dbus.Conn, options Options) *Conn {
	c := &Conn{
		conn:          conn,
		loop:          options.Loop,
		logger:        options.Logger,
		debug:         options.Debug,
		signals:       make(chan *dbus.Signal, 256),
		done:          make(chan struct{}),
		ownerWatchers: make(map[int]func(busname.OwnerChange)),
		debugHandlers: make(map[string]map[int]func(debugmsg.Message)),
	}
	conn.Signal(c.signals)
	go c.dispatch()
	return c
}

// Identity returns the bus daemon's name.
func (c *Conn) Identity() string {
	return busname.DirectoryName
}

// SelfIdentity returns this connection's unique name.
func (c *Conn) SelfIdentity() string {
	names := c.conn.Names()
	if len(names) == 0 {
		return ""
	}
	return names[0]
}

// ListNames lists every name on the bus.
func (c *Conn) ListNames() *eventloop.Future[[]string] {
	return eventloop.Go(c.loop, func() ([]string, error) {
		var names []string
		err := c.conn.BusObject().Call(directoryInterface+".ListNames", 0).Store(&names)
		if err != nil {
			return nil, fmt.Errorf("listing bus names: %w", err)
		}
		return names, nil
	})
}

// GetNameOwner resolves name. A name with no owner completes with ""
// and no error.
func (c *Conn) GetNameOwner(name string) *eventloop.Future[string] {
	return eventloop.Go(c.loop, func() (string, error) {
		owner, err := c.lookupOwner(name)
		if errors.Is(err, ErrNoOwner) {
			return "", nil
		}
		return owner, err
	})
}

func (c *Conn) lookupOwner(name string) (string, error) {
	var owner string
	err := c.conn.BusObject().Call(directoryInterface+".GetNameOwner", 0, name).Store(&owner)
	if err = classifyLookupError(err); err != nil {
		return "", fmt.Errorf("resolving owner of %s: %w", name, err)
	}
	return owner, nil
}

// WatchNameOwners installs a match rule for NameOwnerChanged and
// invokes handler on the loop for each notification. Call from the
// loop.
func (c *Conn) WatchNameOwners(handler func(busname.OwnerChange)) (io.Closer, error) {
	options := ownerChangeMatch()
	if err := c.conn.AddMatchSignal(options...); err != nil {
		return nil, fmt.Errorf("subscribing to %s: %w", memberNameOwnerChanged, err)
	}
	id := c.allocateID()
	c.ownerWatchers[id] = handler
	return &watch{
		close: func() error {
			delete(c.ownerWatchers, id)
			return c.conn.RemoveMatchSignal(options...)
		},
	}, nil
}

// Peer returns the debug stream peer for owner.
func (c *Conn) Peer(owner string) debugstream.Peer {
	return &Peer{
		conn:   c,
		owner:  owner,
		object: c.conn.Object(owner, dbus.ObjectPath(c.debug.ObjectPath)),
	}
}

// Close stops signal dispatch and closes the connection.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.conn.RemoveSignal(c.signals)
		err = c.conn.Close()
		close(c.done)
	})
	return err
}

// dispatch decodes signals and posts them to the loop.
func (c *Conn) dispatch() {
	ownerChanged := signalName(directoryInterface, memberNameOwnerChanged)
	newDebugMessage := signalName(c.debug.Interface, memberNewDebugMessage)
	for {
		select {
		case <-c.done:
			return
		case signal, ok := <-c.signals:
			if !ok {
				return
			}
			switch {
			case signal.Name == ownerChanged && signal.Path == directoryPath:
				change, err := parseOwnerChange(signal)
				if err != nil {
					c.logger.Warn("ignoring malformed signal", "error", err)
					continue
				}
				c.loop.Post(func() { c.deliverOwnerChange(change) })
			case signal.Name == newDebugMessage && string(signal.Path) == c.debug.ObjectPath:
				message, err := parseDebugMessage(signal)
				if err != nil {
					c.logger.Warn("ignoring malformed signal", "peer", signal.Sender, "error", err)
					continue
				}
				c.loop.Post(func() { c.deliverDebugMessage(message) })
			}
		}
	}
}

func (c *Conn) deliverOwnerChange(change busname.OwnerChange) {
	for _, handler := range c.ownerWatchers {
		handler(change)
	}
}

func (c *Conn) deliverDebugMessage(message debugmsg.Message) {
	for _, handler := range c.debugHandlers[message.Source] {
		handler(message)
	}
}

func (c *Conn) addDebugHandler(owner string, handler func(debugmsg.Message)) int {
	handlers, ok := c.debugHandlers[owner]
	if !ok {
		handlers = make(map[int]func(debugmsg.Message))
		c.debugHandlers[owner] = handlers
	}
	id := c.allocateID()
	handlers[id] = handler
	return id
}

func (c *Conn) removeDebugHandler(owner string, id int) {
	handlers := c.debugHandlers[owner]
	delete(handlers, id)
	if len(handlers) == 0 {
		delete(c.debugHandlers, owner)
	}
}

func (c *Conn) allocateID() int {
	id := c.nextID
	c.nextID++
	return id
}

func ownerChangeMatch() []dbus.MatchOption {
	return []dbus.MatchOption{
		dbus.WithMatchSender(busname.DirectoryName),
		dbus.WithMatchObjectPath(directoryPath),
		dbus.WithMatchInterface(directoryInterface),
		dbus.WithMatchMember(memberNameOwnerChanged),
	}
}

func debugMessageMatch(owner string, debug config.DebugConfig) []dbus.MatchOption {
	return []dbus.MatchOption{
		dbus.WithMatchSender(owner),
		dbus.WithMatchObjectPath(dbus.ObjectPath(debug.ObjectPath)),
		dbus.WithMatchInterface(debug.Interface),
		dbus.WithMatchMember(memberNewDebugMessage),
	}
}

func kindLabel(kind config.BusKind) string {
	if kind == "" {
		return string(config.SessionBus)
	}
	return string(kind)
}

// watch is a closable registration.
type watch struct {
	once  sync.Once
	close func() error
}

func (w *watch) Close() error {
	var err error
	w.once.Do(func() { err = w.close() })
	return err
}
