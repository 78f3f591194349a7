// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bustest

import (
	"io"
	"sort"

	"github.com/bureau-foundation/buslog/lib/busname"
	"github.com/bureau-foundation/buslog/lib/debugstream"
	"github.com/bureau-foundation/buslog/lib/eventloop"
	"github.com/bureau-foundation/buslog/lib/testutil"
)

// Bus is a fake bus daemon. Create one with [New].
type Bus struct {
	loop *eventloop.Loop
	self string

	// ListErr makes ListNames fail with this error.
	ListErr error

	// HangList makes ListNames never complete.
	HangList bool

	// LookupErr makes GetNameOwner fail for the named keys.
	LookupErr map[string]error

	// HangLookup makes GetNameOwner never complete for the named
	// keys.
	HangLookup map[string]bool

	owners   map[string]string
	stale    map[string]bool
	peers    map[string]*Peer
	watchers map[int]func(busname.OwnerChange)
	nextID   int
	lookups  []string
	lists    int
}

// New returns an empty bus whose replies are delivered on loop. The
// collector's own unique name is allocated with [testutil.UniqueName]
// and is present on the bus.
func New(loop *eventloop.Loop) *Bus {
	bus := &Bus{
		loop:       loop,
		self:       testutil.UniqueName(),
		LookupErr:  make(map[string]error),
		HangLookup: make(map[string]bool),
		owners:     make(map[string]string),
		stale:      make(map[string]bool),
		peers:      make(map[string]*Peer),
		watchers:   make(map[int]func(busname.OwnerChange)),
	}
	bus.owners[busname.DirectoryName] = busname.DirectoryName
	bus.owners[bus.self] = bus.self
	return bus
}

// Identity returns the bus daemon's name.
func (b *Bus) Identity() string { return busname.DirectoryName }

// SelfIdentity returns the collector's unique name.
func (b *Bus) SelfIdentity() string { return b.self }

// ListNames returns every name with an owner, plus stale names, in
// sorted order.
func (b *Bus) ListNames() *eventloop.Future[[]string] {
	b.lists++
	if b.HangList {
		return eventloop.NewFuture[[]string](b.loop)
	}
	if b.ListErr != nil {
		return eventloop.Completed[[]string](b.loop, nil, b.ListErr)
	}
	names := make([]string, 0, len(b.owners)+len(b.stale))
	for name := range b.owners {
		names = append(names, name)
	}
	for name := range b.stale {
		names = append(names, name)
	}
	sort.Strings(names)
	return eventloop.Completed(b.loop, names, nil)
}

// GetNameOwner resolves name. Unowned names complete with "".
func (b *Bus) GetNameOwner(name string) *eventloop.Future[string] {
	b.lookups = append(b.lookups, name)
	if b.HangLookup[name] {
		return eventloop.NewFuture[string](b.loop)
	}
	if err, ok := b.LookupErr[name]; ok {
		return eventloop.Completed(b.loop, "", err)
	}
	return eventloop.Completed(b.loop, b.owners[name], nil)
}

// WatchNameOwners registers handler for ownership changes.
func (b *Bus) WatchNameOwners(handler func(busname.OwnerChange)) (io.Closer, error) {
	id := b.nextID
	b.nextID++
	b.watchers[id] = handler
	return closerFunc(func() error {
		delete(b.watchers, id)
		return nil
	}), nil
}

// Peer returns the fake peer connected as owner. Owners that never
// called [Bus.Connect] get a peer with no history.
func (b *Bus) Peer(owner string) debugstream.Peer {
	return b.peer(owner)
}

// Connect adds a connection with a fresh unique name and returns its
// peer.
func (b *Bus) Connect() *Peer {
	return b.ConnectAs(testutil.UniqueName())
}

// ConnectAs adds a connection with the given unique name.
func (b *Bus) ConnectAs(owner string) *Peer {
	peer := b.peer(owner)
	b.owners[owner] = owner
	b.notify(busname.OwnerChange{Name: owner, NewOwner: owner})
	return peer
}

// Claim gives name to owner and broadcasts the change.
func (b *Bus) Claim(name, owner string) {
	previous := b.owners[name]
	b.owners[name] = owner
	delete(b.stale, name)
	b.notify(busname.OwnerChange{Name: name, OldOwner: previous, NewOwner: owner})
}

// Release removes name's owner and broadcasts the change.
func (b *Bus) Release(name string) {
	previous, ok := b.owners[name]
	if !ok {
		return
	}
	delete(b.owners, name)
	b.notify(busname.OwnerChange{Name: name, OldOwner: previous})
}

// Disconnect releases every name owned by owner and then owner itself,
// in the order the bus daemon reports them.
func (b *Bus) Disconnect(owner string) {
	var owned []string
	for name, current := range b.owners {
		if current == owner && name != owner {
			owned = append(owned, name)
		}
	}
	sort.Strings(owned)
	for _, name := range owned {
		b.Release(name)
	}
	b.Release(owner)
}

// AddStale makes name appear in ListNames with no owner, as when a
// process exits between enumeration and lookup.
func (b *Bus) AddStale(name string) {
	b.stale[name] = true
}

// Announce broadcasts change without altering ownership.
func (b *Bus) Announce(change busname.OwnerChange) {
	b.notify(change)
}

// Lookups returns every name passed to GetNameOwner, in call order.
func (b *Bus) Lookups() []string {
	return append([]string(nil), b.lookups...)
}

// Lists returns how many times ListNames was called.
func (b *Bus) Lists() int { return b.lists }

// Watchers returns the number of open ownership watches.
func (b *Bus) Watchers() int { return len(b.watchers) }

func (b *Bus) peer(owner string) *Peer {
	peer, ok := b.peers[owner]
	if !ok {
		peer = newPeer(b.loop, owner)
		b.peers[owner] = peer
	}
	return peer
}

func (b *Bus) notify(change busname.OwnerChange) {
	ids := make([]int, 0, len(b.watchers))
	for id := range b.watchers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		handler := b.watchers[id]
		b.loop.Post(func() { handler(change) })
	}
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }
