// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package discovery

import (
	"io"
	"log/slog"

	"github.com/bureau-foundation/buslog/lib/busname"
	"github.com/bureau-foundation/buslog/lib/debugstream"
	"github.com/bureau-foundation/buslog/lib/eventloop"
	"github.com/bureau-foundation/buslog/lib/registry"
)

// Directory is the bus daemon as seen by the coordinator.
type Directory interface {
	// Identity returns the bus daemon's own identity.
	Identity() string

	// SelfIdentity returns the collector's unique name on the bus.
	SelfIdentity() string

	// ListNames lists every name currently on the bus.
	ListNames() *eventloop.Future[[]string]

	// GetNameOwner resolves name to its owner's unique name. A name
	// with no owner completes with "" and no error.
	GetNameOwner(name string) *eventloop.Future[string]

	// WatchNameOwners invokes handler on the loop for every
	// NameOwnerChanged notification until the returned watch is
	// closed.
	WatchNameOwners(handler func(busname.OwnerChange)) (io.Closer, error)
}

// PeerFactory creates debug stream peers for owners.
type PeerFactory interface {
	Peer(owner string) debugstream.Peer
}

// Config holds the coordinator's collaborators.
type Config struct {
	Directory  Directory
	Peers      PeerFactory
	Filter     busname.Filter
	Registry   *registry.Registry
	Subscriber *debugstream.Subscriber
	Logger     *slog.Logger
}

// Stats counts discovery activity.
type Stats struct {
	// NamesSeen counts interesting names from enumeration and
	// notifications, with repeats.
	NamesSeen  int
	Lookups    int
	Registered int
	Duplicates int
	Excluded   int
	// Dropped counts lookups that failed or found no owner.
	Dropped int
	// Lost counts registered peers whose connection left the bus.
	Lost int
}

// Coordinator drives discovery. Create one with [New].
type Coordinator struct {
	directory  Directory
	peers      PeerFactory
	filter     busname.Filter
	registry   *registry.Registry
	subscriber *debugstream.Subscriber
	logger     *slog.Logger

	candidates map[string]*candidate

	// owners is the current owner of every name mentioned by a
	// notification since the watch started.
	owners map[string]string

	watch io.Closer
	stats Stats
}

// New returns a Coordinator. Nothing happens until [Coordinator.Start].
func New(config Config) *Coordinator {
	return &Coordinator{
		directory:  config.Directory,
		peers:      config.Peers,
		filter:     config.Filter,
		registry:   config.Registry,
		subscriber: config.Subscriber,
		logger:     config.Logger,
		candidates: make(map[string]*candidate),
		owners:     make(map[string]string),
	}
}

// Start subscribes to ownership changes and enumerates current names.
// A failure to subscribe is logged and discovery continues on the
// enumeration alone.
func (c *Coordinator) Start() {
	watch, err := c.directory.WatchNameOwners(c.handleOwnerChange)
	if err != nil {
		c.logger.Error("unable to watch bus name owners", "error", err)
	} else {
		c.watch = watch
	}

	c.directory.ListNames().Then(c.handleNames)
}

// Close stops watching ownership changes. Peers already subscribed
// keep their subscriptions; in-flight lookups still complete.
func (c *Coordinator) Close() error {
	if c.watch == nil {
		return nil
	}
	watch := c.watch
	c.watch = nil
	return watch.Close()
}

// Stats returns a snapshot of the counters.
func (c *Coordinator) Stats() Stats {
	return c.stats
}

// State returns the state of name's candidate, or "" if the name was
// never interesting.
func (c *Coordinator) State(name string) string {
	if candidate, ok := c.candidates[name]; ok {
		return candidate.state.String()
	}
	return ""
}

func (c *Coordinator) handleNames(result eventloop.Result[[]string]) {
	if result.Err != nil {
		c.logger.Error("unable to list bus names", "error", result.Err)
		return
	}
	for _, name := range result.Value {
		if !c.filter.IsInteresting(name) {
			continue
		}
		c.stats.NamesSeen++
		if owner, ok := c.owners[name]; ok && owner != "" {
			c.resolve(name, owner)
			continue
		}
		c.lookup(name)
	}
}

func (c *Coordinator) handleOwnerChange(change busname.OwnerChange) {
	if change.NewOwner == "" {
		delete(c.owners, change.Name)
	} else {
		c.owners[change.Name] = change.NewOwner
	}

	if change.Lost() {
		if c.registry.Forget(change.Name) {
			c.stats.Lost++
			c.logger.Info("debuggable peer left the bus", "peer", change.Name)
		}
		return
	}

	if !c.filter.IsInteresting(change.Name) {
		return
	}
	if change.NewOwner == "" {
		c.candidate(change.Name).transition(stateUnresolved, "")
		return
	}
	c.stats.NamesSeen++
	c.logger.Info("owner owns well-known name", "owner", change.NewOwner, "name", change.Name)
	c.resolve(change.Name, change.NewOwner)
}

// lookup issues an asynchronous GetNameOwner for name.
func (c *Coordinator) lookup(name string) {
	c.candidate(name).transition(stateResolving, "")
	c.stats.Lookups++

	c.directory.GetNameOwner(name).Then(func(result eventloop.Result[string]) {
		candidate := c.candidate(name)
		switch {
		case result.Err != nil:
			c.stats.Dropped++
			candidate.transition(stateDropped, "")
			c.logger.Warn("unable to resolve owner", "name", name, "error", result.Err)
		case result.Value == "":
			c.stats.Dropped++
			candidate.transition(stateDropped, "")
			c.logger.Warn("owner of well-known name is null", "name", name)
		default:
			c.logger.Info("owner owns well-known name", "owner", result.Value, "name", name)
			c.resolve(name, result.Value)
		}
	})
}

// resolve moves name to resolved and attempts registration of owner.
func (c *Coordinator) resolve(name, owner string) {
	candidate := c.candidate(name)
	reannounced := candidate.state == stateRegistered && candidate.owner == owner
	candidate.transition(stateResolved, owner)

	switch c.registry.TryRegister(owner) {
	case registry.Registered:
		c.stats.Registered++
		candidate.transition(stateRegistered, owner)
		c.logger.Debug("subscribing to debuggable peer", "peer", owner, "name", name)
		c.subscriber.Start(c.peers.Peer(owner))
	case registry.AlreadyPresent:
		if reannounced {
			// The subscription this name started is still live.
			candidate.transition(stateRegistered, owner)
			return
		}
		c.stats.Duplicates++
		candidate.transition(stateRejected, owner)
	case registry.Excluded:
		c.stats.Excluded++
		candidate.transition(stateRejected, owner)
		c.logger.Debug("ignoring infrastructure identity", "owner", owner, "name", name)
	}
}

func (c *Coordinator) candidate(name string) *candidate {
	existing, ok := c.candidates[name]
	if !ok {
		existing = &candidate{name: name}
		c.candidates[name] = existing
	}
	return existing
}
