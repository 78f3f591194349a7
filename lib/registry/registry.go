// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"io"
	"sort"
)

// Outcome is the result of a registration attempt.
type Outcome int

const (
	// Registered means the owner was new and now has an entry. The
	// caller is responsible for subscribing to it.
	Registered Outcome = iota

	// AlreadyPresent means an entry for the owner already exists.
	AlreadyPresent

	// Excluded means the owner is an infrastructure identity (the bus
	// daemon, the collector itself) and must never be subscribed.
	Excluded
)

// String returns the lowercase name of the outcome.
func (o Outcome) String() string {
	switch o {
	case Registered:
		return "registered"
	case AlreadyPresent:
		return "already-present"
	case Excluded:
		return "excluded"
	default:
		return "unknown"
	}
}

// Service is the registry's record of one debuggable process.
type Service struct {
	// Owner is the unique name the entry is keyed by.
	Owner string

	// Enabled is set once the peer acknowledged the request to start
	// forwarding its debug stream.
	Enabled bool

	// Lost is set when the owner's connection left the bus. A lost
	// entry keeps occupying its key: unique names are never reused.
	Lost bool

	// subscription is the live message subscription, closed by Forget.
	subscription io.Closer
}

// Registry maps owner identities to services.
type Registry struct {
	excluded map[string]struct{}
	services map[string]*Service
}

// New returns an empty Registry that rejects every identity in
// excluded. Empty strings in excluded are ignored.
func New(excluded ...string) *Registry {
	registry := &Registry{
		excluded: make(map[string]struct{}, len(excluded)),
		services: make(map[string]*Service),
	}
	for _, identity := range excluded {
		if identity != "" {
			registry.excluded[identity] = struct{}{}
		}
	}
	return registry
}

// TryRegister records owner if it is neither excluded nor already
// present. An empty owner is treated as excluded.
func (r *Registry) TryRegister(owner string) Outcome {
	if owner == "" {
		return Excluded
	}
	if _, ok := r.excluded[owner]; ok {
		return Excluded
	}
	if _, ok := r.services[owner]; ok {
		return AlreadyPresent
	}
	r.services[owner] = &Service{Owner: owner}
	return Registered
}

// Lookup returns the entry for owner.
func (r *Registry) Lookup(owner string) (*Service, bool) {
	service, ok := r.services[owner]
	return service, ok
}

// MarkEnabled records that owner accepted the enable request. Unknown
// owners are ignored.
func (r *Registry) MarkEnabled(owner string) {
	if service, ok := r.services[owner]; ok {
		service.Enabled = true
	}
}

// Attach stores the live subscription for owner. If the owner is
// unknown or already lost, the subscription is closed immediately so
// that a late subscribe completion cannot leak a signal handler.
func (r *Registry) Attach(owner string, subscription io.Closer) {
	service, ok := r.services[owner]
	if !ok || service.Lost {
		_ = subscription.Close()
		return
	}
	if service.subscription != nil {
		_ = service.subscription.Close()
	}
	service.subscription = subscription
}

// Forget marks owner as lost and closes its live subscription.
// Returns false if owner has no entry or was already lost.
func (r *Registry) Forget(owner string) bool {
	service, ok := r.services[owner]
	if !ok || service.Lost {
		return false
	}
	service.Lost = true
	service.Enabled = false
	if service.subscription != nil {
		_ = service.subscription.Close()
		service.subscription = nil
	}
	return true
}

// Len returns the number of entries, lost ones included.
func (r *Registry) Len() int {
	return len(r.services)
}

// Active returns the number of entries that have not been lost.
func (r *Registry) Active() int {
	count := 0
	for _, service := range r.services {
		if !service.Lost {
			count++
		}
	}
	return count
}

// Owners returns every registered owner in sorted order.
func (r *Registry) Owners() []string {
	owners := make([]string, 0, len(r.services))
	for owner := range r.services {
		owners = append(owners, owner)
	}
	sort.Strings(owners)
	return owners
}
