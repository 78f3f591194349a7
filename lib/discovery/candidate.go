// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package discovery

// candidateState is a well-known name's position in discovery.
type candidateState int

const (
	stateUnresolved candidateState = iota
	stateResolving
	stateResolved
	stateRegistered
	stateRejected
	stateDropped
)

func (s candidateState) String() string {
	switch s {
	case stateUnresolved:
		return "unresolved"
	case stateResolving:
		return "resolving"
	case stateResolved:
		return "resolved"
	case stateRegistered:
		return "registered"
	case stateRejected:
		return "rejected"
	case stateDropped:
		return "dropped"
	default:
		return "invalid"
	}
}

// candidate is one interesting well-known name. A name can cycle
// through the machine many times as processes claim and release it;
// only the latest pass is kept.
type candidate struct {
	name  string
	state candidateState
	owner string
}

func (c *candidate) transition(state candidateState, owner string) {
	c.state = state
	c.owner = owner
}
