// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package busname

import "strings"

// DefaultPrefix is the namespace under which Telepathy components
// claim their well-known names.
const DefaultPrefix = "im.telepathy.v1"

// DirectoryName is the well-known name (and identity) of the bus
// daemon itself.
const DirectoryName = "org.freedesktop.DBus"

// Filter selects the bus names that belong to one application
// namespace.
type Filter struct {
	// Prefix is matched case-sensitively against the start of the
	// name. An empty prefix matches every name.
	Prefix string
}

// NewFilter returns a Filter for prefix.
func NewFilter(prefix string) Filter {
	return Filter{Prefix: prefix}
}

// IsInteresting reports whether name starts with the filter's prefix.
func (f Filter) IsInteresting(name string) bool {
	return strings.HasPrefix(name, f.Prefix)
}

// IsUnique reports whether name is a bus-assigned unique name.
func IsUnique(name string) bool {
	return strings.HasPrefix(name, ":")
}

// OwnerChange is one NameOwnerChanged notification. An empty OldOwner
// means the name was just claimed; an empty NewOwner means it was
// released. For a unique name both owners equal the name itself, and
// an empty NewOwner means the connection left the bus.
type OwnerChange struct {
	Name     string
	OldOwner string
	NewOwner string
}

// Lost reports whether the change is a connection leaving the bus.
func (c OwnerChange) Lost() bool {
	return IsUnique(c.Name) && c.NewOwner == ""
}
