// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package busname

import "testing"

func TestFilterIsInteresting(t *testing.T) {
	filter := NewFilter(DefaultPrefix)

	tests := []struct {
		name string
		want bool
	}{
		{"im.telepathy.v1.Foo", true},
		{"im.telepathy.v1", true},
		{"im.telepathy.v1.ConnectionManager.gabble", true},
		{"org.other.Bar", false},
		{"im.telepathy.v", false},
		{"IM.Telepathy.v1.Foo", false},
		{"x.im.telepathy.v1.Foo", false},
		{":1.5", false},
		{"", false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := filter.IsInteresting(test.name); got != test.want {
				t.Errorf("IsInteresting(%q) = %v, want %v", test.name, got, test.want)
			}
		})
	}
}

func TestFilterEmptyPrefixMatchesEverything(t *testing.T) {
	filter := NewFilter("")
	for _, name := range []string{"", ":1.1", "org.example.Anything"} {
		if !filter.IsInteresting(name) {
			t.Errorf("empty-prefix filter rejected %q", name)
		}
	}
}

func TestIsUnique(t *testing.T) {
	if !IsUnique(":1.5") {
		t.Error(`IsUnique(":1.5") = false, want true`)
	}
	if IsUnique(DirectoryName) {
		t.Errorf("IsUnique(%q) = true, want false", DirectoryName)
	}
	if IsUnique("") {
		t.Error(`IsUnique("") = true, want false`)
	}
}

func TestOwnerChangeLost(t *testing.T) {
	tests := []struct {
		change OwnerChange
		want   bool
	}{
		{OwnerChange{Name: ":1.5", OldOwner: ":1.5", NewOwner: ""}, true},
		{OwnerChange{Name: ":1.5", OldOwner: "", NewOwner: ":1.5"}, false},
		{OwnerChange{Name: "im.telepathy.v1.Foo", OldOwner: ":1.5", NewOwner: ""}, false},
	}
	for _, test := range tests {
		if got := test.change.Lost(); got != test.want {
			t.Errorf("%+v.Lost() = %v, want %v", test.change, got, test.want)
		}
	}
}
