// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"fmt"
	"sync/atomic"
)

// Fake unique names start well above the serials a real bus daemon
// hands out early in a session, so they are easy to spot in output.
var uniqueCounter atomic.Uint64

func init() {
	uniqueCounter.Store(1000)
}

// UniqueName returns a bus unique name of the form ":1.N" where N
// increases monotonically across the test binary.
//
//	owner := testutil.UniqueName() // ":1.1001", ":1.1002", ...
func UniqueName() string {
	return fmt.Sprintf(":1.%d", uniqueCounter.Add(1))
}

// UniqueID returns a string of the form "prefix-N" where N is a
// monotonically increasing integer.
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, uniqueCounter.Add(1))
}
