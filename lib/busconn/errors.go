// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package busconn

import (
	"errors"

	"github.com/godbus/dbus/v5"
)

// Bus error names with special handling.
const (
	errorNameHasNoOwner = "org.freedesktop.DBus.Error.NameHasNoOwner"
	errorServiceUnknown = "org.freedesktop.DBus.Error.ServiceUnknown"
)

// ErrNoOwner is returned by lookups for a name that has no owner.
var ErrNoOwner = errors.New("name has no owner")

// errorName returns the D-Bus error name carried by err, or "" if err
// is not a bus error.
func errorName(err error) string {
	var value dbus.Error
	if errors.As(err, &value) {
		return value.Name
	}
	var pointer *dbus.Error
	if errors.As(err, &pointer) && pointer != nil {
		return pointer.Name
	}
	return ""
}

// classifyLookupError maps the bus daemon's "no owner" replies to
// ErrNoOwner and passes everything else through.
func classifyLookupError(err error) error {
	if err == nil {
		return nil
	}
	switch errorName(err) {
	case errorNameHasNoOwner, errorServiceUnknown:
		return ErrNoOwner
	}
	return err
}
