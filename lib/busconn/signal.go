// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package busconn

import (
	"fmt"

	"github.com/godbus/dbus/v5"

	"github.com/bureau-foundation/buslog/lib/busname"
	"github.com/bureau-foundation/buslog/lib/debugmsg"
)

const (
	directoryPath      = dbus.ObjectPath("/org/freedesktop/DBus")
	directoryInterface = "org.freedesktop.DBus"
	propertiesSet      = "org.freedesktop.DBus.Properties.Set"

	memberNameOwnerChanged = "NameOwnerChanged"
	memberNewDebugMessage  = "NewDebugMessage"
	memberGetMessages      = "GetMessages"
	propertyEnabled        = "Enabled"
)

// parseOwnerChange decodes a NameOwnerChanged body.
func parseOwnerChange(signal *dbus.Signal) (busname.OwnerChange, error) {
	var change busname.OwnerChange
	if err := dbus.Store(signal.Body, &change.Name, &change.OldOwner, &change.NewOwner); err != nil {
		return busname.OwnerChange{}, fmt.Errorf("decoding %s: %w", memberNameOwnerChanged, err)
	}
	return change, nil
}

// parseDebugMessage decodes a NewDebugMessage body into a normalized
// message attributed to the signal's sender.
func parseDebugMessage(signal *dbus.Signal) (debugmsg.Message, error) {
	var record debugmsg.Record
	if err := dbus.Store(signal.Body, &record.Timestamp, &record.Domain, &record.Level, &record.Message); err != nil {
		return debugmsg.Message{}, fmt.Errorf("decoding %s from %s: %w", memberNewDebugMessage, signal.Sender, err)
	}
	return debugmsg.FromWire(signal.Sender, record), nil
}

// signalName joins an interface and member the way godbus reports
// signal names.
func signalName(iface, member string) string {
	return iface + "." + member
}
