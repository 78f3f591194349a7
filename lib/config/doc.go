// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for buslog.
//
// Configuration comes from at most one file, named by the
// BUSLOG_CONFIG environment variable (via [Load]) or given explicitly
// (via [LoadFile]). When BUSLOG_CONFIG is unset, [Load] returns
// [Default]: the collector needs no configuration to watch the
// session bus. There is no ~/.config discovery and no automatic file
// search.
//
// Files are YAML. Files named *.json or *.jsonc are first passed
// through github.com/tidwall/jsonc, so they may carry // and /* */
// comments and trailing commas.
//
// Variable expansion is performed on bus.address and archive.path
// after loading:
// ${VAR} and ${VAR:-default} patterns are expanded from the
// environment. No other environment variables override config values.
//
// Key exports:
//
//   - [Config] -- master struct with Bus, Debug, Archive, and output settings
//   - [Default] -- returns a Config with the built-in defaults
//   - [Load] and [LoadFile] -- the two entry points for loading
//   - [Config.Validate] -- reports every invalid field at once
//
// This package depends on no other buslog packages.
package config
