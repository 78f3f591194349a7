// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// EnvVar names the environment variable [Load] reads the config file
// path from.
const EnvVar = "BUSLOG_CONFIG"

// BusKind selects which bus the collector connects to.
type BusKind string

const (
	// SessionBus is the per-login session bus.
	SessionBus BusKind = "session"
	// SystemBus is the machine-wide system bus.
	SystemBus BusKind = "system"
	// AddressBus connects to the address in BusConfig.Address.
	AddressBus BusKind = "address"
)

// Config is the master configuration for buslog.
type Config struct {
	// Bus selects the bus to watch.
	Bus BusConfig `yaml:"bus"`

	// NamespacePrefix is the well-known name prefix identifying
	// debuggable processes. Default: im.telepathy.v1
	NamespacePrefix string `yaml:"namespace_prefix"`

	// Debug locates the debug interface on each peer.
	Debug DebugConfig `yaml:"debug"`

	// Output is the record format on stdout: text, json, or cbor.
	// The --json flag overrides it. Default: text
	Output string `yaml:"output"`

	// Color controls level coloring in text output: auto, always, or
	// never. Default: auto
	Color string `yaml:"color"`

	// LogLevel is the minimum level of diagnostics on stderr: debug,
	// info, warn, or error. Default: info
	LogLevel string `yaml:"log_level"`

	// Exclude lists additional owner identities that are never
	// subscribed to.
	Exclude []string `yaml:"exclude"`

	// Archive optionally keeps a compressed copy of every record.
	Archive ArchiveConfig `yaml:"archive"`
}

// ArchiveConfig configures the record archive.
type ArchiveConfig struct {
	// Path is the archive file. Empty disables archiving.
	Path string `yaml:"path"`

	// Compression is none, lz4, or zstd. Default: zstd
	Compression string `yaml:"compression"`
}

// BusConfig selects the bus.
type BusConfig struct {
	// Kind is session, system, or address. Default: session
	Kind BusKind `yaml:"kind"`

	// Address is the bus address used when Kind is address, for
	// example unix:path=/run/user/1000/bus.
	Address string `yaml:"address"`
}

// DebugConfig locates the debug interface.
type DebugConfig struct {
	// ObjectPath is where peers export the debug object.
	// Default: /org/freedesktop/Telepathy/debug
	ObjectPath string `yaml:"object_path"`

	// Interface is the debug interface name.
	// Default: org.freedesktop.Telepathy.Debug
	Interface string `yaml:"interface"`
}

var (
	outputValues      = []string{"text", "json", "cbor"}
	colorValues       = []string{"auto", "always", "never"}
	logLevelValues    = []string{"debug", "info", "warn", "error"}
	compressionValues = []string{"none", "lz4", "zstd"}
)

// Default returns the default configuration. File contents are
// merged over these values.
func Default() *Config {
	return &Config{
		Bus: BusConfig{
			Kind: SessionBus,
		},
		NamespacePrefix: "im.telepathy.v1",
		Debug: DebugConfig{
			ObjectPath: "/org/freedesktop/Telepathy/debug",
			Interface:  "org.freedesktop.Telepathy.Debug",
		},
		Output:   "text",
		Color:    "auto",
		LogLevel: "info",
		Archive: ArchiveConfig{
			Compression: "zstd",
		},
	}
}

// Load loads configuration from the file named by BUSLOG_CONFIG. When
// the variable is unset or empty, the defaults are returned.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvVar)
	if configPath == "" {
		return Default(), nil
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path and
// validates it.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}

	cfg.expandVariables()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// loadFile reads path and merges it into the current config.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		data = jsonc.ToJSON(data)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

// expandVariables expands ${VAR} and ${VAR:-default} in the bus
// address and the archive path.
func (c *Config) expandVariables() {
	c.Bus.Address = expandVars(c.Bus.Address)
	c.Archive.Path = expandVars(c.Archive.Path)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default} patterns from the
// environment. Unset and empty variables take the default.
func expandVars(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors. Every problem is
// reported, joined with [errors.Join].
func (c *Config) Validate() error {
	var errs []error

	switch c.Bus.Kind {
	case SessionBus, SystemBus:
	case AddressBus:
		if c.Bus.Address == "" {
			errs = append(errs, fmt.Errorf("bus.address is required when bus.kind is %s", AddressBus))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid bus.kind: %q", c.Bus.Kind))
	}

	if c.NamespacePrefix == "" {
		errs = append(errs, fmt.Errorf("namespace_prefix is required"))
	}

	if !strings.HasPrefix(c.Debug.ObjectPath, "/") {
		errs = append(errs, fmt.Errorf("debug.object_path must be an absolute object path, got %q", c.Debug.ObjectPath))
	}
	if c.Debug.Interface == "" {
		errs = append(errs, fmt.Errorf("debug.interface is required"))
	}

	if !slices.Contains(outputValues, c.Output) {
		errs = append(errs, fmt.Errorf("output must be one of: %v", outputValues))
	}
	if !slices.Contains(colorValues, c.Color) {
		errs = append(errs, fmt.Errorf("color must be one of: %v", colorValues))
	}
	if !slices.Contains(logLevelValues, c.LogLevel) {
		errs = append(errs, fmt.Errorf("log_level must be one of: %v", logLevelValues))
	}

	if !slices.Contains(compressionValues, c.Archive.Compression) {
		errs = append(errs, fmt.Errorf("archive.compression must be one of: %v", compressionValues))
	}

	for i, identity := range c.Exclude {
		if identity == "" {
			errs = append(errs, fmt.Errorf("exclude[%d] is empty", i))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
