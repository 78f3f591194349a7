// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"golang.org/x/sys/unix"
	"golang.org/x/term"

	"github.com/bureau-foundation/buslog/lib/archive"
	"github.com/bureau-foundation/buslog/lib/busconn"
	"github.com/bureau-foundation/buslog/lib/busname"
	"github.com/bureau-foundation/buslog/lib/config"
	"github.com/bureau-foundation/buslog/lib/debugstream"
	"github.com/bureau-foundation/buslog/lib/discovery"
	"github.com/bureau-foundation/buslog/lib/emitter"
	"github.com/bureau-foundation/buslog/lib/eventloop"
	"github.com/bureau-foundation/buslog/lib/process"
	"github.com/bureau-foundation/buslog/lib/registry"
	"github.com/bureau-foundation/buslog/lib/version"
)

const usage = "Usage: buslog [--json]"

func main() {
	process.Exit(run(os.Args[1:]))
}

// UsageError reports a bad command line. The usage text has already
// been printed when it is returned.
type UsageError struct {
	Reason string
}

func (e *UsageError) Error() string {
	return "usage: " + e.Reason
}

// ExitCode returns 1.
func (e *UsageError) ExitCode() int {
	return 1
}

type options struct {
	json bool
}

// parseArgs accepts only --json. Anything else prints the usage line
// to stderr and returns a *UsageError.
func parseArgs(args []string, stderr io.Writer) (options, error) {
	var parsed options

	flagSet := pflag.NewFlagSet("buslog", pflag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.Usage = func() {}
	flagSet.BoolVar(&parsed.json, "json", false, "print one JSON object per message")

	err := flagSet.Parse(args)
	switch {
	case err != nil:
	case flagSet.ArgsLenAtDash() >= 0:
		err = errors.New("unexpected argument: --")
	case flagSet.NArg() > 0:
		err = fmt.Errorf("unexpected argument: %s", flagSet.Arg(0))
	}
	if err != nil {
		fmt.Fprintln(stderr, usage)
		return options{}, &UsageError{Reason: err.Error()}
	}
	return parsed, nil
}

func run(args []string) error {
	parsed, err := parseArgs(args, os.Stderr)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if parsed.json {
		cfg.Output = string(emitter.FormatJSON)
	}

	logger, err := newLogger(os.Stderr, cfg.LogLevel)
	if err != nil {
		return err
	}
	logger.Debug("buslog starting", version.Attrs(), "bus", cfg.Bus.Kind, "prefix", cfg.NamespacePrefix)

	loop := eventloop.New()
	conn, err := busconn.Dial(busconn.Options{
		Bus:    cfg.Bus,
		Debug:  cfg.Debug,
		Loop:   loop,
		Logger: logger,
	})
	if err != nil {
		return err
	}
	defer conn.Close()

	// Writes to a closed stdout return EPIPE instead of killing the
	// process, so the collector can shut down cleanly.
	signal.Ignore(unix.SIGPIPE)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	collector, err := newCollector(cfg, conn, os.Stdout, logger, func() {
		logger.Info("stdout closed, stopping")
		cancel()
	})
	if err != nil {
		return err
	}

	loop.Post(collector.start)
	if err := loop.Run(ctx); err != nil {
		return err
	}
	collector.stop()
	return nil
}

// bus is everything the collector needs from a bus connection.
type bus interface {
	discovery.Directory
	discovery.PeerFactory
}

// collector is the assembled pipeline: discovery feeds the
// subscriber, which feeds the emitter.
type collector struct {
	logger      *slog.Logger
	registry    *registry.Registry
	emitter     *emitter.Emitter
	archive     *archive.Writer
	subscriber  *debugstream.Subscriber
	coordinator *discovery.Coordinator
}

// newCollector assembles the pipeline over conn. onStdoutClosed runs
// on the loop when stdout reports a broken pipe.
func newCollector(cfg *config.Config, conn bus, stdout io.Writer, logger *slog.Logger, onStdoutClosed func()) (*collector, error) {
	format, err := emitter.ParseFormat(cfg.Output)
	if err != nil {
		return nil, err
	}
	colorMode, err := emitter.ParseColorMode(cfg.Color)
	if err != nil {
		return nil, err
	}

	emitterOptions := emitter.Options{Format: format}
	if format == emitter.FormatText {
		emitterOptions.Styles = emitter.StylesFor(stdout, colorMode)
	}
	out := emitter.New(stdout, emitterOptions)
	var sink debugstream.Sink = &stdoutSink{sink: out, onClosed: onStdoutClosed}

	var archiveWriter *archive.Writer
	if cfg.Archive.Path != "" {
		compression, err := archive.ParseCompression(cfg.Archive.Compression)
		if err != nil {
			return nil, err
		}
		archiveWriter, err = archive.Create(cfg.Archive.Path, compression)
		if err != nil {
			return nil, err
		}
		sink = fanout{sink, emitter.New(archiveWriter, emitter.Options{Format: emitter.FormatCBOR})}
	}

	excluded := append([]string{conn.Identity(), conn.SelfIdentity()}, cfg.Exclude...)
	reg := registry.New(excluded...)
	subscriber := debugstream.New(reg, sink, logger)
	coordinator := discovery.New(discovery.Config{
		Directory:  conn,
		Peers:      conn,
		Filter:     busname.NewFilter(cfg.NamespacePrefix),
		Registry:   reg,
		Subscriber: subscriber,
		Logger:     logger,
	})

	return &collector{
		logger:      logger,
		registry:    reg,
		emitter:     out,
		archive:     archiveWriter,
		subscriber:  subscriber,
		coordinator: coordinator,
	}, nil
}

func (c *collector) start() {
	c.coordinator.Start()
}

// stop closes the ownership watch and the archive, then logs the
// session counters.
func (c *collector) stop() {
	if err := c.coordinator.Close(); err != nil {
		c.logger.Warn("closing ownership watch", "error", err)
	}
	if c.archive != nil {
		if err := c.archive.Close(); err != nil {
			c.logger.Error("closing archive", "error", err)
		} else {
			c.logger.Info("archive written",
				"path", c.archive.Path(),
				"bytes", c.archive.Written(),
				"blake3", c.archive.Digest(),
			)
		}
	}
	discoveryStats := c.coordinator.Stats()
	streamStats := c.subscriber.Stats()
	c.logger.Info("buslog stopped",
		"peers", c.registry.Len(),
		"active_peers", c.registry.Active(),
		"lookups", discoveryStats.Lookups,
		"dropped", discoveryStats.Dropped,
		"lost", discoveryStats.Lost,
		"messages", c.emitter.Emitted(),
		"history_messages", streamStats.HistoryMessages,
		"live_messages", streamStats.LiveMessages,
	)
}

// newLogger returns a slog logger on stderr: text when stderr is a
// terminal, JSON otherwise.
func newLogger(stderr *os.File, levelName string) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(levelName)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", levelName, err)
	}
	options := &slog.HandlerOptions{Level: level}
	if term.IsTerminal(int(stderr.Fd())) {
		return slog.New(slog.NewTextHandler(stderr, options)), nil
	}
	return slog.New(slog.NewJSONHandler(stderr, options)), nil
}
