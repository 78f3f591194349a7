// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package discovery

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/bureau-foundation/buslog/lib/busname"
	"github.com/bureau-foundation/buslog/lib/bustest"
	"github.com/bureau-foundation/buslog/lib/debugmsg"
	"github.com/bureau-foundation/buslog/lib/debugstream"
	"github.com/bureau-foundation/buslog/lib/emitter"
	"github.com/bureau-foundation/buslog/lib/eventloop"
	"github.com/bureau-foundation/buslog/lib/registry"
)

type recordingSink struct {
	messages []debugmsg.Message
}

func (s *recordingSink) Emit(message debugmsg.Message) error {
	s.messages = append(s.messages, message)
	return nil
}

func (s *recordingSink) texts() []string {
	texts := make([]string, len(s.messages))
	for i, message := range s.messages {
		texts[i] = message.Text
	}
	return texts
}

type harness struct {
	loop        *eventloop.Loop
	bus         *bustest.Bus
	registry    *registry.Registry
	subscriber  *debugstream.Subscriber
	coordinator *Coordinator
}

func newHarness(t *testing.T, sink debugstream.Sink) *harness {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	loop := eventloop.New()
	bus := bustest.New(loop)
	reg := registry.New(bus.Identity(), bus.SelfIdentity())
	subscriber := debugstream.New(reg, sink, logger)
	coordinator := New(Config{
		Directory:  bus,
		Peers:      bus,
		Filter:     busname.NewFilter(busname.DefaultPrefix),
		Registry:   reg,
		Subscriber: subscriber,
		Logger:     logger,
	})
	return &harness{
		loop:        loop,
		bus:         bus,
		registry:    reg,
		subscriber:  subscriber,
		coordinator: coordinator,
	}
}

func (h *harness) start() {
	h.coordinator.Start()
	h.loop.RunUntilIdle()
}

func message(text string) debugmsg.Message {
	return debugmsg.Message{
		Time:   time.Date(2013, 2, 4, 17, 12, 3, 0, time.UTC),
		Domain: "gabble",
		Level:  debugmsg.LevelDebug,
		Text:   text,
	}
}

func TestEnumerationLooksUpOnlyInterestingNames(t *testing.T) {
	sink := &recordingSink{}
	h := newHarness(t, sink)

	foo := h.bus.ConnectAs(":1.5")
	h.bus.Claim("im.telepathy.v1.Foo", foo.Owner())
	other := h.bus.Connect()
	h.bus.Claim("org.other.Bar", other.Owner())

	h.coordinator.Start()
	// The process announces its name while enumeration is still in
	// flight.
	h.bus.Announce(busname.OwnerChange{Name: "im.telepathy.v1.Foo", NewOwner: ":1.5"})
	h.loop.RunUntilIdle()

	if got := h.bus.Lookups(); !slices.Equal(got, []string{"im.telepathy.v1.Foo"}) {
		t.Errorf("Lookups() = %v, want only im.telepathy.v1.Foo", got)
	}
	if got := h.registry.Owners(); !slices.Equal(got, []string{":1.5"}) {
		t.Errorf("registry owners = %v, want [:1.5]", got)
	}
	stats := h.coordinator.Stats()
	if stats.Registered != 1 || stats.Duplicates != 1 {
		t.Errorf("Registered = %d, Duplicates = %d, want 1 and 1", stats.Registered, stats.Duplicates)
	}
	if foo.EnableCalls() != 1 || foo.HistoryCalls() != 1 || foo.SubscribeCalls() != 1 {
		t.Errorf("peer calls = enable %d, history %d, subscribe %d, want one of each",
			foo.EnableCalls(), foo.HistoryCalls(), foo.SubscribeCalls())
	}
	if other.EnableCalls() != 0 {
		t.Error("uninteresting peer was contacted")
	}
}

func TestSameOwnerUnderTwoNamesRegistersOnce(t *testing.T) {
	h := newHarness(t, &recordingSink{})
	peer := h.bus.Connect()
	h.bus.Claim("im.telepathy.v1.A", peer.Owner())
	h.bus.Claim("im.telepathy.v1.B", peer.Owner())

	h.start()

	if got := h.registry.Len(); got != 1 {
		t.Errorf("registry has %d entries, want 1", got)
	}
	if got := peer.EnableCalls(); got != 1 {
		t.Errorf("SetEnabled called %d times, want 1", got)
	}
	if got := len(h.bus.Lookups()); got != 2 {
		t.Errorf("lookups = %d, want 2", got)
	}
}

func TestNullOwnerIsDropped(t *testing.T) {
	h := newHarness(t, &recordingSink{})
	h.bus.AddStale("im.telepathy.v1.Gone")

	h.start()

	if got := h.registry.Len(); got != 0 {
		t.Errorf("registry has %d entries, want 0", got)
	}
	if got := h.coordinator.Stats().Dropped; got != 1 {
		t.Errorf("Dropped = %d, want 1", got)
	}
	if got := h.coordinator.State("im.telepathy.v1.Gone"); got != "dropped" {
		t.Errorf("State = %q, want dropped", got)
	}
}

func TestLookupErrorDoesNotStopOtherNames(t *testing.T) {
	h := newHarness(t, &recordingSink{})
	good := h.bus.Connect()
	h.bus.Claim("im.telepathy.v1.Good", good.Owner())
	broken := h.bus.Connect()
	h.bus.Claim("im.telepathy.v1.Broken", broken.Owner())
	h.bus.LookupErr["im.telepathy.v1.Broken"] = errors.New("access denied")

	h.start()

	if got := h.registry.Owners(); !slices.Equal(got, []string{good.Owner()}) {
		t.Errorf("registry owners = %v, want [%s]", got, good.Owner())
	}
	if got := h.coordinator.Stats().Dropped; got != 1 {
		t.Errorf("Dropped = %d, want 1", got)
	}
}

func TestInfrastructureIdentitiesAreExcluded(t *testing.T) {
	h := newHarness(t, &recordingSink{})
	h.bus.Claim("im.telepathy.v1.Self", h.bus.SelfIdentity())
	h.bus.Claim("im.telepathy.v1.Daemon", busname.DirectoryName)

	h.start()

	if got := h.registry.Len(); got != 0 {
		t.Errorf("registry has %d entries, want 0", got)
	}
	if got := h.coordinator.Stats().Excluded; got != 2 {
		t.Errorf("Excluded = %d, want 2", got)
	}
	if got := h.subscriber.Stats().Started; got != 0 {
		t.Errorf("subscriber started %d streams, want 0", got)
	}
}

func TestListFailureKeepsWatching(t *testing.T) {
	h := newHarness(t, &recordingSink{})
	h.bus.ListErr = errors.New("bus busy")

	h.start()

	peer := h.bus.Connect()
	h.bus.Claim("im.telepathy.v1.Late", peer.Owner())
	h.loop.RunUntilIdle()

	if got := h.registry.Owners(); !slices.Equal(got, []string{peer.Owner()}) {
		t.Errorf("registry owners = %v, want [%s]", got, peer.Owner())
	}
}

func TestLateClaimRegistersWithoutLookup(t *testing.T) {
	h := newHarness(t, &recordingSink{})
	h.start()

	peer := h.bus.Connect()
	h.bus.Claim("im.telepathy.v1.Late", peer.Owner())
	h.loop.RunUntilIdle()

	if got := h.bus.Lookups(); len(got) != 0 {
		t.Errorf("Lookups() = %v, want none", got)
	}
	if got := h.coordinator.State("im.telepathy.v1.Late"); got != "registered" {
		t.Errorf("State = %q, want registered", got)
	}
	if !peer.Enabled() {
		t.Error("late peer was not enabled")
	}
}

func TestHistoryThenLiveMessages(t *testing.T) {
	sink := &recordingSink{}
	h := newHarness(t, sink)
	peer := h.bus.Connect()
	peer.History = []debugmsg.Message{message("first"), message("second")}
	h.bus.Claim("im.telepathy.v1.Foo", peer.Owner())

	h.start()
	peer.Log(message("third"))
	h.loop.RunUntilIdle()

	if got := sink.texts(); !slices.Equal(got, []string{"first", "second", "third"}) {
		t.Errorf("emitted %v, want [first second third]", got)
	}
	for _, emitted := range sink.messages {
		if emitted.Source != peer.Owner() {
			t.Errorf("Source = %q, want %q", emitted.Source, peer.Owner())
		}
	}
	stats := h.subscriber.Stats()
	if stats.HistoryMessages != 2 || stats.LiveMessages != 1 {
		t.Errorf("history %d live %d, want 2 and 1", stats.HistoryMessages, stats.LiveMessages)
	}
}

func TestPeerLossClosesSubscription(t *testing.T) {
	sink := &recordingSink{}
	h := newHarness(t, sink)
	peer := h.bus.Connect()
	h.bus.Claim("im.telepathy.v1.Foo", peer.Owner())
	h.start()

	if got := peer.Subscribers(); got != 1 {
		t.Fatalf("subscribers = %d, want 1", got)
	}

	h.bus.Disconnect(peer.Owner())
	h.loop.RunUntilIdle()

	if got := peer.Subscribers(); got != 0 {
		t.Errorf("subscribers after disconnect = %d, want 0", got)
	}
	service, ok := h.registry.Lookup(peer.Owner())
	if !ok || !service.Lost {
		t.Errorf("registry entry = %+v, %v; want lost entry", service, ok)
	}
	if got := h.coordinator.Stats().Lost; got != 1 {
		t.Errorf("Lost = %d, want 1", got)
	}

	peer.Log(message("after exit"))
	h.loop.RunUntilIdle()
	if len(sink.messages) != 0 {
		t.Errorf("emitted %v after the peer left", sink.texts())
	}
}

func TestNameReclaimedByNewProcess(t *testing.T) {
	h := newHarness(t, &recordingSink{})
	first := h.bus.Connect()
	h.bus.Claim("im.telepathy.v1.Foo", first.Owner())
	h.start()

	h.bus.Disconnect(first.Owner())
	second := h.bus.Connect()
	h.bus.Claim("im.telepathy.v1.Foo", second.Owner())
	h.loop.RunUntilIdle()

	if got := h.registry.Active(); got != 1 {
		t.Errorf("active entries = %d, want 1", got)
	}
	if !second.Enabled() {
		t.Error("replacement process was not enabled")
	}
	if got := h.coordinator.Stats().Registered; got != 2 {
		t.Errorf("Registered = %d, want 2", got)
	}
}

func TestRepeatedClaimBySameOwnerStaysRegistered(t *testing.T) {
	h := newHarness(t, &recordingSink{})
	peer := h.bus.Connect()
	h.bus.Claim("im.telepathy.v1.Foo", peer.Owner())
	h.start()

	if got := h.coordinator.State("im.telepathy.v1.Foo"); got != "registered" {
		t.Fatalf("State = %q, want registered", got)
	}

	h.bus.Announce(busname.OwnerChange{Name: "im.telepathy.v1.Foo", NewOwner: peer.Owner()})
	h.loop.RunUntilIdle()

	if got := h.coordinator.State("im.telepathy.v1.Foo"); got != "registered" {
		t.Errorf("State after repeated claim = %q, want registered", got)
	}
	if got := h.registry.Len(); got != 1 {
		t.Errorf("registry entries = %d, want 1", got)
	}
	if got := peer.Subscribers(); got != 1 {
		t.Errorf("subscribers = %d, want 1", got)
	}
	if got := h.coordinator.Stats().Duplicates; got != 0 {
		t.Errorf("Duplicates = %d, want 0", got)
	}
}

func TestEnableFailureIsIsolated(t *testing.T) {
	sink := &recordingSink{}
	h := newHarness(t, sink)
	failing := h.bus.Connect()
	failing.EnableErr = errors.New("permission denied")
	failing.History = []debugmsg.Message{message("failing history")}
	h.bus.Claim("im.telepathy.v1.Failing", failing.Owner())
	working := h.bus.Connect()
	working.History = []debugmsg.Message{message("working history")}
	h.bus.Claim("im.telepathy.v1.Working", working.Owner())

	h.start()
	working.Log(message("working live"))
	h.loop.RunUntilIdle()

	if service, _ := h.registry.Lookup(failing.Owner()); service == nil || service.Enabled {
		t.Errorf("failing peer entry = %+v, want registered and not enabled", service)
	}
	if service, _ := h.registry.Lookup(working.Owner()); service == nil || !service.Enabled {
		t.Errorf("working peer entry = %+v, want enabled", service)
	}
	texts := sink.texts()
	for _, want := range []string{"failing history", "working history", "working live"} {
		if !slices.Contains(texts, want) {
			t.Errorf("emitted %v, missing %q", texts, want)
		}
	}
	if got := h.subscriber.Stats().EnableFailures; got != 1 {
		t.Errorf("EnableFailures = %d, want 1", got)
	}
}

func TestHungPeerDoesNotBlockOthers(t *testing.T) {
	sink := &recordingSink{}
	h := newHarness(t, sink)
	hung := h.bus.Connect()
	hung.HangEnable = true
	hung.HangHistory = true
	hung.HangSubscribe = true
	h.bus.Claim("im.telepathy.v1.Hung", hung.Owner())
	h.bus.AddStale("im.telepathy.v1.Slow")
	h.bus.HangLookup["im.telepathy.v1.Slow"] = true
	working := h.bus.Connect()
	h.bus.Claim("im.telepathy.v1.Working", working.Owner())

	h.start()
	working.Log(message("still flowing"))
	h.loop.RunUntilIdle()

	if got := sink.texts(); !slices.Equal(got, []string{"still flowing"}) {
		t.Errorf("emitted %v, want [still flowing]", got)
	}
	if got := h.coordinator.State("im.telepathy.v1.Slow"); got != "resolving" {
		t.Errorf("State of hung lookup = %q, want resolving", got)
	}
	if got := h.loop.Pending(); got != 0 {
		t.Errorf("loop has %d pending callbacks after idle", got)
	}
}

func TestHungListStillWatches(t *testing.T) {
	h := newHarness(t, &recordingSink{})
	h.bus.HangList = true
	h.start()

	peer := h.bus.Connect()
	h.bus.Claim("im.telepathy.v1.Late", peer.Owner())
	h.loop.RunUntilIdle()

	if got := h.registry.Len(); got != 1 {
		t.Errorf("registry has %d entries, want 1", got)
	}
}

func TestCloseStopsWatching(t *testing.T) {
	h := newHarness(t, &recordingSink{})
	h.start()
	if got := h.bus.Watchers(); got != 1 {
		t.Fatalf("watchers = %d, want 1", got)
	}
	if err := h.coordinator.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if got := h.bus.Watchers(); got != 0 {
		t.Errorf("watchers after Close = %d, want 0", got)
	}
	if err := h.coordinator.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestJSONOutputEndToEnd(t *testing.T) {
	var output bytes.Buffer
	sink := emitter.New(&output, emitter.Options{Format: emitter.FormatJSON, Location: time.UTC})
	h := newHarness(t, sink)

	peer := h.bus.Connect()
	first := debugmsg.FromWire("", debugmsg.Record{
		Timestamp: 1360000000.000042,
		Domain:    "gabble/connection",
		Level:     debugmsg.WireWarning,
		Message:   "connecting\n",
	})
	second := first
	second.Time = first.Time.Add(1500 * time.Microsecond)
	second.Text = "connected"
	peer.History = []debugmsg.Message{first, second}
	h.bus.Claim("im.telepathy.v1.Foo", peer.Owner())

	h.start()

	lines := strings.Split(strings.TrimSuffix(output.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %q", len(lines), output.String())
	}
	var records [2]emitter.Record
	for i, line := range lines {
		if err := json.Unmarshal([]byte(line), &records[i]); err != nil {
			t.Fatalf("decoding %q: %v", line, err)
		}
	}
	want := emitter.Record{
		Time:       "2013-02-04 17:46:40",
		Usec:       0,
		UniqueName: peer.Owner(),
		Domain:     "gabble",
		Category:   "connection",
		Level:      uint32(debugmsg.LevelWarning),
		Message:    "connecting",
		Stamp:      1360000000000042,
	}
	if records[0] != want {
		t.Errorf("first record = %+v, want %+v", records[0], want)
	}
	if records[1].Usec != 1500 {
		t.Errorf("second record usec = %d, want 1500", records[1].Usec)
	}
}
