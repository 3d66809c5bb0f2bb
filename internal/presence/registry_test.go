// HalaConnect Realtime - Presence and Call Signaling Service
// Copyright 2026 HalaConnect
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/halaconnect/realtime

package presence

import (
	"sort"
	"testing"

	"github.com/halaconnect/realtime/internal/events"
)

// fakeConn records sent events for assertions.
type fakeConn struct {
	sent []events.Event
	full bool
}

func (c *fakeConn) Send(event events.Event) bool {
	if c.full {
		return false
	}
	c.sent = append(c.sent, event)
	return true
}

func TestRegisterAndLookup(t *testing.T) {
	registry := NewRegistry()
	conn := &fakeConn{}

	if displaced := registry.Register("alice", conn); displaced != nil {
		t.Fatalf("expected no displaced conn on first register, got %v", displaced)
	}
	if !registry.IsOnline("alice") {
		t.Error("alice should be online after register")
	}
	got, ok := registry.Lookup("alice")
	if !ok {
		t.Fatal("lookup should find alice")
	}
	if got != Conn(conn) {
		t.Error("lookup returned a different handle than registered")
	}
}

func TestRegisterLastWriteWins(t *testing.T) {
	registry := NewRegistry()
	first := &fakeConn{}
	second := &fakeConn{}

	registry.Register("alice", first)
	displaced := registry.Register("alice", second)

	if displaced != Conn(first) {
		t.Fatal("second register should return the first conn as displaced")
	}
	got, _ := registry.Lookup("alice")
	if got != Conn(second) {
		t.Error("lookup should return the newest handle")
	}
	if registry.Count() != 1 {
		t.Errorf("count = %d, want 1", registry.Count())
	}
}

func TestRemove(t *testing.T) {
	registry := NewRegistry()
	registry.Register("alice", &fakeConn{})

	registry.Remove("alice")
	if registry.IsOnline("alice") {
		t.Error("alice should be offline after remove")
	}

	// Removing an absent user is a no-op, not an error.
	registry.Remove("nobody")
}

func TestRemoveConnConditional(t *testing.T) {
	registry := NewRegistry()
	stale := &fakeConn{}
	fresh := &fakeConn{}

	// A reconnect displaces the stale mapping; the stale connection's
	// late disconnect cleanup must not evict the fresh one.
	registry.Register("alice", stale)
	registry.Register("alice", fresh)

	if registry.RemoveConn("alice", stale) {
		t.Fatal("conditional remove with a stale handle should be a no-op")
	}
	if !registry.IsOnline("alice") {
		t.Fatal("alice should still be online via the fresh connection")
	}

	if !registry.RemoveConn("alice", fresh) {
		t.Fatal("conditional remove with the current handle should succeed")
	}
	if registry.IsOnline("alice") {
		t.Error("alice should be offline after conditional remove")
	}
}

func TestRemoveConnAbsentUser(t *testing.T) {
	registry := NewRegistry()
	if registry.RemoveConn("ghost", &fakeConn{}) {
		t.Error("conditional remove of an absent user should report false")
	}
}

func TestOnlineSnapshot(t *testing.T) {
	registry := NewRegistry()
	registry.Register("alice", &fakeConn{})
	registry.Register("bob", &fakeConn{})
	registry.Register("carol", &fakeConn{})
	registry.Remove("bob")

	online := registry.Online()
	sort.Strings(online)
	want := []string{"alice", "carol"}
	if len(online) != len(want) {
		t.Fatalf("online = %v, want %v", online, want)
	}
	for i := range want {
		if online[i] != want[i] {
			t.Fatalf("online = %v, want %v", online, want)
		}
	}

	// The snapshot must not track later mutations.
	registry.Register("dave", &fakeConn{})
	if len(online) != 2 {
		t.Error("snapshot should not grow after later registrations")
	}
}
