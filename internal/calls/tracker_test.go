// HalaConnect Realtime - Presence and Call Signaling Service
// Copyright 2026 HalaConnect
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/halaconnect/realtime

package calls

import (
	"strings"
	"testing"
	"time"
)

func TestRegisterAndPartner(t *testing.T) {
	tracker := NewTracker()
	tracker.Register("alice", "bob", "call_abc123")

	partner, ok := tracker.PartnerOf("alice")
	if !ok || partner != "bob" {
		t.Errorf("PartnerOf(alice) = %q, %v; want bob, true", partner, ok)
	}
	partner, ok = tracker.PartnerOf("bob")
	if !ok || partner != "alice" {
		t.Errorf("PartnerOf(bob) = %q, %v; want alice, true", partner, ok)
	}
	if _, ok := tracker.PartnerOf("carol"); ok {
		t.Error("PartnerOf(carol) should report no session")
	}
	if tracker.Active() != 1 {
		t.Errorf("Active() = %d, want 1", tracker.Active())
	}
}

func TestRegisterOverwritesChannel(t *testing.T) {
	tracker := NewTracker()
	tracker.Register("alice", "bob", "call_abc123")
	tracker.Register("carol", "dave", "call_abc123")

	if tracker.Active() != 1 {
		t.Fatalf("Active() = %d, want 1 (last write wins per channel)", tracker.Active())
	}
	if _, ok := tracker.PartnerOf("alice"); ok {
		t.Error("overwritten session should no longer resolve")
	}
	if partner, _ := tracker.PartnerOf("carol"); partner != "dave" {
		t.Errorf("PartnerOf(carol) = %q, want dave", partner)
	}
}

func TestRemove(t *testing.T) {
	tracker := NewTracker()
	tracker.Register("alice", "bob", "call_abc123")

	if !tracker.Remove("call_abc123") {
		t.Fatal("Remove should report a deletion")
	}
	if tracker.Remove("call_abc123") {
		t.Fatal("second Remove should report nothing to delete")
	}
}

func TestRemoveByUser(t *testing.T) {
	tracker := NewTracker()
	tracker.Register("alice", "bob", "call_abc123")

	session, ok := tracker.RemoveByUser("alice")
	if !ok {
		t.Fatal("RemoveByUser(alice) should find the session")
	}
	if session.Caller != "alice" || session.Receiver != "bob" || session.Channel != "call_abc123" {
		t.Errorf("unexpected session: %+v", session)
	}

	// Cleanup is idempotent: nothing left for either participant.
	if _, ok := tracker.RemoveByUser("alice"); ok {
		t.Error("second RemoveByUser(alice) should find nothing")
	}
	if _, ok := tracker.PartnerOf("alice"); ok {
		t.Error("PartnerOf(alice) should be empty after removal")
	}
	if _, ok := tracker.PartnerOf("bob"); ok {
		t.Error("PartnerOf(bob) should be empty after removal")
	}
}

func TestRemoveByUserAsReceiver(t *testing.T) {
	tracker := NewTracker()
	tracker.Register("alice", "bob", "call_abc123")

	session, ok := tracker.RemoveByUser("bob")
	if !ok || session.Channel != "call_abc123" {
		t.Errorf("RemoveByUser(bob) = %+v, %v; want the session", session, ok)
	}
}

func TestSessionPartner(t *testing.T) {
	session := Session{Channel: "c", Caller: "alice", Receiver: "bob"}
	if got := session.Partner("alice"); got != "bob" {
		t.Errorf("Partner(alice) = %q, want bob", got)
	}
	if got := session.Partner("bob"); got != "alice" {
		t.Errorf("Partner(bob) = %q, want alice", got)
	}
	if got := session.Partner("carol"); got != "" {
		t.Errorf("Partner(carol) = %q, want empty", got)
	}
}

func TestChannelName(t *testing.T) {
	caller := "64f1aa0bc4455a0001234567"
	receiver := "64f1aa0bc4455a0007654321"

	name := ChannelName(caller, receiver)
	if !strings.HasPrefix(name, "call_") {
		t.Errorf("channel %q should start with call_", name)
	}
	if !strings.Contains(name, "234567") || !strings.Contains(name, "654321") {
		t.Errorf("channel %q should embed the last six bytes of both IDs", name)
	}
	if len(name) > 64 {
		t.Errorf("channel %q exceeds the 64 byte limit", name)
	}
}

func TestSessionsSnapshot(t *testing.T) {
	tracker := NewTracker()
	tracker.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	tracker.Register("alice", "bob", "call_1")
	tracker.Register("carol", "dave", "call_2")

	sessions := tracker.Sessions()
	if len(sessions) != 2 {
		t.Fatalf("Sessions() returned %d entries, want 2", len(sessions))
	}
	for _, s := range sessions {
		if s.StartedAt.IsZero() {
			t.Error("session StartedAt should be set")
		}
	}
}
