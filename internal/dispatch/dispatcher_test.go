// HalaConnect Realtime - Presence and Call Signaling Service
// Copyright 2026 HalaConnect
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/halaconnect/realtime

package dispatch

import (
	"io"
	"testing"

	"github.com/halaconnect/realtime/internal/events"
	"github.com/halaconnect/realtime/internal/logging"
	"github.com/halaconnect/realtime/internal/presence"
)

//nolint:gochecknoinits // quiet logging during tests
func init() {
	logging.Init(logging.Config{Level: "disabled", Output: io.Discard})
}

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

func TestToUserDeliversWhenOnline(t *testing.T) {
	registry := presence.NewRegistry()
	conn := &fakeConn{}
	registry.Register("alice", conn)

	dispatcher := NewDispatcher(registry)
	event := events.MessagesRead("conv1", "bob")

	if !dispatcher.ToUser("alice", event) {
		t.Fatal("delivery to an online user should report true")
	}
	if len(conn.sent) != 1 {
		t.Fatalf("conn received %d events, want 1", len(conn.sent))
	}
	if conn.sent[0].Type != events.TypeMessagesRead {
		t.Errorf("event type = %q, want messages_read", conn.sent[0].Type)
	}
}

func TestToUserOfflineIsSilent(t *testing.T) {
	dispatcher := NewDispatcher(presence.NewRegistry())

	// Offline target: no delivery, no error, just a false flag.
	if dispatcher.ToUser("nobody", events.Pong()) {
		t.Error("delivery to an offline user should report false")
	}
}

func TestToUserFullBufferDrops(t *testing.T) {
	registry := presence.NewRegistry()
	conn := &fakeConn{full: true}
	registry.Register("alice", conn)

	dispatcher := NewDispatcher(registry)
	if dispatcher.ToUser("alice", events.Pong()) {
		t.Error("delivery into a full buffer should report false")
	}
}

func TestToUsersPartialDelivery(t *testing.T) {
	registry := presence.NewRegistry()
	alice := &fakeConn{}
	carol := &fakeConn{}
	registry.Register("alice", alice)
	registry.Register("carol", carol)

	dispatcher := NewDispatcher(registry)
	event := events.Notification("friend_request", []byte(`{"id":"n1"}`))

	delivered := dispatcher.ToUsers([]string{"alice", "bob", "carol"}, event)
	if delivered != 2 {
		t.Errorf("delivered = %d, want 2 (bob is offline)", delivered)
	}
	if len(alice.sent) != 1 || len(carol.sent) != 1 {
		t.Error("both online users should receive exactly one event")
	}
}
