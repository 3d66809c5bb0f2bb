// HalaConnect Realtime - Presence and Call Signaling Service
// Copyright 2026 HalaConnect
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/halaconnect/realtime

package events

import (
	"testing"

	"github.com/goccy/go-json"
)

func marshal(t *testing.T, event Event) string {
	t.Helper()
	data, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshaling event: %v", err)
	}
	return string(data)
}

func TestIncomingCallDefaultsToVideo(t *testing.T) {
	event := IncomingCall(IncomingCallData{CallerID: "alice", ChannelName: "call_abc"})
	data := event.Data.(IncomingCallData)
	if data.CallType != "video" {
		t.Errorf("callType = %q, want video", data.CallType)
	}

	event = IncomingCall(IncomingCallData{CallerID: "alice", ChannelName: "call_abc", CallType: "audio"})
	if event.Data.(IncomingCallData).CallType != "audio" {
		t.Error("explicit callType should be preserved")
	}
}

func TestCallRejectedDefaultReason(t *testing.T) {
	event := CallRejected("bob", "")
	if event.Data.(CallRejectedData).Reason != "rejected" {
		t.Error("empty reason should default to rejected")
	}
	event = CallRejected("bob", "busy")
	if event.Data.(CallRejectedData).Reason != "busy" {
		t.Error("explicit reason should be preserved")
	}
}

func TestWireShapes(t *testing.T) {
	// Clients key off these exact field names; the assertions below are
	// the wire contract.
	tests := []struct {
		name  string
		event Event
		want  string
	}{
		{
			"notification",
			Notification("like_post", []byte(`{"id":"n1"}`)),
			`{"type":"notification","data":{"type":"like_post","notification":{"id":"n1"}}}`,
		},
		{
			"new_message",
			NewMessage([]byte(`{"text":"hi"}`), "conv1"),
			`{"type":"new_message","data":{"message":{"text":"hi"},"conversationId":"conv1"}}`,
		},
		{
			"messages_read",
			MessagesRead("conv1", "alice"),
			`{"type":"messages_read","data":{"conversationId":"conv1","readBy":"alice"}}`,
		},
		{
			"call_ended voluntary omits reason",
			CallEnded("alice", ""),
			`{"type":"call_ended","data":{"userId":"alice"}}`,
		},
		{
			"call_ended disconnect",
			CallEnded("alice", ReasonUserDisconnected),
			`{"type":"call_ended","data":{"userId":"alice","reason":"user_disconnected"}}`,
		},
		{
			"pong has no data",
			Pong(),
			`{"type":"pong"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := marshal(t, tt.event); got != tt.want {
				t.Errorf("wire form = %s, want %s", got, tt.want)
			}
		})
	}
}
