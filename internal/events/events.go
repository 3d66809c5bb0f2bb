// HalaConnect Realtime - Presence and Call Signaling Service
// Copyright 2026 HalaConnect
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/halaconnect/realtime

// Package events defines the catalog of named events pushed to connected
// clients. Every outbound frame is an Event with a type tag and a typed
// payload, so payload shapes are checked at the call site instead of being
// assembled ad hoc from maps.
package events

import "github.com/goccy/go-json"

// Outbound event types.
const (
	TypeNotification = "notification"
	TypeNewMessage   = "new_message"
	TypeMessagesRead = "messages_read"
	TypeIncomingCall = "incoming_call"
	TypeCallAccepted = "call_accepted"
	TypeCallRejected = "call_rejected"
	TypeCallEnded    = "call_ended"
	TypePong         = "pong"
)

// Inbound frame types sent by clients.
const (
	TypePing    = "ping"
	TypeEndCall = "end_call"
)

// Call end reasons carried in call_ended payloads. A voluntary hang-up
// carries no reason.
const (
	ReasonUserDisconnected = "user_disconnected"
	ReasonExpired          = "expired"
)

// Event is a single named event delivered to a client.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// NotificationData wraps a persisted notification document for realtime
// delivery. Kind mirrors the document's type field (friend_request,
// friend_request_accepted, like_post, comment, reply_comment, like_comment).
// The document itself is opaque to this service.
type NotificationData struct {
	Kind         string          `json:"type"`
	Notification json.RawMessage `json:"notification"`
}

// NewMessageData carries a chat message to the other conversation
// participant.
type NewMessageData struct {
	Message        json.RawMessage `json:"message"`
	ConversationID string          `json:"conversationId"`
}

// MessagesReadData is a read receipt for a conversation.
type MessagesReadData struct {
	ConversationID string `json:"conversationId"`
	ReadBy         string `json:"readBy"`
}

// IncomingCallData rings the receiver of a newly initiated call. Token is
// the join credential for the media transport; it never grants access to
// this service.
type IncomingCallData struct {
	CallerID     string `json:"callerId"`
	CallerName   string `json:"callerName,omitempty"`
	CallerAvatar string `json:"callerAvatar,omitempty"`
	ChannelName  string `json:"channelName"`
	Token        string `json:"token,omitempty"`
	CallType     string `json:"callType"`
}

// CallAcceptedData tells the caller the receiver picked up.
type CallAcceptedData struct {
	UserID      string `json:"userId"`
	UserName    string `json:"userName,omitempty"`
	UserAvatar  string `json:"userAvatar,omitempty"`
	ChannelName string `json:"channelName"`
}

// CallRejectedData tells the caller the receiver declined.
type CallRejectedData struct {
	UserID string `json:"userId"`
	Reason string `json:"reason"`
}

// CallEndedData tells the surviving party the call is over. Reason is
// empty on voluntary hang-up, "user_disconnected" when the partner's
// connection dropped, "expired" when the sweeper evicted the session.
type CallEndedData struct {
	UserID string `json:"userId"`
	Reason string `json:"reason,omitempty"`
}

// Notification builds a notification event.
func Notification(kind string, doc json.RawMessage) Event {
	return Event{Type: TypeNotification, Data: NotificationData{Kind: kind, Notification: doc}}
}

// NewMessage builds a new_message event.
func NewMessage(message json.RawMessage, conversationID string) Event {
	return Event{Type: TypeNewMessage, Data: NewMessageData{Message: message, ConversationID: conversationID}}
}

// MessagesRead builds a messages_read event.
func MessagesRead(conversationID, readBy string) Event {
	return Event{Type: TypeMessagesRead, Data: MessagesReadData{ConversationID: conversationID, ReadBy: readBy}}
}

// IncomingCall builds an incoming_call event.
func IncomingCall(data IncomingCallData) Event {
	if data.CallType == "" {
		data.CallType = "video"
	}
	return Event{Type: TypeIncomingCall, Data: data}
}

// CallAccepted builds a call_accepted event.
func CallAccepted(data CallAcceptedData) Event {
	return Event{Type: TypeCallAccepted, Data: data}
}

// CallRejected builds a call_rejected event.
func CallRejected(userID, reason string) Event {
	if reason == "" {
		reason = "rejected"
	}
	return Event{Type: TypeCallRejected, Data: CallRejectedData{UserID: userID, Reason: reason}}
}

// CallEnded builds a call_ended event. Pass an empty reason for a
// voluntary hang-up.
func CallEnded(userID, reason string) Event {
	return Event{Type: TypeCallEnded, Data: CallEndedData{UserID: userID, Reason: reason}}
}

// Pong builds the keepalive reply to a client ping frame.
func Pong() Event {
	return Event{Type: TypePong}
}
