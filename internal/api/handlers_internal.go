// HalaConnect Realtime - Presence and Call Signaling Service
// Copyright 2026 HalaConnect
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/halaconnect/realtime

package api

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/halaconnect/realtime/internal/events"
)

// The /internal surface is how the CRUD backend hands targeted realtime
// events to whoever is online. Responses carry a delivered flag for the
// caller's telemetry; an offline target is not an error.

type notificationRequest struct {
	UserID       string          `json:"userId" validate:"required"`
	Kind         string          `json:"type" validate:"required"`
	Notification json.RawMessage `json:"notification" validate:"required"`
}

// DeliverNotification handles POST /internal/events/notification.
func (h *Handler) DeliverNotification(w http.ResponseWriter, r *http.Request) {
	var req notificationRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "userId, type and notification are required")
		return
	}

	delivered := h.dispatcher.ToUser(req.UserID, events.Notification(req.Kind, req.Notification))
	respondJSON(w, http.StatusOK, map[string]bool{"delivered": delivered})
}

type messageRequest struct {
	UserID         string          `json:"userId" validate:"required"`
	Message        json.RawMessage `json:"message" validate:"required"`
	ConversationID string          `json:"conversationId" validate:"required"`
}

// DeliverMessage handles POST /internal/events/message.
func (h *Handler) DeliverMessage(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "userId, message and conversationId are required")
		return
	}

	delivered := h.dispatcher.ToUser(req.UserID, events.NewMessage(req.Message, req.ConversationID))
	respondJSON(w, http.StatusOK, map[string]bool{"delivered": delivered})
}

type readRequest struct {
	UserID         string `json:"userId" validate:"required"`
	ConversationID string `json:"conversationId" validate:"required"`
	ReadBy         string `json:"readBy" validate:"required"`
}

// DeliverReadReceipt handles POST /internal/events/read.
func (h *Handler) DeliverReadReceipt(w http.ResponseWriter, r *http.Request) {
	var req readRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "userId, conversationId and readBy are required")
		return
	}

	delivered := h.dispatcher.ToUser(req.UserID, events.MessagesRead(req.ConversationID, req.ReadBy))
	respondJSON(w, http.StatusOK, map[string]bool{"delivered": delivered})
}
