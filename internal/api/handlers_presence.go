// HalaConnect Realtime - Presence and Call Signaling Service
// Copyright 2026 HalaConnect
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/halaconnect/realtime

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

var startedAt = time.Now()

// OnlineUsers handles GET /v1/presence/online: a snapshot of online user
// IDs.
func (h *Handler) OnlineUsers(w http.ResponseWriter, r *http.Request) {
	users := h.registry.Online()
	respondJSON(w, http.StatusOK, map[string]any{
		"users": users,
		"count": len(users),
	})
}

// UserPresence handles GET /v1/presence/{userID}.
func (h *Handler) UserPresence(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	respondJSON(w, http.StatusOK, map[string]any{
		"userId": userID,
		"online": h.registry.IsOnline(userID),
	})
}

// CallPartner handles GET /internal/calls/partner/{userID}: the other
// participant of the user's active call, if any.
func (h *Handler) CallPartner(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	partner, inCall := h.tracker.PartnerOf(userID)
	respondJSON(w, http.StatusOK, map[string]any{
		"userId":    userID,
		"inCall":    inCall,
		"partnerId": partner,
	})
}

// Health handles GET /healthz.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"uptime_seconds": int(time.Since(startedAt).Seconds()),
		"online_users":   h.registry.Count(),
		"active_calls":   h.tracker.Active(),
	})
}
