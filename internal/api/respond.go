// HalaConnect Realtime - Presence and Call Signaling Service
// Copyright 2026 HalaConnect
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/halaconnect/realtime

// Package api exposes the HTTP control surface: call signaling for
// clients, targeted event delivery for the CRUD backend, presence
// queries, and health.
package api

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/halaconnect/realtime/internal/logging"
)

// errorBody is the error envelope shared by every failing response.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// respondJSON writes a JSON response with the given status.
func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.Error().Err(err).Msg("failed to encode response")
	}
}

// respondError writes a JSON error envelope.
func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: message}})
}

// decodeBody parses a JSON request body into dst, answering 400 itself on
// failure.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
		return false
	}
	return true
}
