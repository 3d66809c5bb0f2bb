// HalaConnect Realtime - Presence and Call Signaling Service
// Copyright 2026 HalaConnect
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/halaconnect/realtime

package ws

import (
	"errors"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/halaconnect/realtime/internal/auth"
	"github.com/halaconnect/realtime/internal/calls"
	"github.com/halaconnect/realtime/internal/dispatch"
	"github.com/halaconnect/realtime/internal/events"
	"github.com/halaconnect/realtime/internal/logging"
	"github.com/halaconnect/realtime/internal/metrics"
	"github.com/halaconnect/realtime/internal/presence"
)

// Config holds transport tuning for accepted connections.
type Config struct {
	SendBuffer     int
	MaxMessageSize int64
	PongWait       time.Duration
	WriteWait      time.Duration
	InboundRate    float64
	InboundBurst   int

	// AllowedOrigins for the browser handshake. Empty means gorilla's
	// same-origin default.
	AllowedOrigins []string
}

// Handler upgrades authenticated requests to websocket connections and
// owns the connect/disconnect lifecycle against both registries.
type Handler struct {
	verifier   *auth.Verifier
	registry   *presence.Registry
	tracker    *calls.Tracker
	dispatcher *dispatch.Dispatcher
	upgrader   websocket.Upgrader
	cfg        Config
}

// NewHandler creates the websocket handshake handler.
func NewHandler(verifier *auth.Verifier, registry *presence.Registry, tracker *calls.Tracker, dispatcher *dispatch.Dispatcher, cfg Config) *Handler {
	h := &Handler{
		verifier:   verifier,
		registry:   registry,
		tracker:    tracker,
		dispatcher: dispatcher,
		cfg:        cfg,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(cfg.AllowedOrigins),
	}
	return h
}

// originChecker allows the configured origins. With no configuration the
// nil checker falls back to gorilla's same-origin policy.
func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(allowed))
	wildcard := false
	for _, origin := range allowed {
		if origin == "*" {
			wildcard = true
		}
		set[origin] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if wildcard {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}

// ServeHTTP handles GET /ws. Authentication happens before the upgrade:
// a connection that fails the credential check never touches the
// presence registry.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID, err := h.verifier.Verify(auth.TokenFromRequest(r))
	if err != nil {
		outcome := "auth_invalid"
		if errors.Is(err, auth.ErrMissingToken) {
			outcome = "auth_missing"
		}
		metrics.ConnectionsTotal.WithLabelValues(outcome).Inc()
		logger := logging.Ctx(r.Context())
		logger.Debug().Err(err).Msg("websocket handshake rejected")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		//nolint:errcheck // best-effort error body
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"code": "UNAUTHORIZED", "message": "authentication error"},
		})
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		metrics.ConnectionsTotal.WithLabelValues("upgrade_error").Inc()
		logger := logging.Ctx(r.Context())
		logger.Warn().Err(err).Str("user_id", userID).Msg("websocket upgrade failed")
		return
	}

	client := newClient(conn, userID, h.cfg)

	// Last-connected-wins: a newer connection displaces the old mapping,
	// and the stale socket is shut down so its client notices promptly.
	if displaced := h.registry.Register(userID, client); displaced != nil {
		if stale, ok := displaced.(*Client); ok {
			logging.Info().Str("user_id", userID).Uint64("stale_conn", stale.id).Msg("displacing stale connection")
			stale.close()
		}
	}

	metrics.ConnectionsTotal.WithLabelValues("accepted").Inc()
	metrics.ConnectionsActive.Inc()
	logging.Info().Str("user_id", userID).Uint64("conn", client.id).Int("online", h.registry.Count()).Msg("user connected")

	go client.writePump()
	go client.readPump(h)
}

// handleDisconnect runs once per connection when its read pump exits. The
// call session must be cleaned up before the presence entry so the
// partner can still be notified through the registry, and the presence
// removal is conditional so a stale connection's cleanup cannot evict a
// newer mapping for the same user.
func (h *Handler) handleDisconnect(c *Client) {
	if session, ok := h.tracker.RemoveByUser(c.userID); ok {
		metrics.CallsEnded.WithLabelValues(events.ReasonUserDisconnected).Inc()
		partner := session.Partner(c.userID)
		h.dispatcher.ToUser(partner, events.CallEnded(c.userID, events.ReasonUserDisconnected))
		logging.Info().
			Str("user_id", c.userID).
			Str("partner", partner).
			Str("channel", session.Channel).
			Msg("call ended by disconnect")
	}

	removed := h.registry.RemoveConn(c.userID, c)
	metrics.ConnectionsActive.Dec()
	logging.Info().
		Str("user_id", c.userID).
		Uint64("conn", c.id).
		Bool("presence_removed", removed).
		Int("online", h.registry.Count()).
		Msg("user disconnected")
}

// EndCall is the voluntary hang-up path, reachable from the end_call
// client frame (and mirrored by POST /v1/calls/end). It removes the
// caller's session if one is tracked and notifies the partner without a
// reason field. Cleanup is idempotent: a later disconnect of the same
// user finds no session and emits nothing.
func (h *Handler) EndCall(userID, otherID string) {
	if _, ok := h.tracker.RemoveByUser(userID); ok {
		metrics.CallsEnded.WithLabelValues("hangup").Inc()
	}
	h.dispatcher.ToUser(otherID, events.CallEnded(userID, ""))
}
