// HalaConnect Realtime - Presence and Call Signaling Service
// Copyright 2026 HalaConnect
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/halaconnect/realtime

package api

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/halaconnect/realtime/internal/auth"
	"github.com/halaconnect/realtime/internal/calls"
	"github.com/halaconnect/realtime/internal/dispatch"
	"github.com/halaconnect/realtime/internal/events"
	"github.com/halaconnect/realtime/internal/logging"
	"github.com/halaconnect/realtime/internal/metrics"
	"github.com/halaconnect/realtime/internal/presence"
)

// Handler carries the shared state behind the HTTP control surface.
type Handler struct {
	registry   *presence.Registry
	tracker    *calls.Tracker
	dispatcher *dispatch.Dispatcher
	tokens     *calls.TokenIssuer
	validate   *validator.Validate
}

// NewHandler creates the API handler.
func NewHandler(registry *presence.Registry, tracker *calls.Tracker, dispatcher *dispatch.Dispatcher, tokens *calls.TokenIssuer) *Handler {
	return &Handler{
		registry:   registry,
		tracker:    tracker,
		dispatcher: dispatcher,
		tokens:     tokens,
		validate:   validator.New(),
	}
}

type tokenRequest struct {
	ChannelName string `json:"channelName" validate:"required,max=64"`
}

// CallToken handles POST /v1/calls/token: a fresh join token for an
// existing channel (used on reconnect into a running call).
func (h *Handler) CallToken(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	var req tokenRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "channelName is required")
		return
	}

	token, err := h.tokens.Issue(req.ChannelName, userID)
	if err != nil {
		logger := logging.Ctx(r.Context())
		logger.Error().Err(err).Msg("join token issuance failed")
		respondError(w, http.StatusInternalServerError, "TOKEN_ERROR", "error generating token")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"token":       token,
		"channelName": req.ChannelName,
		"uid":         0,
	})
}

type initiateRequest struct {
	ReceiverID   string `json:"receiverId" validate:"required"`
	CallerName   string `json:"callerName"`
	CallerAvatar string `json:"callerAvatar"`
	CallType     string `json:"callType" validate:"omitempty,oneof=video audio"`
}

// InitiateCall handles POST /v1/calls/initiate: mints a channel, issues a
// join token, registers the session, and rings the receiver.
func (h *Handler) InitiateCall(w http.ResponseWriter, r *http.Request) {
	callerID := auth.UserIDFromContext(r.Context())

	var req initiateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "receiverId is required")
		return
	}
	if req.ReceiverID == callerID {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "cannot call yourself")
		return
	}

	channel := calls.ChannelName(callerID, req.ReceiverID)
	token, err := h.tokens.Issue(channel, callerID)
	if err != nil {
		logger := logging.Ctx(r.Context())
		logger.Error().Err(err).Msg("join token issuance failed")
		respondError(w, http.StatusInternalServerError, "TOKEN_ERROR", "error generating token")
		return
	}

	session := h.tracker.Register(callerID, req.ReceiverID, channel)
	delivered := h.dispatcher.ToUser(req.ReceiverID, events.IncomingCall(events.IncomingCallData{
		CallerID:     callerID,
		CallerName:   req.CallerName,
		CallerAvatar: req.CallerAvatar,
		ChannelName:  channel,
		Token:        token,
		CallType:     req.CallType,
	}))

	logger := logging.Ctx(r.Context())
	logger.Info().
		Str("caller", callerID).
		Str("receiver", req.ReceiverID).
		Str("channel", session.Channel).
		Bool("receiver_online", delivered).
		Msg("call initiated")

	respondJSON(w, http.StatusOK, map[string]any{
		"channelName":    channel,
		"token":          token,
		"uid":            0,
		"receiverOnline": delivered,
	})
}

type acceptRequest struct {
	CallerID    string `json:"callerId" validate:"required"`
	ChannelName string `json:"channelName" validate:"required,max=64"`
	UserName    string `json:"userName"`
	UserAvatar  string `json:"userAvatar"`
}

// AcceptCall handles POST /v1/calls/accept: tells the caller the receiver
// picked up. The session was registered at initiation; no tracker change.
func (h *Handler) AcceptCall(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	var req acceptRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "callerId and channelName are required")
		return
	}

	h.dispatcher.ToUser(req.CallerID, events.CallAccepted(events.CallAcceptedData{
		UserID:      userID,
		UserName:    req.UserName,
		UserAvatar:  req.UserAvatar,
		ChannelName: req.ChannelName,
	}))
	respondJSON(w, http.StatusOK, map[string]string{"message": "call accepted"})
}

type rejectRequest struct {
	CallerID string `json:"callerId" validate:"required"`
	Reason   string `json:"reason"`
}

// RejectCall handles POST /v1/calls/reject: declines a ringing call and
// drops the session registered at initiation.
func (h *Handler) RejectCall(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	var req rejectRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "callerId is required")
		return
	}

	if _, ok := h.tracker.RemoveByUser(userID); ok {
		metrics.CallsEnded.WithLabelValues("rejected").Inc()
	}
	h.dispatcher.ToUser(req.CallerID, events.CallRejected(userID, req.Reason))
	respondJSON(w, http.StatusOK, map[string]string{"message": "call rejected"})
}

type endRequest struct {
	OtherID string `json:"otherId" validate:"required"`
}

// EndCall handles POST /v1/calls/end: the voluntary hang-up path. It
// mirrors the websocket end_call frame so a client about to navigate away
// can notify its partner faster than disconnect detection would. The
// partner is notified even when no session is tracked, matching the
// signaling the clients expect for calls rejected before registration.
func (h *Handler) EndCall(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	var req endRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "otherId is required")
		return
	}

	if _, ok := h.tracker.RemoveByUser(userID); ok {
		metrics.CallsEnded.WithLabelValues("hangup").Inc()
	}
	h.dispatcher.ToUser(req.OtherID, events.CallEnded(userID, ""))
	respondJSON(w, http.StatusOK, map[string]string{"message": "call ended"})
}
