// HalaConnect Realtime - Presence and Call Signaling Service
// Copyright 2026 HalaConnect
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/halaconnect/realtime

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/halaconnect/realtime/internal/auth"
	"github.com/halaconnect/realtime/internal/middleware"
)

// RouterConfig holds the cross-cutting settings the router needs.
type RouterConfig struct {
	AllowedOrigins []string
	RateLimitRPM   int
	InternalToken  string
}

// NewRouter wires the full HTTP surface. The websocket handshake is
// mounted outside the instrumented groups: the prometheus wrapper does
// not implement http.Hijacker, and the upgrade needs it.
func NewRouter(handler *Handler, wsHandler http.Handler, verifier *auth.Verifier, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Internal-Token"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Health and metrics: unauthenticated, uninstrumented.
	r.Get("/healthz", handler.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Websocket handshake. Auth happens inside the handler so that a
	// missing credential is distinguishable from an invalid one.
	r.With(rateLimit(cfg.RateLimitRPM)).Get("/ws", wsHandler.ServeHTTP)

	// Client-facing control surface.
	r.Route("/v1", func(r chi.Router) {
		r.Use(rateLimit(cfg.RateLimitRPM))
		r.Use(middleware.Prometheus)
		r.Use(verifier.RequireUser)

		r.Route("/calls", func(r chi.Router) {
			r.Post("/token", handler.CallToken)
			r.Post("/initiate", handler.InitiateCall)
			r.Post("/accept", handler.AcceptCall)
			r.Post("/reject", handler.RejectCall)
			r.Post("/end", handler.EndCall)
		})

		r.Route("/presence", func(r chi.Router) {
			r.Get("/online", handler.OnlineUsers)
			r.Get("/{userID}", handler.UserPresence)
		})
	})

	// Backend-facing surface, shared-secret authenticated. Not rate
	// limited: the CRUD layer fans out bursts (e.g. one notification per
	// friend) and is trusted.
	r.Route("/internal", func(r chi.Router) {
		r.Use(middleware.Prometheus)
		r.Use(auth.RequireInternal(cfg.InternalToken))

		r.Route("/events", func(r chi.Router) {
			r.Post("/notification", handler.DeliverNotification)
			r.Post("/message", handler.DeliverMessage)
			r.Post("/read", handler.DeliverReadReceipt)
		})

		r.Get("/presence/online", handler.OnlineUsers)
		r.Get("/presence/{userID}", handler.UserPresence)
		r.Get("/calls/partner/{userID}", handler.CallPartner)
	})

	return r
}

// rateLimit builds a per-IP limiter, or a no-op when disabled.
func rateLimit(rpm int) func(http.Handler) http.Handler {
	if rpm <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.LimitByIP(rpm, time.Minute)
}
