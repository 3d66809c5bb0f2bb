// HalaConnect Realtime - Presence and Call Signaling Service
// Copyright 2026 HalaConnect
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/halaconnect/realtime

// Package main is the entry point for the HalaConnect realtime server.
//
// The server keeps the process-wide map of online users, routes targeted
// events (notifications, chat messages, call signaling) to whoever is
// currently connected, and tracks active call sessions with
// disconnect-triggered cleanup. The durable social graph — posts,
// comments, friends, messages, notification documents — lives in the CRUD
// backend, which pushes realtime deliveries here over the /internal
// surface.
//
// # Startup order
//
//  1. Configuration: defaults, optional config.yaml, HALA_-prefixed
//     environment variables (Koanf v2)
//  2. Logging: zerolog, level/format from config
//  3. Core state: presence registry, call session tracker, dispatcher
//  4. HTTP surface: chi router (websocket handshake, call signaling,
//     internal delivery, presence queries, health, metrics)
//  5. Supervision: suture tree running the call sweeper and HTTP server
//
// # Configuration
//
// Required (no safe defaults exist for secrets):
//
//	HALA_SECURITY_JWT_SECRET      32+ chars, shared with the account service
//	HALA_SECURITY_INTERNAL_TOKEN  32+ chars, shared with the CRUD backend
//	HALA_SECURITY_RTC_SECRET      32+ chars, shared with the media transport
//
// Common overrides:
//
//	HALA_SERVER_PORT=8090
//	HALA_SECURITY_ALLOWED_ORIGINS=https://app.halaconnect.example
//	HALA_CALLS_MAX_DURATION=4h
//	HALA_LOG_LEVEL=debug
//
// # Signal handling
//
// SIGINT/SIGTERM cancel the root context; the supervisor drains the HTTP
// server within server.shutdown_timeout and stops the sweeper. Presence
// and call state are memory-only and simply discarded.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/halaconnect/realtime/internal/api"
	"github.com/halaconnect/realtime/internal/auth"
	"github.com/halaconnect/realtime/internal/calls"
	"github.com/halaconnect/realtime/internal/config"
	"github.com/halaconnect/realtime/internal/dispatch"
	"github.com/halaconnect/realtime/internal/logging"
	"github.com/halaconnect/realtime/internal/presence"
	"github.com/halaconnect/realtime/internal/supervisor"
	"github.com/halaconnect/realtime/internal/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	logging.Info().
		Str("addr", cfg.Server.Addr()).
		Int("origins", len(cfg.Security.AllowedOrigins)).
		Dur("call_max_duration", cfg.Calls.MaxDuration).
		Msg("starting realtime server")

	verifier, err := auth.NewVerifier(cfg.Security.JWTSecret)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to initialize token verifier")
	}
	tokens, err := calls.NewTokenIssuer(cfg.Security.RTCSecret, cfg.Security.RTCTokenTTL)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to initialize join token issuer")
	}

	registry := presence.NewRegistry()
	tracker := calls.NewTracker()
	dispatcher := dispatch.NewDispatcher(registry)

	wsHandler := ws.NewHandler(verifier, registry, tracker, dispatcher, ws.Config{
		SendBuffer:     cfg.WS.SendBuffer,
		MaxMessageSize: cfg.WS.MaxMessageSize,
		PongWait:       cfg.WS.PongWait,
		WriteWait:      cfg.WS.WriteWait,
		InboundRate:    cfg.WS.InboundRate,
		InboundBurst:   cfg.WS.InboundBurst,
		AllowedOrigins: cfg.Security.AllowedOrigins,
	})

	handler := api.NewHandler(registry, tracker, dispatcher, tokens)
	router := api.NewRouter(handler, wsHandler, verifier, api.RouterConfig{
		AllowedOrigins: cfg.Security.AllowedOrigins,
		RateLimitRPM:   cfg.Security.RateLimitRPM,
		InternalToken:  cfg.Security.InternalToken,
	})

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	tree.AddMessaging(calls.NewSweeper(tracker, dispatcher, cfg.Calls.MaxDuration, cfg.Calls.SweepInterval))
	tree.AddAPI(supervisor.NewHTTPService(server, cfg.Server.ShutdownTimeout))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("shutdown signal received")
		<-errCh
	case err := <-errCh:
		if err != nil && ctx.Err() == nil {
			logging.Fatal().Err(err).Msg("supervisor tree failed")
		}
	}

	logging.Info().Msg("realtime server stopped")
}
