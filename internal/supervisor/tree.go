// HalaConnect Realtime - Presence and Call Signaling Service
// Copyright 2026 HalaConnect
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/halaconnect/realtime

// Package supervisor provides Suture-based process supervision. The tree
// has two layers: messaging (call sweeper) and api (HTTP server), so a
// crash loop in one cannot take the other down.
package supervisor

import (
	"context"
	"log/slog"
	"time"

	"github.com/thejerf/suture/v4"
	"github.com/thejerf/sutureslog"
)

// TreeConfig holds supervisor tree configuration.
type TreeConfig struct {
	// FailureThreshold is the number of failures before entering backoff.
	FailureThreshold float64

	// FailureBackoff is the duration to wait when the threshold is
	// exceeded.
	FailureBackoff time.Duration

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	ShutdownTimeout time.Duration
}

// Tree is the service's supervisor hierarchy.
type Tree struct {
	root      *suture.Supervisor
	messaging *suture.Supervisor
	api       *suture.Supervisor
}

// NewTree creates the supervisor tree. The logger bridges suture's events
// into the service's zerolog output via the slog adapter.
func NewTree(logger *slog.Logger, config TreeConfig) *Tree {
	if config.FailureThreshold == 0 {
		config.FailureThreshold = 5.0
	}
	if config.FailureBackoff == 0 {
		config.FailureBackoff = 15 * time.Second
	}
	if config.ShutdownTimeout == 0 {
		config.ShutdownTimeout = 10 * time.Second
	}

	// sutureslog's hook constructor has a pointer receiver.
	handler := &sutureslog.Handler{Logger: logger}
	spec := suture.Spec{
		EventHook:        handler.MustHook(),
		FailureThreshold: config.FailureThreshold,
		FailureBackoff:   config.FailureBackoff,
		Timeout:          config.ShutdownTimeout,
	}

	tree := &Tree{
		root:      suture.New("realtime", spec),
		messaging: suture.New("messaging", spec),
		api:       suture.New("api", spec),
	}
	tree.root.Add(tree.messaging)
	tree.root.Add(tree.api)
	return tree
}

// AddMessaging adds a service to the messaging layer.
func (t *Tree) AddMessaging(service suture.Service) suture.ServiceToken {
	return t.messaging.Add(service)
}

// AddAPI adds a service to the api layer.
func (t *Tree) AddAPI(service suture.Service) suture.ServiceToken {
	return t.api.Add(service)
}

// ServeBackground starts the tree and returns the error channel that
// resolves when the tree stops.
func (t *Tree) ServeBackground(ctx context.Context) <-chan error {
	return t.root.ServeBackground(ctx)
}
