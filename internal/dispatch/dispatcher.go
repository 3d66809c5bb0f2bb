// HalaConnect Realtime - Presence and Call Signaling Service
// Copyright 2026 HalaConnect
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/halaconnect/realtime

// Package dispatch routes named events to whichever users are currently
// online. Delivery is best-effort and fire-and-forget: offline targets and
// full send buffers drop the event silently, because the CRUD layer's
// persisted documents remain the durable source of truth.
package dispatch

import (
	"github.com/halaconnect/realtime/internal/events"
	"github.com/halaconnect/realtime/internal/logging"
	"github.com/halaconnect/realtime/internal/metrics"
	"github.com/halaconnect/realtime/internal/presence"
)

// Dispatcher resolves targets through the presence registry and pushes
// events onto their connections.
type Dispatcher struct {
	registry *presence.Registry
}

// NewDispatcher creates a dispatcher over the given registry.
func NewDispatcher(registry *presence.Registry) *Dispatcher {
	return &Dispatcher{registry: registry}
}

// ToUser delivers the event to userID if online. The returned flag is for
// telemetry only: false means the user was offline or their send buffer
// was full. Never an error.
func (d *Dispatcher) ToUser(userID string, event events.Event) bool {
	conn, ok := d.registry.Lookup(userID)
	if !ok {
		metrics.EventsDropped.WithLabelValues(event.Type, "offline").Inc()
		return false
	}
	if !conn.Send(event) {
		metrics.EventsDropped.WithLabelValues(event.Type, "buffer_full").Inc()
		logging.Warn().Str("user_id", userID).Str("event", event.Type).Msg("send buffer full, event dropped")
		return false
	}
	metrics.EventsDelivered.WithLabelValues(event.Type).Inc()
	return true
}

// ToUsers delivers the event independently to each user. Partial delivery
// is expected; the count of successful deliveries is returned.
func (d *Dispatcher) ToUsers(userIDs []string, event events.Event) int {
	delivered := 0
	for _, userID := range userIDs {
		if d.ToUser(userID, event) {
			delivered++
		}
	}
	return delivered
}
