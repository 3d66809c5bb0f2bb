// HalaConnect Realtime - Presence and Call Signaling Service
// Copyright 2026 HalaConnect
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/halaconnect/realtime

// Package presence tracks which users currently hold a live connection.
// The registry maps a user ID to at most one connection handle; a newer
// connection for the same user displaces the older mapping
// (last-connected-wins). The registry never owns or closes connections.
package presence

import (
	"sync"

	"github.com/halaconnect/realtime/internal/events"
	"github.com/halaconnect/realtime/internal/metrics"
)

// Conn is the non-owning handle the registry keeps per user: anything able
// to accept an outbound event. Send reports whether the event was accepted
// (false when the transport buffer is full).
type Conn interface {
	Send(event events.Event) bool
}

// Registry is the process-wide user -> connection map. All methods are
// safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]Conn
}

// NewRegistry creates an empty presence registry.
func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]Conn)}
}

// Register maps userID to conn, displacing any previous mapping. It
// returns the displaced handle (nil if there was none) so the transport
// can shut the stale connection down.
func (r *Registry) Register(userID string, conn Conn) Conn {
	r.mu.Lock()
	prev := r.conns[userID]
	r.conns[userID] = conn
	metrics.UsersOnline.Set(float64(len(r.conns)))
	r.mu.Unlock()
	return prev
}

// Remove deletes the mapping for userID. Removing an absent user is a
// no-op.
func (r *Registry) Remove(userID string) {
	r.mu.Lock()
	delete(r.conns, userID)
	metrics.UsersOnline.Set(float64(len(r.conns)))
	r.mu.Unlock()
}

// RemoveConn deletes the mapping for userID only if conn is still the
// registered handle. The disconnect path uses this so a late cleanup from
// a superseded connection cannot evict the mapping a newer connection
// just installed. Reports whether a removal occurred.
func (r *Registry) RemoveConn(userID string, conn Conn) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.conns[userID]; !ok || current != conn {
		return false
	}
	delete(r.conns, userID)
	metrics.UsersOnline.Set(float64(len(r.conns)))
	return true
}

// Lookup returns the connection handle for userID, if online.
func (r *Registry) Lookup(userID string) (Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.conns[userID]
	return conn, ok
}

// IsOnline reports whether userID has a registered connection.
func (r *Registry) IsOnline(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.conns[userID]
	return ok
}

// Online returns a snapshot of all online user IDs in unspecified order.
func (r *Registry) Online() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	users := make([]string, 0, len(r.conns))
	for userID := range r.conns {
		users = append(users, userID)
	}
	return users
}

// Count returns the number of online users.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
