// HalaConnect Realtime - Presence and Call Signaling Service
// Copyright 2026 HalaConnect
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/halaconnect/realtime

// Package calls tracks active call sessions in memory. A session pairs
// two users under a channel name minted at initiation; it lives until an
// explicit hang-up/reject, a participant disconnect, or sweeper eviction.
// Nothing here survives a restart and nothing here touches the media
// plane.
package calls

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/halaconnect/realtime/internal/metrics"
)

// Session is one active call between two users, keyed by channel name.
type Session struct {
	Channel   string    `json:"channelName"`
	Caller    string    `json:"callerId"`
	Receiver  string    `json:"receiverId"`
	StartedAt time.Time `json:"startedAt"`
}

// Partner returns the other participant, or empty string when userID is
// not part of the session.
func (s Session) Partner(userID string) string {
	switch userID {
	case s.Caller:
		return s.Receiver
	case s.Receiver:
		return s.Caller
	default:
		return ""
	}
}

// Tracker is the process-wide registry of active call sessions. All
// methods are safe for concurrent use. Callers are responsible for
// registering at most one call per user; the tracker only offers
// best-effort lookup by participant.
type Tracker struct {
	mu       sync.RWMutex
	sessions map[string]Session
	now      func() time.Time
}

// NewTracker creates an empty call session tracker.
func NewTracker() *Tracker {
	return &Tracker{sessions: make(map[string]Session), now: time.Now}
}

// Register creates an active session under channel. An existing session
// for the same channel is silently overwritten; channel names carry a
// timestamp suffix precisely so collisions do not happen in practice.
func (t *Tracker) Register(caller, receiver, channel string) Session {
	session := Session{Channel: channel, Caller: caller, Receiver: receiver, StartedAt: t.now()}
	t.mu.Lock()
	t.sessions[channel] = session
	metrics.CallsActive.Set(float64(len(t.sessions)))
	t.mu.Unlock()
	metrics.CallsStarted.Inc()
	return session
}

// Remove deletes the session for channel and reports whether one existed.
func (t *Tracker) Remove(channel string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.sessions[channel]; !ok {
		return false
	}
	delete(t.sessions, channel)
	metrics.CallsActive.Set(float64(len(t.sessions)))
	return true
}

// RemoveByUser finds and removes the session containing userID as caller
// or receiver. At most one session per user is expected; the first match
// wins. The linear scan is the cost of keying by channel and is fine at
// the concurrent-call counts this service sees.
func (t *Tracker) RemoveByUser(userID string) (Session, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for channel, session := range t.sessions {
		if session.Caller == userID || session.Receiver == userID {
			delete(t.sessions, channel)
			metrics.CallsActive.Set(float64(len(t.sessions)))
			return session, true
		}
	}
	return Session{}, false
}

// PartnerOf returns the other participant of the session containing
// userID, if any.
func (t *Tracker) PartnerOf(userID string) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, session := range t.sessions {
		if partner := session.Partner(userID); partner != "" {
			return partner, true
		}
	}
	return "", false
}

// Active returns the number of tracked sessions.
func (t *Tracker) Active() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.sessions)
}

// Sessions returns a snapshot of all active sessions in unspecified
// order.
func (t *Tracker) Sessions() []Session {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Session, 0, len(t.sessions))
	for _, session := range t.sessions {
		out = append(out, session)
	}
	return out
}

// ChannelName mints a call channel identifier from the participant IDs
// and the current time: call_<caller6><receiver6>_<millis8>. Short IDs
// keep the name under the 64-byte limit the media transport imposes.
func ChannelName(caller, receiver string) string {
	ts := fmt.Sprintf("%d", time.Now().UnixMilli())
	return fmt.Sprintf("call_%s%s_%s", lastN(caller, 6), lastN(receiver, 6), lastN(ts, 8))
}

// lastN returns the trailing n bytes of s, padding from a fresh UUID when
// s is shorter. User IDs are hex object IDs in practice, so the pad path
// only triggers in tests.
func lastN(s string, n int) string {
	if len(s) >= n {
		return s[len(s)-n:]
	}
	pad := uuid.New().String()
	return (s + pad)[:n]
}
