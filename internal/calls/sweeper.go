// HalaConnect Realtime - Presence and Call Signaling Service
// Copyright 2026 HalaConnect
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/halaconnect/realtime

package calls

import (
	"context"
	"time"

	"github.com/halaconnect/realtime/internal/events"
	"github.com/halaconnect/realtime/internal/logging"
	"github.com/halaconnect/realtime/internal/metrics"
)

// Notifier delivers an event to a user if online. Satisfied by
// dispatch.Dispatcher.
type Notifier interface {
	ToUser(userID string, event events.Event) bool
}

// Sweeper evicts call sessions that outlive the configured maximum
// duration. Sessions normally end via hang-up or disconnect; the sweeper
// is the backstop for signaling bugs and crashed clients that would
// otherwise leak sessions for the process lifetime.
//
// Sweeper implements suture.Service and runs under the supervisor tree.
type Sweeper struct {
	tracker  *Tracker
	notifier Notifier

	// maxDuration of 0 disables sweeping; Serve then just waits for
	// context cancellation.
	maxDuration time.Duration
	interval    time.Duration
}

// NewSweeper creates a sweeper over the given tracker.
func NewSweeper(tracker *Tracker, notifier Notifier, maxDuration, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Sweeper{tracker: tracker, notifier: notifier, maxDuration: maxDuration, interval: interval}
}

// Serve runs the sweep loop until the context is canceled.
func (s *Sweeper) Serve(ctx context.Context) error {
	if s.maxDuration <= 0 {
		logging.Info().Msg("call sweeper disabled (calls.max_duration is 0)")
		<-ctx.Done()
		return ctx.Err()
	}

	logging.Info().
		Dur("max_duration", s.maxDuration).
		Dur("interval", s.interval).
		Msg("call sweeper started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.sweep(time.Now())
		}
	}
}

// sweep removes every session older than maxDuration and tells both
// participants the call ended.
func (s *Sweeper) sweep(now time.Time) {
	for _, session := range s.tracker.Sessions() {
		if now.Sub(session.StartedAt) < s.maxDuration {
			continue
		}
		// Remove may find the session already gone if a hang-up raced
		// the sweep; skip the notifications in that case.
		if !s.tracker.Remove(session.Channel) {
			continue
		}
		metrics.CallsEnded.WithLabelValues(events.ReasonExpired).Inc()
		logging.Warn().
			Str("channel", session.Channel).
			Time("started_at", session.StartedAt).
			Msg("evicted expired call session")

		s.notifier.ToUser(session.Caller, events.CallEnded(session.Receiver, events.ReasonExpired))
		s.notifier.ToUser(session.Receiver, events.CallEnded(session.Caller, events.ReasonExpired))
	}
}
