// HalaConnect Realtime - Presence and Call Signaling Service
// Copyright 2026 HalaConnect
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/halaconnect/realtime

package auth

import (
	"context"
	"crypto/subtle"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/halaconnect/realtime/internal/logging"
)

type contextKey string

const userIDKey contextKey = "user_id"

// UserIDFromContext returns the authenticated user ID injected by
// RequireUser, or empty string outside an authenticated request.
func UserIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(userIDKey).(string); ok {
		return id
	}
	return ""
}

// ContextWithUserID returns a context carrying the given user ID. Exposed
// for handler tests.
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// RequireUser is chi middleware that rejects requests without a valid
// bearer token and injects the user identity into the request context.
func (v *Verifier) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := v.Verify(TokenFromRequest(r))
		if err != nil {
			logger := logging.Ctx(r.Context())
			logger.Debug().Err(err).Msg("request authentication failed")
			writeUnauthorized(w)
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithUserID(r.Context(), userID)))
	})
}

// RequireInternal is chi middleware for the /internal surface: the CRUD
// backend authenticates with a shared token in X-Internal-Token, compared
// in constant time.
func RequireInternal(internalToken string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			supplied := r.Header.Get("X-Internal-Token")
			if subtle.ConstantTimeCompare([]byte(supplied), []byte(internalToken)) != 1 {
				logger := logging.Ctx(r.Context())
				logger.Warn().Str("path", r.URL.Path).Msg("internal token mismatch")
				writeUnauthorized(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	//nolint:errcheck // best-effort error body
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"code": "UNAUTHORIZED", "message": "authentication required"},
	})
}
