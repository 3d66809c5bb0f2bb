// HalaConnect Realtime - Presence and Call Signaling Service
// Copyright 2026 HalaConnect
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/halaconnect/realtime

// Package auth validates the bearer credentials presented at connection
// and request time. Token issuance belongs to the account service; this
// package only verifies HS256 signatures against the shared secret and
// extracts the user identity.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Sentinel errors for connection authentication. ErrMissingToken means no
// credential was supplied at all; ErrInvalidToken covers bad signatures,
// expiry, and malformed claims.
var (
	ErrMissingToken = errors.New("no authentication token provided")
	ErrInvalidToken = errors.New("invalid authentication token")
)

// Claims is the JWT claim set issued by the account service.
type Claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// Verifier validates bearer tokens against the shared secret.
type Verifier struct {
	secret []byte
}

// NewVerifier creates a Verifier. The secret must match the account
// service's signing secret.
func NewVerifier(secret string) (*Verifier, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt secret must not be empty")
	}
	return &Verifier{secret: []byte(secret)}, nil
}

// Verify checks the token's signature and validity window and returns the
// embedded user ID. An empty token yields ErrMissingToken; any other
// failure wraps ErrInvalidToken.
func (v *Verifier) Verify(tokenString string) (string, error) {
	if tokenString == "" {
		return "", ErrMissingToken
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		// Pin the algorithm to prevent confusion attacks.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithLeeway(30*time.Second))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid || claims.UserID == "" {
		return "", ErrInvalidToken
	}
	return claims.UserID, nil
}

// TokenFromRequest extracts the bearer credential from a request. The
// Authorization header wins; browser websocket clients cannot set headers,
// so the `token` query parameter is accepted as a fallback.
func TokenFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		if token, found := strings.CutPrefix(header, "Bearer "); found {
			return token
		}
	}
	return r.URL.Query().Get("token")
}
