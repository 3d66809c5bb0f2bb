// HalaConnect Realtime - Presence and Call Signaling Service
// Copyright 2026 HalaConnect
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/halaconnect/realtime

package calls

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JoinClaims is the claim set of a call join token. The media transport
// validates these tokens with the shared RTC secret; they grant access to
// one channel only and never to this service's API.
type JoinClaims struct {
	Channel string `json:"channel"`
	UID     int    `json:"uid"`
	jwt.RegisteredClaims
}

// TokenIssuer signs join tokens for call channels.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenIssuer creates a TokenIssuer. ttl bounds how long a client may
// join the channel after initiation.
func NewTokenIssuer(secret string, ttl time.Duration) (*TokenIssuer, error) {
	if secret == "" {
		return nil, fmt.Errorf("rtc secret must not be empty")
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl}, nil
}

// Issue signs a join token for the given channel and subject. UID 0 asks
// the media transport to assign a dynamic UID.
func (i *TokenIssuer) Issue(channel, userID string) (string, error) {
	now := time.Now()
	claims := &JoinClaims{
		Channel: channel,
		UID:     0,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign join token: %w", err)
	}
	return signed, nil
}
