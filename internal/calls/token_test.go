// HalaConnect Realtime - Presence and Call Signaling Service
// Copyright 2026 HalaConnect
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/halaconnect/realtime

package calls

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testRTCSecret = "0123456789abcdef0123456789abcdef"

func TestTokenIssuerRequiresSecret(t *testing.T) {
	if _, err := NewTokenIssuer("", time.Hour); err == nil {
		t.Fatal("expected an error for an empty secret")
	}
}

func TestIssueJoinToken(t *testing.T) {
	issuer, err := NewTokenIssuer(testRTCSecret, 30*time.Minute)
	if err != nil {
		t.Fatalf("NewTokenIssuer: %v", err)
	}

	signed, err := issuer.Issue("call_abc123", "alice")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	claims := &JoinClaims{}
	token, err := jwt.ParseWithClaims(signed, claims, func(*jwt.Token) (any, error) {
		return []byte(testRTCSecret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		t.Fatalf("parsing issued token: %v", err)
	}
	if !token.Valid {
		t.Fatal("issued token should validate")
	}
	if claims.Channel != "call_abc123" {
		t.Errorf("channel claim = %q, want call_abc123", claims.Channel)
	}
	if claims.Subject != "alice" {
		t.Errorf("subject = %q, want alice", claims.Subject)
	}
	if claims.UID != 0 {
		t.Errorf("uid = %d, want 0 (dynamic assignment)", claims.UID)
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl < 25*time.Minute || ttl > 30*time.Minute {
		t.Errorf("token ttl %v outside expected window", ttl)
	}
}

func TestIssueRejectsWrongSecret(t *testing.T) {
	issuer, _ := NewTokenIssuer(testRTCSecret, time.Hour)
	signed, _ := issuer.Issue("call_abc123", "alice")

	_, err := jwt.ParseWithClaims(signed, &JoinClaims{}, func(*jwt.Token) (any, error) {
		return []byte("another-secret-another-secret-00"), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err == nil {
		t.Fatal("token should not validate against a different secret")
	}
}
