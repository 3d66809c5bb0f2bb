// HalaConnect Realtime - Presence and Call Signaling Service
// Copyright 2026 HalaConnect
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/halaconnect/realtime

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// setRequiredSecrets satisfies the mandatory security settings and pins
// the config file lookup away from the developer's working directory.
func setRequiredSecrets(t *testing.T) {
	t.Helper()
	t.Setenv("HALA_SECURITY_JWT_SECRET", testSecret)
	t.Setenv("HALA_SECURITY_INTERNAL_TOKEN", testSecret)
	t.Setenv("HALA_SECURITY_RTC_SECRET", testSecret)
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "absent.yaml"))
}

func TestLoadDefaults(t *testing.T) {
	setRequiredSecrets(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 8090 {
		t.Errorf("server.port = %d, want 8090", cfg.Server.Port)
	}
	if cfg.WS.PongWait != 60*time.Second {
		t.Errorf("ws.pong_wait = %v, want 60s", cfg.WS.PongWait)
	}
	if cfg.Calls.MaxDuration != 4*time.Hour {
		t.Errorf("calls.max_duration = %v, want 4h", cfg.Calls.MaxDuration)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "json" {
		t.Errorf("log = %+v, want info/json", cfg.Log)
	}
	if cfg.Security.JWTSecret != testSecret {
		t.Error("jwt secret not picked up from environment")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	setRequiredSecrets(t)
	t.Setenv("HALA_SERVER_PORT", "9000")
	t.Setenv("HALA_SERVER_READ_TIMEOUT", "30s")
	t.Setenv("HALA_WS_MAX_MESSAGE_SIZE", "8192")
	t.Setenv("HALA_LOG_LEVEL", "debug")
	t.Setenv("HALA_SECURITY_ALLOWED_ORIGINS", "https://app.halaconnect.com, https://staging.halaconnect.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("server.port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 30*time.Second {
		t.Errorf("server.read_timeout = %v, want 30s", cfg.Server.ReadTimeout)
	}
	if cfg.WS.MaxMessageSize != 8192 {
		t.Errorf("ws.max_message_size = %d, want 8192", cfg.WS.MaxMessageSize)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log.level = %q, want debug", cfg.Log.Level)
	}
	want := []string{"https://app.halaconnect.com", "https://staging.halaconnect.com"}
	if len(cfg.Security.AllowedOrigins) != 2 ||
		cfg.Security.AllowedOrigins[0] != want[0] ||
		cfg.Security.AllowedOrigins[1] != want[1] {
		t.Errorf("allowed_origins = %v, want %v", cfg.Security.AllowedOrigins, want)
	}
}

func TestLoadConfigFile(t *testing.T) {
	setRequiredSecrets(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := strings.Join([]string{
		"server:",
		"  port: 9001",
		"calls:",
		"  max_duration: 2h",
	}, "\n")
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9001 {
		t.Errorf("server.port = %d, want 9001 from file", cfg.Server.Port)
	}
	if cfg.Calls.MaxDuration != 2*time.Hour {
		t.Errorf("calls.max_duration = %v, want 2h from file", cfg.Calls.MaxDuration)
	}

	// Environment beats the file.
	t.Setenv("HALA_SERVER_PORT", "9002")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9002 {
		t.Errorf("server.port = %d, want env override 9002", cfg.Server.Port)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"short jwt secret", "HALA_SECURITY_JWT_SECRET", "tooshort"},
		{"bad log level", "HALA_LOG_LEVEL", "verbose"},
		{"port out of range", "HALA_SERVER_PORT", "70000"},
		{"zero send buffer", "HALA_WS_SEND_BUFFER", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredSecrets(t)
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("Load with %s=%s should fail", tt.key, tt.value)
			}
		})
	}
}

func TestLoadRequiresSecrets(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "absent.yaml"))
	// No secrets in the environment: validation must refuse to start.
	if _, err := Load(); err == nil {
		t.Fatal("Load without secrets should fail")
	}
}

func TestEnvTransform(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"HALA_SERVER_PORT", "server.port"},
		{"HALA_SECURITY_JWT_SECRET", "security.jwt_secret"},
		{"HALA_WS_MAX_MESSAGE_SIZE", "ws.max_message_size"},
		{"HALA_CALLS_SWEEP_INTERVAL", "calls.sweep_interval"},
		{"HALA_LOG_LEVEL", "log.level"},
	}
	for _, tt := range tests {
		if got := envTransform(tt.in); got != tt.want {
			t.Errorf("envTransform(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAddr(t *testing.T) {
	cfg := ServerConfig{Host: "127.0.0.1", Port: 8090}
	if got := cfg.Addr(); got != "127.0.0.1:8090" {
		t.Errorf("Addr() = %q", got)
	}
}
