// HalaConnect Realtime - Presence and Call Signaling Service
// Copyright 2026 HalaConnect
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/halaconnect/realtime

// Package config provides layered configuration for the realtime service
// using Koanf v2: struct defaults, then an optional YAML file, then
// environment variables (highest priority).
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config is the root configuration tree.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Security SecurityConfig `koanf:"security"`
	WS       WSConfig       `koanf:"ws"`
	Calls    CallsConfig    `koanf:"calls"`
	Log      LogConfig      `koanf:"log"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `koanf:"read_timeout" validate:"min=1s"`
	WriteTimeout    time.Duration `koanf:"write_timeout" validate:"min=1s"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"min=1s"`
}

// SecurityConfig holds authentication and origin settings.
type SecurityConfig struct {
	// JWTSecret is the shared secret used to validate connection bearer
	// tokens. Issuance lives in the account service; this service only
	// verifies.
	JWTSecret string `koanf:"jwt_secret" validate:"min=32"`

	// InternalToken authenticates the CRUD backend on /internal routes.
	InternalToken string `koanf:"internal_token" validate:"min=32"`

	// RTCSecret signs call join tokens handed to the media transport.
	RTCSecret   string        `koanf:"rtc_secret" validate:"min=32"`
	RTCTokenTTL time.Duration `koanf:"rtc_token_ttl" validate:"min=1m"`

	// AllowedOrigins lists browser origins permitted to open the
	// websocket handshake. Empty means same-origin only.
	AllowedOrigins []string `koanf:"allowed_origins"`

	// RateLimitRPM caps requests per client IP per minute on the public
	// HTTP surface. 0 disables rate limiting.
	RateLimitRPM int `koanf:"rate_limit_rpm" validate:"min=0"`
}

// WSConfig holds websocket transport settings.
type WSConfig struct {
	// SendBuffer is the per-connection outbound event buffer. A full
	// buffer drops the event (best-effort delivery).
	SendBuffer int `koanf:"send_buffer" validate:"min=1"`

	MaxMessageSize int64 `koanf:"max_message_size" validate:"min=64"`

	// PongWait bounds disconnect detection: a connection that misses
	// pings for this long is torn down.
	PongWait  time.Duration `koanf:"pong_wait" validate:"min=1s"`
	WriteWait time.Duration `koanf:"write_wait" validate:"min=1s"`

	// InboundRate and InboundBurst limit client frames per second;
	// offenders are disconnected.
	InboundRate  float64 `koanf:"inbound_rate" validate:"min=0"`
	InboundBurst int     `koanf:"inbound_burst" validate:"min=0"`
}

// CallsConfig holds call-session tracker settings.
type CallsConfig struct {
	// MaxDuration evicts call sessions older than this. 0 disables the
	// sweeper entirely (sessions then live until hang-up or disconnect).
	MaxDuration   time.Duration `koanf:"max_duration"`
	SweepInterval time.Duration `koanf:"sweep_interval" validate:"min=1s"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json console"`
}

// defaultConfig returns a Config with all default values. Defaults are
// applied first, then overridden by config file and environment variables.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8090,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Security: SecurityConfig{
			JWTSecret:      "",
			InternalToken:  "",
			RTCSecret:      "",
			RTCTokenTTL:    time.Hour,
			AllowedOrigins: []string{},
			RateLimitRPM:   300,
		},
		WS: WSConfig{
			SendBuffer:     256,
			MaxMessageSize: 4 * 1024,
			PongWait:       60 * time.Second,
			WriteWait:      10 * time.Second,
			InboundRate:    20,
			InboundBurst:   40,
		},
		Calls: CallsConfig{
			MaxDuration:   4 * time.Hour,
			SweepInterval: time.Minute,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate checks the configuration for invalid or missing values.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Calls.MaxDuration < 0 {
		return fmt.Errorf("calls.max_duration must not be negative")
	}
	return nil
}

// Addr returns the listener address in host:port form.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
