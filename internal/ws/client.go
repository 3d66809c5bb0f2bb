// HalaConnect Realtime - Presence and Call Signaling Service
// Copyright 2026 HalaConnect
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/halaconnect/realtime

// Package ws is the websocket transport: it authenticates handshakes,
// registers connections in the presence registry, pumps events in and
// out, and drives disconnect cleanup for both registries.
package ws

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/halaconnect/realtime/internal/events"
	"github.com/halaconnect/realtime/internal/logging"
)

// clientIDCounter distinguishes successive connections of the same user;
// the conditional presence removal compares handles, and the log lines
// need a way to tell connection generations apart.
var clientIDCounter atomic.Uint64

// Client is one authenticated websocket connection. It satisfies
// presence.Conn; the registry holds it as a non-owning handle.
type Client struct {
	id     uint64
	userID string
	conn   *websocket.Conn

	send chan events.Event
	done chan struct{}
	once sync.Once

	limiter *rate.Limiter

	maxMessageSize int64
	pongWait       time.Duration
	writeWait      time.Duration
}

func newClient(conn *websocket.Conn, userID string, cfg Config) *Client {
	var limiter *rate.Limiter
	if cfg.InboundRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.InboundRate), cfg.InboundBurst)
	}
	return &Client{
		id:             clientIDCounter.Add(1),
		userID:         userID,
		conn:           conn,
		send:           make(chan events.Event, cfg.SendBuffer),
		done:           make(chan struct{}),
		limiter:        limiter,
		maxMessageSize: cfg.MaxMessageSize,
		pongWait:       cfg.PongWait,
		writeWait:      cfg.WriteWait,
	}
}

// UserID returns the authenticated identity bound to this connection.
func (c *Client) UserID() string {
	return c.userID
}

// Send queues an event for delivery. It reports false when the connection
// is shutting down or the buffer is full; the event is then dropped, per
// the best-effort delivery contract.
func (c *Client) Send(event events.Event) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- event:
		return true
	default:
		return false
	}
}

// close shuts the connection down once. Safe to call from any goroutine;
// both pumps exit shortly after.
func (c *Client) close() {
	c.once.Do(func() {
		close(c.done)
		//nolint:errcheck // best-effort teardown
		c.conn.Close()
	})
}

// inboundFrame is the envelope clients send: ping keepalives and the
// voluntary end_call signal.
type inboundFrame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// endCallFrame names the partner of the call being ended.
type endCallFrame struct {
	OtherID string `json:"otherId"`
}

// readPump consumes client frames until the connection dies, then runs
// disconnect cleanup exactly once. The pong handler extends the read
// deadline; a client that misses pings for pongWait is torn down, which
// is what bounds disconnect-detection latency.
func (c *Client) readPump(h *Handler) {
	defer func() {
		h.handleDisconnect(c)
		c.close()
	}()

	c.conn.SetReadLimit(c.maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(c.pongWait)); err != nil {
		logging.Error().Err(err).Msg("failed to set read deadline")
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				logging.Warn().Err(err).Str("user_id", c.userID).Msg("unexpected websocket close")
			}
			return
		}

		if c.limiter != nil && !c.limiter.Allow() {
			logging.Warn().Str("user_id", c.userID).Msg("inbound rate limit exceeded, disconnecting")
			return
		}

		var frame inboundFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			logging.Debug().Err(err).Str("user_id", c.userID).Msg("unreadable client frame")
			continue
		}
		c.handleFrame(h, frame)
	}
}

// handleFrame dispatches one inbound client frame.
func (c *Client) handleFrame(h *Handler, frame inboundFrame) {
	switch frame.Type {
	case events.TypePing:
		c.Send(events.Pong())
	case events.TypeEndCall:
		var payload endCallFrame
		if err := json.Unmarshal(frame.Data, &payload); err != nil || payload.OtherID == "" {
			logging.Debug().Str("user_id", c.userID).Msg("end_call frame without otherId")
			return
		}
		h.EndCall(c.userID, payload.OtherID)
	default:
		logging.Debug().Str("user_id", c.userID).Str("type", frame.Type).Msg("unknown client frame type")
	}
}

// writePump writes queued events and keepalive pings until the connection
// dies.
func (c *Client) writePump() {
	pingPeriod := c.pongWait * 9 / 10
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case <-c.done:
			//nolint:errcheck // connection is going away regardless
			c.conn.SetWriteDeadline(time.Now().Add(c.writeWait))
			//nolint:errcheck
			c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return

		case event := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeWait)); err != nil {
				return
			}
			data, err := json.Marshal(event)
			if err != nil {
				logging.Error().Err(err).Str("event", event.Type).Msg("failed to marshal outbound event")
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				logging.Debug().Err(err).Str("user_id", c.userID).Msg("websocket write failed")
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
