package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"interval_timer/internal/announcer"
	"interval_timer/internal/broadcast"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Send/receive timing configuration and message size limits.
const (
	writeWait        = 10 * time.Second
	pongWait         = 60 * time.Second
	pingPeriod       = (pongWait * 9) / 10
	maxMsgSize       = 1 << 14 // 16 KB, voice lists can be long
	defaultInterval  = 1 * time.Second
	maxInterval      = 10 * time.Second
	maxIntervalMilli = 10_000 // 10s in ms
)

// wsIncoming is a client-to-server message. Only "voices" is understood.
type wsIncoming struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Upgrader for HTTP -> WebSocket. Consider tightening CheckOrigin in production.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsConnect streams run state every interval and forwards hub envelopes
// (state changes, announcements). Clients may report their speech voices.
func (h *Handler) wsConnect(c *gin.Context) {
	interval := h.parseInterval(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_upgrade_failed", "err", err)
		}
		return
	}
	defer func() { _ = conn.Close() }()

	var (
		client   *broadcast.Client
		messages <-chan broadcast.Envelope
	)
	if h.hub != nil {
		client = h.hub.Register()
		messages = client.Messages()
		defer h.hub.Unregister(client)
	}

	// Configure read limits and pong handler to extend read deadline.
	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// Reader goroutine to handle client messages and detect disconnects.
	done := make(chan struct{})
	go h.startReader(conn, client, done)

	ticker := time.NewTicker(interval)
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		ping.Stop()
	}()

	// Send initial state immediately.
	if err := h.sendState(conn); err != nil {
		if h.log != nil {
			h.log.Infow("ws_write_failed_initial", "err", err)
		}
		return
	}

	for {
		select {
		case <-done:
			return
		case <-c.Request.Context().Done():
			return
		case env, ok := <-messages:
			if !ok {
				return
			}
			if err := h.writeEnvelope(conn, env); err != nil {
				if h.log != nil {
					h.log.Infow("ws_write_failed", "type", env.Type, "err", err)
				}
				return
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				if h.log != nil {
					h.log.Infow("ws_ping_failed", "err", err)
				}
				return
			}
		case <-ticker.C:
			if err := h.sendState(conn); err != nil {
				if h.log != nil {
					h.log.Infow("ws_write_failed", "err", err)
				}
				return
			}
		}
	}
}

// Helper: parseInterval reads ?interval=2s or ?interval_ms=2000 with bounds.
func (h *Handler) parseInterval(c *gin.Context) time.Duration {
	interval := defaultInterval

	if s := c.Query("interval"); s != "" {
		if d, err := time.ParseDuration(s); err == nil && d > 0 && d <= maxInterval {
			return d
		}
	}

	if ms := c.Query("interval_ms"); ms != "" {
		if v, err := strconv.Atoi(ms); err == nil && v > 0 && v <= maxIntervalMilli {
			return time.Duration(v) * time.Millisecond
		}
	}

	return interval
}

// Helper: startReader consumes client messages until the connection closes.
func (h *Handler) startReader(conn *websocket.Conn, client *broadcast.Client, done chan<- struct{}) {
	defer close(done)
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if h.log != nil {
				h.log.Infow("ws_read_closed", "err", err)
			}
			return
		}
		h.handleIncoming(client, raw)
	}
}

func (h *Handler) handleIncoming(client *broadcast.Client, raw []byte) {
	var msg wsIncoming
	if err := json.Unmarshal(raw, &msg); err != nil {
		if h.log != nil {
			h.log.Infow("ws_bad_message", "err", err)
		}
		return
	}
	switch msg.Type {
	case broadcast.TypeVoices:
		var voices []announcer.Voice
		if err := json.Unmarshal(msg.Data, &voices); err != nil {
			if h.log != nil {
				h.log.Infow("ws_bad_voices", "err", err)
			}
			return
		}
		if h.hub != nil && client != nil {
			h.hub.ReportVoices(client, voices)
		}
		if h.log != nil {
			h.log.Debugw("ws_voices_reported", "count", len(voices))
		}
	default:
		if h.log != nil {
			h.log.Debugw("ws_unknown_message", "type", msg.Type)
		}
	}
}

// Helper: sendState writes the current run state with a write deadline.
func (h *Handler) sendState(conn *websocket.Conn) error {
	if h.services.Runner == nil {
		return h.writeEnvelope(conn, broadcast.Envelope{Type: broadcast.TypeError, Error: "runner unavailable"})
	}
	return h.writeEnvelope(conn, broadcast.Envelope{Type: broadcast.TypeState, Data: h.services.Runner.State()})
}

func (h *Handler) writeEnvelope(conn *websocket.Conn, env broadcast.Envelope) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(env)
}
