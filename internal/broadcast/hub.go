// Package broadcast fans run state and announcements out to connected clients.
// The hub doubles as the voice sink: browsers report the voices they can speak
// with and receive "announce" envelopes to read aloud.
package broadcast

import (
	"context"
	"strings"
	"sync"

	"interval_timer/internal/announcer"
	"interval_timer/internal/logger"
)

// Envelope types.
const (
	TypeState    = "state"
	TypeAnnounce = "announce"
	TypeVoices   = "voices"
	TypeError    = "error"
)

const defaultBuffer = 16

// Envelope is the message format on the wire.
type Envelope struct {
	Type  string `json:"type"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

// Announcement is the payload of an "announce" envelope.
type Announcement struct {
	Text  string `json:"text"`
	Voice string `json:"voice,omitempty"`
	Lang  string `json:"lang,omitempty"`
}

// Client is one registered connection.
type Client struct {
	send   chan Envelope
	voices []announcer.Voice
}

// Messages yields envelopes for the client; closed on Unregister.
func (c *Client) Messages() <-chan Envelope { return c.send }

type Hub struct {
	log    *logger.Logger
	buffer int

	mu      sync.Mutex
	clients map[*Client]struct{}
	order   []*Client

	ready     chan struct{}
	readyOnce sync.Once
}

func NewHub(log *logger.Logger, buffer int) *Hub {
	if log == nil {
		log = logger.Nop()
	}
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Hub{
		log:     log,
		buffer:  buffer,
		clients: make(map[*Client]struct{}),
		ready:   make(chan struct{}),
	}
}

func (h *Hub) Register() *Client {
	c := &Client{send: make(chan Envelope, h.buffer)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.order = append(h.order, c)
	n := len(h.clients)
	h.mu.Unlock()

	h.log.Debugw("ws_client_registered", "clients", n)
	return c
}

// Unregister drops the client and closes its message channel. Safe to call twice.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	for i, o := range h.order {
		if o == c {
			h.order = append(h.order[:i:i], h.order[i+1:]...)
			break
		}
	}
	close(c.send)
}

// Clients is the number of registered clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Publish queues env for every client without blocking. Clients whose buffer
// is full miss the message. It returns the number of clients reached.
func (h *Hub) Publish(env Envelope) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	sent := 0
	for _, c := range h.order {
		select {
		case c.send <- env:
			sent++
		default:
			h.log.Warnw("ws_client_lagging", "type", env.Type)
		}
	}
	return sent
}

// PublishState sends a "state" envelope.
func (h *Hub) PublishState(state any) {
	h.Publish(Envelope{Type: TypeState, Data: state})
}

// ReportVoices records the voices a client can speak with. The first
// non-empty report makes VoicesReady fire.
func (h *Hub) ReportVoices(c *Client, voices []announcer.Voice) {
	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mu.Unlock()
		return
	}
	c.voices = append([]announcer.Voice(nil), voices...)
	h.mu.Unlock()

	if len(voices) > 0 {
		h.readyOnce.Do(func() { close(h.ready) })
	}
}

// Voices is the union of all reported voices, first report wins on duplicates.
func (h *Hub) Voices() []announcer.Voice {
	h.mu.Lock()
	defer h.mu.Unlock()

	seen := make(map[string]bool)
	var out []announcer.Voice
	for _, c := range h.order {
		for _, v := range c.voices {
			key := strings.ToLower(v.Name)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, v)
		}
	}
	return out
}

func (h *Hub) VoicesReady() <-chan struct{} { return h.ready }

// Speak publishes an "announce" envelope. With no client connected there is
// nobody to speak, which is reported as announcer.ErrSinkUnavailable.
func (h *Hub) Speak(ctx context.Context, text string, voice announcer.Voice) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	env := Envelope{Type: TypeAnnounce, Data: Announcement{Text: text, Voice: voice.Name, Lang: voice.Lang}}
	if h.Publish(env) == 0 {
		return announcer.ErrSinkUnavailable
	}
	return nil
}
