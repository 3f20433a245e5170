package broadcast

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync/atomic"
	"time"
)

// Options configures hub and per-client behavior.
type Options struct {
	// SendBuffer is the per-client outbound buffer. A client whose buffer is
	// full when an event arrives is dropped rather than blocking the hub.
	SendBuffer int

	// WriteTimeout is the deadline for a single WebSocket write.
	WriteTimeout time.Duration

	// PingInterval is how often idle connections are pinged.
	PingInterval time.Duration
}

// DefaultOptions returns the options used when a zero value is supplied.
func DefaultOptions() Options {
	return Options{
		SendBuffer:   32,
		WriteTimeout: 10 * time.Second,
		PingInterval: 45 * time.Second,
	}
}

// Hub is the subscriber registry for change events. It owns the set of
// connected clients and serializes all membership changes and broadcasts
// through its run loop, so no lock is needed around the client set.
//
// The hub's lifecycle is tied to the server: start it with Run and stop it
// by cancelling the context.
type Hub struct {
	opts Options

	register   chan *Client
	unregister chan *Client
	events     chan Event

	clients map[*Client]struct{}
	count   atomic.Int64

	// done is closed when Run returns, so clients never block on a
	// registry channel the run loop has stopped draining.
	done chan struct{}
}

// NewHub creates a Hub. Zero-valued options are replaced with defaults.
func NewHub(opts Options) *Hub {
	def := DefaultOptions()
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = def.SendBuffer
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = def.WriteTimeout
	}
	if opts.PingInterval <= 0 {
		opts.PingInterval = def.PingInterval
	}

	return &Hub{
		opts:       opts,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		events:     make(chan Event, 64),
		clients:    make(map[*Client]struct{}),
		done:       make(chan struct{}),
	}
}

// Run processes registrations and broadcasts until ctx is cancelled.
// On shutdown all client connections are closed.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			for c := range h.clients {
				c.close()
				delete(h.clients, c)
			}
			h.count.Store(0)
			return

		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.count.Store(int64(len(h.clients)))
			slog.Debug("subscriber connected", "subscribers", len(h.clients))

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				c.close()
				h.count.Store(int64(len(h.clients)))
				slog.Debug("subscriber disconnected", "subscribers", len(h.clients))
			}

		case ev := <-h.events:
			h.fanOut(ev)
		}
	}
}

// Broadcast queues an event for delivery to all connected subscribers.
// It never blocks: if the hub's event queue is full the event is dropped,
// consistent with the no-delivery-guarantee contract.
func (h *Hub) Broadcast(ev Event) {
	select {
	case h.events <- ev:
	default:
		slog.Warn("event queue full, dropping event", "action", ev.Action)
	}
}

// ClientCount returns the number of currently connected subscribers.
func (h *Hub) ClientCount() int {
	return int(h.count.Load())
}

func (h *Hub) fanOut(ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		slog.Error("marshal event", "action", ev.Action, "error", err)
		return
	}

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			// Slow consumer: drop it rather than stalling everyone else.
			delete(h.clients, c)
			c.close()
			h.count.Store(int64(len(h.clients)))
			slog.Warn("dropping slow subscriber", "subscribers", len(h.clients))
		}
	}
}
