/*
Package live pushes newly posted public messages to connected WebSocket listeners.

This file defines the Hub, the single event loop that owns every listener.
It handles listener registration and removal and fans posted messages out
to the listeners whose filter matches.
*/
package live

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"

	"twoogle/internal/app/board"
	"twoogle/internal/pkg/logx"
)

const broadcastChannelBuffer = 1024

// Hub tracks connected listeners and broadcasts posted messages to them.
// It implements board.Notifier.
type Hub struct {
	// connected listeners, keyed by client id.
	clients map[string]*Client

	// a buffered channel of posted messages waiting to be fanned out.
	broadcast chan MessagePayload

	// a channel for listeners requesting to join.
	register chan *Client

	// a channel for listeners leaving.
	unregister chan *Client

	// closed to stop the Run loop.
	stopChan chan struct{}

	// closed once the Run loop has exited.
	done chan struct{}

	stopOnce sync.Once

	// mu protects access to the clients map.
	mu sync.RWMutex

	logger zerolog.Logger
}

var _ board.Notifier = (*Hub)(nil)

// NewHub creates a Hub. Call Run in its own goroutine before use.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		broadcast:  make(chan MessagePayload, broadcastChannelBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		stopChan:   make(chan struct{}),
		done:       make(chan struct{}),
		logger:     logx.Logger().With().Str("component", "LiveHub").Logger(),
	}
}

// Stop terminates the Run loop and waits for it to close every listener.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		h.logger.Info().Msg("Received stop signal. Stopping live hub.")
		close(h.stopChan)
	})
	<-h.done
}

// Run is the event loop of the Hub.
func (h *Hub) Run() {
	defer func() {
		h.mu.Lock()
		for id, client := range h.clients {
			close(client.send)
			delete(h.clients, id)
		}
		h.mu.Unlock()

		h.logger.Info().Msg("Live hub Run loop finished.")
		close(h.done)
	}()

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.id] = client
			total := len(h.clients)
			h.mu.Unlock()

			h.logger.Info().
				Str("client_id", client.id).
				Str("username", client.username).
				Int("total_listeners", total).
				Msg("Listener joined.")

			if err := client.SendInitData(); err != nil {
				h.remove(client)
			}

		case client := <-h.unregister:
			h.remove(client)

		case payload := <-h.broadcast:
			h.fanOut(payload)

		case <-h.stopChan:
			return
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	current, ok := h.clients[client.id]
	if !ok || current != client {
		h.logger.Debug().Str("client_id", client.id).Msg("Unregister for unknown or stale listener ignored.")
		return
	}

	delete(h.clients, client.id)
	close(client.send)

	h.logger.Info().
		Str("client_id", client.id).
		Int("total_listeners", len(h.clients)).
		Msg("Listener left.")
}

func (h *Hub) fanOut(payload MessagePayload) {
	event, err := NewEvent(TypeMessagePosted, payload)
	if err != nil {
		h.logger.Error().Err(err).Str("message_id", payload.Message.ID).Msg("Failed to build MESSAGE_POSTED event.")
		return
	}

	eventBytes, err := json.Marshal(event)
	if err != nil {
		h.logger.Error().Err(err).Str("message_id", payload.Message.ID).Msg("Error marshaling event for broadcast.")
		return
	}

	var slow []*Client

	h.mu.RLock()
	for _, client := range h.clients {
		if !client.filter.Matches(payload.Message) {
			continue
		}
		select {
		case client.send <- eventBytes:
		default:
			slow = append(slow, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range slow {
		h.logger.Warn().Str("client_id", client.id).Msg("Listener send queue full, disconnecting.")
		h.remove(client)
	}
}

// Register queues client for registration. It reports false when the hub has stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.stopChan:
		return false
	}
}

// Unregister queues client for removal.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.stopChan:
	}
}

// MessagePosted queues a public message for every matching listener.
// It never blocks the poster: when the queue is full the message is dropped.
func (h *Hub) MessagePosted(msg board.Message, line string) {
	if msg.Private {
		return
	}

	select {
	case h.broadcast <- MessagePayload{Message: msg, Line: line}:
	case <-h.stopChan:
	default:
		h.logger.Warn().Str("message_id", msg.ID).Msg("Broadcast channel full, live update dropped.")
	}
}

// ListenerCount returns the number of connected listeners.
func (h *Hub) ListenerCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
