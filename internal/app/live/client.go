/*
Package live pushes newly posted public messages to connected WebSocket listeners.

This file defines the Client struct, representing one WebSocket listener. It manages the
connection lifecycle (ReadPump and WritePump) and the listener's feed filter.
*/
package live

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"twoogle/internal/app/board"
	"twoogle/internal/app/user"
	"twoogle/internal/pkg/logx"
	"twoogle/internal/pkg/randx"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed for the server to wait for a Pong message from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// listeners only send control frames; anything larger is a misbehaving client.
	maxMessageSize = 512

	sendQueueSize = 256
)

// Filter narrows the live stream. Empty fields match everything.
type Filter struct {
	Author string `json:"author,omitempty"`
	Tag    string `json:"tag,omitempty"`
}

// NewFilter normalizes author and tag the way the board stores them.
func NewFilter(author, tag string) Filter {
	return Filter{Author: user.Normalize(author), Tag: board.NormalizeTag(tag)}
}

// Matches reports whether m passes the filter.
func (f Filter) Matches(m board.Message) bool {
	if f.Author != "" && f.Author != m.Author {
		return false
	}
	if f.Tag != "" && f.Tag != m.Tag {
		return false
	}
	return true
}

// Client is one connected listener.
type Client struct {
	hub *Hub

	// underlying WebSocket connection object. Nil in tests.
	conn *websocket.Conn

	id       string
	username string
	filter   Filter

	// a buffered channel used to queue events waiting to be sent to the listener.
	send chan []byte

	logger zerolog.Logger
}

// NewClient constructs a listener for username with the given filter.
func NewClient(hub *Hub, conn *websocket.Conn, username string, filter Filter) *Client {
	id := randx.ID()

	return &Client{
		hub:      hub,
		conn:     conn,
		id:       id,
		username: username,
		filter:   filter,
		send:     make(chan []byte, sendQueueSize),
		logger: logx.Logger().With().
			Str("client_id", id).
			Str("username", username).
			Logger(),
	}
}

// ID returns the listener id.
func (c *Client) ID() string {
	return c.id
}

// ReadPump drains the connection so control frames are processed, and
// unregisters the listener once the connection closes.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Client connection close error")
		}
	}()

	c.conn.SetReadLimit(maxMessageSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Error reading message (Client close/going away)")
			}
			return
		}
	}
}

// WritePump writes queued events to the connection and keeps the heartbeat.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Client connection close error in WritePump")
		}
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !c.writeQueuedMessage(message, ok) {
				return
			}

		case <-ticker.C:
			if !c.writePingMessage() {
				return
			}
		}
	}
}

// writeQueuedMessage returns false when the WritePump loop should terminate.
func (c *Client) writeQueuedMessage(message []byte, ok bool) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline")
		return false
	}

	if !ok {
		if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
			c.logger.Debug().Err(err).Msg("Error writing close message")
		}
		return false
	}

	if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
		c.logger.Error().Err(err).Msg("Error writing message")
		return false
	}

	return true
}

func (c *Client) writePingMessage() bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
		return false
	}

	if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		c.logger.Debug().Err(err).Msg("Error writing ping")
		return false
	}

	return true
}

// sendEvent marshals event and queues it without blocking.
func (c *Client) sendEvent(eventType EventType, payload any) error {
	event, err := NewEvent(eventType, payload)
	if err != nil {
		return err
	}

	eventBytes, err := json.Marshal(event)
	if err != nil {
		return err
	}

	select {
	case c.send <- eventBytes:
		return nil
	default:
		c.logger.Warn().Int("queue_len", len(c.send)).Msg("Client send channel full, dropping event")
		return fmt.Errorf("client send queue full")
	}
}

// SendInitData tells the listener its id and active filter.
func (c *Client) SendInitData() error {
	err := c.sendEvent(TypeInitData, InitDataPayload{
		ClientID: c.id,
		Username: c.username,
		Filter:   c.filter,
	})
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to send INIT_DATA event.")
	}
	return err
}
