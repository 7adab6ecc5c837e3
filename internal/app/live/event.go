/*
Package live pushes newly posted public messages to connected WebSocket listeners.

This file defines the envelope sent over the socket and the payloads it carries.
*/
package live

import (
	"encoding/json"
	"time"

	"twoogle/internal/app/board"
	"twoogle/internal/pkg/randx"
)

// EventType names the kind of payload an Event carries.
type EventType string

const (
	// TypeInitData is sent once, right after a listener is registered.
	TypeInitData EventType = "INIT_DATA"

	// TypeMessagePosted carries one newly posted public message.
	TypeMessagePosted EventType = "MESSAGE_POSTED"
)

// Event is the JSON envelope written to listeners.
type Event struct {
	ID        string          `json:"id"`
	Type      EventType       `json:"type"`
	Timestamp int64           `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// InitDataPayload tells a new listener who it is and what it is filtered on.
type InitDataPayload struct {
	ClientID string `json:"clientId"`
	Username string `json:"username"`
	Filter   Filter `json:"filter"`
}

// MessagePayload carries a posted message and its formatted feed line.
type MessagePayload struct {
	Message board.Message `json:"message"`
	Line    string        `json:"line"`
}

// NewEvent builds an Event with a fresh id and the current time.
func NewEvent(eventType EventType, payload any) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}

	return Event{
		ID:        randx.ID(),
		Type:      eventType,
		Timestamp: time.Now().UnixMilli(),
		Payload:   raw,
	}, nil
}
