package server

import (
	"encoding/json"
	"time"

	"github.com/lox/trucoforbots/internal/bot"
)

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"requestId,omitempty"`
}

// NewMessage creates a new message stamped with now
func NewMessage(messageType MessageType, data any, now time.Time) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: now,
	}, nil
}

// DecideRequest asks a profile one question about a snapshot. It is the body
// of POST /decide and the data of a "decide" message.
type DecideRequest struct {
	Profile  string       `json:"profile,omitempty"`
	Kind     string       `json:"kind"`
	Snapshot bot.Snapshot `json:"snapshot"`
}

// DecideResponse carries the answer and the id it was logged under.
type DecideResponse struct {
	RequestID string `json:"requestId"`
	bot.Decision
}

// ErrorData describes a failed request.
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WelcomeData is sent once when a websocket connection opens.
type WelcomeData struct {
	ConnectionID   string   `json:"connectionId"`
	DefaultProfile string   `json:"defaultProfile"`
	Profiles       []string `json:"profiles"`
}

// ProfileInfo describes one registered profile.
type ProfileInfo struct {
	Name    string      `json:"name"`
	Variant bot.Variant `json:"variant"`
	Default bool        `json:"default,omitempty"`
}
