package server

// MessageType represents a WebSocket message type with type safety
type MessageType string

// WebSocket message type constants
const (
	// Client to server messages
	MessageTypeDecide MessageType = "decide"
	MessageTypePing   MessageType = "ping"

	// Server to client messages
	MessageTypeDecision MessageType = "decision"
	MessageTypeError    MessageType = "error"
	MessageTypePong     MessageType = "pong"
	MessageTypeWelcome  MessageType = "welcome"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}
