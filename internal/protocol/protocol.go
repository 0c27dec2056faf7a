// Package protocol defines the WebSocket messages sent to event stream
// subscribers.
package protocol

import "inputcap/internal/event"

// MessageType defines the type of WebSocket message.
type MessageType string

const (
	// TypeEvent carries one normalized input event.
	TypeEvent MessageType = "event"

	// TypeStatus reports whether capture is active, sent on subscribe and
	// on every state change.
	TypeStatus MessageType = "status"

	// TypeError reports a non-fatal server-side problem to the subscriber.
	TypeError MessageType = "error"
)

// Message is the generic container for all WebSocket messages.
type Message struct {
	Type    MessageType `json:"type"`
	Payload any         `json:"payload,omitempty"`
}

// StatusPayload is the payload for TypeStatus.
type StatusPayload struct {
	Capturing bool `json:"capturing"`
}

// ErrorPayload is the payload for TypeError.
type ErrorPayload struct {
	Message string `json:"message"`
}

// NewEvent wraps a normalized event for the wire.
func NewEvent(e event.Event) Message {
	return Message{Type: TypeEvent, Payload: e}
}

// NewStatus wraps a capture state report.
func NewStatus(capturing bool) Message {
	return Message{Type: TypeStatus, Payload: StatusPayload{Capturing: capturing}}
}

// NewError wraps an error report.
func NewError(msg string) Message {
	return Message{Type: TypeError, Payload: ErrorPayload{Message: msg}}
}
