package domain

import (
	"fmt"
	"time"
)

// EventKind classifies inbound platform events. The dispatcher switches
// exhaustively over these values; an unknown kind fails validation instead
// of falling through an open-ended string tag.
type EventKind string

const (
	KindMessage          EventKind = "message"
	KindMessageDelivered EventKind = "message.delivered"
	KindMessageRead      EventKind = "message.read"
	KindUserJoined       EventKind = "user.joined"
	KindUserLeft         EventKind = "user.left"
)

// Valid reports whether k is a known event kind.
func (k EventKind) Valid() bool {
	switch k {
	case KindMessage, KindMessageDelivered, KindMessageRead, KindUserJoined, KindUserLeft:
		return true
	}
	return false
}

// MessageKind is the content type of a message. Only text messages are
// relayed to the completion service; the platform enforces length limits.
type MessageKind string

const (
	MessageText     MessageKind = "text"
	MessageImage    MessageKind = "image"
	MessageVideo    MessageKind = "video"
	MessageAudio    MessageKind = "audio"
	MessageFile     MessageKind = "file"
	MessageLocation MessageKind = "location"
)

// Sender describes the user a message came from.
type Sender struct {
	ID           string `json:"id" validate:"required"`
	Username     string `json:"username,omitempty"`
	FirstName    string `json:"first_name,omitempty"`
	LastName     string `json:"last_name,omitempty"`
	LanguageCode string `json:"language_code,omitempty"`
}

// DisplayName picks the friendliest available name for prompt personalization.
func (s Sender) DisplayName() string {
	if s.FirstName != "" {
		return s.FirstName
	}
	if s.Username != "" {
		return s.Username
	}
	return "friend"
}

// Message is an inbound chat message embedded in a message-kind event.
type Message struct {
	ID        string      `json:"message_id" validate:"required"`
	From      Sender      `json:"from"`
	ChatID    string      `json:"chat_id" validate:"required"`
	Text      string      `json:"text"`
	Kind      MessageKind `json:"message_type,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	ReplyTo   string      `json:"reply_to_message_id,omitempty"`
}

// Event is an inbound webhook event pushed by the messaging platform.
// Events are transient: decoded on receipt, consumed once, discarded.
type Event struct {
	ID        string    `json:"event_id" validate:"required"`
	Kind      EventKind `json:"event_type" validate:"required"`
	Timestamp time.Time `json:"timestamp"`
	Message   *Message  `json:"message,omitempty"`
}

// Validate checks the event against the wire schema. A message-kind event
// must carry an embedded message; validator tags cannot express that
// cross-field rule, so it is checked here.
func (e *Event) Validate() error {
	if err := ValidateStruct(e); err != nil {
		return err
	}
	if !e.Kind.Valid() {
		return fmt.Errorf("%w: unknown event kind %q", ErrInvalidEvent, e.Kind)
	}
	if e.Kind == KindMessage && e.Message == nil {
		return fmt.Errorf("%w: message event %s carries no message", ErrInvalidEvent, e.ID)
	}
	return nil
}
