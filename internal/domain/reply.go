package domain

import "time"

// Reply is an outbound message to deliver to a chat.
type Reply struct {
	ChatID    string `json:"chat_id" validate:"required"`
	Text      string `json:"text" validate:"required"`
	ReplyTo   string `json:"reply_to_message_id,omitempty"`
	ParseMode string `json:"parse_mode,omitempty"`
}

// DeliveryResult reports a single successful platform delivery.
type DeliveryResult struct {
	ChatID    string    `json:"chat_id"`
	MessageID string    `json:"message_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// TargetResult is the per-recipient outcome of a broadcast.
type TargetResult struct {
	ChatID string `json:"chat_id"`
	OK     bool   `json:"ok"`
	Error  string `json:"error,omitempty"`
}

// BroadcastResult aggregates per-target outcomes. A broadcast always
// completes; individual failures are captured here, never raised.
type BroadcastResult struct {
	Total     int            `json:"total"`
	Succeeded int            `json:"succeeded"`
	Failed    int            `json:"failed"`
	Targets   []TargetResult `json:"targets"`
}

// AnswerResult is the response payload of a direct question.
type AnswerResult struct {
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Timestamp time.Time `json:"timestamp"`
}
