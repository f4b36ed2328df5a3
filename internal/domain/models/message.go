package models

import "time"

// RawMessage is a single inbound conversational message. Immutable
// once received.
type RawMessage struct {
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	MessageID string    `json:"messageId,omitempty"`
	Source    string    `json:"source,omitempty"`
}
