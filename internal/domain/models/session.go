package models

import "time"

// Session is the per-conversation mutable state. Created on the first
// message for a session id and mutated by every subsequent request.
// All read-modify-write access is serialized per session id by the
// session store.
type Session struct {
	ID            string       `json:"id"`
	StartedAt     time.Time    `json:"startedAt"`
	LastSeenAt    time.Time    `json:"lastSeenAt"`
	TurnCount     int          `json:"turnCount"`
	History       []RawMessage `json:"history"`
	Evidence      *EvidenceSet `json:"evidence"`
	ClusterID     *string      `json:"threatClusterId"`
	LastReplyText string       `json:"lastReplyText,omitempty"`
}

// NewSession creates a fresh session
func NewSession(id string, now time.Time) *Session {
	return &Session{
		ID:         id,
		StartedAt:  now,
		LastSeenAt: now,
		Evidence:   NewEvidenceSet(),
	}
}
