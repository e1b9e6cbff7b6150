// Package queue defines the audit events exchanged over the message
// broker and the background consumer that records them.
package queue

// Event types carried in AuthEvent.Type.
const (
	EventSignup = "signup"
	EventLogin  = "login"
)

// AuthEvent is published when an account is created or a login succeeds.
// It carries enough for downstream consumers to build an audit trail
// without querying the primary database.
type AuthEvent struct {
	Type   string `json:"type"`
	UserID uint64 `json:"user_id"`
	Email  string `json:"email"`
	At     string `json:"at"` // RFC3339 UTC
}
