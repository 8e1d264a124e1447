package audit

import (
	"context"
	"time"
)

// Event is emitted from domain logic to capture a mutation of a record. Keep
// it transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	// Subject identifies the record the action was applied to.
	Subject   string `json:"subject"`
	ActorID   string `json:"actor_id,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	ClientIP  string `json:"client_ip,omitempty"`
	Device    string `json:"device,omitempty"`
}

type AuditEvent string

const (
	EventPersonCreated AuditEvent = "person_created"
	EventPersonUpdated AuditEvent = "person_updated"
	EventPersonDeleted AuditEvent = "person_deleted"
)

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// Lister is implemented by stores that can read events back.
type Lister interface {
	ListBySubject(ctx context.Context, subject string) ([]Event, error)
}
