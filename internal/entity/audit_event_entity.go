package entity

import (
	"time"

	"github.com/google/uuid"
)

// AuditEvent is a persisted copy of a domain event consumed from the bus.
type AuditEvent struct {
	Id         uuid.UUID
	EventType  string
	Payload    map[string]interface{}
	OccurredAt time.Time
	CreatedAt  time.Time
}
