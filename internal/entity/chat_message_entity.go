package entity

import (
	"time"

	"github.com/google/uuid"
)

type ChatMessage struct {
	Id        uuid.UUID
	SessionId uuid.UUID
	Sender    string // "user" or "ai"
	Content   string
	AgentInfo map[string]interface{} // nil for user messages
	CreatedAt time.Time
	UpdatedAt time.Time
}
