package contract

import (
	"context"

	"ai-docassist/internal/entity"
	"ai-docassist/internal/repository/specification"

	"github.com/google/uuid"
)

type ChatMessageRepository interface {
	Create(ctx context.Context, message *entity.ChatMessage) error
	Update(ctx context.Context, message *entity.ChatMessage) error
	Delete(ctx context.Context, id uuid.UUID) error // soft delete
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatMessage, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// DeleteBySessionId soft-deletes every message in a session and
	// reports how many rows were affected.
	DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) (int64, error)
}
