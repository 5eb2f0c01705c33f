package contract

import (
	"context"

	"ai-docassist/internal/entity"
	"ai-docassist/internal/repository/specification"

	"github.com/google/uuid"
)

type ChatSessionRepository interface {
	Create(ctx context.Context, session *entity.ChatSession) error
	Update(ctx context.Context, session *entity.ChatSession) error
	Delete(ctx context.Context, id uuid.UUID) error // soft delete
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatSession, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatSession, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// TouchUpdatedAt bumps updated_at so the session surfaces first in
	// recency-ordered listings after a new message.
	TouchUpdatedAt(ctx context.Context, id uuid.UUID) error
}
