package contract

import (
	"context"

	"ai-docassist/internal/entity"
	"ai-docassist/internal/repository/specification"

	"github.com/google/uuid"
)

type DocumentRepository interface {
	Create(ctx context.Context, doc *entity.Document) error
	Update(ctx context.Context, doc *entity.Document) error
	Delete(ctx context.Context, id uuid.UUID) error // soft delete
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Document, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Document, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// UpdateStatus records a processing outcome. pages/chunkCount are only
	// meaningful for the completed status; procErr only for failed.
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, pages, chunkCount int, procErr *string) error
}
