package contract

import (
	"context"

	"ai-docassist/internal/entity"

	"github.com/google/uuid"
)

type DocumentChunkRepository interface {
	CreateBulk(ctx context.Context, chunks []*entity.DocumentChunk) error
	DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error
	CountByDocumentId(ctx context.Context, documentId uuid.UUID) (int64, error)

	// SearchSimilar runs a cosine-similarity search over the user's chunks.
	// kind narrows to chunks of documents of that kind; empty means all
	// kinds. Only chunks of completed documents are considered.
	SearchSimilar(ctx context.Context, userId uuid.UUID, embedding []float32, limit int, kind string) ([]*entity.ScoredChunk, error)
}
