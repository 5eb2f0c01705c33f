package entity

import (
	"time"

	"github.com/google/uuid"
)

type Document struct {
	Id          uuid.UUID
	UserId      uuid.UUID
	Name        string
	Kind        string // "text" or "image"
	ContentType string
	SizeBytes   int64
	Status      string // processing, completed, failed
	Pages       int
	ChunkCount  int
	Error       *string
	Content     []byte // raw upload, kept for re-indexing
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type DocumentChunk struct {
	Id         uuid.UUID
	DocumentId uuid.UUID
	ChunkIndex int
	Content    string
	Embedding  []float32
	CreatedAt  time.Time
}

// ScoredChunk pairs a retrieved chunk with its cosine similarity and the
// owning document's name for source attribution.
type ScoredChunk struct {
	Chunk        *DocumentChunk
	DocumentName string
	DocumentKind string
	Similarity   float64
}
