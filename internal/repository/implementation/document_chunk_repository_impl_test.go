package implementation

import (
	"testing"

	"ai-docassist/internal/mapper"
	"ai-docassist/internal/model"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
)

func TestToScoredChunks(t *testing.T) {
	repo := &DocumentChunkRepositoryImpl{mapper: mapper.NewDocumentMapper()}

	docId := uuid.New()
	rows := []scoredChunkRow{
		{
			DocumentChunk: model.DocumentChunk{
				Id:         uuid.New(),
				DocumentId: docId,
				ChunkIndex: 3,
				Content:    "quarterly revenue grew 12%",
				Embedding:  pgvector.NewVector([]float32{0.1, 0.2, 0.3}),
			},
			DocumentName: "report.pdf",
			DocumentKind: "text",
			Similarity:   0.87,
		},
		{
			DocumentChunk: model.DocumentChunk{
				Id:         uuid.New(),
				DocumentId: docId,
				ChunkIndex: 0,
				Content:    "executive summary",
			},
			DocumentName: "report.pdf",
			DocumentKind: "text",
			Similarity:   0.81,
		},
	}

	scored := repo.toScoredChunks(rows)

	assert.Len(t, scored, 2)
	assert.NotNil(t, scored[0].Chunk)
	assert.Equal(t, 3, scored[0].Chunk.ChunkIndex)
	assert.Equal(t, "quarterly revenue grew 12%", scored[0].Chunk.Content)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, scored[0].Chunk.Embedding)
	assert.Equal(t, "report.pdf", scored[0].DocumentName)
	assert.Equal(t, "text", scored[0].DocumentKind)
	assert.InDelta(t, 0.87, scored[0].Similarity, 1e-9)
	assert.Equal(t, docId, scored[1].Chunk.DocumentId)
}

func TestToScoredChunksEmpty(t *testing.T) {
	repo := &DocumentChunkRepositoryImpl{mapper: mapper.NewDocumentMapper()}
	assert.Empty(t, repo.toScoredChunks(nil))
}
