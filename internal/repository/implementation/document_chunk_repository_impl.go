package implementation

import (
	"context"

	"ai-docassist/internal/entity"
	"ai-docassist/internal/mapper"
	"ai-docassist/internal/model"
	"ai-docassist/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type DocumentChunkRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.DocumentMapper
}

func NewDocumentChunkRepository(db *gorm.DB) contract.DocumentChunkRepository {
	return &DocumentChunkRepositoryImpl{
		db:     db,
		mapper: mapper.NewDocumentMapper(),
	}
}

func (r *DocumentChunkRepositoryImpl) CreateBulk(ctx context.Context, chunks []*entity.DocumentChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	models := make([]*model.DocumentChunk, len(chunks))
	for i, c := range chunks {
		models[i] = r.mapper.ChunkToModel(c)
	}
	if err := r.db.WithContext(ctx).CreateInBatches(models, 100).Error; err != nil {
		return err
	}
	for i, m := range models {
		*chunks[i] = *r.mapper.ChunkToEntity(m)
	}
	return nil
}

func (r *DocumentChunkRepositoryImpl) DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("document_id = ?", documentId).Delete(&model.DocumentChunk{}).Error
}

func (r *DocumentChunkRepositoryImpl) CountByDocumentId(ctx context.Context, documentId uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.DocumentChunk{}).
		Where("document_id = ?", documentId).
		Count(&count).Error
	return count, err
}

type scoredChunkRow struct {
	model.DocumentChunk
	DocumentName string
	DocumentKind string
	Similarity   float64
}

func (r *DocumentChunkRepositoryImpl) SearchSimilar(ctx context.Context, userId uuid.UUID, embedding []float32, limit int, kind string) ([]*entity.ScoredChunk, error) {
	if limit <= 0 {
		limit = 5
	}
	vec := pgvector.NewVector(embedding)

	query := r.db.WithContext(ctx).Model(&model.DocumentChunk{}).
		Select("document_chunks.*, documents.name as document_name, documents.kind as document_kind, 1 - (document_chunks.embedding <=> ?) as similarity", vec).
		Joins("JOIN documents ON documents.id = document_chunks.document_id").
		Where("documents.user_id = ?", userId).
		Where("documents.status = ?", "completed").
		Where("documents.deleted_at IS NULL")

	if kind != "" {
		query = query.Where("documents.kind = ?", kind)
	}

	var rows []scoredChunkRow
	err := query.
		Order(gorm.Expr("document_chunks.embedding <=> ?", vec)).
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	return r.toScoredChunks(rows), nil
}

func (r *DocumentChunkRepositoryImpl) toScoredChunks(rows []scoredChunkRow) []*entity.ScoredChunk {
	results := make([]*entity.ScoredChunk, len(rows))
	for i, row := range rows {
		results[i] = &entity.ScoredChunk{
			Chunk:        r.mapper.ChunkToEntity(&row.DocumentChunk),
			DocumentName: row.DocumentName,
			DocumentKind: row.DocumentKind,
			Similarity:   row.Similarity,
		}
	}
	return results
}
