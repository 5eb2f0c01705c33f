package implementation

import (
	"context"
	"encoding/json"

	"ai-docassist/internal/entity"
	"ai-docassist/internal/model"
	"ai-docassist/internal/repository/contract"
	"ai-docassist/internal/repository/scope"
	"ai-docassist/internal/repository/specification"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AuditEventRepositoryImpl struct {
	db *gorm.DB
}

func NewAuditEventRepository(db *gorm.DB) contract.AuditEventRepository {
	return &AuditEventRepositoryImpl{db: db}
}

func (r *AuditEventRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *AuditEventRepositoryImpl) Create(ctx context.Context, event *entity.AuditEvent) error {
	var payload datatypes.JSON
	if event.Payload != nil {
		raw, err := json.Marshal(event.Payload)
		if err != nil {
			return err
		}
		payload = datatypes.JSON(raw)
	}

	m := &model.AuditEvent{
		Id:         event.Id,
		EventType:  event.EventType,
		Payload:    payload,
		OccurredAt: event.OccurredAt,
		CreatedAt:  event.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	event.Id = m.Id
	event.CreatedAt = m.CreatedAt
	return nil
}

func (r *AuditEventRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.AuditEvent, error) {
	var models []*model.AuditEvent
	// Audit trails read newest-first unless a spec overrides the order
	query := r.applySpecifications(r.db.WithContext(ctx).Scopes(scope.OrderByCreatedDesc), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	events := make([]*entity.AuditEvent, len(models))
	for i, m := range models {
		var payload map[string]interface{}
		if len(m.Payload) > 0 {
			// unreadable rows still surface with their type and timestamp
			_ = json.Unmarshal(m.Payload, &payload)
		}
		events[i] = &entity.AuditEvent{
			Id:         m.Id,
			EventType:  m.EventType,
			Payload:    payload,
			OccurredAt: m.OccurredAt,
			CreatedAt:  m.CreatedAt,
		}
	}
	return events, nil
}

func (r *AuditEventRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.AuditEvent{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
