package contract

import (
	"context"

	"ai-docassist/internal/entity"
	"ai-docassist/internal/repository/specification"
)

type AuditEventRepository interface {
	Create(ctx context.Context, event *entity.AuditEvent) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.AuditEvent, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
