package service

import (
	"context"
	"time"

	"ai-docassist/internal/entity"
	"ai-docassist/internal/pkg/logger"
	"ai-docassist/internal/repository/unitofwork"
	"ai-docassist/pkg/events"
	pktNats "ai-docassist/pkg/nats"

	"github.com/google/uuid"
)

// AuditService mirrors every domain event into the audit_events table via
// a durable JetStream consumer.
type IAuditService interface {
	Start() error
}

type auditService struct {
	subscriber *pktNats.Subscriber
	uowFactory unitofwork.RepositoryFactory
	log        logger.ILogger
}

func NewAuditService(subscriber *pktNats.Subscriber, uowFactory unitofwork.RepositoryFactory, log logger.ILogger) IAuditService {
	return &auditService{
		subscriber: subscriber,
		uowFactory: uowFactory,
		log:        log,
	}
}

func (s *auditService) Start() error {
	if s.subscriber == nil {
		s.log.Warn("audit", "NATS unavailable, audit trail disabled", nil)
		return nil
	}
	return s.subscriber.Subscribe("events.>", "audit-log", s.handleEvent)
}

func (s *auditService) handleEvent(ctx context.Context, event events.Event) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	row := &entity.AuditEvent{
		Id:         uuid.New(),
		EventType:  event.EventType(),
		Payload:    event.Payload(),
		OccurredAt: event.Timestamp(),
		CreatedAt:  time.Now(),
	}
	if err := uow.AuditEventRepository().Create(ctx, row); err != nil {
		s.log.Error("audit", "failed to persist audit event", map[string]interface{}{
			"event": event.EventType(),
			"error": err.Error(),
		})
		return err
	}
	return nil
}
