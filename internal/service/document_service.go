package service

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"ai-docassist/internal/constant"
	"ai-docassist/internal/dto"
	"ai-docassist/internal/entity"
	"ai-docassist/internal/pkg/logger"
	"ai-docassist/internal/pkg/serverutils"
	"ai-docassist/internal/repository/memory"
	"ai-docassist/internal/repository/specification"
	"ai-docassist/internal/repository/unitofwork"
	"ai-docassist/pkg/events"
	"ai-docassist/pkg/extract"
	pktNats "ai-docassist/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Upload is one file handed to the service from the multipart form.
type Upload struct {
	Name        string
	ContentType string
	Data        []byte
}

// ProcessDocumentMessage is the watermill payload for the async pipeline.
type ProcessDocumentMessage struct {
	DocumentId uuid.UUID `json:"document_id"`
	UserId     uuid.UUID `json:"user_id"`
}

type IDocumentService interface {
	Upload(ctx context.Context, userId uuid.UUID, uploads []Upload) ([]*dto.DocumentResponse, error)
	List(ctx context.Context, userId uuid.UUID) ([]*dto.DocumentResponse, error)
	Delete(ctx context.Context, userId, documentId uuid.UUID) error
	Status(ctx context.Context, userId, documentId uuid.UUID) (*dto.DocumentResponse, error)
	CountByStatus(ctx context.Context, userId uuid.UUID) (total, completed, processing, failed int64, err error)
}

type documentService struct {
	uowFactory     unitofwork.RepositoryFactory
	pubSub         *gochannel.GoChannel
	topicName      string
	statusStore    *memory.ProcessingStatusStore
	eventPublisher *pktNats.Publisher
	log            logger.ILogger
}

func NewDocumentService(
	uowFactory unitofwork.RepositoryFactory,
	pubSub *gochannel.GoChannel,
	topicName string,
	statusStore *memory.ProcessingStatusStore,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) IDocumentService {
	return &documentService{
		uowFactory:     uowFactory,
		pubSub:         pubSub,
		topicName:      topicName,
		statusStore:    statusStore,
		eventPublisher: eventPublisher,
		log:            log,
	}
}

func documentResponse(d *entity.Document) *dto.DocumentResponse {
	resp := &dto.DocumentResponse{
		Id:          d.Id,
		Name:        d.Name,
		Kind:        d.Kind,
		ContentType: d.ContentType,
		SizeBytes:   d.SizeBytes,
		Status:      d.Status,
		Pages:       d.Pages,
		ChunkCount:  d.ChunkCount,
		CreatedAt:   d.CreatedAt,
	}
	if d.Error != nil {
		resp.Error = *d.Error
	}
	return resp
}

func (s *documentService) Upload(ctx context.Context, userId uuid.UUID, uploads []Upload) ([]*dto.DocumentResponse, error) {
	if len(uploads) == 0 {
		return nil, serverutils.NewApiError(fiber.StatusBadRequest, "no files provided")
	}

	for _, u := range uploads {
		ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(u.Name)), ".")
		if !constant.AllowedUploadExtensions[ext] {
			return nil, serverutils.NewApiError(fiber.StatusBadRequest, fmt.Sprintf("file type not allowed: %s", ext))
		}
		if int64(len(u.Data)) > constant.MaxUploadBytes {
			return nil, serverutils.NewApiError(fiber.StatusBadRequest, fmt.Sprintf("file too large: %s", u.Name))
		}
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	responses := make([]*dto.DocumentResponse, 0, len(uploads))

	for _, u := range uploads {
		kind := constant.DocumentKindText
		if extract.IsImage(u.Name) {
			kind = constant.DocumentKindImage
		}

		doc := &entity.Document{
			Id:          uuid.New(),
			UserId:      userId,
			Name:        u.Name,
			Kind:        kind,
			ContentType: u.ContentType,
			SizeBytes:   int64(len(u.Data)),
			Status:      constant.DocumentStatusProcessing,
			Content:     u.Data,
			CreatedAt:   time.Now(),
			UpdatedAt:   time.Now(),
		}
		if err := uow.DocumentRepository().Create(ctx, doc); err != nil {
			return nil, err
		}

		s.statusStore.Set(doc.Id, constant.DocumentStatusProcessing, "")

		payload, err := json.Marshal(ProcessDocumentMessage{DocumentId: doc.Id, UserId: userId})
		if err != nil {
			return nil, err
		}
		msg := message.NewMessage(uuid.NewString(), payload)
		if err := s.pubSub.Publish(s.topicName, msg); err != nil {
			return nil, fmt.Errorf("queue document for processing: %w", err)
		}

		if s.eventPublisher != nil {
			_ = s.eventPublisher.Publish(ctx, events.New(events.DocumentUploaded, map[string]interface{}{
				"document_id": doc.Id,
				"user_id":     userId,
				"name":        doc.Name,
			}))
		}

		responses = append(responses, documentResponse(doc))
	}

	return responses, nil
}

func (s *documentService) List(ctx context.Context, userId uuid.UUID) ([]*dto.DocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	docs, err := uow.DocumentRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	out := make([]*dto.DocumentResponse, 0, len(docs))
	for _, d := range docs {
		out = append(out, documentResponse(d))
	}
	return out, nil
}

func (s *documentService) Delete(ctx context.Context, userId, documentId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: documentId})
	if err != nil {
		return err
	}
	if doc == nil {
		return serverutils.NewApiError(fiber.StatusNotFound, "document not found")
	}
	if doc.UserId != userId {
		return serverutils.NewApiError(fiber.StatusForbidden, "document belongs to another user")
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.DocumentChunkRepository().DeleteByDocumentId(ctx, documentId); err != nil {
		return err
	}
	if err := uow.DocumentRepository().Delete(ctx, documentId); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	s.statusStore.Delete(documentId)
	return nil
}

func (s *documentService) Status(ctx context.Context, userId, documentId uuid.UUID) (*dto.DocumentResponse, error) {
	// Cheap path first: the in-memory mirror written by the pipeline
	if cached, ok := s.statusStore.Get(documentId); ok {
		if cached.Status == constant.DocumentStatusProcessing {
			return &dto.DocumentResponse{Id: documentId, Status: cached.Status}, nil
		}
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: documentId})
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, serverutils.NewApiError(fiber.StatusNotFound, "document not found")
	}
	if doc.UserId != userId {
		return nil, serverutils.NewApiError(fiber.StatusForbidden, "document belongs to another user")
	}
	return documentResponse(doc), nil
}

func (s *documentService) CountByStatus(ctx context.Context, userId uuid.UUID) (total, completed, processing, failed int64, err error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.DocumentRepository()

	if total, err = repo.Count(ctx, specification.UserOwnedBy{UserID: userId}); err != nil {
		return
	}
	if completed, err = repo.Count(ctx, specification.UserOwnedBy{UserID: userId}, specification.ByStatus{Status: constant.DocumentStatusCompleted}); err != nil {
		return
	}
	if processing, err = repo.Count(ctx, specification.UserOwnedBy{UserID: userId}, specification.ByStatus{Status: constant.DocumentStatusProcessing}); err != nil {
		return
	}
	failed, err = repo.Count(ctx, specification.UserOwnedBy{UserID: userId}, specification.ByStatus{Status: constant.DocumentStatusFailed})
	return
}
