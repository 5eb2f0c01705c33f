package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ai-docassist/internal/constant"
	"ai-docassist/internal/entity"
	"ai-docassist/internal/pkg/logger"
	"ai-docassist/internal/repository/memory"
	"ai-docassist/internal/repository/specification"
	"ai-docassist/internal/repository/unitofwork"
	"ai-docassist/internal/websocket"
	"ai-docassist/pkg/embedding"
	"ai-docassist/pkg/events"
	"ai-docassist/pkg/extract"
	pktNats "ai-docassist/pkg/nats"
	"ai-docassist/pkg/utils"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type IDocumentConsumerService interface {
	Consume(ctx context.Context) error
}

type documentConsumerService struct {
	pubSub            *gochannel.GoChannel
	topicName         string
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
	statusStore       *memory.ProcessingStatusStore
	eventPublisher    *pktNats.Publisher
	hub               *websocket.Hub
	log               logger.ILogger
}

func NewDocumentConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
	statusStore *memory.ProcessingStatusStore,
	eventPublisher *pktNats.Publisher,
	hub *websocket.Hub,
	log logger.ILogger,
) IDocumentConsumerService {
	return &documentConsumerService{
		pubSub:            pubSub,
		topicName:         topicName,
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		statusStore:       statusStore,
		eventPublisher:    eventPublisher,
		hub:               hub,
		log:               log,
	}
}

func (cs *documentConsumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *documentConsumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload ProcessDocumentMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.log.Error("DocumentConsumer", "Failed to unmarshal message", map[string]interface{}{"error": err.Error()})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	cs.log.Info("DocumentConsumer", "Processing document", map[string]interface{}{"document_id": payload.DocumentId})

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: payload.DocumentId})
	if err != nil {
		cs.log.Error("DocumentConsumer", "Failed to load document", map[string]interface{}{
			"document_id": payload.DocumentId, "error": err.Error(),
		})
		msg.Nack() // Retriable
		return
	}
	if doc == nil {
		// Deleted before processing started
		msg.Ack()
		return
	}

	pages, chunkCount, err := cs.processDocument(ctx, uow, doc)
	if err != nil {
		cs.fail(ctx, uow, doc, err)
		msg.Ack() // Processing failures are terminal, not retriable
		return
	}

	if err := uow.DocumentRepository().UpdateStatus(ctx, doc.Id, constant.DocumentStatusCompleted, pages, chunkCount, nil); err != nil {
		cs.log.Error("DocumentConsumer", "Failed to mark completed", map[string]interface{}{
			"document_id": doc.Id, "error": err.Error(),
		})
		msg.Nack()
		return
	}

	cs.statusStore.Set(doc.Id, constant.DocumentStatusCompleted, "")

	if cs.eventPublisher != nil {
		_ = cs.eventPublisher.Publish(ctx, events.New(events.DocumentProcessed, map[string]interface{}{
			"document_id": doc.Id,
			"user_id":     doc.UserId,
			"name":        doc.Name,
			"chunk_count": chunkCount,
			"pages":       pages,
		}))
	}

	if cs.hub != nil {
		cs.hub.Send(doc.UserId, websocket.Notification{
			Type:      "document.processed",
			Title:     "Document ready",
			Message:   fmt.Sprintf("%q has been processed and is ready for questions.", doc.Name),
			Data:      map[string]interface{}{"document_id": doc.Id, "chunk_count": chunkCount},
			CreatedAt: time.Now(),
		})
	}

	msg.Ack()
}

// processDocument extracts, chunks and embeds the payload, returning page
// and chunk counts.
func (cs *documentConsumerService) processDocument(ctx context.Context, uow unitofwork.UnitOfWork, doc *entity.Document) (int, int, error) {
	var text string
	pages := 1

	if doc.Kind == constant.DocumentKindImage {
		text = extract.ImageDescription(doc.Name, doc.ContentType, doc.SizeBytes)
	} else {
		result, err := extract.FromFile(doc.Name, doc.Content)
		if err != nil {
			return 0, 0, fmt.Errorf("extract text: %w", err)
		}
		text = result.Text
		pages = result.Pages
	}

	chunks := utils.SplitText(text, constant.ChunkSize, constant.ChunkOverlap)
	if len(chunks) == 0 {
		return 0, 0, fmt.Errorf("no content to index")
	}

	rows := make([]*entity.DocumentChunk, 0, len(chunks))
	for i, chunk := range chunks {
		resp, err := cs.embeddingProvider.Generate(chunk, "RETRIEVAL_DOCUMENT")
		if err != nil {
			return 0, 0, fmt.Errorf("embed chunk %d: %w", i, err)
		}
		rows = append(rows, &entity.DocumentChunk{
			Id:         uuid.New(),
			DocumentId: doc.Id,
			ChunkIndex: i,
			Content:    chunk,
			Embedding:  resp.Embedding.Values,
			CreatedAt:  time.Now(),
		})
	}

	// Replace any leftovers from a previous attempt before inserting
	if err := uow.DocumentChunkRepository().DeleteByDocumentId(ctx, doc.Id); err != nil {
		return 0, 0, err
	}
	if err := uow.DocumentChunkRepository().CreateBulk(ctx, rows); err != nil {
		return 0, 0, err
	}

	return pages, len(rows), nil
}

func (cs *documentConsumerService) fail(ctx context.Context, uow unitofwork.UnitOfWork, doc *entity.Document, cause error) {
	cs.log.Error("DocumentConsumer", "Document processing failed", map[string]interface{}{
		"document_id": doc.Id, "error": cause.Error(),
	})

	errMsg := cause.Error()
	if err := uow.DocumentRepository().UpdateStatus(ctx, doc.Id, constant.DocumentStatusFailed, 0, 0, &errMsg); err != nil {
		cs.log.Error("DocumentConsumer", "Failed to mark failed", map[string]interface{}{
			"document_id": doc.Id, "error": err.Error(),
		})
	}

	cs.statusStore.Set(doc.Id, constant.DocumentStatusFailed, errMsg)

	if cs.eventPublisher != nil {
		_ = cs.eventPublisher.Publish(ctx, events.New(events.DocumentFailed, map[string]interface{}{
			"document_id": doc.Id,
			"user_id":     doc.UserId,
			"name":        doc.Name,
			"error":       errMsg,
		}))
	}

	if cs.hub != nil {
		cs.hub.Send(doc.UserId, websocket.Notification{
			Type:      "document.failed",
			Title:     "Document processing failed",
			Message:   fmt.Sprintf("%q could not be processed: %s", doc.Name, errMsg),
			Data:      map[string]interface{}{"document_id": doc.Id},
			CreatedAt: time.Now(),
		})
	}
}
