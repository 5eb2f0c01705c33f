package service

import (
	"context"
	"fmt"

	"ai-docassist/internal/dto"
	"ai-docassist/internal/pkg/logger"
	"ai-docassist/internal/pkg/serverutils"
	"ai-docassist/internal/repository/specification"
	"ai-docassist/internal/repository/unitofwork"
	"ai-docassist/pkg/agent"
	"ai-docassist/pkg/embedding"
	"ai-docassist/pkg/events"
	pktNats "ai-docassist/pkg/nats"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ChunkRetriever adapts the repository layer to the retrieval interface
// the document-grounded agents consume.
type ChunkRetriever struct {
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
}

func NewChunkRetriever(uowFactory unitofwork.RepositoryFactory, provider embedding.EmbeddingProvider) *ChunkRetriever {
	return &ChunkRetriever{
		uowFactory:        uowFactory,
		embeddingProvider: provider,
	}
}

func (r *ChunkRetriever) Retrieve(ctx context.Context, userID uuid.UUID, query string, limit int, kind string) ([]agent.RetrievedChunk, error) {
	resp, err := r.embeddingProvider.Generate(query, "RETRIEVAL_QUERY")
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	uow := r.uowFactory.NewUnitOfWork(ctx)
	scored, err := uow.DocumentChunkRepository().SearchSimilar(ctx, userID, resp.Embedding.Values, limit, kind)
	if err != nil {
		return nil, err
	}

	out := make([]agent.RetrievedChunk, len(scored))
	for i, s := range scored {
		out[i] = agent.RetrievedChunk{
			DocumentName: s.DocumentName,
			DocumentKind: s.DocumentKind,
			ChunkIndex:   s.Chunk.ChunkIndex,
			Content:      s.Chunk.Content,
			Similarity:   s.Similarity,
		}
	}
	return out, nil
}

type QueryOutcome struct {
	AgentUsed string
	Result    *agent.Result
}

type AutoQueryOutcome struct {
	QueryOutcome
	Selection *dto.AgentSelectionResponse
}

type AgentStats struct {
	QueriesByAgent     map[string]int64
	DocumentsTotal     int64
	DocumentsCompleted int64
	DocumentsPending   int64
	DocumentsFailed    int64
}

type IAgentService interface {
	Query(ctx context.Context, userId uuid.UUID, req *dto.QueryRequest) (*QueryOutcome, error)
	DocumentQuery(ctx context.Context, userId uuid.UUID, req *dto.DocumentQueryRequest) (*QueryOutcome, error)
	AutoQuery(ctx context.Context, userId uuid.UUID, req *dto.AutoQueryRequest) (*AutoQueryOutcome, error)
	Agents() []map[string]interface{}
	Stats(ctx context.Context, userId uuid.UUID) (*AgentStats, error)
}

type agentService struct {
	registry        *agent.Registry
	selector        *agent.Selector
	chatService     IChatService
	documentService IDocumentService
	rdb             *redis.Client
	eventPublisher  *pktNats.Publisher
	log             logger.ILogger

	uowFactory unitofwork.RepositoryFactory
}

func NewAgentService(
	registry *agent.Registry,
	selector *agent.Selector,
	chatService IChatService,
	documentService IDocumentService,
	uowFactory unitofwork.RepositoryFactory,
	rdb *redis.Client,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) IAgentService {
	return &agentService{
		registry:        registry,
		selector:        selector,
		chatService:     chatService,
		documentService: documentService,
		uowFactory:      uowFactory,
		rdb:             rdb,
		eventPublisher:  eventPublisher,
		log:             log,
	}
}

const statsKeyPrefix = "agent:stats:queries:"

func (s *agentService) recordQuery(ctx context.Context, agentType string, userId uuid.UUID, query string) {
	if s.rdb != nil {
		if err := s.rdb.Incr(ctx, statsKeyPrefix+agentType).Err(); err != nil {
			s.log.Warn("agent", "failed to increment query counter", map[string]interface{}{"error": err.Error()})
		}
	}
	if s.eventPublisher != nil {
		_ = s.eventPublisher.Publish(ctx, events.New(events.QueryAnswered, map[string]interface{}{
			"user_id": userId,
			"agent":   agentType,
			"query":   query,
		}))
	}
}

// sessionHistory loads prior messages when the caller ties the query to a
// chat session. Absent or foreign sessions just mean no history.
func (s *agentService) sessionHistory(ctx context.Context, userId uuid.UUID, sessionIdStr string) []agent.Message {
	if sessionIdStr == "" {
		return nil
	}
	sessionId, err := uuid.Parse(sessionIdStr)
	if err != nil {
		return nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil || session == nil || session.UserId != userId {
		return nil
	}

	messages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.BySessionID{SessionID: sessionId},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: 20, Offset: 0},
	)
	if err != nil {
		return nil
	}

	// Reverse back to chronological order
	history := make([]agent.Message, 0, len(messages))
	for i := len(messages) - 1; i >= 0; i-- {
		role := "user"
		if messages[i].Sender == "ai" {
			role = "assistant"
		}
		history = append(history, agent.Message{Role: role, Content: messages[i].Content})
	}
	return history
}

func (s *agentService) run(ctx context.Context, agentType agent.AgentType, req agent.Request) (*QueryOutcome, error) {
	a, err := s.registry.Get(agentType)
	if err != nil {
		return nil, serverutils.NewApiError(fiber.StatusBadRequest, err.Error())
	}

	result, err := a.Answer(ctx, req)
	if err != nil {
		return nil, err
	}

	s.recordQuery(ctx, string(agentType), req.UserID, req.Query)
	return &QueryOutcome{AgentUsed: string(agentType), Result: result}, nil
}

func (s *agentService) Query(ctx context.Context, userId uuid.UUID, req *dto.QueryRequest) (*QueryOutcome, error) {
	agentType := agent.TypeLightweight
	if req.AgentType != "" {
		agentType = agent.AgentType(req.AgentType)
		if !s.registry.Has(agentType) {
			return nil, serverutils.NewApiError(fiber.StatusBadRequest, fmt.Sprintf("unknown agent type: %s", req.AgentType))
		}
	}

	return s.run(ctx, agentType, agent.Request{
		Query:   req.Query,
		UserID:  userId,
		History: s.sessionHistory(ctx, userId, req.SessionId),
	})
}

func (s *agentService) DocumentQuery(ctx context.Context, userId uuid.UUID, req *dto.DocumentQueryRequest) (*QueryOutcome, error) {
	return s.run(ctx, agent.TypeDocument, agent.Request{
		Query:      req.Query,
		UserID:     userId,
		MaxResults: req.MaxResults,
	})
}

func (s *agentService) AutoQuery(ctx context.Context, userId uuid.UUID, req *dto.AutoQueryRequest) (*AutoQueryOutcome, error) {
	selected, scores := s.selector.Select(req.Query)

	outcome, err := s.run(ctx, selected, agent.Request{
		Query:   req.Query,
		UserID:  userId,
		History: s.sessionHistory(ctx, userId, req.SessionId),
	})
	if err != nil {
		return nil, err
	}

	scoreMap := make(map[string]float64, len(scores))
	for t, v := range scores {
		scoreMap[string(t)] = v
	}

	return &AutoQueryOutcome{
		QueryOutcome: *outcome,
		Selection: &dto.AgentSelectionResponse{
			SelectedAgent: string(selected),
			Confidence:    scores[selected],
			Scores:        scoreMap,
		},
	}, nil
}

var agentDescriptions = map[agent.AgentType]string{
	agent.TypeLightweight: "Fast single-shot answers for simple questions",
	agent.TypeChat:        "Conversational assistant with session history",
	agent.TypeDocument:    "Answers grounded in your uploaded documents",
	agent.TypeMultimodal:  "Document retrieval including image uploads",
	agent.TypeResearch:    "Web search synthesis with cited sources",
}

func (s *agentService) Agents() []map[string]interface{} {
	catalog := make([]map[string]interface{}, 0, len(agentDescriptions))
	for agentType, description := range agentDescriptions {
		catalog = append(catalog, map[string]interface{}{
			"type":        string(agentType),
			"description": description,
			"available":   s.registry.Has(agentType),
		})
	}
	return catalog
}

func (s *agentService) Stats(ctx context.Context, userId uuid.UUID) (*AgentStats, error) {
	stats := &AgentStats{
		QueriesByAgent: make(map[string]int64),
	}

	for _, agentType := range []agent.AgentType{
		agent.TypeLightweight, agent.TypeChat, agent.TypeDocument, agent.TypeMultimodal, agent.TypeResearch,
	} {
		// Graceful zeros without Redis
		if s.rdb == nil {
			stats.QueriesByAgent[string(agentType)] = 0
			continue
		}
		count, err := s.rdb.Get(ctx, statsKeyPrefix+string(agentType)).Int64()
		if err != nil && err != redis.Nil {
			s.log.Warn("agent", "failed to read query counter", map[string]interface{}{"error": err.Error()})
		}
		stats.QueriesByAgent[string(agentType)] = count
	}

	total, completed, processing, failed, err := s.documentService.CountByStatus(ctx, userId)
	if err != nil {
		return nil, err
	}
	stats.DocumentsTotal = total
	stats.DocumentsCompleted = completed
	stats.DocumentsPending = processing
	stats.DocumentsFailed = failed

	return stats, nil
}
