package service

import (
	"context"
	"time"

	"ai-docassist/internal/constant"
	"ai-docassist/internal/dto"
	"ai-docassist/internal/entity"
	"ai-docassist/internal/pkg/serverutils"
	"ai-docassist/internal/repository/specification"
	"ai-docassist/internal/repository/unitofwork"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	defaultSessionTitle = "New Chat"
	autoTitleMaxChars   = 50
	defaultPerPage      = 20
	maxPerPage          = 100
)

type IChatService interface {
	CreateSession(ctx context.Context, userId uuid.UUID, req *dto.CreateSessionRequest) (*dto.SessionResponse, error)
	ListSessions(ctx context.Context, userId uuid.UUID, page, perPage int) ([]*dto.SessionResponse, *dto.PaginationResponse, error)
	GetSession(ctx context.Context, userId, sessionId uuid.UUID) (*dto.SessionResponse, error)
	RenameSession(ctx context.Context, userId, sessionId uuid.UUID, title string) (*dto.SessionResponse, error)
	DeleteSession(ctx context.Context, userId, sessionId uuid.UUID) error

	AddMessage(ctx context.Context, userId, sessionId uuid.UUID, req *dto.AddMessageRequest) (*dto.MessageResponse, error)
	ListMessages(ctx context.Context, userId, sessionId uuid.UUID, page, perPage int) ([]*dto.MessageResponse, *dto.PaginationResponse, error)
	UpdateMessage(ctx context.Context, userId, sessionId, messageId uuid.UUID, content string) (*dto.MessageResponse, error)
	DeleteMessage(ctx context.Context, userId, sessionId, messageId uuid.UUID) error
	ClearMessages(ctx context.Context, userId, sessionId uuid.UUID) (int64, error)
}

type chatService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewChatService(uowFactory unitofwork.RepositoryFactory) IChatService {
	return &chatService{uowFactory: uowFactory}
}

func normalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return page, perPage
}

// ownedSession loads the session and enforces ownership: 404 when the row
// does not exist, 403 when it belongs to someone else.
func (s *chatService) ownedSession(ctx context.Context, uow unitofwork.UnitOfWork, userId, sessionId uuid.UUID) (*entity.ChatSession, error) {
	session, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, serverutils.NewApiError(fiber.StatusNotFound, "session not found")
	}
	if session.UserId != userId {
		return nil, serverutils.NewApiError(fiber.StatusForbidden, "session belongs to another user")
	}
	return session, nil
}

func (s *chatService) sessionResponse(ctx context.Context, uow unitofwork.UnitOfWork, session *entity.ChatSession) (*dto.SessionResponse, error) {
	count, err := uow.ChatMessageRepository().Count(ctx, specification.BySessionID{SessionID: session.Id})
	if err != nil {
		return nil, err
	}
	return &dto.SessionResponse{
		Id:           session.Id,
		Title:        session.Title,
		MessageCount: count,
		CreatedAt:    session.CreatedAt,
		UpdatedAt:    session.UpdatedAt,
	}, nil
}

func messageResponse(m *entity.ChatMessage) *dto.MessageResponse {
	return &dto.MessageResponse{
		Id:        m.Id,
		SessionId: m.SessionId,
		Sender:    m.Sender,
		Content:   m.Content,
		AgentInfo: m.AgentInfo,
		CreatedAt: m.CreatedAt,
	}
}

func (s *chatService) CreateSession(ctx context.Context, userId uuid.UUID, req *dto.CreateSessionRequest) (*dto.SessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	title := req.Title
	if title == "" {
		title = defaultSessionTitle
	}

	session := &entity.ChatSession{
		Id:        uuid.New(),
		UserId:    userId,
		Title:     title,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := uow.ChatSessionRepository().Create(ctx, session); err != nil {
		return nil, err
	}

	return &dto.SessionResponse{
		Id:        session.Id,
		Title:     session.Title,
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
	}, nil
}

func (s *chatService) ListSessions(ctx context.Context, userId uuid.UUID, page, perPage int) ([]*dto.SessionResponse, *dto.PaginationResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	page, perPage = normalizePage(page, perPage)

	total, err := uow.ChatSessionRepository().Count(ctx, specification.UserOwnedBy{UserID: userId})
	if err != nil {
		return nil, nil, err
	}

	sessions, err := uow.ChatSessionRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "updated_at", Desc: true},
		specification.Pagination{Limit: perPage, Offset: (page - 1) * perPage},
	)
	if err != nil {
		return nil, nil, err
	}

	out := make([]*dto.SessionResponse, 0, len(sessions))
	for _, session := range sessions {
		resp, err := s.sessionResponse(ctx, uow, session)
		if err != nil {
			return nil, nil, err
		}
		out = append(out, resp)
	}

	pagination := dto.NewPaginationResponse(page, perPage, total)
	return out, &pagination, nil
}

func (s *chatService) GetSession(ctx context.Context, userId, sessionId uuid.UUID) (*dto.SessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, err := s.ownedSession(ctx, uow, userId, sessionId)
	if err != nil {
		return nil, err
	}
	return s.sessionResponse(ctx, uow, session)
}

func (s *chatService) RenameSession(ctx context.Context, userId, sessionId uuid.UUID, title string) (*dto.SessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, err := s.ownedSession(ctx, uow, userId, sessionId)
	if err != nil {
		return nil, err
	}

	session.Title = title
	session.UpdatedAt = time.Now()
	if err := uow.ChatSessionRepository().Update(ctx, session); err != nil {
		return nil, err
	}
	return s.sessionResponse(ctx, uow, session)
}

func (s *chatService) DeleteSession(ctx context.Context, userId, sessionId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if _, err := s.ownedSession(ctx, uow, userId, sessionId); err != nil {
		return err
	}
	return uow.ChatSessionRepository().Delete(ctx, sessionId)
}

func (s *chatService) AddMessage(ctx context.Context, userId, sessionId uuid.UUID, req *dto.AddMessageRequest) (*dto.MessageResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, err := s.ownedSession(ctx, uow, userId, sessionId)
	if err != nil {
		return nil, err
	}

	if req.Sender != constant.SenderUser && req.Sender != constant.SenderAI {
		return nil, serverutils.NewApiError(fiber.StatusBadRequest, "sender must be 'user' or 'ai'")
	}

	message := &entity.ChatMessage{
		Id:        uuid.New(),
		SessionId: sessionId,
		Sender:    req.Sender,
		Content:   req.Content,
		AgentInfo: req.AgentInfo,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := uow.ChatMessageRepository().Create(ctx, message); err != nil {
		return nil, err
	}

	// First user message names the session
	if session.Title == defaultSessionTitle && req.Sender == constant.SenderUser {
		session.Title = autoTitle(req.Content)
		session.UpdatedAt = time.Now()
		if err := uow.ChatSessionRepository().Update(ctx, session); err != nil {
			return nil, err
		}
	} else {
		if err := uow.ChatSessionRepository().TouchUpdatedAt(ctx, sessionId); err != nil {
			return nil, err
		}
	}

	return messageResponse(message), nil
}

func autoTitle(content string) string {
	if len(content) <= autoTitleMaxChars {
		return content
	}
	return content[:autoTitleMaxChars] + "..."
}

func (s *chatService) ListMessages(ctx context.Context, userId, sessionId uuid.UUID, page, perPage int) ([]*dto.MessageResponse, *dto.PaginationResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if _, err := s.ownedSession(ctx, uow, userId, sessionId); err != nil {
		return nil, nil, err
	}
	page, perPage = normalizePage(page, perPage)

	total, err := uow.ChatMessageRepository().Count(ctx, specification.BySessionID{SessionID: sessionId})
	if err != nil {
		return nil, nil, err
	}

	messages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.BySessionID{SessionID: sessionId},
		specification.OrderBy{Field: "created_at", Desc: false},
		specification.Pagination{Limit: perPage, Offset: (page - 1) * perPage},
	)
	if err != nil {
		return nil, nil, err
	}

	out := make([]*dto.MessageResponse, 0, len(messages))
	for _, m := range messages {
		out = append(out, messageResponse(m))
	}

	pagination := dto.NewPaginationResponse(page, perPage, total)
	return out, &pagination, nil
}

func (s *chatService) ownedMessage(ctx context.Context, uow unitofwork.UnitOfWork, userId, sessionId, messageId uuid.UUID) (*entity.ChatMessage, error) {
	if _, err := s.ownedSession(ctx, uow, userId, sessionId); err != nil {
		return nil, err
	}
	message, err := uow.ChatMessageRepository().FindOne(ctx, specification.ByID{ID: messageId})
	if err != nil {
		return nil, err
	}
	if message == nil || message.SessionId != sessionId {
		return nil, serverutils.NewApiError(fiber.StatusNotFound, "message not found")
	}
	return message, nil
}

func (s *chatService) UpdateMessage(ctx context.Context, userId, sessionId, messageId uuid.UUID, content string) (*dto.MessageResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	message, err := s.ownedMessage(ctx, uow, userId, sessionId, messageId)
	if err != nil {
		return nil, err
	}

	message.Content = content
	message.UpdatedAt = time.Now()
	if err := uow.ChatMessageRepository().Update(ctx, message); err != nil {
		return nil, err
	}
	return messageResponse(message), nil
}

func (s *chatService) DeleteMessage(ctx context.Context, userId, sessionId, messageId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if _, err := s.ownedMessage(ctx, uow, userId, sessionId, messageId); err != nil {
		return err
	}
	return uow.ChatMessageRepository().Delete(ctx, messageId)
}

func (s *chatService) ClearMessages(ctx context.Context, userId, sessionId uuid.UUID) (int64, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if _, err := s.ownedSession(ctx, uow, userId, sessionId); err != nil {
		return 0, err
	}
	return uow.ChatMessageRepository().DeleteBySessionId(ctx, sessionId)
}
