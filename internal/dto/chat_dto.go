package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateSessionRequest struct {
	Title string `json:"title" validate:"omitempty,max=200"`
}

type RenameSessionRequest struct {
	Title string `json:"title" validate:"required,max=200"`
}

type AddMessageRequest struct {
	Sender    string                 `json:"sender" validate:"required,oneof=user ai"`
	Content   string                 `json:"content" validate:"required"`
	AgentInfo map[string]interface{} `json:"agent_info,omitempty"`
}

type SessionResponse struct {
	Id           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	MessageCount int64     `json:"message_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type MessageResponse struct {
	Id        uuid.UUID              `json:"id"`
	SessionId uuid.UUID              `json:"session_id"`
	Sender    string                 `json:"sender"`
	Content   string                 `json:"content"`
	AgentInfo map[string]interface{} `json:"agent_info,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// PaginationResponse is the envelope shared by every paginated listing.
type PaginationResponse struct {
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
	Total   int64 `json:"total"`
	Pages   int   `json:"pages"`
	HasNext bool  `json:"has_next"`
	HasPrev bool  `json:"has_prev"`
}

func NewPaginationResponse(page, perPage int, total int64) PaginationResponse {
	pages := int((total + int64(perPage) - 1) / int64(perPage))
	return PaginationResponse{
		Page:    page,
		PerPage: perPage,
		Total:   total,
		Pages:   pages,
		HasNext: page < pages,
		HasPrev: page > 1,
	}
}
