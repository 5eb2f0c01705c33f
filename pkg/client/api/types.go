package api

import (
	"errors"
	"fmt"
	"time"
)

// User is the authenticated account identity returned by the backend.
type User struct {
	Id         string    `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	IsActive   bool      `json:"is_active"`
	IsVerified bool      `json:"is_verified"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TokenPair is the credential pair issued by login/register.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// AuthResponse is the body of POST /auth/login and /auth/register.
type AuthResponse struct {
	Message string    `json:"message"`
	User    User      `json:"user"`
	Tokens  TokenPair `json:"tokens"`
}

// VerifyResponse is the body of GET /auth/verify.
type VerifyResponse struct {
	Message string `json:"message"`
	User    User   `json:"user"`
}

// RefreshResponse is the body of POST /auth/refresh. Only a new access
// token is minted; the refresh token is never rotated.
type RefreshResponse struct {
	Message     string `json:"message"`
	AccessToken string `json:"access_token"`
}

// DocumentQueryResponse is the body of POST /agent/document-query.
type DocumentQueryResponse struct {
	Success         bool     `json:"success"`
	Response        string   `json:"response"`
	Sources         []string `json:"sources"`
	DocumentsFound  int      `json:"documents_found"`
	DocumentMatches int      `json:"document_matches"`
	Error           string   `json:"error"`
}

// AppError returns the application-level error message, if any.
func (r *DocumentQueryResponse) AppError() string {
	if r == nil {
		return ""
	}
	return r.Error
}

// AgentQueryResponse is the body of POST /agent/query.
type AgentQueryResponse struct {
	Success   bool   `json:"success"`
	Response  string `json:"response"`
	AgentUsed string `json:"agent_used"`
	Error     string `json:"error"`
}

// AppError returns the application-level error message, if any.
func (r *AgentQueryResponse) AppError() string {
	if r == nil {
		return ""
	}
	return r.Error
}

// AgentSelection reports the server-side choice made by auto-query.
type AgentSelection struct {
	SelectedAgent string             `json:"selected_agent"`
	Confidence    float64            `json:"confidence"`
	Scores        map[string]float64 `json:"scores"`
}

// AutoQueryResponse is the body of POST /agent/auto-query.
type AutoQueryResponse struct {
	Success        bool           `json:"success"`
	Response       string         `json:"response"`
	AgentSelection AgentSelection `json:"agent_selection"`
	Sources        []string       `json:"sources"`
	Error          string         `json:"error"`
}

// AppError returns the application-level error message, if any.
func (r *AutoQueryResponse) AppError() string {
	if r == nil {
		return ""
	}
	return r.Error
}

// ChatSession is a persisted conversation container.
type ChatSession struct {
	Id           string    `json:"id"`
	Title        string    `json:"title"`
	MessageCount int       `json:"message_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ChatMessage is a single persisted chat turn.
type ChatMessage struct {
	Id        string                 `json:"id"`
	SessionId string                 `json:"session_id"`
	Sender    string                 `json:"sender"`
	Content   string                 `json:"content"`
	AgentInfo map[string]interface{} `json:"agent_info"`
	CreatedAt time.Time              `json:"created_at"`
}

// Pagination is the list envelope shared by session and message listings.
type Pagination struct {
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
	Total   int64 `json:"total"`
	Pages   int   `json:"pages"`
	HasNext bool  `json:"has_next"`
	HasPrev bool  `json:"has_prev"`
}

// SessionListResponse is the body of GET /chat/sessions.
type SessionListResponse struct {
	Sessions   []ChatSession `json:"sessions"`
	Pagination Pagination    `json:"pagination"`
}

// MessageListResponse is the body of GET /chat/sessions/:id/messages.
type MessageListResponse struct {
	Messages   []ChatMessage `json:"messages"`
	Pagination Pagination    `json:"pagination"`
}

// Document describes an uploaded document and its processing state.
type Document struct {
	Id         string    `json:"id"`
	Name       string    `json:"name"`
	Status     string    `json:"status"`
	Pages      int       `json:"pages"`
	ChunkCount int       `json:"chunk_count"`
	Error      string    `json:"error"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// UploadResponse is the body of POST /agent/upload.
type UploadResponse struct {
	Success   bool       `json:"success"`
	Message   string     `json:"message"`
	Documents []Document `json:"documents"`
}

// DocumentListResponse is the body of GET /agent/documents.
type DocumentListResponse struct {
	Success   bool       `json:"success"`
	Documents []Document `json:"documents"`
}

// HealthResponse is the body of GET /agent/health.
type HealthResponse struct {
	Success    bool              `json:"success"`
	Status     string            `json:"status"`
	Components map[string]string `json:"components"`
}

// StatusError reports a non-2xx HTTP response. Transport failures are
// returned as plain errors, so callers can branch with errors.As.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server returned status %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("server returned status %d", e.Code)
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}

// IsTransport reports whether err is a failure that never reached the
// server (connection refused, timeout, DNS). HTTP error codes are not
// transport failures.
func IsTransport(err error) bool {
	if err == nil {
		return false
	}
	var se *StatusError
	return !errors.As(err, &se)
}
