package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// Client is a typed HTTP client for the DocAssist backend. One method per
// endpoint, each returning the endpoint's own response shape; mapping the
// heterogeneous shapes into a single result type is the router's job.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// New builds a client for the given base URL ("http://host:port", no
// trailing slash required).
func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// errorBody is the common error envelope used by the backend.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// do sends a JSON request and decodes the response into out. A non-2xx
// status yields a *StatusError carrying the server's message when present.
func (c *Client) do(ctx context.Context, method, path, bearer string, payload interface{}, out interface{}) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewBuffer(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		_ = json.Unmarshal(raw, &eb)
		msg := eb.Message
		if msg == "" {
			msg = eb.Error
		}
		return &StatusError{Code: resp.StatusCode, Message: msg}
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return nil
}

// --- Auth endpoints ---

// Login exchanges credentials for a user and a token pair.
func (c *Client) Login(ctx context.Context, username, password string) (*AuthResponse, error) {
	payload := map[string]string{"username": username, "password": password}
	var out AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates an account and returns the same shape as Login.
func (c *Client) Register(ctx context.Context, username, email, password string) (*AuthResponse, error) {
	payload := map[string]string{"username": username, "email": email, "password": password}
	var out AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", "", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Verify checks an access token and returns the account it belongs to.
func (c *Client) Verify(ctx context.Context, accessToken string) (*VerifyResponse, error) {
	var out VerifyResponse
	if err := c.do(ctx, http.MethodGet, "/auth/verify", accessToken, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Refresh mints a new access token. The bearer credential here is the
// REFRESH token, not the access token.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*RefreshResponse, error) {
	var out RefreshResponse
	if err := c.do(ctx, http.MethodPost, "/auth/refresh", refreshToken, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout invalidates the server-side session. The response body is ignored.
func (c *Client) Logout(ctx context.Context, accessToken string) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", accessToken, nil, nil)
}

// --- Agent endpoints ---

// DocumentQuery runs a retrieval query over the caller's indexed documents.
func (c *Client) DocumentQuery(ctx context.Context, accessToken, query string, maxResults int) (*DocumentQueryResponse, error) {
	payload := map[string]interface{}{"query": query}
	if maxResults > 0 {
		payload["max_results"] = maxResults
	}
	var out DocumentQueryResponse
	if err := c.do(ctx, http.MethodPost, "/agent/document-query", accessToken, payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AgentQuery asks a specific agent type to answer the query.
func (c *Client) AgentQuery(ctx context.Context, accessToken, query, agentType string) (*AgentQueryResponse, error) {
	payload := map[string]string{"query": query, "agent_type": agentType}
	var out AgentQueryResponse
	if err := c.do(ctx, http.MethodPost, "/agent/query", accessToken, payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AutoQuery lets the server pick the agent and reports its selection.
func (c *Client) AutoQuery(ctx context.Context, accessToken, query string) (*AutoQueryResponse, error) {
	payload := map[string]string{"query": query}
	var out AutoQueryResponse
	if err := c.do(ctx, http.MethodPost, "/agent/auto-query", accessToken, payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health probes the backend without credentials.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.do(ctx, http.MethodGet, "/agent/health", "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// --- Chat endpoints ---

// CreateSession starts a new chat session.
func (c *Client) CreateSession(ctx context.Context, accessToken, title string) (*ChatSession, error) {
	payload := map[string]string{}
	if title != "" {
		payload["title"] = title
	}
	var out struct {
		Message string      `json:"message"`
		Session ChatSession `json:"session"`
	}
	if err := c.do(ctx, http.MethodPost, "/chat/sessions", accessToken, payload, &out); err != nil {
		return nil, err
	}
	return &out.Session, nil
}

// ListSessions pages through the caller's chat sessions, newest first.
func (c *Client) ListSessions(ctx context.Context, accessToken string, page, perPage int) (*SessionListResponse, error) {
	path := fmt.Sprintf("/chat/sessions?page=%d&per_page=%d", page, perPage)
	var out SessionListResponse
	if err := c.do(ctx, http.MethodGet, path, accessToken, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AddMessage appends a message to a session. Sender must be "user" or "ai".
func (c *Client) AddMessage(ctx context.Context, accessToken, sessionId, content, sender string, agentInfo map[string]interface{}) (*ChatMessage, error) {
	payload := map[string]interface{}{"content": content, "sender": sender}
	if agentInfo != nil {
		payload["agent_info"] = agentInfo
	}
	var out struct {
		Message string      `json:"message"`
		Data    ChatMessage `json:"data"`
	}
	path := fmt.Sprintf("/chat/sessions/%s/messages", sessionId)
	if err := c.do(ctx, http.MethodPost, path, accessToken, payload, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// ListMessages pages through a session's messages in chronological order.
func (c *Client) ListMessages(ctx context.Context, accessToken, sessionId string, page, perPage int) (*MessageListResponse, error) {
	path := fmt.Sprintf("/chat/sessions/%s/messages?page=%d&per_page=%d", sessionId, page, perPage)
	var out MessageListResponse
	if err := c.do(ctx, http.MethodGet, path, accessToken, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// --- Document endpoints ---

// UploadDocument submits one file for async indexing.
func (c *Client) UploadDocument(ctx context.Context, accessToken, filename string, content []byte) (*UploadResponse, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("files", filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return nil, fmt.Errorf("write form file: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/agent/upload", &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("POST /agent/upload: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		_ = json.Unmarshal(raw, &eb)
		msg := eb.Message
		if msg == "" {
			msg = eb.Error
		}
		return nil, &StatusError{Code: resp.StatusCode, Message: msg}
	}

	var out UploadResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	return &out, nil
}

// ListDocuments returns the caller's uploaded documents and their states.
func (c *Client) ListDocuments(ctx context.Context, accessToken string) (*DocumentListResponse, error) {
	var out DocumentListResponse
	if err := c.do(ctx, http.MethodGet, "/agent/documents", accessToken, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
