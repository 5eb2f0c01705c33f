package agent

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type AgentType string

const (
	TypeLightweight AgentType = "lightweight"
	TypeChat        AgentType = "chat"
	TypeDocument    AgentType = "document"
	TypeMultimodal  AgentType = "multimodal"
	TypeResearch    AgentType = "research"
)

// Message is one turn of conversation history handed to an agent.
type Message struct {
	Role    string // "user" or "assistant"
	Content string
}

type Request struct {
	Query      string
	UserID     uuid.UUID
	History    []Message
	MaxResults int
}

// Source identifies a retrieved snippet that grounded the response.
type Source struct {
	DocumentName string
	ChunkIndex   int
	Similarity   float64
	Snippet      string
	URL          string
}

type Result struct {
	Response           string
	Sources            []Source
	SearchResultsCount int
	Confidence         float64
}

// Agent answers a user query in its own style. Implementations are safe
// for concurrent use.
type Agent interface {
	Type() AgentType
	Answer(ctx context.Context, req Request) (*Result, error)
}

// RetrievedChunk is what the retrieval backend hands to document-grounded
// agents.
type RetrievedChunk struct {
	DocumentName string
	DocumentKind string
	ChunkIndex   int
	Content      string
	Similarity   float64
}

// Retriever finds the user's most relevant document chunks for a query.
// kind narrows to one document kind; empty searches all.
type Retriever interface {
	Retrieve(ctx context.Context, userID uuid.UUID, query string, limit int, kind string) ([]RetrievedChunk, error)
}

// Registry holds the configured agents keyed by type.
type Registry struct {
	agents map[AgentType]Agent
}

func NewRegistry(agents ...Agent) *Registry {
	r := &Registry{agents: make(map[AgentType]Agent, len(agents))}
	for _, a := range agents {
		r.agents[a.Type()] = a
	}
	return r
}

func (r *Registry) Get(t AgentType) (Agent, error) {
	a, ok := r.agents[t]
	if !ok {
		return nil, fmt.Errorf("unknown agent type: %s", t)
	}
	return a, nil
}

func (r *Registry) Has(t AgentType) bool {
	_, ok := r.agents[t]
	return ok
}

func (r *Registry) Types() []AgentType {
	types := make([]AgentType, 0, len(r.agents))
	for t := range r.agents {
		types = append(types, t)
	}
	return types
}
