package agent

import (
	"context"
	"fmt"
	"strings"

	"ai-docassist/pkg/llm"
)

// ErrNoDocuments is returned when retrieval finds nothing to ground the
// answer on.
var ErrNoDocuments = fmt.Errorf("no relevant documents found")

const defaultMaxResults = 5

// DocumentAgent answers from the user's uploaded text documents via
// vector retrieval.
type DocumentAgent struct {
	llm       llm.LLMProvider
	retriever Retriever
}

func NewDocumentAgent(provider llm.LLMProvider, retriever Retriever) *DocumentAgent {
	return &DocumentAgent{llm: provider, retriever: retriever}
}

func (a *DocumentAgent) Type() AgentType {
	return TypeDocument
}

func (a *DocumentAgent) Answer(ctx context.Context, req Request) (*Result, error) {
	return answerFromDocuments(ctx, a.llm, a.retriever, req, "text",
		"You are a document analysis assistant. Answer strictly from the provided excerpts and name the documents you used.")
}

func answerFromDocuments(ctx context.Context, provider llm.LLMProvider, retriever Retriever, req Request, kind, systemPrompt string) (*Result, error) {
	limit := req.MaxResults
	if limit <= 0 {
		limit = defaultMaxResults
	}

	chunks, err := retriever.Retrieve(ctx, req.UserID, req.Query, limit, kind)
	if err != nil {
		return nil, fmt.Errorf("retrieve chunks: %w", err)
	}
	if len(chunks) == 0 {
		return nil, ErrNoDocuments
	}

	var contextBuilder strings.Builder
	sources := make([]Source, 0, len(chunks))
	seen := make(map[string]bool)
	for i, chunk := range chunks {
		fmt.Fprintf(&contextBuilder, "[Excerpt %d from %q]\n%s\n\n", i+1, chunk.DocumentName, chunk.Content)
		sources = append(sources, Source{
			DocumentName: chunk.DocumentName,
			ChunkIndex:   chunk.ChunkIndex,
			Similarity:   chunk.Similarity,
			Snippet:      snippet(chunk.Content, 200),
		})
		seen[chunk.DocumentName] = true
	}

	prompt := fmt.Sprintf("%s\n\nExcerpts:\n%s\nQuestion: %s", systemPrompt, contextBuilder.String(), req.Query)
	response, err := provider.Generate(ctx, prompt, llm.WithTemperature(0.2))
	if err != nil {
		return nil, err
	}

	return &Result{
		Response:           response,
		Sources:            sources,
		SearchResultsCount: len(chunks),
		Confidence:         chunks[0].Similarity,
	}, nil
}

func snippet(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
