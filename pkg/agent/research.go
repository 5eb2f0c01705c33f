package agent

import (
	"context"
	"fmt"
	"strings"

	"ai-docassist/pkg/llm"
	"ai-docassist/pkg/websearch"
)

// ResearchAgent searches the web and synthesizes an answer with source
// URLs.
type ResearchAgent struct {
	llm    llm.LLMProvider
	search *websearch.Client
}

func NewResearchAgent(provider llm.LLMProvider, search *websearch.Client) *ResearchAgent {
	return &ResearchAgent{llm: provider, search: search}
}

func (a *ResearchAgent) Type() AgentType {
	return TypeResearch
}

func (a *ResearchAgent) Answer(ctx context.Context, req Request) (*Result, error) {
	limit := req.MaxResults
	if limit <= 0 {
		limit = defaultMaxResults
	}

	results, err := a.search.Search(ctx, req.Query, limit)
	if err != nil {
		return nil, fmt.Errorf("web search: %w", err)
	}

	if len(results) == 0 {
		response, err := a.llm.Generate(ctx, "Answer from your own knowledge: "+req.Query)
		if err != nil {
			return nil, err
		}
		return &Result{Response: response}, nil
	}

	var contextBuilder strings.Builder
	sources := make([]Source, 0, len(results))
	for i, r := range results {
		fmt.Fprintf(&contextBuilder, "[%d] %s (%s)\n%s\n\n", i+1, r.Title, r.URL, r.Content)
		sources = append(sources, Source{
			DocumentName: r.Title,
			URL:          r.URL,
			Similarity:   r.Score,
			Snippet:      snippet(r.Content, 200),
		})
	}

	prompt := fmt.Sprintf(
		"You are a research assistant. Synthesize an answer from the search results below, citing sources by number.\n\nSearch results:\n%s\nQuestion: %s",
		contextBuilder.String(), req.Query)

	response, err := a.llm.Generate(ctx, prompt, llm.WithTemperature(0.4))
	if err != nil {
		return nil, err
	}

	return &Result{
		Response:           response,
		Sources:            sources,
		SearchResultsCount: len(results),
	}, nil
}
