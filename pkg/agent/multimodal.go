package agent

import (
	"context"

	"ai-docassist/pkg/llm"
)

// MultimodalAgent retrieves across every document kind, so image stub
// entries surface alongside text chunks.
type MultimodalAgent struct {
	llm       llm.LLMProvider
	retriever Retriever
}

func NewMultimodalAgent(provider llm.LLMProvider, retriever Retriever) *MultimodalAgent {
	return &MultimodalAgent{llm: provider, retriever: retriever}
}

func (a *MultimodalAgent) Type() AgentType {
	return TypeMultimodal
}

func (a *MultimodalAgent) Answer(ctx context.Context, req Request) (*Result, error) {
	return answerFromDocuments(ctx, a.llm, a.retriever, req, "",
		"You are a multimodal document assistant. The excerpts may describe images as well as text documents. Answer from the excerpts and mention relevant files by name.")
}
