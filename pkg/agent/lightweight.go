package agent

import (
	"context"

	"ai-docassist/pkg/llm"
)

// LightweightAgent is the cheap default: a single completion with no
// retrieval, no history and a tight token budget.
type LightweightAgent struct {
	llm llm.LLMProvider
}

func NewLightweightAgent(provider llm.LLMProvider) *LightweightAgent {
	return &LightweightAgent{llm: provider}
}

func (a *LightweightAgent) Type() AgentType {
	return TypeLightweight
}

func (a *LightweightAgent) Answer(ctx context.Context, req Request) (*Result, error) {
	prompt := "Answer the following question concisely.\n\nQuestion: " + req.Query
	response, err := a.llm.Generate(ctx, prompt, llm.WithTemperature(0.3), llm.WithMaxTokens(512))
	if err != nil {
		return nil, err
	}
	return &Result{Response: response}, nil
}
