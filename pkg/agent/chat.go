package agent

import (
	"context"

	"ai-docassist/pkg/llm"
)

// ChatAgent runs a conversational completion over the session history.
type ChatAgent struct {
	llm llm.LLMProvider
}

func NewChatAgent(provider llm.LLMProvider) *ChatAgent {
	return &ChatAgent{llm: provider}
}

func (a *ChatAgent) Type() AgentType {
	return TypeChat
}

func (a *ChatAgent) Answer(ctx context.Context, req Request) (*Result, error) {
	history := make([]llm.Message, 0, len(req.History)+2)
	history = append(history, llm.Message{
		Role:    "system",
		Content: "You are a friendly, helpful assistant. Keep the conversation natural.",
	})
	for _, msg := range req.History {
		history = append(history, llm.Message{Role: msg.Role, Content: msg.Content})
	}
	history = append(history, llm.Message{Role: "user", Content: req.Query})

	response, err := a.llm.Chat(ctx, history, llm.WithTemperature(0.7))
	if err != nil {
		return nil, err
	}
	return &Result{Response: response}, nil
}
