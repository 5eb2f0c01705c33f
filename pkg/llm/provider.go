package llm

import "context"

// Message is one conversation turn in provider-neutral form. Role is
// "user", "assistant" or "system"; each backend maps it to its own
// wire vocabulary.
type Message struct {
	Role    string
	Content string
}

// Options are per-call tuning knobs. Backends ignore what their API
// cannot express.
type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string // overrides the provider's configured model
}

type Option func(*Options)

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// LLMProvider is implemented by each model backend.
type LLMProvider interface {
	Chat(ctx context.Context, history []Message, options ...Option) (string, error)

	// Generate wraps Chat for single-prompt callers.
	Generate(ctx context.Context, prompt string, options ...Option) (string, error)
}
