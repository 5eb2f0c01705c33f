package integration

import (
	"context"
	"log"
	"math"
	"os"
	"testing"

	"ai-docassist/pkg/embedding"
	"ai-docassist/pkg/llm/ollama"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
)

func ollamaBaseURL(t *testing.T) string {
	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}
	baseURL := os.Getenv("OLLAMA_BASE_URL")
	if baseURL == "" {
		t.Skip("Skipping integration test: OLLAMA_BASE_URL not set")
	}
	return baseURL
}

func TestOllamaEmbedding(t *testing.T) {
	baseURL := ollamaBaseURL(t)

	provider := embedding.NewOllamaProvider(baseURL, "nomic-embed-text")
	resp, err := provider.Generate("quarterly revenue summary", "RETRIEVAL_QUERY")
	if err != nil {
		t.Fatalf("Failed to generate embedding: %v", err)
	}

	assert.NotEmpty(t, resp.Embedding.Values)
	t.Logf("Embedding dimension: %d", len(resp.Embedding.Values))

	// provider normalizes to unit length
	var sum float64
	for _, v := range resp.Embedding.Values {
		sum += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sum), 0.01)
}

func TestOllamaCompletion(t *testing.T) {
	baseURL := ollamaBaseURL(t)

	provider := ollama.NewOllamaProvider(baseURL, "llama3.2")
	answer, err := provider.Generate(context.Background(), "Reply with the single word: pong")
	if err != nil {
		t.Fatalf("Failed to generate completion: %v", err)
	}

	assert.NotEmpty(t, answer)
	t.Logf("Model answered: %s", answer)
}
