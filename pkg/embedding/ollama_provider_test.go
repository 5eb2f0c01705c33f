package embedding

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestOllamaGenerateNormalizes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embeddings" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req ollamaEmbeddingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != "nomic-embed-text" {
			t.Errorf("model = %q", req.Model)
		}
		if req.Prompt != "hello" {
			t.Errorf("prompt = %q", req.Prompt)
		}
		json.NewEncoder(w).Encode(ollamaEmbeddingResponse{Embedding: []float64{3, 4}})
	}))
	defer srv.Close()

	p := &OllamaProvider{
		BaseURL: srv.URL,
		Model:   "nomic-embed-text",
		Client:  &http.Client{Timeout: time.Second},
	}

	resp, err := p.Generate("hello", "RETRIEVAL_QUERY")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	got := resp.Embedding.Values
	if len(got) != 2 {
		t.Fatalf("got %d values, want 2", len(got))
	}
	// (3,4) has magnitude 5
	if math.Abs(float64(got[0])-0.6) > 1e-6 || math.Abs(float64(got[1])-0.8) > 1e-6 {
		t.Errorf("normalized values = %v, want [0.6 0.8]", got)
	}
}

func TestOllamaGenerateServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	p := &OllamaProvider{
		BaseURL: srv.URL,
		Model:   "missing",
		Client:  &http.Client{Timeout: time.Second},
	}

	if _, err := p.Generate("hello", ""); err == nil {
		t.Fatal("expected error for non-200 response")
	}
}

func TestNormalizeVectorZero(t *testing.T) {
	vec := []float32{0, 0, 0}
	got := normalizeVector(vec)
	for i, v := range got {
		if v != 0 {
			t.Errorf("value %d = %v, want 0", i, v)
		}
	}
}
