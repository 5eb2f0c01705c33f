package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectorSelect(t *testing.T) {
	s := NewSelector()

	tests := []struct {
		name  string
		query string
		want  AgentType
	}{
		{
			name:  "greeting goes to chat",
			query: "hi there",
			want:  TypeChat,
		},
		{
			name:  "document vocabulary goes to multimodal",
			query: "what's inside my uploaded pdf file",
			want:  TypeMultimodal,
		},
		{
			name:  "research vocabulary goes to research",
			query: "find the latest research developments in quantum computing",
			want:  TypeResearch,
		},
		{
			name:  "analysis vocabulary goes to document",
			query: "summarize the key points and extract insights from the report",
			want:  TypeDocument,
		},
		{
			name:  "no vocabulary match falls back to lightweight",
			query: "qwerty asdfgh zxcvbn foobar",
			want:  TypeLightweight,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, scores := s.Select(tt.query)
			assert.Equal(t, tt.want, got, "scores: %v", scores)
		})
	}
}

func TestSelectorScoresNormalized(t *testing.T) {
	s := NewSelector()

	scores := s.AnalyzeQuery("analyze my uploaded document and summarize the findings")

	var max float64
	for _, v := range scores {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
		if v > max {
			max = v
		}
	}
	assert.Equal(t, 1.0, max, "top score should normalize to exactly 1")
}

func TestSelectorShortQueryBoostsChat(t *testing.T) {
	s := NewSelector()

	scores := s.AnalyzeQuery("thanks")
	best, _ := s.Select("thanks")

	assert.Equal(t, TypeChat, best)
	assert.Equal(t, 1.0, scores[TypeChat])
}

func TestSelectorEmptyQueryFallsBack(t *testing.T) {
	s := NewSelector()

	// Empty still counts as <=3 words and boosts chat; the point is it never
	// panics and always returns a usable agent.
	best, scores := s.Select("")
	assert.Contains(t, []AgentType{TypeChat, TypeLightweight}, best)
	assert.Len(t, scores, 5)
}
