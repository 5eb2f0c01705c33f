package agent

import (
	"regexp"
	"strings"
)

// Selector scores a query against each agent's vocabulary and picks the
// best match. Scoring is additive: keyword hits, regex pattern hits, then
// a handful of special rules, normalized against the top score.
type Selector struct{}

func NewSelector() *Selector {
	return &Selector{}
}

const (
	keywordWeight = 2.0
	patternWeight = 1.5

	// Queries whose best normalized score stays under this threshold go
	// to the lightweight agent.
	selectionThreshold = 0.3
)

type agentVocabulary struct {
	keywords []string
	patterns []*regexp.Regexp
}

func compilePatterns(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(e)
	}
	return out
}

var vocabularies = map[AgentType]agentVocabulary{
	TypeMultimodal: {
		keywords: []string{
			"document", "file", "pdf", "image", "picture", "photo", "scan",
			"upload", "uploaded", "stored", "saved", "retrieve", "find in",
			"search document", "look up", "reference", "cite", "source",
		},
		patterns: compilePatterns(
			`document`, `file`, `pdf`, `image`, `picture`, `photo`, `scan`,
			`upload`, `stored`, `saved`, `retrieve`, `find.*document`,
			`search.*document`, `look.*up`, `reference`, `cite`, `source`,
		),
	},
	TypeResearch: {
		keywords: []string{
			"research", "study", "investigate", "explore", "analyze",
			"current", "latest", "recent", "news", "trend", "development",
			"what is", "how does", "why", "when", "where", "who",
			"explain", "describe", "tell me about", "find information",
			"search for", "look up",
		},
		patterns: compilePatterns(
			`research`, `study`, `investigate`, `explore`, `analyze`,
			`current`, `latest`, `recent`, `news`, `trend`, `development`,
			`what is`, `how does`, `why`, `when`, `where`, `who`,
			`explain`, `describe`, `tell me about`, `find information`,
			`search for`, `look up`,
		),
	},
	TypeDocument: {
		keywords: []string{
			"analyze", "extract", "summarize", "summary", "key points",
			"main points", "important", "highlight", "insights", "findings",
			"conclusion", "recommendation", "suggestion", "review",
			"examine", "study", "understand", "comprehend", "interpret",
		},
		patterns: compilePatterns(
			`analyze`, `extract`, `summarize`, `summary`, `key points`,
			`main points`, `important`, `highlight`, `insights`, `findings`,
			`conclusion`, `recommendation`, `suggestion`, `review`,
			`examine`, `study`, `understand`, `comprehend`, `interpret`,
		),
	},
	TypeChat: {
		keywords: []string{
			"hello", "hi", "hey", "how are you", "good morning", "good afternoon",
			"good evening", "thanks", "thank you", "please", "help", "assist",
			"conversation", "chat", "talk", "discuss", "opinion", "think",
			"feel", "emotion", "personal", "casual", "friendly", "informal",
		},
		patterns: compilePatterns(
			`hello`, `hi`, `hey`, `how are you`, `good morning`, `good afternoon`,
			`good evening`, `thanks`, `thank you`, `please`, `help`, `assist`,
			`conversation`, `chat`, `talk`, `discuss`, `opinion`, `think`,
			`feel`, `emotion`, `personal`, `casual`, `friendly`, `informal`,
		),
	},
}

var (
	documentContextWords = []string{"document", "file", "pdf", "upload"}
	researchContextWords = []string{"research", "study", "investigate", "current", "latest"}
	analysisContextWords = []string{"analyze", "summarize", "extract", "insights"}
)

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// AnalyzeQuery scores the query for every agent, normalized to [0,1]
// against the highest raw score.
func (s *Selector) AnalyzeQuery(query string) map[AgentType]float64 {
	q := strings.ToLower(strings.TrimSpace(query))
	scores := map[AgentType]float64{
		TypeMultimodal:  0,
		TypeResearch:    0,
		TypeDocument:    0,
		TypeChat:        0,
		TypeLightweight: 0, // default fallback
	}

	for agentType, vocab := range vocabularies {
		for _, keyword := range vocab.keywords {
			if strings.Contains(q, keyword) {
				scores[agentType] += keywordWeight
			}
		}
		for _, pattern := range vocab.patterns {
			if pattern.MatchString(q) {
				scores[agentType] += patternWeight
			}
		}
	}

	// Special rules for better accuracy
	if len(strings.Fields(q)) <= 3 {
		scores[TypeChat] += 1.0
	}
	if containsAny(q, documentContextWords) {
		scores[TypeMultimodal] += 3.0
		scores[TypeDocument] += 2.0
	}
	if containsAny(q, researchContextWords) {
		scores[TypeResearch] += 3.0
	}
	if containsAny(q, analysisContextWords) {
		scores[TypeDocument] += 3.0
	}

	var max float64
	for _, v := range scores {
		if v > max {
			max = v
		}
	}
	if max > 0 {
		for t := range scores {
			scores[t] = scores[t] / max
		}
	}

	return scores
}

// Select picks the best agent for the query, falling back to lightweight
// when no score clears the threshold.
func (s *Selector) Select(query string) (AgentType, map[AgentType]float64) {
	scores := s.AnalyzeQuery(query)

	best := TypeLightweight
	var bestScore float64
	for t, v := range scores {
		if v > bestScore {
			best, bestScore = t, v
		}
	}

	if bestScore < selectionThreshold {
		return TypeLightweight, scores
	}
	return best, scores
}
