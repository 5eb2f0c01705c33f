package router

import (
	"strings"
)

const (
	// MaxResponseLength is the display threshold applied by callers before
	// persisting or rendering a response.
	MaxResponseLength = 4500

	// sentenceWindow is how far back from the cutoff a sentence boundary
	// is searched for.
	sentenceWindow = 500

	// TruncationMarker is appended to every truncated response. Truncate
	// keys idempotence off this suffix.
	TruncationMarker = "\n\n[Response truncated]"
)

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// Truncate caps a response at MaxResponseLength characters, cutting at the
// last sentence boundary within the final sentenceWindow characters when
// one exists, and appends TruncationMarker. Short input is returned
// unchanged and the transform is idempotent.
func Truncate(s string) string {
	if strings.HasSuffix(s, TruncationMarker) {
		return s
	}

	runes := []rune(s)
	if len(runes) <= MaxResponseLength {
		return s
	}

	cut := MaxResponseLength
	for i := MaxResponseLength - 1; i >= MaxResponseLength-sentenceWindow; i-- {
		if isSentenceEnd(runes[i]) {
			cut = i + 1
			break
		}
	}

	return strings.TrimRight(string(runes[:cut]), " \t\n") + TruncationMarker
}
