package router

import (
	"strings"
)

// Directive tags recognized at the start of a message.
const (
	TagDocumentQuery   = "[Document Query]"
	TagImageProcessing = "[Image Processing]"
)

// Mode is the routing mode extracted from the message.
type Mode string

const (
	ModeAuto     Mode = "AUTO"     // no tag, server-side selection path
	ModeDocument Mode = "DOCUMENT" // explicit [Document Query]
	ModeImage    Mode = "IMAGE"    // explicit [Image Processing]
)

// ParsedMessage contains the routing mode and the message with the tag
// stripped.
type ParsedMessage struct {
	Original string
	Clean    string
	Mode     Mode
}

// Parse extracts the routing directive from a message. Tags are literal
// and must appear at the very start (leading whitespace ignored):
//   - [Document Query] <text> → document mode
//   - [Image Processing] <text> → image mode
//   - <text> → automatic selection
func Parse(message string) *ParsedMessage {
	trimmed := strings.TrimSpace(message)

	if strings.HasPrefix(trimmed, TagDocumentQuery) {
		return &ParsedMessage{
			Original: message,
			Clean:    strings.TrimSpace(trimmed[len(TagDocumentQuery):]),
			Mode:     ModeDocument,
		}
	}

	if strings.HasPrefix(trimmed, TagImageProcessing) {
		return &ParsedMessage{
			Original: message,
			Clean:    strings.TrimSpace(trimmed[len(TagImageProcessing):]),
			Mode:     ModeImage,
		}
	}

	return &ParsedMessage{
		Original: message,
		Clean:    trimmed,
		Mode:     ModeAuto,
	}
}

// IsEmpty returns true if nothing remains after stripping the tag.
func (p *ParsedMessage) IsEmpty() bool {
	return strings.TrimSpace(p.Clean) == ""
}
