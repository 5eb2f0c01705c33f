package router

import (
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		message   string
		wantMode  Mode
		wantClean string
	}{
		{
			name:      "plain message",
			message:   "What is machine learning?",
			wantMode:  ModeAuto,
			wantClean: "What is machine learning?",
		},
		{
			name:      "document query tag",
			message:   "[Document Query] summarize the contract",
			wantMode:  ModeDocument,
			wantClean: "summarize the contract",
		},
		{
			name:      "image processing tag",
			message:   "[Image Processing] describe this",
			wantMode:  ModeImage,
			wantClean: "describe this",
		},
		{
			name:      "leading whitespace before tag",
			message:   "   [Document Query] find the totals",
			wantMode:  ModeDocument,
			wantClean: "find the totals",
		},
		{
			name:      "tag must be at the start",
			message:   "please run [Document Query] for me",
			wantMode:  ModeAuto,
			wantClean: "please run [Document Query] for me",
		},
		{
			name:      "tag is case sensitive",
			message:   "[document query] lowercase",
			wantMode:  ModeAuto,
			wantClean: "[document query] lowercase",
		},
		{
			name:      "tag with no text",
			message:   "[Document Query]",
			wantMode:  ModeDocument,
			wantClean: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.message)

			if got.Mode != tt.wantMode {
				t.Errorf("Mode = %v, want %v", got.Mode, tt.wantMode)
			}
			if got.Clean != tt.wantClean {
				t.Errorf("Clean = %q, want %q", got.Clean, tt.wantClean)
			}
			if got.Original != tt.message {
				t.Errorf("Original = %q, want %q", got.Original, tt.message)
			}
		})
	}
}

func TestParsedMessageIsEmpty(t *testing.T) {
	if !Parse("[Document Query]   ").IsEmpty() {
		t.Error("tag with only whitespace after it should be empty")
	}
	if Parse("[Document Query] x").IsEmpty() {
		t.Error("tag with text should not be empty")
	}
}
