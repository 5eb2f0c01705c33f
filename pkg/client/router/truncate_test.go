package router

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncateShortInputUnchanged(t *testing.T) {
	inputs := []string{
		"",
		"short answer.",
		strings.Repeat("a", MaxResponseLength),
	}
	for _, in := range inputs {
		if got := Truncate(in); got != in {
			t.Errorf("Truncate(%d chars) modified input within threshold", len(in))
		}
	}
}

func TestTruncateLongResponse(t *testing.T) {
	// 5000 chars of sentences, a boundary lands inside the final window.
	sentence := "This is a sentence about the uploaded report. "
	var b strings.Builder
	for b.Len() < 5000 {
		b.WriteString(sentence)
	}
	in := b.String()[:5000]

	got := Truncate(in)

	if !strings.HasSuffix(got, TruncationMarker) {
		t.Fatalf("truncated output missing marker")
	}
	body := strings.TrimSuffix(got, TruncationMarker)
	if n := utf8.RuneCountInString(body); n > MaxResponseLength {
		t.Errorf("body length = %d, want <= %d", n, MaxResponseLength)
	}

	trimmed := strings.TrimRight(body, " \t\n")
	if !strings.HasSuffix(trimmed, ".") {
		t.Errorf("body does not end at a sentence boundary: %q", trimmed[len(trimmed)-20:])
	}
}

func TestTruncateIdempotent(t *testing.T) {
	in := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 200)

	once := Truncate(in)
	twice := Truncate(once)
	if once != twice {
		t.Errorf("Truncate is not idempotent:\nonce:  %q\ntwice: %q", once[len(once)-60:], twice[len(twice)-60:])
	}
}

func TestTruncateNoSentenceBoundary(t *testing.T) {
	in := strings.Repeat("x", 6000)

	got := Truncate(in)

	if !strings.HasSuffix(got, TruncationMarker) {
		t.Fatalf("truncated output missing marker")
	}
	body := strings.TrimSuffix(got, TruncationMarker)
	if n := utf8.RuneCountInString(body); n != MaxResponseLength {
		t.Errorf("hard cut length = %d, want %d", n, MaxResponseLength)
	}
}

func TestTruncateBoundaryOutsideWindow(t *testing.T) {
	// One period early on, then an unbroken run: the boundary is outside
	// the search window, so the cut is hard at the threshold.
	in := "Intro." + strings.Repeat("y", 6000)

	got := Truncate(in)
	body := strings.TrimSuffix(got, TruncationMarker)
	if n := utf8.RuneCountInString(body); n != MaxResponseLength {
		t.Errorf("cut length = %d, want %d", n, MaxResponseLength)
	}
}
