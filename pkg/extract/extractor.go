package extract

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"
)

// Result carries the extracted text plus whatever structure the format
// exposes. Pages stays 1 for formats without page boundaries.
type Result struct {
	Text  string
	Pages int
}

// FromFile extracts plain text from an uploaded payload based on its
// file extension.
func FromFile(name string, data []byte) (*Result, error) {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".txt", ".md":
		return &Result{Text: string(data), Pages: 1}, nil
	case ".pdf":
		return fromPDF(data)
	case ".doc", ".docx":
		text := printableRuns(data, 4)
		if strings.TrimSpace(text) == "" {
			return nil, fmt.Errorf("no readable text found in %s", name)
		}
		return &Result{Text: text, Pages: 1}, nil
	default:
		return nil, fmt.Errorf("unsupported file type: %s", ext)
	}
}

// IsImage reports whether the extension belongs to an image upload.
func IsImage(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png", ".jpg", ".jpeg", ".gif":
		return true
	}
	return false
}

// ImageDescription produces the indexable text for an image upload.
// Without a vision model in the loop the name and metadata are all we can
// embed, which is still enough for name-based retrieval.
func ImageDescription(name, contentType string, sizeBytes int64) string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	words := strings.FieldsFunc(base, func(r rune) bool {
		return r == '_' || r == '-' || r == '.'
	})
	return fmt.Sprintf("Image file: %s. Keywords: %s. Format: %s. Size: %d bytes.",
		name, strings.Join(words, " "), contentType, sizeBytes)
}

func fromPDF(data []byte) (*Result, error) {
	pages := strings.Count(string(data), "/Type /Page")
	if pages == 0 {
		pages = strings.Count(string(data), "/Type/Page")
	}
	if pages == 0 {
		pages = 1
	}

	text := printableRuns(data, 4)
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("no extractable text in pdf")
	}
	return &Result{Text: text, Pages: pages}, nil
}

// printableRuns scans a binary payload and keeps runs of printable ASCII
// of at least minRun characters. Crude, but it recovers the visible text
// of uncompressed PDFs and word documents without a format library.
func printableRuns(data []byte, minRun int) string {
	var b strings.Builder
	var run []byte

	flush := func() {
		if len(run) >= minRun {
			b.Write(run)
			b.WriteByte(' ')
		}
		run = run[:0]
	}

	for _, c := range data {
		if c >= 32 && c < 127 || c == '\n' || c == '\t' {
			run = append(run, c)
		} else {
			flush()
		}
	}
	flush()

	// Collapse whitespace noise left between runs
	fields := strings.FieldsFunc(b.String(), func(r rune) bool {
		return unicode.IsSpace(r)
	})
	return strings.Join(fields, " ")
}
