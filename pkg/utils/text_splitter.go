package utils

// SplitText cuts text into rune-safe windows of chunkSize with overlap
// runes shared between neighbours, so a sentence straddling a boundary
// is still retrievable from at least one chunk. Splitting is strictly
// positional; a token-aware splitter could do better but would tie the
// pipeline to one embedding model's vocabulary.
func SplitText(text string, chunkSize int, overlap int) []string {
	if len(text) <= chunkSize {
		return []string{text}
	}

	runes := []rune(text)
	total := len(runes)

	step := chunkSize - overlap
	if step <= 0 {
		// degenerate overlap would loop forever; fall back to disjoint windows
		step = chunkSize
	}

	var chunks []string
	for start := 0; start < total; start += step {
		end := start + chunkSize
		if end > total {
			end = total
		}
		chunks = append(chunks, string(runes[start:end]))
		if end == total {
			break
		}
	}
	return chunks
}
