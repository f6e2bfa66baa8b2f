package util

import "strings"

const (
	maxChunkInput = 10000
	maxChunks     = 20
	minChunkLen   = 30
)

// ChunkText splits text into overlapping windows of at most chunkSize runes.
// When a window does not reach the end of the text, the cut prefers the last
// period or newline past 70% of the window. Chunks shorter than 30 runes after
// trimming are dropped, and at most 20 chunks are produced, so long inputs are
// segmented best-effort rather than covered completely.
func ChunkText(text string, chunkSize, overlap int) []string {
	if chunkSize <= 0 {
		chunkSize = 800
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = chunkSize / 8
	}
	runes := []rune(text)
	if len(runes) > maxChunkInput {
		runes = runes[:maxChunkInput]
	}

	out := make([]string, 0)
	start := 0
	for start < len(runes) && len(out) < maxChunks {
		end := start + chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		window := runes[start:end]
		if end < len(runes) {
			if bp := lastSentenceBreak(window); bp > (chunkSize*7)/10 {
				window = window[:bp+1]
			}
		}
		part := strings.TrimSpace(string(window))
		if len([]rune(part)) > minChunkLen {
			out = append(out, part)
		}
		if end == len(runes) {
			break
		}
		// The next window starts overlap runes before the previous hard
		// boundary, regardless of any sentence-aware cut.
		start = end - overlap
	}
	return out
}

func lastSentenceBreak(window []rune) int {
	for i := len(window) - 1; i >= 0; i-- {
		if window[i] == '.' || window[i] == '\n' {
			return i
		}
	}
	return -1
}
