package util

import (
	"fmt"
	"strings"
	"testing"
)

func TestChunkTextEmpty(t *testing.T) {
	if got := ChunkText("", 800, 100); len(got) != 0 {
		t.Fatalf("expected no chunks for empty input, got %d", len(got))
	}
}

func TestChunkTextBounds(t *testing.T) {
	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 200)
	chunks := ChunkText(text, 800, 100)
	if len(chunks) == 0 {
		t.Fatal("expected chunks")
	}
	if len(chunks) > 20 {
		t.Fatalf("chunk count %d exceeds cap", len(chunks))
	}
	for i, c := range chunks {
		if n := len([]rune(c)); n > 800 {
			t.Fatalf("chunk %d has %d runes, want <= 800", i, n)
		}
		if n := len([]rune(strings.TrimSpace(c))); n <= 30 {
			t.Fatalf("chunk %d has %d runes after trim, want > 30", i, n)
		}
	}
}

func TestChunkTextOrderPreserved(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 100; i++ {
		fmt.Fprintf(&b, "Sentence number %04d is here and long enough to matter. ", i)
	}
	source := b.String()
	chunks := ChunkText(source, 800, 100)
	if len(chunks) == 0 {
		t.Fatal("expected chunks")
	}
	if !strings.Contains(chunks[0], "Sentence number 0000") {
		t.Fatalf("first chunk does not start the document: %q", chunks[0][:60])
	}
	// Every sentence number is unique, so chunk prefixes locate each chunk
	// in the source; positions must be non-decreasing. Each sentence is 56
	// runes, so an 80-rune prefix always spans a full unique number.
	prev := -1
	for i, c := range chunks {
		pos := strings.Index(source, c[:80])
		if pos < 0 {
			t.Fatalf("chunk %d prefix not found in source", i)
		}
		if pos < prev {
			t.Fatalf("chunk %d out of order: pos %d before %d", i, pos, prev)
		}
		prev = pos
	}
}

func TestChunkTextTruncatesLongInput(t *testing.T) {
	text := strings.Repeat("x", 50000)
	chunks := ChunkText(text, 800, 100)
	total := 0
	for _, c := range chunks {
		total += len(c)
	}
	// 10000 input chars with 100-rune overlaps can't yield more than
	// 10000 + 20*100 chars of chunk text.
	if total > 12000 {
		t.Fatalf("chunks cover %d chars, input should have been truncated to 10000", total)
	}
}

func TestChunkTextSentenceAwareCut(t *testing.T) {
	// A period at 90% of the first window should become the cut point.
	first := strings.Repeat("a", 719) + "."
	text := first + " " + strings.Repeat("b", 2000)
	chunks := ChunkText(text, 800, 100)
	if len(chunks) == 0 {
		t.Fatal("expected chunks")
	}
	if chunks[0] != first {
		t.Fatalf("expected first chunk to end at the sentence break, got %d runes", len(chunks[0]))
	}
}

func TestChunkTextDropsShortChunks(t *testing.T) {
	if got := ChunkText("tiny.", 800, 100); len(got) != 0 {
		t.Fatalf("expected short chunk to be dropped, got %v", got)
	}
}
