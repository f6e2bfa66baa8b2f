package extract

import (
	"bytes"
	"strings"
	"testing"
)

func TestTextEmptyBuffer(t *testing.T) {
	if got := Text(nil); got != PlaceholderUnreadable {
		t.Fatalf("expected placeholder for empty buffer, got %q", got)
	}
}

func TestTextHeuristicFindsProse(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0x01, 0x02, 0xff, 0xfe, 0x00})
	buf.WriteString("This is a readable sentence hiding in the binary.\n")
	buf.Write([]byte{0x03, 0x04})
	buf.WriteString("Another line of meaningful text content here.\n")
	buf.Write(bytes.Repeat([]byte{0x05, 0xab}, 100))

	got := Text(buf.Bytes())
	if !strings.Contains(got, "readable sentence hiding") {
		t.Fatalf("extracted text missing first line: %q", got)
	}
	if !strings.Contains(got, "meaningful text content") {
		t.Fatalf("extracted text missing second line: %q", got)
	}
}

func TestTextDropsShortAndNonAlphaLines(t *testing.T) {
	input := []byte("ab cd\n1234567890 123456\nA proper sentence with plenty of letters.\n")
	got := Text(input)
	if strings.Contains(got, "ab cd") {
		t.Fatalf("short line should have been dropped: %q", got)
	}
	if strings.Contains(got, "1234567890") {
		t.Fatalf("line without a letter run should have been dropped: %q", got)
	}
	if !strings.Contains(got, "proper sentence") {
		t.Fatalf("prose line missing: %q", got)
	}
}

func TestTextCapsOutputLength(t *testing.T) {
	line := "A long line of text that easily clears the minimum length filter.\n"
	input := []byte(strings.Repeat(line, 2000))
	got := Text(input)
	if len(got) > 4000 {
		t.Fatalf("output is %d chars, want <= 4000", len(got))
	}
	if got == "" {
		t.Fatal("expected non-empty output")
	}
}

func TestTextGarbageYieldsPlaceholder(t *testing.T) {
	got := Text(bytes.Repeat([]byte{0x00, 0x01, 0xfe}, 500))
	if got != PlaceholderLimited {
		t.Fatalf("expected limited-content placeholder, got %q", got)
	}
}

func TestTextNeverPanicsOnPDFHeader(t *testing.T) {
	// A truncated PDF header exercises the structural parser's error path.
	input := []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\nA trailing sentence with enough letters to keep.\n")
	got := Text(input)
	if got == "" {
		t.Fatal("expected fallback output, got empty string")
	}
}
