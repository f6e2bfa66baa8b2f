// Package extract pulls text out of raw PDF buffers. A structural parse is
// attempted first; when that fails the fallback is a heuristic scan for
// printable ASCII runs, which will emit garbage for encrypted or image-only
// PDFs. That degraded output is accepted behavior, not an error.
package extract

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

const (
	windowSize        = 1 << 20 // scan the buffer in 1 MiB windows
	maxTextLen        = 4000
	maxLinesPerWindow = 20
	minLineLen        = 10
)

const (
	// PlaceholderLimited is returned when the buffer parsed but no text-like
	// content survived the scan.
	PlaceholderLimited = "PDF content extracted (text may be limited)"
	// PlaceholderUnreadable is returned when there was nothing to scan at all.
	PlaceholderUnreadable = "PDF content could not be extracted"
)

// Text extracts whatever prose it can from a PDF buffer. It never fails: any
// internal error degrades to the heuristic scan, and an empty result becomes a
// constant placeholder. Output is always at most 4000 characters.
func Text(data []byte) string {
	if len(data) == 0 {
		return PlaceholderUnreadable
	}
	if s, err := structuralText(data); err == nil && s != "" {
		return truncateRunes(s, maxTextLen)
	}
	if s := scanPrintable(data); s != "" {
		return s
	}
	return PlaceholderLimited
}

// structuralText parses the PDF cross-reference structure. The parser can
// panic on malformed files, so the panic is converted to an error and the
// caller falls back to the byte scan.
func structuralText(data []byte) (text string, err error) {
	defer func() {
		if p := recover(); p != nil {
			text = ""
			err = fmt.Errorf("pdf parse panic: %v", p)
		}
	}()
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}
	b, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("read extracted text: %w", err)
	}
	return strings.TrimSpace(sanitize(string(b))), nil
}

// scanPrintable walks the buffer in fixed windows, keeping lines that look
// like prose: longer than 10 characters with at least 3 consecutive letters.
func scanPrintable(data []byte) string {
	var b strings.Builder
	for off := 0; off < len(data); off += windowSize {
		end := off + windowSize
		if end > len(data) {
			end = len(data)
		}
		lines := printableLines(data[off:end])
		if len(lines) > 0 {
			b.WriteString(strings.Join(lines, " "))
			b.WriteByte(' ')
		}
		if b.Len() >= maxTextLen {
			break
		}
	}
	out := strings.Join(strings.Fields(b.String()), " ")
	return truncateRunes(out, maxTextLen)
}

func printableLines(window []byte) []string {
	filtered := make([]byte, 0, len(window))
	for _, c := range window {
		switch {
		case c == '\n':
			filtered = append(filtered, '\n')
		case c == '\r' || c == '\t':
			filtered = append(filtered, ' ')
		case c >= 0x20 && c <= 0x7e:
			filtered = append(filtered, c)
		case c < 0x20 || c == 0x7f:
			// control characters are dropped entirely
		default:
			filtered = append(filtered, ' ')
		}
	}

	kept := make([]string, 0, maxLinesPerWindow)
	for _, line := range strings.Split(string(filtered), "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if len(line) > minLineLen && hasLetterRun(line, 3) {
			kept = append(kept, line)
			if len(kept) == maxLinesPerWindow {
				break
			}
		}
	}
	return kept
}

func hasLetterRun(s string, n int) bool {
	run := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
			run++
			if run >= n {
				return true
			}
		} else {
			run = 0
		}
	}
	return false
}

// sanitize drops NUL bytes and non-whitespace control characters, which both
// Postgres text columns and JSON metadata payloads reject.
func sanitize(s string) string {
	if s == "" {
		return s
	}
	r := make([]rune, 0, len(s))
	for _, ch := range s {
		if ch == '\n' || ch == '\r' || ch == '\t' {
			r = append(r, ch)
			continue
		}
		if ch < 0x20 {
			continue
		}
		r = append(r, ch)
	}
	return string(r)
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		r = r[:n]
	}
	return strings.TrimSpace(string(r))
}
