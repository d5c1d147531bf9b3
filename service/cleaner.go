package service

import (
	"regexp"
	"strings"
)

var (
	spaceRunRe   = regexp.MustCompile(`[ \t]+`)
	newlineRunRe = regexp.MustCompile(`\n{3,}`)
)

// CleanText normalizes raw extracted text. Bytes outside the printable
// ASCII range (plus tab, LF and CR) become a single space so that a
// garbage byte never fuses two words, runs of horizontal whitespace
// collapse to one space, runs of blank lines collapse to a single blank
// line, and every line plus the whole result is trimmed. Newlines are kept
// because the structural analyzer classifies the text line by line.
// CleanText is pure and idempotent.
func CleanText(text string) string {
	if text == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case r == '\n':
			b.WriteByte('\n')
		case r == '\r':
			// dropped; \r\n folds into \n
		case r == '\t':
			b.WriteByte(' ')
		case r >= 0x20 && r <= 0x7E:
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}

	cleaned := spaceRunRe.ReplaceAllString(b.String(), " ")

	lines := strings.Split(cleaned, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	cleaned = strings.Join(lines, "\n")
	cleaned = newlineRunRe.ReplaceAllString(cleaned, "\n\n")

	return strings.TrimSpace(cleaned)
}
