package extractor

import (
	"strings"
	"unicode"
)

// minTextLen is the least amount of text a statement can plausibly have.
const minTextLen = 50

// textQuality returns the share of plain ASCII letters, digits, whitespace
// and common punctuation in pages. unicode.IsLetter is too broad: garbage
// from identity-encoded fonts is mostly accented letters.
func textQuality(pages []string) float64 {
	total, readable := 0, 0
	for _, page := range pages {
		for _, r := range page {
			total++
			if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) ||
				unicode.IsSpace(r) || strings.ContainsRune(".,-/:;()'\"$%&@#!?+=*", r)) {
				readable++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(readable) / float64(total)
}

// statementWords appear in virtually every statement.
var statementWords = []string{
	"bank", "account", "balance", "date", "payment", "statement",
	"total", "amount", "credit", "debit", "transaction", "bsb",
	"opening", "closing", "transfer", "direct", "page", "period",
}

func containsStatementWords(pages []string) bool {
	combined := strings.ToLower(strings.Join(pages, " "))
	for _, w := range statementWords {
		if strings.Contains(combined, w) {
			return true
		}
	}
	return false
}

// isReadableText reports whether pages hold enough mostly-ASCII text with at
// least one word expected on a statement.
func isReadableText(pages []string) bool {
	n := 0
	for _, p := range pages {
		n += len(strings.TrimSpace(p))
	}
	return n > minTextLen && textQuality(pages) > 0.6 && containsStatementWords(pages)
}
