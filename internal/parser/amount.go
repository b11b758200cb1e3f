package parser

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// tokenPattern matches monetary amounts such as "25.99", "1,234.56",
// "-$40.00", "$-40.00", "1,000.00DR", "500.00 C R" or "12.00 -".
// Groups: (1) leading minus, (2) digits, (3) CR/DR suffix, (4) trailing minus.
var tokenPattern = regexp.MustCompile(
	`(?i)\$?(-)?\$?\b(\d{1,3}(?:,\d{3})+\.\d{2}|\d+\.\d{2})` +
		`(?:\s?(C\s?R|D\s?R)\b|\s?(-)(?:\s|$)|\b)`,
)

// Token is one monetary amount found in a line of statement text.
type Token struct {
	Raw      string
	Value    decimal.Decimal // magnitude as printed, never negative
	Negative bool            // printed with a leading minus
	Suffix   string          // "CR", "DR", "-" or ""
}

// Signed returns the value with the printed sign applied. A DR suffix
// always makes the value negative.
func (t Token) Signed() decimal.Decimal {
	if t.IsDebit() {
		return t.Value.Neg()
	}
	return t.Value
}

// IsDebit reports whether the token itself marks money out.
func (t Token) IsDebit() bool {
	return t.Negative || t.Suffix == "DR"
}

// HasMarker reports whether the token carries one of the given suffixes.
func (t Token) HasMarker(markers []string) bool {
	if t.Suffix == "" {
		return false
	}
	for _, m := range markers {
		if t.Suffix == m {
			return true
		}
	}
	return false
}

// ExtractTokens returns the monetary tokens in s, in order. Text that does
// not have the shape of an amount is ignored.
func ExtractTokens(s string) []Token {
	var tokens []Token
	for _, m := range tokenPattern.FindAllStringSubmatch(s, -1) {
		value, err := parseAmount(m[2])
		if err != nil {
			continue
		}
		suffix := strings.ToUpper(strings.ReplaceAll(m[3], " ", ""))
		if m[4] != "" {
			suffix = "-"
		}
		tokens = append(tokens, Token{
			Raw:      strings.TrimSpace(m[0]),
			Value:    value,
			Negative: m[1] != "",
			Suffix:   suffix,
		})
	}
	return tokens
}

// StripTokens removes every monetary token from s.
func StripTokens(s string) string {
	return tokenPattern.ReplaceAllString(s, " ")
}

// parseAmount converts a string like "1,234.56" or "$1,234.56" to a decimal.
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "\u00A0", "") // non-breaking space

	if s == "" || s == "-" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}
