package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Month vocabularies used to build start patterns.
const (
	monthsAbbrev = `Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec`
	monthsUpper  = `JAN|FEB|MAR|APR|MAY|JUN|JUL|AUG|SEP|OCT|NOV|DEC`
	monthsFull   = `January|February|March|April|May|June|July|August|September|October|November|December`
)

var monthNumbers = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// LineKind is the classification of one line of statement text.
type LineKind int

const (
	// Noise lines never take part in a transaction.
	Noise LineKind = iota
	// Start lines open a new transaction block.
	Start
	// Continuation lines may extend the open block.
	Continuation
)

func (k LineKind) String() string {
	switch k {
	case Start:
		return "start"
	case Continuation:
		return "continuation"
	default:
		return "noise"
	}
}

// Classification is the result of classifying one line.
type Classification struct {
	Kind LineKind
	Date string // YYYY-MM-DD, Start only
	Rest string // text after the date, Start only

	// Seed is the opening balance carried by a Noise line, if any.
	Seed *decimal.Decimal
}

// Classify decides what role text plays in the format's layout.
func (f *Format) Classify(text string) Classification {
	if text == "" || f.Furniture.Match(text) {
		return Classification{Kind: Noise}
	}

	if f.Seeds.Match(text) {
		c := Classification{Kind: Noise}
		if tokens := ExtractTokens(text); len(tokens) > 0 {
			seed := tokens[len(tokens)-1].Signed()
			c.Seed = &seed
		}
		return c
	}

	for _, re := range f.Starts {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		date, ok := f.normalizeDate(re, m)
		if !ok {
			continue
		}
		return Classification{
			Kind: Start,
			Date: date,
			Rest: strings.TrimSpace(group(re, m, "rest")),
		}
	}

	return Classification{Kind: Continuation}
}

// normalizeDate builds a YYYY-MM-DD date from the day, month and year
// groups of a start pattern match. Impossible dates are rejected.
func (f *Format) normalizeDate(re *regexp.Regexp, m []string) (string, bool) {
	day, err := strconv.Atoi(group(re, m, "day"))
	if err != nil {
		return "", false
	}

	month, ok := parseMonth(group(re, m, "month"))
	if !ok {
		return "", false
	}

	year := f.Year
	if y := group(re, m, "year"); y != "" {
		n, err := strconv.Atoi(y)
		if err != nil {
			return "", false
		}
		if len(y) == 2 {
			n += 2000
		}
		year = n
	}

	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || t.Month() != month {
		return "", false
	}
	return t.Format("2006-01-02"), true
}

// parseMonth accepts a month number, a three-letter abbreviation or a full
// month name in any case.
func parseMonth(s string) (time.Month, bool) {
	if n, err := strconv.Atoi(s); err == nil {
		if n < 1 || n > 12 {
			return 0, false
		}
		return time.Month(n), true
	}
	if len(s) < 3 {
		return 0, false
	}
	m, ok := monthNumbers[strings.ToLower(s[:3])]
	return m, ok
}

// group returns the named submatch, or "" when the pattern has no such group.
func group(re *regexp.Regexp, m []string, name string) string {
	i := re.SubexpIndex(name)
	if i < 0 || i >= len(m) {
		return ""
	}
	return m[i]
}
