package parser

import (
	"strings"

	"github.com/insightdelivered/statement-normalizer/internal/models"
)

// Block accumulates the lines of one transaction until it is closed.
type Block struct {
	Date   string
	Page   int
	Lines  []string // text after the date first, then continuation lines
	Tokens []Token

	Reference    string
	CreditMarked bool

	// Preceding is the last unattached line seen before the block opened.
	Preceding string
}

func openBlock(c Classification, page int, preceding string) *Block {
	b := &Block{Date: c.Date, Page: page, Preceding: preceding}
	b.add(c.Rest)
	return b
}

func (b *Block) add(text string) {
	b.Lines = append(b.Lines, text)
	b.Tokens = append(b.Tokens, ExtractTokens(text)...)
}

func (b *Block) continuations() int {
	return len(b.Lines) - 1
}

// Text returns the block's lines joined by single spaces.
func (b *Block) Text() string {
	return strings.Join(b.Lines, " ")
}

// ReferenceRule describes a reference line that may follow a start line,
// e.g. "Reference: 123456 CR".
type ReferenceRule struct {
	Label        string // text introducing the reference
	CreditMarker string // marks the transaction as a credit when present
	Prefix       string // prepended to the reference in the description
}

// attachment says what the aggregator does with a continuation line.
type attachment int

const (
	closeBlock attachment = iota
	attachLine
	attachReference
)

// attach decides whether text extends b. Lines are refused once the block
// holds TokenTarget tokens or MaxLines continuation lines.
func (f *Format) attach(b *Block, text string) attachment {
	if f.Reference != nil && b.Reference == "" && b.continuations() == 0 &&
		strings.Contains(text, f.Reference.Label) {
		return attachReference
	}
	if f.TokenTarget > 0 && len(b.Tokens) >= f.TokenTarget {
		return closeBlock
	}
	if f.MaxLines >= 0 && b.continuations() >= f.MaxLines {
		return closeBlock
	}
	return attachLine
}

func (f *Format) setReference(b *Block, text string) {
	_, ref, _ := strings.Cut(text, f.Reference.Label)
	b.Reference = strings.TrimSpace(ref)
	if f.Reference.CreditMarker != "" && strings.Contains(b.Reference, f.Reference.CreditMarker) {
		b.CreditMarked = true
	}
}

// splitPages turns page texts into normalized, numbered lines per page.
func splitPages(pages []string) [][]models.Line {
	out := make([][]models.Line, 0, len(pages))
	for p, page := range pages {
		raw := strings.Split(page, "\n")
		lines := make([]models.Line, 0, len(raw))
		for i, text := range raw {
			lines = append(lines, models.Line{Page: p + 1, Number: i + 1, Text: normalizeLine(text)})
		}
		out = append(out, lines)
	}
	return out
}

// normalizeLine cleans up common PDF extraction artifacts and collapses
// runs of whitespace.
func normalizeLine(line string) string {
	line = strings.ReplaceAll(line, "\u200B", "")
	line = strings.ReplaceAll(line, "\u00A0", " ")
	return strings.Join(strings.Fields(line), " ")
}
