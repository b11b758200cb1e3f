package parser

import (
	"regexp"
	"strings"

	"github.com/insightdelivered/statement-normalizer/internal/models"
)

// Format is the configuration bundle for one institution's statement
// layout. The shared classifier, aggregator and resolver read it; no
// format has control flow of its own.
type Format struct {
	Name models.Format
	Bank string

	// Entities are legal-entity or product names that identify the layout.
	// They outweigh Identifiers, which are looser mentions such as domains.
	Entities    []string
	Identifiers []string

	// Starts are the transaction-start patterns. Each uses the named groups
	// day, month, year (optional) and rest.
	Starts []*regexp.Regexp
	// Year is used when a start pattern carries no year.
	Year int

	// Section, when set, ignores every line until one contains it.
	Section string
	// Furniture lines (headers, footers) are skipped one by one.
	Furniture KeywordSet
	// Seeds are opening-balance phrases; the last amount on the line
	// becomes the running balance.
	Seeds KeywordSet
	// Exclude discards a closed block whose text contains any keyword.
	Exclude KeywordSet

	// TokenTarget closes a block once it holds this many tokens (0: never).
	TokenTarget int
	// MaxLines bounds the continuation lines of a block (-1: unbounded).
	MaxLines int
	// MinTokens is the number of tokens a block needs to be emitted.
	MinTokens int
	// KeepPartial emits blocks below MinTokens using whatever token they have.
	KeepPartial bool
	// ClosePerPage closes the open block at the end of every page.
	ClosePerPage bool

	Reference *ReferenceRule
	// PrecedingDescription uses the line before the block when the block
	// itself has no description.
	PrecedingDescription bool
	// Scrub patterns are removed from descriptions.
	Scrub []*regexp.Regexp

	Resolver Resolver

	// Fallback names the format tried when this one finds nothing.
	Fallback models.Format
}

var whitespace = regexp.MustCompile(`\s+`)

// describe builds the normalized description of a block.
func (f *Format) describe(b *Block) string {
	desc := f.clean(b.Text())
	if desc == "" && f.PrecedingDescription {
		desc = f.clean(b.Preceding)
	}
	if b.Reference != "" && f.Reference != nil {
		desc = strings.TrimSpace(desc + " " + f.Reference.Prefix + b.Reference)
	}
	return desc
}

func (f *Format) clean(text string) string {
	text = StripTokens(text)
	for _, re := range f.Scrub {
		text = re.ReplaceAllString(text, " ")
	}
	return strings.TrimSpace(whitespace.ReplaceAllString(text, " "))
}

// Lookup returns the format table registered under name.
func Lookup(name models.Format) (Format, bool) {
	for _, f := range formats {
		if f.Name == name {
			return f, true
		}
	}
	return Format{}, false
}

// Formats returns the names of all registered formats.
func Formats() []models.Format {
	names := make([]models.Format, 0, len(formats))
	for _, f := range formats {
		names = append(names, f.Name)
	}
	return names
}
