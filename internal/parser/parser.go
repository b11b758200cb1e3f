package parser

import (
	"fmt"
	"strings"

	"github.com/insightdelivered/statement-normalizer/internal/models"
)

// Parser defines the interface for statement parsers.
type Parser interface {
	// Parse takes the extracted text of each page and returns the normalized transactions.
	Parse(pages []string) (*models.StatementInfo, error)
	// BankName returns the human-readable institution name.
	BankName() string
}

// New returns the parser for the given format. Formats with a fallback are
// wrapped in a Dispatcher.
func New(name models.Format, opts ...Option) (Parser, error) {
	f, ok := Lookup(name)
	if !ok {
		return nil, fmt.Errorf("unsupported format: %q", name)
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	primary := newAdapter(f, o)
	if f.Fallback == "" {
		return primary, nil
	}
	fb, ok := Lookup(f.Fallback)
	if !ok {
		return nil, fmt.Errorf("format %q: unknown fallback %q", name, f.Fallback)
	}
	return &Dispatcher{Primary: primary, Fallback: newAdapter(fb, o), log: o.log}, nil
}

// ParsePages parses pages with the parser for name, auto-detecting the
// format when name is empty.
func ParsePages(pages []string, name models.Format, opts ...Option) (*models.StatementInfo, error) {
	if name == "" {
		detected, err := AutoDetect(pages)
		if err != nil {
			return nil, err
		}
		name = detected
	}

	p, err := New(name, opts...)
	if err != nil {
		return nil, err
	}
	return p.Parse(pages)
}

// ParseFormat resolves a user-supplied format name. Matching ignores case,
// and underscores and spaces are accepted in place of hyphens.
func ParseFormat(s string) (models.Format, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer("_", "-", " ", "-").Replace(key)
	if alias, ok := formatAliases[key]; ok {
		return alias, nil
	}
	if _, ok := Lookup(models.Format(key)); ok {
		return models.Format(key), nil
	}
	return "", fmt.Errorf("unknown format %q (known: %s)", s, knownFormats())
}

var formatAliases = map[string]models.Format{
	"americanexpress":  models.FormatAmex,
	"american-express": models.FormatAmex,
	"westpac-cc":       models.FormatWestpacCreditCard,
	"westpac-credit":   models.FormatWestpacCreditCard,
	"commbank":         models.FormatCBA,
	"commonwealth":     models.FormatCBA,
	"anz-credit-card":  models.FormatANZCard,
}

func knownFormats() string {
	names := make([]string, 0, len(formats))
	for _, f := range Formats() {
		names = append(names, string(f))
	}
	return strings.Join(names, ", ")
}

// AutoDetect identifies the statement format from the text content.
//
// Every format is scored by the strongest name it mentions. Formats whose
// start pattern matches at least one line beat formats that are only
// mentioned, and ties go to the earlier registry entry. A format that only
// serves as another's fallback is detected through that primary.
func AutoDetect(pages []string) (models.Format, error) {
	text := strings.Join(pages, "\n")
	var lines []string
	for _, page := range splitPages(pages) {
		for _, ln := range page {
			if ln.Text != "" {
				lines = append(lines, ln.Text)
			}
		}
	}

	fallbacks := make(map[models.Format]bool)
	for _, f := range formats {
		if f.Fallback != "" {
			fallbacks[f.Fallback] = true
		}
	}

	var best detection
	for _, f := range formats {
		if fallbacks[f.Name] {
			continue
		}
		d := detect(f, text, lines)
		if fb, ok := Lookup(f.Fallback); ok {
			d = d.merge(detect(fb, text, lines))
		}
		if d.beats(best) {
			best = d
		}
	}

	if best.weight == 0 {
		return "", fmt.Errorf("could not auto-detect format from statement content; please specify --format")
	}
	return best.name, nil
}

type detection struct {
	name      models.Format
	weight    int // 2 for an entity name, 1 for a looser identifier
	confirmed bool
}

func detect(f Format, text string, lines []string) detection {
	d := detection{name: f.Name}
	switch {
	case containsAny(text, f.Entities):
		d.weight = 2
	case containsAny(text, f.Identifiers):
		d.weight = 1
	default:
		return d
	}
	for _, ln := range lines {
		if f.Classify(ln).Kind == Start {
			d.confirmed = true
			break
		}
	}
	return d
}

// merge folds the fallback's evidence into d, keeping d's name.
func (d detection) merge(fb detection) detection {
	d.weight = max(d.weight, fb.weight)
	d.confirmed = d.confirmed || fb.confirmed
	return d
}

func (d detection) beats(other detection) bool {
	if d.weight == 0 {
		return false
	}
	if other.weight == 0 {
		return true
	}
	if d.confirmed != other.confirmed {
		return d.confirmed
	}
	return d.weight > other.weight
}

func containsAny(text string, needles []string) bool {
	lower := strings.ToLower(text)
	for _, needle := range needles {
		if needle != "" && strings.Contains(lower, strings.ToLower(needle)) {
			return true
		}
	}
	return false
}
