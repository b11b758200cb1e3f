package parser

import (
	"github.com/rs/zerolog"

	"github.com/insightdelivered/statement-normalizer/internal/models"
)

// Dispatcher runs a primary parser and, when it finds no transactions,
// a single fallback parser whose result replaces the primary's.
type Dispatcher struct {
	Primary  Parser
	Fallback Parser

	log zerolog.Logger
}

// BankName returns the primary parser's institution name.
func (d *Dispatcher) BankName() string {
	return d.Primary.BankName()
}

// Parse implements Parser. An empty result from both parsers is not an error.
func (d *Dispatcher) Parse(pages []string) (*models.StatementInfo, error) {
	info, err := d.Primary.Parse(pages)
	if err != nil {
		return nil, err
	}
	if len(info.Transactions) > 0 || d.Fallback == nil {
		return info, nil
	}

	d.log.Debug().
		Str("primary", d.Primary.BankName()).
		Str("fallback", d.Fallback.BankName()).
		Msg("primary format found no transactions, trying fallback")

	fb, err := d.Fallback.Parse(pages)
	if err != nil {
		return nil, err
	}
	fb.Fallback = true
	return fb, nil
}
