package parser

import (
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-normalizer/internal/models"
)

// Adapter runs the shared classify/aggregate/resolve pipeline over one
// format's configuration.
type Adapter struct {
	format Format
	newID  func() string
	log    zerolog.Logger
	debug  bool
}

func newAdapter(f Format, o options) *Adapter {
	if o.years != nil {
		if y, ok := o.years[f.Name]; ok && y > 0 {
			f.Year = y
		}
	}
	return &Adapter{format: f, newID: o.newID, log: o.log, debug: o.debug}
}

// BankName returns the human-readable institution name.
func (a *Adapter) BankName() string {
	return a.format.Bank
}

// scanState is everything a parse carries from one line to the next.
// It lives for a single document.
type scanState struct {
	balance   *decimal.Decimal // running balance after the last resolved block
	block     *Block           // open block, if any
	inSection bool
	preceding string // last line not attached to any block
}

// Parse converts page texts into transactions.
func (a *Adapter) Parse(pages []string) (*models.StatementInfo, error) {
	info := &models.StatementInfo{Format: a.format.Name}
	st := scanState{inSection: a.format.Section == ""}

	for _, lines := range splitPages(pages) {
		st.preceding = ""
		for _, ln := range lines {
			st = a.step(st, ln, info)
		}
		if a.format.ClosePerPage {
			st = a.close(st, info)
		}
	}
	a.close(st, info)

	a.log.Debug().
		Str("format", string(a.format.Name)).
		Int("pages", len(pages)).
		Int("transactions", len(info.Transactions)).
		Int("skipped", info.Skipped).
		Int("discarded", info.Discarded).
		Msg("parsed statement")

	return info, nil
}

// step consumes one line and returns the new scan state. Transactions of
// blocks closed by this line are appended to info.
func (a *Adapter) step(st scanState, ln models.Line, info *models.StatementInfo) scanState {
	f := &a.format

	if !st.inSection {
		if strings.Contains(ln.Text, f.Section) {
			st.inSection = true
		} else if ln.Text != "" {
			st.preceding = ln.Text
		}
		a.trace(info, ln, "pre-section")
		return st
	}

	c := f.Classify(ln.Text)
	switch c.Kind {
	case Start:
		st = a.close(st, info)
		st.block = openBlock(c, ln.Page, st.preceding)
		st.preceding = ""
		a.trace(info, ln, "start")

	case Continuation:
		if st.block != nil {
			switch f.attach(st.block, ln.Text) {
			case attachReference:
				f.setReference(st.block, ln.Text)
				a.trace(info, ln, "reference")
				return st
			case attachLine:
				st.block.add(ln.Text)
				a.trace(info, ln, "continuation")
				return st
			}
			st = a.close(st, info)
		}
		info.Skipped++
		st.preceding = ln.Text
		a.trace(info, ln, "skipped")

	default:
		if c.Seed != nil {
			st.balance = c.Seed
			a.trace(info, ln, "balance")
		} else if ln.Text != "" {
			a.trace(info, ln, "noise")
		}
	}
	return st
}

// close resolves the open block, if any, and updates the running balance.
func (a *Adapter) close(st scanState, info *models.StatementInfo) scanState {
	b := st.block
	if b == nil {
		return st
	}
	st.block = nil

	txn, ok := a.resolve(b, st.balance)
	if !ok {
		info.Discarded++
		return st
	}
	if txn.Balance != nil {
		st.balance = txn.Balance
	}
	info.Transactions = append(info.Transactions, txn)
	return st
}

// resolve turns a closed block into a transaction. It reports false for
// excluded blocks and for incomplete blocks of formats that drop them.
func (a *Adapter) resolve(b *Block, prior *decimal.Decimal) (models.Transaction, bool) {
	f := &a.format

	if f.Exclude.Match(b.Text()) {
		return models.Transaction{}, false
	}
	if len(b.Tokens) < f.MinTokens && !f.KeepPartial {
		return models.Transaction{}, false
	}

	desc := f.describe(b)
	res := f.Resolver.Resolve(b.Tokens, b.CreditMarked, desc, prior)

	return models.Transaction{
		ID:          a.newID(),
		Date:        b.Date,
		Description: desc,
		Amount:      res.Amount.Round(2),
		Balance:     res.Balance,
		Method:      res.Method,
	}, true
}

func (a *Adapter) trace(info *models.StatementInfo, ln models.Line, result string) {
	if !a.debug {
		return
	}
	text := ln.Text
	if r := []rune(text); len(r) > 120 {
		text = string(r[:120]) + "..."
	}
	info.DebugLines = append(info.DebugLines, models.DebugLine{
		Page:    ln.Page,
		LineNum: ln.Number,
		Text:    text,
		Result:  result,
	})
}

// Option configures parsers built by New.
type Option func(*options)

type options struct {
	years map[models.Format]int
	newID func() string
	log   zerolog.Logger
	debug bool
}

func defaultOptions() options {
	return options{newID: uuid.NewString, log: zerolog.Nop()}
}

// WithYears overrides the assumed statement year per format.
func WithYears(years map[models.Format]int) Option {
	return func(o *options) { o.years = years }
}

// WithIDGenerator replaces the UUID generator used for transaction IDs.
func WithIDGenerator(fn func() string) Option {
	return func(o *options) { o.newID = fn }
}

// WithLogger sets the logger used for parse summaries.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithDiagnostics records a DebugLine for every input line.
func WithDiagnostics() Option {
	return func(o *options) { o.debug = true }
}
