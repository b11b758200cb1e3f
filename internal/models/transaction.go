package models

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Transaction represents a single normalized statement transaction.
type Transaction struct {
	ID          string
	Date        string // YYYY-MM-DD
	Description string
	Amount      decimal.Decimal // negative = money out, positive = money in

	// Not part of the output schema.
	Balance *decimal.Decimal // running balance after this transaction, when printed
	Method  string           // debug: which sign strategy resolved the amount
}

// MarshalJSON encodes the stable output schema {id, date, description, amount}
// with amount as a JSON number carrying exactly two decimals.
func (t Transaction) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID          string      `json:"id"`
		Date        string      `json:"date"`
		Description string      `json:"description"`
		Amount      json.Number `json:"amount"`
	}{
		ID:          t.ID,
		Date:        t.Date,
		Description: t.Description,
		Amount:      json.Number(t.Amount.StringFixed(2)),
	})
}

// Type returns DEBIT for money leaving the account and CREDIT otherwise.
func (t Transaction) Type() string {
	if t.Amount.IsNegative() {
		return "DEBIT"
	}
	return "CREDIT"
}

// Format names one institution's statement layout.
type Format string

const (
	FormatWestpac           Format = "westpac"
	FormatWestpacCreditCard Format = "westpac-credit-card"
	FormatAmex              Format = "amex"
	FormatNAB               Format = "nab"
	FormatANZ               Format = "anz"
	FormatANZCard           Format = "anz-card"
	FormatCBA               Format = "cba"
)

// Line is one line of extracted text. Number is 1-based within its page.
type Line struct {
	Page   int
	Number int
	Text   string
}

// DebugLine captures what the parser did with each input line.
type DebugLine struct {
	Page    int    `json:"page"`
	LineNum int    `json:"lineNum"`
	Text    string `json:"text"`
	Result  string `json:"result"` // "start", "continuation", "reference", "noise", "balance", "skipped"
}

// StatementInfo holds the result of parsing one document.
type StatementInfo struct {
	Format       Format
	Fallback     bool // true when the fallback format produced the transactions
	Transactions []Transaction
	Skipped      int // lines that matched no rule and were dropped
	Discarded    int // blocks dropped as excluded or incomplete
	DebugLines   []DebugLine
}

// Totals returns the sum of money out (as a positive number) and money in.
func (s *StatementInfo) Totals() (debit, credit decimal.Decimal) {
	for _, txn := range s.Transactions {
		if txn.Amount.IsNegative() {
			debit = debit.Add(txn.Amount.Neg())
		} else {
			credit = credit.Add(txn.Amount)
		}
	}
	return debit, credit
}
