package parser

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Sign is the polarity of an amount: Debit for money out, Credit for money in.
type Sign int

const (
	Debit  Sign = -1
	Credit Sign = 1
)

// Apply returns the magnitude of v with the sign applied.
func (s Sign) Apply(v decimal.Decimal) decimal.Decimal {
	if s == Debit {
		return v.Abs().Neg()
	}
	return v.Abs()
}

func (s Sign) String() string {
	if s == Debit {
		return "debit"
	}
	return "credit"
}

// KeywordSet is a list of case-insensitive substrings.
type KeywordSet []string

// Match reports whether text contains any keyword of the set.
func (k KeywordSet) Match(text string) bool {
	if len(k) == 0 {
		return false
	}
	lower := strings.ToLower(text)
	for _, kw := range k {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// KeywordRule assigns Sign to descriptions matching Keywords.
type KeywordRule struct {
	Sign     Sign
	Keywords KeywordSet
}

// KeywordTable classifies descriptions by ordered rules. The first matching
// rule wins; Default applies when nothing matches.
type KeywordTable struct {
	Rules   []KeywordRule
	Default Sign
}

// Classify returns the sign for desc and whether a rule matched.
func (t KeywordTable) Classify(desc string) (Sign, bool) {
	for _, rule := range t.Rules {
		if rule.Keywords.Match(desc) {
			return rule.Sign, true
		}
	}
	if t.Default == 0 {
		return Debit, false
	}
	return t.Default, false
}

// Strategy selects how a block's amount gets its sign.
type Strategy int

const (
	// KeywordHeuristic signs amounts by matching the description against a KeywordTable.
	KeywordHeuristic Strategy = iota
	// BalanceDelta compares the printed balance with the previous one.
	BalanceDelta
	// ExplicitMarker trusts credit markers printed next to the amount.
	ExplicitMarker
)

func (s Strategy) String() string {
	switch s {
	case BalanceDelta:
		return "balance-delta"
	case ExplicitMarker:
		return "marker"
	default:
		return "keywords"
	}
}

// Unbalanced is the balance-delta policy used before any balance is known.
type Unbalanced int

const (
	// UnbalancedDefault applies the keyword table's default sign.
	UnbalancedDefault Unbalanced = iota
	// UnbalancedRawSign keeps the amount as printed.
	UnbalancedRawSign
	// UnbalancedKeywords classifies the description.
	UnbalancedKeywords
)

// Layout says which tokens of a block hold the amount and the balance.
type Layout int

const (
	// LayoutFirst uses the first token as the amount; there is no balance.
	LayoutFirst Layout = iota
	// LayoutLast uses the last token as the amount; there is no balance.
	LayoutLast
	// LayoutFirstTwo reads "amount balance" from the first two tokens.
	LayoutFirstTwo
	// LayoutLastTwo reads "amount balance" from the last two tokens.
	LayoutLastTwo
)

// Resolver computes the signed amount of a closed block.
type Resolver struct {
	Strategy Strategy
	Layout   Layout

	// Columns treats exactly three tokens as debit, credit and balance
	// columns. It overrides Strategy.
	Columns bool

	// CreditMarkers are token suffixes that mark money in.
	CreditMarkers []string

	Keywords KeywordTable

	// Reversals force a credit under BalanceDelta, whatever the balance does.
	Reversals KeywordSet

	// DeltaMagnitude uses new balance minus prior balance as the amount.
	DeltaMagnitude bool

	Unbalanced Unbalanced
}

// Resolution is the outcome of resolving one block.
type Resolution struct {
	Amount  decimal.Decimal
	Balance *decimal.Decimal
	Method  string
}

// Resolve signs the block described by tokens. creditMarked reports a
// credit marker found outside the amount token (e.g. on a reference line);
// prior is the running balance before this block, or nil.
func (r Resolver) Resolve(tokens []Token, creditMarked bool, desc string, prior *decimal.Decimal) Resolution {
	if len(tokens) == 0 {
		return Resolution{Amount: decimal.Zero, Method: "none"}
	}

	if r.Columns && len(tokens) == 3 {
		debit, credit := tokens[0].Value, tokens[1].Value
		balance := tokens[2].Signed()
		amount := credit
		if !debit.IsZero() {
			amount = debit.Neg()
		}
		return Resolution{Amount: amount.Round(2), Balance: &balance, Method: "columns"}
	}

	amount, balance := r.roles(tokens)

	var res Resolution
	switch r.Strategy {
	case BalanceDelta:
		res = r.balanceDelta(amount, balance, desc, prior)
	case ExplicitMarker:
		res = r.explicitMarker(amount, creditMarked, desc)
	default:
		sign, _ := r.Keywords.Classify(desc)
		res = Resolution{Amount: sign.Apply(amount.Value), Method: KeywordHeuristic.String()}
	}
	if res.Balance == nil && balance != nil {
		b := balance.Signed()
		res.Balance = &b
	}

	if amount.Suffix == "DR" && res.Amount.IsPositive() {
		res.Amount = res.Amount.Neg()
	}
	res.Amount = res.Amount.Round(2)
	return res
}

func (r Resolver) roles(tokens []Token) (amount Token, balance *Token) {
	n := len(tokens)
	switch r.Layout {
	case LayoutLast:
		return tokens[n-1], nil
	case LayoutFirstTwo:
		if n >= 2 {
			return tokens[0], &tokens[1]
		}
		return tokens[0], nil
	case LayoutLastTwo:
		if n >= 2 {
			return tokens[n-2], &tokens[n-1]
		}
		return tokens[0], nil
	default:
		return tokens[0], nil
	}
}

func (r Resolver) balanceDelta(amount Token, balance *Token, desc string, prior *decimal.Decimal) Resolution {
	if balance == nil {
		return r.unbalanced(amount, desc)
	}

	newBalance := balance.Signed()
	res := Resolution{Balance: &newBalance}

	switch {
	case r.Reversals.Match(desc):
		res.Amount, res.Method = amount.Value, "reversal"
	case prior != nil:
		if r.DeltaMagnitude {
			res.Amount = newBalance.Sub(*prior)
		} else {
			sign := Debit
			if newBalance.GreaterThan(*prior) {
				sign = Credit
			}
			res.Amount = sign.Apply(amount.Value)
		}
		res.Method = BalanceDelta.String()
	default:
		u := r.unbalanced(amount, desc)
		res.Amount, res.Method = u.Amount, u.Method
	}
	return res
}

func (r Resolver) unbalanced(amount Token, desc string) Resolution {
	switch r.Unbalanced {
	case UnbalancedRawSign:
		return Resolution{Amount: amount.Signed(), Method: "raw-sign"}
	case UnbalancedKeywords:
		sign, _ := r.Keywords.Classify(desc)
		return Resolution{Amount: sign.Apply(amount.Value), Method: KeywordHeuristic.String()}
	default:
		sign := r.Keywords.Default
		if sign == 0 {
			sign = Debit
		}
		return Resolution{Amount: sign.Apply(amount.Value), Method: "default"}
	}
}

func (r Resolver) explicitMarker(amount Token, creditMarked bool, desc string) Resolution {
	if creditMarked || amount.HasMarker(r.CreditMarkers) {
		return Resolution{Amount: amount.Value, Method: ExplicitMarker.String()}
	}
	sign, matched := r.Keywords.Classify(desc)
	method := "default"
	if matched {
		method = KeywordHeuristic.String()
	}
	if sign == Credit {
		return Resolution{Amount: amount.Value, Method: method}
	}
	// A minus printed in a debit column reads as money in.
	return Resolution{Amount: amount.Signed().Neg(), Method: method}
}
