package parser

import (
	"regexp"

	"github.com/insightdelivered/statement-normalizer/internal/models"
)

// formats is the registry of supported layouts. Auto-detection breaks
// ties in registry order, so more specific layouts come first.
var formats = []Format{
	westpacCreditCard,
	westpac,
	amex,
	nab,
	anz,
	anzCard,
	cba,
}

// Westpac transaction accounts: "15/03/24 EFTPOS PURCHASE WOOLWORTHS 45.20 1,204.80".
// The description may wrap onto one more line.
var westpac = Format{
	Name:        models.FormatWestpac,
	Bank:        "Westpac",
	Entities:    []string{"Westpac Banking Corporation"},
	Identifiers: []string{"westpac.com.au", "Westpac"},
	Starts: []*regexp.Regexp{
		regexp.MustCompile(`^(?P<day>\d{2})/(?P<month>\d{2})/(?P<year>\d{2})\b(?P<rest>.*)$`),
	},
	Exclude:   KeywordSet{"OPENING BALANCE", "CLOSING BALANCE"},
	MaxLines:  1,
	MinTokens: 1,
	Resolver: Resolver{
		Strategy: KeywordHeuristic,
		Layout:   LayoutFirst,
		Keywords: KeywordTable{
			Rules: []KeywordRule{
				{Sign: Credit, Keywords: KeywordSet{"deposit", "refund"}},
			},
			Default: Debit,
		},
	},
}

// Westpac credit cards: "3 Mar 24 COLES 0456 SYDNEY 56.10", with a
// trailing minus on payments and refunds: "9 Mar 24 PAYMENT RECEIVED 500.00 -".
var westpacCreditCard = Format{
	Name:     models.FormatWestpacCreditCard,
	Bank:     "Westpac Credit Card",
	Entities: []string{"Westpac Altitude", "Westpac Low Rate", "Westpac credit card"},
	Starts: []*regexp.Regexp{
		regexp.MustCompile(`^(?P<day>\d{1,2})\s+(?P<month>(?i:` + monthsAbbrev + `))\s+(?P<year>\d{2})\s+` +
			`(?P<rest>(?:.*\s)?[\d,]+\.\d{2}(?:\s?-)?)$`),
	},
	Exclude:     KeywordSet{"OPENING BALANCE", "CLOSING BALANCE", "PREVIOUS BALANCE", "NEW BALANCE"},
	TokenTarget: 1,
	MaxLines:    0,
	MinTokens:   1,
	Resolver: Resolver{
		Strategy:      ExplicitMarker,
		Layout:        LayoutLast,
		CreditMarkers: []string{"-"},
		Keywords:      KeywordTable{Default: Debit},
	},
}

// American Express: "January15 WOOLWORTHS SYDNEY 120.00" (or "15 January ...")
// optionally followed by "Reference: 1234567 CR". Statements carry no year.
var amex = Format{
	Name:        models.FormatAmex,
	Bank:        "American Express",
	Entities:    []string{"American Express"},
	Identifiers: []string{"americanexpress.com", "AMEX"},
	Starts: []*regexp.Regexp{
		regexp.MustCompile(`^(?P<month>` + monthsFull + `)\s?(?P<day>\d{1,2})\s+(?P<rest>.+\s[\d,]+\.\d{2})$`),
		regexp.MustCompile(`^(?P<day>\d{1,2})\s+(?P<month>` + monthsFull + `)\s+(?P<rest>.+\s[\d,]+\.\d{2})$`),
	},
	Year:        2025,
	Exclude:     KeywordSet{"Opening Balance", "Closing Balance", "Previous Balance", "New Balance"},
	TokenTarget: 1,
	MaxLines:    0,
	MinTokens:   1,
	Reference: &ReferenceRule{
		Label:        "Reference:",
		CreditMarker: "CR",
		Prefix:       "Ref:",
	},
	Resolver: Resolver{
		Strategy:      ExplicitMarker,
		Layout:        LayoutLast,
		CreditMarkers: []string{"CR"},
		// Card repayments arrive as BPAY; on a card statement they are credits.
		Keywords: KeywordTable{
			Rules: []KeywordRule{
				{Sign: Credit, Keywords: KeywordSet{"BPAY PAYMENT", "PAYMENT-THANK YOU"}},
			},
			Default: Debit,
		},
	},
}

// NAB: transactions follow the "Transaction Details" heading as
// "2 Jul 2024 EFTPOS DEBIT COLES 45.00 1,154.56 Cr"; amounts may sit on
// the following lines.
var nab = Format{
	Name:        models.FormatNAB,
	Bank:        "NAB",
	Entities:    []string{"National Australia Bank"},
	Identifiers: []string{"nab.com.au"},
	Starts: []*regexp.Regexp{
		regexp.MustCompile(`(?i)^(?P<day>\d{1,2})\s+(?P<month>` + monthsAbbrev + `)\s+(?P<year>\d{4})\b(?P<rest>.*)$`),
	},
	Section:              "Transaction Details",
	Seeds:                KeywordSet{"brought forward", "opening balance"},
	Furniture:            KeywordSet{"carried forward"},
	Exclude:              KeywordSet{"closing balance"},
	TokenTarget:          2,
	MaxLines:             -1,
	MinTokens:            2,
	ClosePerPage:         true,
	PrecedingDescription: true,
	Scrub: []*regexp.Regexp{
		regexp.MustCompile(`\s+\d{1,2}:\d{2}(?::\d{2})?\s*$`),
	},
	Resolver: Resolver{
		Strategy:   BalanceDelta,
		Layout:     LayoutFirstTwo,
		Unbalanced: UnbalancedDefault,
		Keywords:   KeywordTable{Default: Debit},
	},
}

// ANZ: "15 MAR EFTPOS WOOLWORTHS" with the amount and balance on the same
// or a later line; balances may carry a DR suffix. Statements carry no year.
var anz = Format{
	Name:        models.FormatANZ,
	Bank:        "ANZ",
	Entities:    []string{"Australia and New Zealand Banking"},
	Identifiers: []string{"anz.com", "ANZ Bank"},
	Starts: []*regexp.Regexp{
		regexp.MustCompile(`^(?P<day>\d{2})\s+(?P<month>` + monthsUpper + `)\s+(?P<rest>.*)$`),
	},
	Year:  2023,
	Seeds: KeywordSet{"OPENING BALANCE", "BALANCE BROUGHT FORWARD"},
	Furniture: KeywordSet{
		"TOTALS AT END OF PAGE", "TOTALS AT END OF PERIOD",
		"CLOSING BALANCE", "BALANCE CARRIED FORWARD",
	},
	TokenTarget: 1,
	MaxLines:    -1,
	KeepPartial: true,
	Resolver: Resolver{
		Strategy:       BalanceDelta,
		Layout:         LayoutFirstTwo,
		Columns:        true,
		Reversals:      KeywordSet{"REVERSAL", "REFUND"},
		DeltaMagnitude: true,
		Unbalanced:     UnbalancedRawSign,
		Keywords:       KeywordTable{Default: Debit},
	},
	Fallback: models.FormatANZCard,
}

// ANZ card statements, tried when the account layout finds nothing:
// processed date, posted date, card digits, description, amount with an
// optional CR marker, running total.
var anzCard = Format{
	Name:     models.FormatANZCard,
	Bank:     "ANZ Card",
	Entities: []string{"ANZ Frequent Flyer", "ANZ Rewards", "ANZ Low Rate"},
	Starts: []*regexp.Regexp{
		regexp.MustCompile(`^(?P<day>\d{2})/(?P<month>\d{2})/(?P<year>\d{4})\s+\d{2}/\d{2}/\d{4}\s+\d{4}\s+` +
			`(?P<rest>.+?\s\$?-?[\d,]+\.\d{2}(?:\s?C\s?R)?\s\$?-?[\d,]+\.\d{2})$`),
	},
	Exclude:     KeywordSet{"OPENING BALANCE", "CLOSING BALANCE", "PREVIOUS BALANCE", "NEW BALANCE"},
	TokenTarget: 1,
	MaxLines:    0,
	MinTokens:   1,
	Resolver: Resolver{
		Strategy:      ExplicitMarker,
		Layout:        LayoutLastTwo,
		CreditMarkers: []string{"CR"},
		Keywords:      KeywordTable{Default: Debit},
	},
}

// Commonwealth Bank: "01 Mar Transfer To J Smith NetBank 150.00 $1,850.00 CR"
// with the description wrapping until the next date. Statements carry no year.
var cba = Format{
	Name:        models.FormatCBA,
	Bank:        "Commonwealth Bank",
	Entities:    []string{"Commonwealth Bank"},
	Identifiers: []string{"CommBank", "commbank.com.au"},
	Starts: []*regexp.Regexp{
		regexp.MustCompile(`(?i)^(?P<day>\d{1,2})\s+(?P<month>` + monthsAbbrev + `)\b(?P<rest>.*)$`),
	},
	Year: 2024,
	Furniture: KeywordSet{
		"Date Transaction", "Transaction Summary", "(Page",
		"General Manager", "Yours sincerely",
		"Account Number", "Closing Balance", "Card Number",
		"Smart Access", "Dear", "Proceeds of cheques",
		"Any pending transactions", "Statement", "Credit Interest Rate",
	},
	Seeds: KeywordSet{"opening balance"},
	Exclude: KeywordSet{
		"closing balance", "total debits", "total credits", "account fee",
		"staff assisted withdrawals", "cheques written", "transaction type",
		"free chargeable unit fee", "credit interest rate",
	},
	MaxLines:     -1,
	MinTokens:    2,
	ClosePerPage: true,
	Scrub: []*regexp.Regexp{
		regexp.MustCompile(`\b(?:CR|DR)\b`),
		regexp.MustCompile(`Value Date:.*`),
		regexp.MustCompile(`(?i)\d{1,2}\s+(?:` + monthsAbbrev + `)`),
		regexp.MustCompile(`\s+\$+`),
	},
	Resolver: Resolver{
		Strategy:   BalanceDelta,
		Layout:     LayoutLastTwo,
		Unbalanced: UnbalancedKeywords,
		Keywords: KeywordTable{
			Rules: []KeywordRule{
				{Sign: Debit, Keywords: KeywordSet{
					"transfer to", "loan repayment", "direct debit", "card",
					"cash out", "purchase", "withdrawal", "atm", "debit interest",
					"bpay", "cardless cash", "fee",
				}},
				{Sign: Credit, Keywords: KeywordSet{
					"transfer from", "direct credit", "deposit", "cash deposit", "return",
				}},
			},
			Default: Credit,
		},
	},
}
