package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/statement-normalizer/internal/models"
)

func mustLookup(t *testing.T, name models.Format) Format {
	t.Helper()
	f, ok := Lookup(name)
	require.True(t, ok, "format %q not registered", name)
	return f
}

func TestClassifyStart(t *testing.T) {
	tests := []struct {
		format models.Format
		line   string
		date   string
		rest   string
	}{
		{models.FormatWestpac, "15/03/24 EFTPOS PURCHASE 45.20 1,204.80", "2024-03-15", "EFTPOS PURCHASE 45.20 1,204.80"},
		{models.FormatWestpacCreditCard, "3 Mar 24 COLES 0456 SYDNEY 56.10", "2024-03-03", "COLES 0456 SYDNEY 56.10"},
		{models.FormatAmex, "15 January WOOLWORTHS SYDNEY 120.00", "2025-01-15", "WOOLWORTHS SYDNEY 120.00"},
		{models.FormatAmex, "January15 WOOLWORTHS SYDNEY 120.00", "2025-01-15", "WOOLWORTHS SYDNEY 120.00"},
		{models.FormatNAB, "2 Jul 2024 EFTPOS DEBIT 45.00 1,154.56 Cr", "2024-07-02", "EFTPOS DEBIT 45.00 1,154.56 Cr"},
		{models.FormatANZ, "15 MAR EFTPOS WOOLWORTHS", "2023-03-15", "EFTPOS WOOLWORTHS"},
		{models.FormatANZCard, "01/03/2024 02/03/2024 1234 COLES $45.00 $1,045.00", "2024-03-01", "COLES $45.00 $1,045.00"},
		{models.FormatCBA, "01 Mar Transfer To J Smith", "2024-03-01", "Transfer To J Smith"},
	}

	for _, tt := range tests {
		t.Run(string(tt.format)+"/"+tt.line, func(t *testing.T) {
			f := mustLookup(t, tt.format)
			c := f.Classify(tt.line)
			require.Equal(t, Start, c.Kind)
			assert.Equal(t, tt.date, c.Date)
			assert.Equal(t, tt.rest, c.Rest)
		})
	}
}

func TestClassifyRejects(t *testing.T) {
	tests := []struct {
		name   string
		format models.Format
		line   string
		kind   LineKind
	}{
		{"impossible date", models.FormatWestpac, "31/02/24 PURCHASE 10.00", Continuation},
		{"month out of range", models.FormatWestpac, "15/13/24 PURCHASE 10.00", Continuation},
		{"date not at start", models.FormatWestpac, "PURCHASE 15/03/24 10.00", Continuation},
		{"card line needs an amount", models.FormatWestpacCreditCard, "3 Mar 24 COLES SYDNEY", Continuation},
		{"anz months are upper case", models.FormatANZ, "15 Mar EFTPOS", Continuation},
		{"empty line", models.FormatCBA, "", Noise},
		{"page furniture", models.FormatCBA, "Date Transaction Debit Credit Balance", Noise},
		{"furniture ignores case", models.FormatANZ, "Totals at end of page 1,000.00", Noise},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := mustLookup(t, tt.format)
			assert.Equal(t, tt.kind, f.Classify(tt.line).Kind)
		})
	}
}

func TestClassifySeed(t *testing.T) {
	f := mustLookup(t, models.FormatNAB)

	c := f.Classify("Brought forward 1,200.00 Cr")
	assert.Equal(t, Noise, c.Kind)
	require.NotNil(t, c.Seed)
	assert.Equal(t, "1200.00", c.Seed.StringFixed(2))

	c = f.Classify("Opening balance 250.00 Dr")
	require.NotNil(t, c.Seed)
	assert.Equal(t, "-250.00", c.Seed.StringFixed(2))

	c = f.Classify("Opening balance")
	assert.Equal(t, Noise, c.Kind)
	assert.Nil(t, c.Seed)
}

func TestClassifyUsesConfiguredYear(t *testing.T) {
	f := mustLookup(t, models.FormatAmex)
	f.Year = 2024

	c := f.Classify("29 February LEAP DAY 10.00")
	require.Equal(t, Start, c.Kind)
	assert.Equal(t, "2024-02-29", c.Date)

	f.Year = 2025
	assert.Equal(t, Continuation, f.Classify("29 February LEAP DAY 10.00").Kind)
}

func TestParseMonth(t *testing.T) {
	tests := []struct {
		input string
		want  int
		ok    bool
	}{
		{"03", 3, true},
		{"12", 12, true},
		{"13", 0, false},
		{"Mar", 3, true},
		{"MAR", 3, true},
		{"September", 9, true},
		{"Se", 0, false},
		{"Foo", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := parseMonth(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, int(got))
			}
		})
	}
}
