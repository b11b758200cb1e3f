package parser

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/statement-normalizer/internal/models"
)

const westpacPage = `Westpac Banking Corporation
15/03/24 EFTPOS PURCHASE WOOLWORTHS 45.20 1,204.80
16/03/24 SALARY DEPOSIT ACME PTY 2,500.00 3,704.80`

func TestParseIsIdempotent(t *testing.T) {
	p, err := New(models.FormatWestpac)
	require.NoError(t, err)

	first, err := p.Parse([]string{westpacPage})
	require.NoError(t, err)
	second, err := p.Parse([]string{westpacPage})
	require.NoError(t, err)

	opts := []cmp.Option{
		cmpopts.IgnoreFields(models.Transaction{}, "ID"),
		cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) }),
	}
	if diff := cmp.Diff(first.Transactions, second.Transactions, opts...); diff != "" {
		t.Errorf("second run differs (-first +second):\n%s", diff)
	}

	seen := map[string]bool{}
	for _, txn := range append(first.Transactions, second.Transactions...) {
		assert.NotEmpty(t, txn.ID)
		assert.False(t, seen[txn.ID], "duplicate id %s", txn.ID)
		seen[txn.ID] = true
	}
}

func TestWithIDGenerator(t *testing.T) {
	n := 0
	p, err := New(models.FormatWestpac, WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("txn-%d", n)
	}))
	require.NoError(t, err)

	info, err := p.Parse([]string{westpacPage})
	require.NoError(t, err)
	require.Len(t, info.Transactions, 2)
	assert.Equal(t, "txn-1", info.Transactions[0].ID)
	assert.Equal(t, "txn-2", info.Transactions[1].ID)
}

func TestWithYears(t *testing.T) {
	p, err := New(models.FormatAmex, WithYears(map[models.Format]int{models.FormatAmex: 2024}))
	require.NoError(t, err)

	info, err := p.Parse([]string{"15 January WOOLWORTHS SYDNEY 120.00"})
	require.NoError(t, err)
	require.Len(t, info.Transactions, 1)
	assert.Equal(t, "2024-01-15", info.Transactions[0].Date)
}

func TestWithDiagnostics(t *testing.T) {
	p, err := New(models.FormatWestpac, WithDiagnostics())
	require.NoError(t, err)

	info, err := p.Parse([]string{westpacPage})
	require.NoError(t, err)

	got := make([]string, 0, len(info.DebugLines))
	for _, dl := range info.DebugLines {
		got = append(got, fmt.Sprintf("%d:%d %s", dl.Page, dl.LineNum, dl.Result))
	}
	want := []string{"1:1 skipped", "1:2 start", "1:3 start"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("debug lines mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 1, info.Skipped)
}

func TestDiagnosticsTruncatesLongLines(t *testing.T) {
	p, err := New(models.FormatWestpac, WithDiagnostics())
	require.NoError(t, err)

	info, err := p.Parse([]string{strings.Repeat("x", 200)})
	require.NoError(t, err)
	require.Len(t, info.DebugLines, 1)
	assert.Len(t, info.DebugLines[0].Text, 123)
}

func TestDiagnosticsTruncatesOnRuneBoundary(t *testing.T) {
	p, err := New(models.FormatWestpac, WithDiagnostics())
	require.NoError(t, err)

	info, err := p.Parse([]string{strings.Repeat("é", 200)})
	require.NoError(t, err)
	require.Len(t, info.DebugLines, 1)
	text := info.DebugLines[0].Text
	assert.True(t, utf8.ValidString(text))
	assert.Equal(t, 123, utf8.RuneCountInString(text))
	assert.True(t, strings.HasSuffix(text, "..."))
}

func TestDiagnosticsOffByDefault(t *testing.T) {
	info := parse(t, models.FormatWestpac, westpacPage)
	assert.Empty(t, info.DebugLines)
}

func TestParseLogsSummary(t *testing.T) {
	var buf bytes.Buffer
	p, err := New(models.FormatWestpac, WithLogger(zerolog.New(&buf).Level(zerolog.DebugLevel)))
	require.NoError(t, err)

	_, err = p.Parse([]string{westpacPage})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"transactions":2`)
	assert.Contains(t, buf.String(), `"format":"westpac"`)
}

func TestNormalizeLine(t *testing.T) {
	assert.Equal(t, "15 MAR EFTPOS", normalizeLine("  15\tMAR   EFTPOS  "))
	assert.Equal(t, "", normalizeLine("   "))
}

func TestEveryAmountHasTwoDecimals(t *testing.T) {
	info := parse(t, models.FormatANZ, "OPENING BALANCE 100.00\n01 JAN DEPOSIT 0.10 100.10\n02 JAN FEE 0.05 100.05")
	for _, txn := range info.Transactions {
		assert.Equal(t, int32(-2), txn.Amount.Exponent(), "amount %s", txn.Amount)
	}
}
