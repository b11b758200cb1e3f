package writer

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-normalizer/internal/models"
)

func balance(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func sampleInfo() *models.StatementInfo {
	return &models.StatementInfo{
		Format: models.FormatCBA,
		Transactions: []models.Transaction{
			{ID: "a1", Date: "2024-03-02", Description: "Transfer To J Smith", Amount: decimal.RequireFromString("-150"), Balance: balance("1850")},
			{ID: "b2", Date: "2024-03-05", Description: "Direct Credit, ACME", Amount: decimal.RequireFromString("3000.5")},
		},
	}
}

func TestCSVWriter_Write(t *testing.T) {
	var buf bytes.Buffer
	w := &CSVWriter{IncludeHeader: true}
	if err := w.Write(&buf, sampleInfo()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := strings.Join([]string{
		"# Format,cba",
		"# Transactions,2",
		"ID,Date,Description,Type,Amount,Balance",
		"a1,2024-03-02,Transfer To J Smith,DEBIT,-150.00,1850.00",
		`b2,2024-03-05,"Direct Credit, ACME",CREDIT,3000.50,`,
		"",
	}, "\n")
	if got := buf.String(); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestCSVWriter_WriteNoHeader(t *testing.T) {
	info := sampleInfo()
	info.Fallback = true

	var buf bytes.Buffer
	w := &CSVWriter{IncludeHeader: false}
	if err := w.Write(&buf, info); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := buf.String()
	if strings.Contains(output, "# Format") || strings.Contains(output, "# Fallback") {
		t.Error("should not have metadata when header=false")
	}
	if !strings.HasPrefix(output, "ID,Date,Description,Type,Amount,Balance\n") {
		t.Error("expected column headers even without metadata")
	}
}

func TestCSVWriter_FallbackMetadata(t *testing.T) {
	info := sampleInfo()
	info.Fallback = true

	var buf bytes.Buffer
	if err := (&CSVWriter{IncludeHeader: true}).Write(&buf, info); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "# Fallback,true\n") {
		t.Errorf("expected fallback metadata, got:\n%s", buf.String())
	}
}

func TestFormatBalance(t *testing.T) {
	tests := []struct {
		input    *decimal.Decimal
		expected string
	}{
		{balance("25.99"), "25.99"},
		{balance("1234.5"), "1234.50"},
		{balance("-40"), "-40.00"},
		{nil, ""},
	}

	for _, tt := range tests {
		if got := formatBalance(tt.input); got != tt.expected {
			t.Errorf("formatBalance(%v): got %q, want %q", tt.input, got, tt.expected)
		}
	}
}
