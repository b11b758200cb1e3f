package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTokens(t *testing.T) {
	tests := []struct {
		input    string
		values   []string
		suffixes []string
	}{
		{"25.99", []string{"25.99"}, []string{""}},
		{"1,234.56", []string{"1234.56"}, []string{""}},
		{"1234.56", []string{"1234.56"}, []string{""}},
		{"-$40.00", []string{"-40.00"}, []string{""}},
		{"$-40.00", []string{"-40.00"}, []string{""}},
		{"1,000.00DR", []string{"-1000.00"}, []string{"DR"}},
		{"500.00 C R", []string{"500.00"}, []string{"CR"}},
		{"1,155.00 Cr", []string{"1155.00"}, []string{"CR"}},
		{"PAYMENT 12.00 -", []string{"12.00"}, []string{"-"}},
		{"WOOLWORTHS 45.20 1,204.80", []string{"45.20", "1204.80"}, []string{"", ""}},
		{"$45.00 CR $545.00", []string{"45.00", "545.00"}, []string{"CR", ""}},
		{"45.00 Credit", []string{"45.00"}, []string{""}},
		{"ref 123456 on 01/03/2024 at 10:30", nil, nil},
		{"12.5 or 1.234", nil, nil},
		{"", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokens := ExtractTokens(tt.input)
			require.Len(t, tokens, len(tt.values))
			for i, tok := range tokens {
				assert.Equal(t, tt.values[i], tok.Signed().StringFixed(2), "token %d value", i)
				assert.Equal(t, tt.suffixes[i], tok.Suffix, "token %d suffix", i)
			}
		})
	}
}

func TestTokenIsDebit(t *testing.T) {
	assert.True(t, ExtractTokens("-12.00")[0].IsDebit())
	assert.True(t, ExtractTokens("12.00 DR")[0].IsDebit())
	assert.False(t, ExtractTokens("12.00 CR")[0].IsDebit())
	assert.False(t, ExtractTokens("12.00 -")[0].IsDebit())
}

func TestTokenHasMarker(t *testing.T) {
	tok := ExtractTokens("500.00 CR")[0]
	assert.True(t, tok.HasMarker([]string{"CR"}))
	assert.False(t, tok.HasMarker([]string{"-"}))
	assert.False(t, ExtractTokens("500.00")[0].HasMarker([]string{"CR"}))
}

func TestStripTokens(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"EFTPOS WOOLWORTHS 45.20 1,204.80", "EFTPOS WOOLWORTHS"},
		{"PAYMENT RECEIVED 500.00 -", "PAYMENT RECEIVED"},
		{"SALARY $1,850.00 CR", "SALARY"},
		{"REFUND KMART $-40.00 $1,005.00", "REFUND KMART"},
		{"no amounts here", "no amounts here"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := whitespace.ReplaceAllString(StripTokens(tt.input), " ")
			assert.Equal(t, tt.expected, strings.TrimSpace(got))
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		wantErr  bool
	}{
		{"25.99", "25.99", false},
		{"1,234.56", "1234.56", false},
		{"$25.99", "25.99", false},
		{"-25.99", "-25.99", false},
		{"$1,234,567.89", "1234567.89", false},
		{"0.00", "0.00", false},
		{"", "0.00", false},
		{" 25.99 ", "25.99", false},
		{"abc", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseAmount(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got.StringFixed(2))
		})
	}
}
