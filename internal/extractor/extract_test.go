package extractor

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestExtractTextPlainFile(t *testing.T) {
	path := writeFile(t, "statement.txt", "Page one\r\nline two\f\n\fPage two\n")

	pages, err := ExtractText(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Page one\nline two", "Page two"}, pages)
}

func TestExtractTextErrors(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
	}{
		{"missing text file", func(t *testing.T) string { return filepath.Join(t.TempDir(), "missing.txt") }},
		{"missing pdf", func(t *testing.T) string { return filepath.Join(t.TempDir(), "missing.pdf") }},
		{"empty text file", func(t *testing.T) string { return writeFile(t, "empty.txt", " \n\f ") }},
		{"not a pdf", func(t *testing.T) string { return writeFile(t, "broken.pdf", "this is not a pdf") }},
		{"unsupported type", func(t *testing.T) string { return writeFile(t, "statement.docx", "x") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := tt.path(t)
			pages, err := ExtractText(path)
			require.Error(t, err)
			assert.Nil(t, pages)

			var extractErr *ExtractionError
			require.True(t, errors.As(err, &extractErr), "got %T", err)
			assert.Equal(t, path, extractErr.Path)
			assert.Contains(t, err.Error(), path)
		})
	}
}

func TestSplitPages(t *testing.T) {
	got := SplitPages("one\n---PAGE_BREAK---\n\n---PAGE_BREAK---\n two ", "---PAGE_BREAK---")
	assert.Equal(t, []string{"one", "two"}, got)
	assert.Nil(t, SplitPages("   ", "\f"))
}

func TestIsReadableText(t *testing.T) {
	statement := "Commonwealth Bank statement\nOpening balance 1,000.00\n01 Mar Transfer To J Smith 150.00"

	tests := []struct {
		name  string
		pages []string
		want  bool
	}{
		{"statement text", []string{statement}, true},
		{"too short", []string{"Balance 1.00"}, false},
		{"no statement words", []string{strings.Repeat("lorem ipsum dolor ", 10)}, false},
		{"garbage glyphs", []string{strings.Repeat("ÃÂÄÅÆ", 30) + " balance"}, false},
		{"nothing", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isReadableText(tt.pages))
		})
	}
}

func TestTextQuality(t *testing.T) {
	assert.Equal(t, 1.0, textQuality([]string{"Opening balance $1,000.00"}))
	assert.Equal(t, 0.0, textQuality(nil))
	assert.InDelta(t, 0.5, textQuality([]string{"abÃÂ"}), 0.001)
}
