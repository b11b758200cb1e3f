package extractor

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ExtractionError reports a document that could not be opened or decoded.
type ExtractionError struct {
	Path string
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extracting %s: %v", e.Path, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// ErrUnreadable is wrapped when every extraction method ran but none produced
// text that looks like a statement.
var ErrUnreadable = errors.New("no readable text could be extracted; the document may be image-based or use custom font encodings")

// ExtractText returns the text of each page of the document at path, in order.
// Text files are read as-is with pages separated by form feeds; PDFs go
// through the PDF library, then raw content-stream decoding, then the
// pdftotext command.
func ExtractText(path string) ([]string, error) {
	var (
		pages []string
		err   error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".txt", ".text":
		pages, err = extractPlainText(path)
	case ".pdf":
		pages, err = extractPDF(path)
	default:
		err = fmt.Errorf("unsupported file type %q (expected .pdf or .txt)", ext)
	}
	if err != nil {
		return nil, &ExtractionError{Path: path, Err: err}
	}
	return pages, nil
}

// SplitPages splits pre-extracted text into pages on sep, dropping blank pages.
func SplitPages(text, sep string) []string {
	var pages []string
	for _, page := range strings.Split(text, sep) {
		page = strings.TrimSpace(page)
		if page != "" {
			pages = append(pages, page)
		}
	}
	return pages
}

func extractPlainText(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	pages := SplitPages(text, "\f")
	if len(pages) == 0 {
		return nil, errors.New("file is empty")
	}
	return pages, nil
}

func extractPDF(path string) ([]string, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}

	pages, libErr := extractWithLibrary(path)
	if libErr == nil && isReadableText(pages) {
		return pages, nil
	}

	pages, rawErr := extractRaw(path)
	if rawErr == nil && isReadableText(pages) {
		return pages, nil
	}

	pages, cmdErr := extractWithPdftotext(path)
	if cmdErr == nil && isReadableText(pages) {
		return pages, nil
	}

	if libErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, libErr)
	}
	return nil, ErrUnreadable
}
