package writer

import (
	"bytes"
	"fmt"
	"io"

	"github.com/natefinch/atomic"

	"github.com/insightdelivered/statement-normalizer/internal/models"
)

// Writer serializes a parsed statement.
type Writer interface {
	Write(out io.Writer, info *models.StatementInfo) error
	// Extension is the file extension used for output files, with the dot.
	Extension() string
}

// New returns the writer for an output format name: "json" or "csv".
func New(format string) (Writer, error) {
	switch format {
	case "", "json":
		return &JSONWriter{}, nil
	case "csv":
		return &CSVWriter{IncludeHeader: true}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q (expected json or csv)", format)
	}
}

// WriteToFile renders info with w and replaces path atomically, so readers
// never see a partially written file.
func WriteToFile(w Writer, path string, info *models.StatementInfo) error {
	var buf bytes.Buffer
	if err := w.Write(&buf, info); err != nil {
		return err
	}
	if err := atomic.WriteFile(path, &buf); err != nil {
		return fmt.Errorf("failed to write output file %q: %w", path, err)
	}
	return nil
}
