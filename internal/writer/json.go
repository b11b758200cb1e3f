package writer

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/insightdelivered/statement-normalizer/internal/models"
)

// JSONWriter writes transactions as a JSON array of {id, date, description, amount}.
type JSONWriter struct{}

func (w *JSONWriter) Extension() string { return ".json" }

// Write writes the transaction list. An empty statement is written as [].
func (w *JSONWriter) Write(out io.Writer, info *models.StatementInfo) error {
	txns := info.Transactions
	if txns == nil {
		txns = []models.Transaction{}
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(txns); err != nil {
		return fmt.Errorf("failed to encode transactions: %w", err)
	}
	return nil
}
