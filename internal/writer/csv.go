package writer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-normalizer/internal/models"
)

// CSVWriter writes transactions to CSV format.
type CSVWriter struct {
	IncludeHeader bool
}

func (w *CSVWriter) Extension() string { return ".csv" }

// Write writes transactions in CSV format to the given writer.
func (w *CSVWriter) Write(out io.Writer, info *models.StatementInfo) error {
	cw := csv.NewWriter(out)

	// Statement metadata as comment rows
	if w.IncludeHeader {
		meta := [][]string{
			{"# Format", string(info.Format)},
			{"# Transactions", strconv.Itoa(len(info.Transactions))},
		}
		if info.Fallback {
			meta = append(meta, []string{"# Fallback", "true"})
		}
		if err := cw.WriteAll(meta); err != nil {
			return fmt.Errorf("failed to write CSV metadata: %w", err)
		}
	}

	if err := cw.Write([]string{"ID", "Date", "Description", "Type", "Amount", "Balance"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, txn := range info.Transactions {
		row := []string{
			txn.ID,
			txn.Date,
			txn.Description,
			txn.Type(),
			txn.Amount.StringFixed(2),
			formatBalance(txn.Balance),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatBalance(balance *decimal.Decimal) string {
	if balance == nil {
		return ""
	}
	return balance.StringFixed(2)
}
