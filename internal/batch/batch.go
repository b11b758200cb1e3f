// Package batch converts many statement documents concurrently.
package batch

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/insightdelivered/statement-normalizer/internal/extractor"
	"github.com/insightdelivered/statement-normalizer/internal/logger"
	"github.com/insightdelivered/statement-normalizer/internal/models"
	"github.com/insightdelivered/statement-normalizer/internal/parser"
	"github.com/insightdelivered/statement-normalizer/internal/writer"
)

// Result is the outcome of converting one document.
type Result struct {
	Input  string
	Output string
	Info   *models.StatementInfo
	Err    error
}

// Converter converts documents with a bounded number of workers. Each
// document is parsed independently; nothing is shared between them.
type Converter struct {
	// Format forces a format; empty auto-detects per document.
	Format  models.Format
	Writer  writer.Writer
	OutDir  string // empty writes next to each input
	Workers int
	Options []parser.Option

	// Extract defaults to extractor.ExtractText.
	Extract func(path string) ([]string, error)
	// Done, if set, is called from the worker goroutine after each document.
	Done func(Result)
}

// Run converts inputs and returns one Result per input, in input order.
// The error combines every per-document failure. Progress is logged to the
// logger carried by ctx.
func (c *Converter) Run(ctx context.Context, inputs []string) ([]Result, error) {
	results := make([]Result, len(inputs))

	g := new(errgroup.Group)
	g.SetLimit(max(c.Workers, 1))
	for i, input := range inputs {
		i, input := i, input
		g.Go(func() error {
			results[i] = c.convert(ctx, input)
			if c.Done != nil {
				c.Done(results[i])
			}
			return nil
		})
	}
	_ = g.Wait()

	var err error
	for _, r := range results {
		if r.Err != nil {
			err = multierr.Append(err, fmt.Errorf("%s: %w", r.Input, r.Err))
		}
	}
	return results, err
}

func (c *Converter) convert(ctx context.Context, input string) Result {
	res := Result{Input: input}
	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}

	extract := c.Extract
	if extract == nil {
		extract = extractor.ExtractText
	}
	pages, err := extract(input)
	if err != nil {
		res.Err = err
		return res
	}

	info, err := parser.ParsePages(pages, c.Format, c.Options...)
	if err != nil {
		res.Err = err
		return res
	}
	res.Info = info

	res.Output = c.outputPath(input)
	if err := writer.WriteToFile(c.Writer, res.Output, info); err != nil {
		res.Err = err
		return res
	}

	log := logger.FromContext(ctx)
	log.Info().
		Str("input", input).
		Str("output", res.Output).
		Str("format", string(info.Format)).
		Int("transactions", len(info.Transactions)).
		Msg("converted")
	return res
}

func (c *Converter) outputPath(input string) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input)) + c.Writer.Extension()
	if c.OutDir != "" {
		return filepath.Join(c.OutDir, base)
	}
	return filepath.Join(filepath.Dir(input), base)
}
