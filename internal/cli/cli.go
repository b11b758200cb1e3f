// Package cli is the cobra command tree of statement-normalizer.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/insightdelivered/statement-normalizer/internal/config"
	"github.com/insightdelivered/statement-normalizer/internal/extractor"
	"github.com/insightdelivered/statement-normalizer/internal/logger"
	"github.com/insightdelivered/statement-normalizer/internal/models"
	"github.com/insightdelivered/statement-normalizer/internal/parser"
	"github.com/insightdelivered/statement-normalizer/internal/writer"
)

// Version is set at build time.
var Version = "dev"

// UsageError reports a command line that cannot be run.
type UsageError struct {
	Msg string
}

func (e *UsageError) Error() string {
	return e.Msg
}

var (
	red    = color.New(color.FgRed)
	yellow = color.New(color.FgYellow)
	faint  = color.New(color.Faint)
)

// env carries what PersistentPreRunE loaded to the subcommands. The logger
// travels in the command context.
type env struct {
	cfg *config.Config

	// newID replaces UUID generation when set.
	newID func() string
}

func (e *env) parserOptions(ctx context.Context) []parser.Option {
	opts := []parser.Option{
		parser.WithYears(e.cfg.Years),
		parser.WithLogger(logger.FromContext(ctx)),
	}
	if e.newID != nil {
		opts = append(opts, parser.WithIDGenerator(e.newID))
	}
	return opts
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&env{})
}

func newRootCmd(e *env) *cobra.Command {
	var (
		configPath   string
		logLevel     string
		format       string
		outputFormat string
		diagnostics  bool
	)

	cmd := &cobra.Command{
		Use:   "statement-normalizer [flags] <statement.pdf|statement.txt>",
		Short: "Convert bank statements into normalized transactions",
		Long: `Converts statements from Westpac, Westpac credit cards, American Express,
NAB, ANZ and Commonwealth Bank into one transaction schema:
{id, date, description, amount} with negative amounts for money out.

The format is auto-detected unless --format is given.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,

		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}
			e.cfg = cfg
			cmd.SetContext(logger.WithContext(cmd.Context(), logger.New(cmd.ErrOrStderr(), cfg.LogLevel)))
			return nil
		},

		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return &UsageError{Msg: "missing input path"}
			}
			if len(args) > 1 {
				return &UsageError{Msg: fmt.Sprintf("expected one input path, got %d (use the batch command for several)", len(args))}
			}
			return nil
		},

		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := formatFlag(format)
			if err != nil {
				return err
			}
			w, err := writer.New(outputFormat)
			if err != nil {
				return &UsageError{Msg: err.Error()}
			}
			opts := e.parserOptions(cmd.Context())
			if diagnostics {
				opts = append(opts, parser.WithDiagnostics())
			}
			return convert(cmd.OutOrStdout(), cmd.ErrOrStderr(), args[0], f, w, opts)
		},
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML configuration file")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "statement format: "+formatList()+" (auto-detected if omitted)")
	cmd.Flags().StringVarP(&outputFormat, "output-format", "o", "json", "output format: json or csv")
	cmd.Flags().BoolVar(&diagnostics, "diagnostics", false, "print what happened to every input line on stderr")

	cmd.AddCommand(newBatchCmd(e), newServeCmd(e))
	return cmd
}

func convert(stdout, stderr io.Writer, path string, format models.Format, w writer.Writer, opts []parser.Option) error {
	pages, err := extractor.ExtractText(path)
	if err != nil {
		return err
	}

	info, err := parser.ParsePages(pages, format, opts...)
	if err != nil {
		return err
	}

	for _, dl := range info.DebugLines {
		faint.Fprintf(stderr, "%3d:%-4d %-12s ", dl.Page, dl.LineNum, dl.Result)
		fmt.Fprintln(stderr, dl.Text)
	}
	if len(info.DebugLines) > 0 {
		debit, credit := info.Totals()
		fmt.Fprintf(stderr, "format=%s fallback=%t transactions=%d skipped=%d discarded=%d debit=%s credit=%s\n",
			info.Format, info.Fallback, len(info.Transactions), info.Skipped, info.Discarded,
			debit.StringFixed(2), credit.StringFixed(2))
	}
	if len(info.Transactions) == 0 {
		yellow.Fprintf(stderr, "warning: no transactions found in %s (format %s)\n", path, info.Format)
	}

	return w.Write(stdout, info)
}

func formatFlag(s string) (models.Format, error) {
	if s == "" {
		return "", nil
	}
	f, err := parser.ParseFormat(s)
	if err != nil {
		return "", &UsageError{Msg: err.Error()}
	}
	return f, nil
}

func formatList() string {
	names := ""
	for i, f := range parser.Formats() {
		if i > 0 {
			names += ", "
		}
		names += string(f)
	}
	return names
}

// Execute runs the root command and returns the process exit code: 0 on
// success, 2 for usage errors and 1 for everything else.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	red.Fprintf(stderr, "Error: %v\n", err)
	var usage *UsageError
	if errors.As(err, &usage) {
		fmt.Fprintf(stderr, "Run '%s --help' for usage.\n", cmd.CommandPath())
		return 2
	}
	return 1
}
