package cli

import (
	"fmt"

	"github.com/cheggaaa/pb/v3"
	"github.com/spf13/cobra"

	"github.com/insightdelivered/statement-normalizer/internal/batch"
	"github.com/insightdelivered/statement-normalizer/internal/writer"
)

func newBatchCmd(e *env) *cobra.Command {
	var (
		format       string
		outputFormat string
		outDir       string
		workers      int
		progress     bool
	)

	cmd := &cobra.Command{
		Use:   "batch [flags] <file>...",
		Short: "Convert many statements concurrently",
		Long: `Converts each input to <name>.json (or .csv) next to the input, or in
--out-dir. A failed document does not stop the others; all failures are
reported at the end.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return &UsageError{Msg: "missing input paths"}
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
			if workers <= 0 {
				workers = e.cfg.Workers
			}

			c := &batch.Converter{
				Format:  f,
				Writer:  w,
				OutDir:  outDir,
				Workers: workers,
				Options: e.parserOptions(cmd.Context()),
			}
			if progress {
				bar := pb.New(len(args)).SetWriter(cmd.ErrOrStderr()).Start()
				c.Done = func(batch.Result) { bar.Increment() }
				defer bar.Finish()
			}
			results, err := c.Run(cmd.Context(), args)

			converted := 0
			for _, r := range results {
				if r.Err != nil {
					continue
				}
				converted++
				fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s (%s, %d transactions)\n",
					r.Input, r.Output, r.Info.Format, len(r.Info.Transactions))
			}
			if err != nil {
				yellow.Fprintf(cmd.ErrOrStderr(), "%d of %d statements converted\n", converted, len(args))
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "statement format (auto-detected per file if omitted)")
	cmd.Flags().StringVarP(&outputFormat, "output-format", "o", "json", "output format: json or csv")
	cmd.Flags().StringVar(&outDir, "out-dir", "", "directory for output files")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "concurrent conversions (default from STATEMENT_WORKERS)")
	cmd.Flags().BoolVar(&progress, "progress", true, "show a progress bar on stderr")
	return cmd
}
