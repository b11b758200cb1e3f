package cli

import (
	"github.com/spf13/cobra"

	"github.com/insightdelivered/statement-normalizer/internal/api"
	"github.com/insightdelivered/statement-normalizer/internal/logger"
)

func newServeCmd(e *env) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP conversion API",
		Args:  cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = e.cfg.ListenAddr
			}

			ctx := cmd.Context()
			app := api.NewApp(ctx, &api.Handler{
				Version: Version,
				Options: e.parserOptions(ctx),
			})

			stopped := make(chan struct{})
			defer close(stopped)
			go func() {
				select {
				case <-ctx.Done():
					_ = app.Shutdown()
				case <-stopped:
				}
			}()

			log := logger.FromContext(ctx)
			log.Info().Str("addr", addr).Msg("listening")
			return app.Listen(addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from STATEMENT_LISTEN_ADDR)")
	return cmd
}
