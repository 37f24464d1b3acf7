package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/cartastrutturata/internal/server"
)

// serveCommand creates the serve command, which starts the HTTP server.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Start the HTTP server.

POST /download accepts the form fields titolo, autore and pseudocodifica and
returns the workbook. POST /api/render and POST /api/tree accept JSON.
The server stops gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := c.Config.Server
			if addr == "" {
				addr = cfg.Addr
			}

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			srv := server.New(runner, c.Logger,
				server.WithMaxUploadBytes(cfg.MaxUploadBytes),
				server.WithActionLabel(c.Config.ActionLabel),
				server.WithStrict(c.Config.Strict),
				server.WithTimeouts(cfg.ReadTimeout.Duration, cfg.WriteTimeout.Duration),
			)
			printInfo("Serving on %s", StyleLink.Render(addr))
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the artifact cache")
	return cmd
}
