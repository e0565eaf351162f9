package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/genomap/pkg/api"
	"github.com/matzehuels/genomap/pkg/observability"
)

// serveCommand creates the serve command that runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		metrics bool
		cf      cacheFlags
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve layouts over HTTP",
		Long: `Serve layouts over HTTP.

The server accepts feature maps on POST /v1/layout and POST /v1/query and
shares one feature index and result cache across requests. With --metrics,
placement, cache and request metrics are exposed on GET /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if !cmd.Flags().Changed("addr") && c.Config.Server.Addr != "" {
				addr = c.Config.Server.Addr
			}
			if !cmd.Flags().Changed("metrics") && c.Config.Server.Metrics {
				metrics = true
			}

			runner, err := c.newRunner(ctx, cf)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			var opts []api.Option
			if metrics {
				m := observability.NewMetricsHooks()
				observability.SetLayoutHooks(m)
				observability.SetCacheHooks(m)
				observability.SetHTTPHooks(m)
				defer func() {
					observability.Reset()
					m.Close()
				}()
				opts = append(opts, api.WithMetrics(m))
			}

			printInfo("Serving on %s", StyleValue.Render("http://"+addr))
			printKeyValue("metrics", fmt.Sprintf("%v", metrics))
			return api.NewServer(runner, c.Logger, opts...).ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", api.DefaultAddr, "listen address")
	cmd.Flags().BoolVar(&metrics, "metrics", false, "expose metrics on /metrics")
	cf.register(cmd)

	return cmd
}
