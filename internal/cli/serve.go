package cli

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stackgrid/pkg/observability"
	"github.com/matzehuels/stackgrid/pkg/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		noCache   bool
		noMetrics bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the layout engine as a stateless JSON HTTP API.

The [server] section of the config file sets the listen address and
timeouts, [grid] sets the defaults for options a request leaves unset, and
[cache] selects where results are memoised (use the redis backend to share
results between replicas). Prometheus metrics are served on /metrics.

Stops gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			cfg := server.Config{
				Addr:            c.Config.Server.Addr,
				ReadTimeout:     c.Config.Server.ReadTimeout,
				WriteTimeout:    c.Config.Server.WriteTimeout,
				ShutdownTimeout: c.Config.Server.ShutdownTimeout,
			}
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			opts := []server.Option{
				server.WithLogger(logger),
				server.WithDefaults(c.Config.Grid),
			}
			if !noMetrics {
				reg := prometheus.NewRegistry()
				reg.MustRegister(
					collectors.NewGoCollector(),
					collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
				)
				observability.Install(observability.NewPrometheus(reg))
				defer observability.Reset()
				opts = append(opts, server.WithGatherer(reg))
			}

			srv, err := server.New(runner, cfg, opts...)
			if err != nil {
				return err
			}

			printInfo("Serving on %s", StyleHighlight.Render(srv.Addr()))
			start := time.Now()
			if err := srv.ListenAndServe(ctx); err != nil {
				return err
			}
			printSuccess("Server stopped after %s", time.Since(start).Round(time.Second))
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable result caching")
	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "do not expose /metrics")
	return cmd
}
