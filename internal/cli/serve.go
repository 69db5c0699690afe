package cli

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/oceanviz/reefgraph/internal/metrics"
	"github.com/oceanviz/reefgraph/internal/server"
)

// newServeCmd creates the serve command: the HTTP API with Prometheus
// metrics and live simulation streaming.
func newServeCmd(configPath *string) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the reefgraph HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			hooks := metrics.New(prometheus.NewRegistry())
			hooks.Install()

			c := openCache(ctx, cfg.Cache, logger)
			st, err := openStore(ctx, cfg.Store)
			if err != nil {
				return err
			}
			defer st.Close(ctx)

			srv := server.New(cfg, c, st, hooks.Registry(), logger)
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")

	return cmd
}
