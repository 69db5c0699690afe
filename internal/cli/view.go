package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/oceanviz/reefgraph/pkg/graph"
	"github.com/oceanviz/reefgraph/pkg/ingest"
)

// newViewCmd creates the view command: an interactive terminal explorer
// for the force-directed layout.
func newViewCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view [file]",
		Short: "Explore a layout interactively in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}

			records, err := ingest.NewReader().ReadFile(args[0])
			if err != nil {
				return err
			}
			snap := graph.BuildWithScale(records, cfg.Graph.Scale())
			logger.Debug("starting viewer", "nodes", len(snap.Nodes), "edges", len(snap.Edges))

			model, err := NewGraphModel(snap, cfg.Layout)
			if err != nil {
				return err
			}
			_, err = tea.NewProgram(model, tea.WithContext(ctx), tea.WithAltScreen()).Run()
			return err
		},
	}
	return cmd
}
