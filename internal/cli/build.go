package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oceanviz/reefgraph/pkg/graph"
	"github.com/oceanviz/reefgraph/pkg/ingest"
)

// buildOpts holds the command-line flags for the build command.
type buildOpts struct {
	output string // output file path, "-" or empty for stdout
	save   bool   // persist the snapshot to the configured store
}

// newBuildCmd creates the build command: CSV measurements in, graph
// snapshot JSON out.
func newBuildCmd(configPath *string) *cobra.Command {
	var opts buildOpts

	cmd := &cobra.Command{
		Use:   "build [file]",
		Short: "Build a graph snapshot from measurement CSV data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, args[0], opts, *configPath)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&opts.save, "save", false, "persist the snapshot to the configured store")

	return cmd
}

func runBuild(cmd *cobra.Command, input string, opts buildOpts, configPath string) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	p := newProgress(logger)
	records, err := ingest.NewReader().ReadFile(input)
	if err != nil {
		return err
	}
	p.done(fmt.Sprintf("Ingested %d records", len(records)))

	p = newProgress(logger)
	snap := graph.BuildWithScale(records, cfg.Graph.Scale())
	p.done(fmt.Sprintf("Built graph with %d nodes and %d edges", len(snap.Nodes), len(snap.Edges)))

	if opts.save {
		st, err := openStore(ctx, cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close(ctx)

		hash, err := st.Save(ctx, snap)
		if err != nil {
			return err
		}
		logger.Info("saved snapshot", "hash", hash)
	}

	if opts.output == "" || opts.output == "-" {
		return graph.WriteSnapshot(snap, os.Stdout)
	}
	if err := graph.WriteSnapshotFile(snap, opts.output); err != nil {
		return err
	}
	logger.Info("wrote snapshot", "path", opts.output)
	return nil
}
