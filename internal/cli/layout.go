package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oceanviz/reefgraph/pkg/pipeline"
	"github.com/oceanviz/reefgraph/pkg/render"
)

// layoutOpts holds the command-line flags for the layout command.
type layoutOpts struct {
	output  string  // output file path, "-" or empty for stdout
	width   float64 // canvas width override, 0 keeps config
	height  float64 // canvas height override, 0 keeps config
	seed    uint64  // scatter seed override, 0 keeps config
	refresh bool    // bypass the cache
}

// newLayoutCmd creates the layout command: CSV measurements in, settled
// layout JSON out.
func newLayoutCmd(configPath *string) *cobra.Command {
	var opts layoutOpts

	cmd := &cobra.Command{
		Use:   "layout [file]",
		Short: "Settle a force-directed layout for a measurement dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLayout(cmd, args[0], opts, *configPath)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().Float64Var(&opts.width, "width", 0, "canvas width (default from config)")
	cmd.Flags().Float64Var(&opts.height, "height", 0, "canvas height (default from config)")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "scatter seed (default from config)")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass the cache")

	return cmd
}

func runLayout(cmd *cobra.Command, input string, opts layoutOpts, configPath string) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	layoutCfg := cfg.Layout
	if opts.width > 0 {
		layoutCfg.Width = opts.width
	}
	if opts.height > 0 {
		layoutCfg.Height = opts.height
	}
	if opts.seed != 0 {
		layoutCfg.Seed = opts.seed
	}

	c := openCache(ctx, cfg.Cache, logger)
	runner := pipeline.NewRunner(c, nil, logger)
	defer runner.Close()

	p := newProgress(logger)
	result, err := runner.Execute(ctx, pipeline.Options{
		Input:   input,
		Scale:   cfg.Graph.Scale(),
		Layout:  layoutCfg,
		Formats: []string{pipeline.FormatJSON},
		Refresh: opts.refresh,
		Logger:  logger,
	})
	if err != nil {
		return err
	}
	p.done(fmt.Sprintf("Settled layout in %d ticks", result.Stats.LayoutTicks))

	data, err := render.MarshalLayout(result.Layout)
	if err != nil {
		return err
	}
	if opts.output == "" || opts.output == "-" {
		_, err = os.Stdout.Write(append(data, '\n'))
		return err
	}
	if err := os.WriteFile(opts.output, data, 0o644); err != nil {
		return err
	}
	logger.Info("wrote layout", "path", opts.output)
	return nil
}
