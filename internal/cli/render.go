package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oceanviz/reefgraph/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output     string   // output file (single format) or base path (multiple)
	formats    []string // output formats: "svg", "json", "dot", "png"
	labels     bool     // draw node labels in the SVG
	background string   // SVG background color, empty for transparent
	refresh    bool     // bypass the cache
}

// newRenderCmd creates the render command for generating visualizations.
func newRenderCmd(configPath *string) *cobra.Command {
	var formatsStr string
	opts := renderOpts{labels: true}

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a measurement dataset to SVG or other formats",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			return runRender(cmd, args[0], opts, *configPath)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), json, dot, png (comma-separated)")
	cmd.Flags().BoolVar(&opts.labels, "labels", opts.labels, "draw node labels in the SVG")
	cmd.Flags().StringVar(&opts.background, "background", "", "SVG background color (default transparent)")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass the cache")

	return cmd
}

// parseFormats parses the --format flag into a slice of output formats.
// If empty, defaults to ["svg"].
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	parts := strings.Split(s, ",")
	formats := make([]string, 0, len(parts))
	for _, p := range parts {
		formats = append(formats, strings.TrimSpace(p))
	}
	return formats
}

func runRender(cmd *cobra.Command, input string, opts renderOpts, configPath string) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	c := openCache(ctx, cfg.Cache, logger)
	runner := pipeline.NewRunner(c, nil, logger)
	defer runner.Close()

	p := newProgress(logger)
	result, err := runner.Execute(ctx, pipeline.Options{
		Input:      input,
		Scale:      cfg.Graph.Scale(),
		Layout:     cfg.Layout,
		Formats:    opts.formats,
		ShowLabels: opts.labels,
		Background: opts.background,
		Refresh:    opts.refresh,
		Logger:     logger,
	})
	if err != nil {
		return err
	}
	p.done(fmt.Sprintf("Rendered %d format(s)", len(result.Artifacts)))

	return writeArtifacts(input, opts, result.Artifacts, logger.Info)
}

// writeArtifacts writes rendered outputs to disk. A single format honors
// --output directly; multiple formats treat it as a base path and append
// the format extension.
func writeArtifacts(input string, opts renderOpts, artifacts map[string][]byte, logf func(msg any, kv ...any)) error {
	base := opts.output
	if base == "" {
		base = strings.TrimSuffix(input, filepath.Ext(input))
	}

	for _, format := range opts.formats {
		path := base
		if len(opts.formats) > 1 || opts.output == "" {
			path = fmt.Sprintf("%s.%s", strings.TrimSuffix(base, filepath.Ext(base)), format)
		}
		if err := os.WriteFile(path, artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		logf("wrote artifact", "format", format, "path", path)
	}
	return nil
}
