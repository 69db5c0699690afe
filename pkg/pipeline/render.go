package pipeline

import (
	"context"

	"github.com/goccy/go-graphviz"

	"github.com/oceanviz/reefgraph/pkg/render"
)

// renderFormats produces every requested output format from a settled
// layout. SVG and JSON are rendered natively; DOT is generated from the
// snapshot structure, and PNG is rasterized from the DOT via graphviz.
func renderFormats(ctx context.Context, placed render.Layout, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))

	var dot string
	needsDOT := false
	for _, f := range opts.Formats {
		if f == FormatDOT || f == FormatPNG {
			needsDOT = true
		}
	}
	if needsDOT {
		dot = render.ToDOT(placed.Snapshot())
	}

	for _, format := range opts.Formats {
		switch format {
		case FormatSVG:
			svgOpts := make([]render.SVGOption, 0, 2)
			if opts.ShowLabels {
				svgOpts = append(svgOpts, render.WithLabels())
			}
			if opts.Background != "" {
				svgOpts = append(svgOpts, render.WithBackground(opts.Background))
			}
			artifacts[format] = render.RenderSVG(placed, svgOpts...)

		case FormatJSON:
			data, err := render.MarshalLayout(placed)
			if err != nil {
				return nil, err
			}
			artifacts[format] = data

		case FormatDOT:
			artifacts[format] = []byte(dot)

		case FormatPNG:
			data, err := render.RenderDOT(ctx, dot, graphviz.PNG)
			if err != nil {
				return nil, err
			}
			artifacts[format] = data

		default:
			return nil, ValidateFormat(format)
		}
	}
	return artifacts, nil
}
