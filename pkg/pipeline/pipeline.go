// Package pipeline provides the core visualization pipeline for reefgraph.
//
// This package implements the complete ingest → build → layout → render
// pipeline that can be used by CLI and server components. Centralizing the
// logic here keeps behavior consistent across entry points.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Ingest: Read and validate measurement records from CSV input
//  2. Build: Construct the weighted multigraph snapshot from the records
//  3. Layout: Run the force simulation until the layout settles
//  4. Render: Generate output in various formats (SVG, JSON, DOT, PNG)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Input:   "measurements.csv",
//	    Formats: []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/oceanviz/reefgraph/pkg/cache"
	"github.com/oceanviz/reefgraph/pkg/errors"
	"github.com/oceanviz/reefgraph/pkg/graph"
	"github.com/oceanviz/reefgraph/pkg/layout"
	"github.com/oceanviz/reefgraph/pkg/render"
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatPNG  = "png"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatJSON: true,
	FormatDOT:  true,
	FormatPNG:  true,
}

// Options contains all configuration for the visualization pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Ingest options. Input is a CSV file path; Records bypass ingestion
	// entirely when set (used by the API, which receives records directly).
	Input   string                    `json:"input,omitempty"`
	Records []graph.MeasurementRecord `json:"records,omitempty"`

	// Build options. Zero-value scale fields fall back to the defaults.
	Scale graph.Scale `json:"scale,omitempty"`

	// Layout options. A zero-value config falls back to the defaults.
	Layout layout.Config `json:"layout,omitempty"`

	// Render options.
	Formats    []string `json:"formats,omitempty"`
	ShowLabels bool     `json:"show_labels,omitempty"`
	Background string   `json:"background,omitempty"`

	// Refresh bypasses the cache for every stage.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID uniquely identifies this pipeline execution.
	RunID string

	// Snapshot is the built graph.
	Snapshot graph.Snapshot

	// SnapshotHash is the content hash of the snapshot.
	SnapshotHash string

	// Layout contains the settled node positions.
	Layout render.Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	RecordCount int
	NodeCount   int
	EdgeCount   int
	LayoutTicks int

	IngestTime time.Duration
	BuildTime  time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	BuildHit  bool // Whether the snapshot came from cache
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeUnsupported,
			"invalid format: %q (must be one of: svg, json, dot, png)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAndSetDefaults checks required fields and applies defaults for
// the full pipeline. Calling it more than once has no further effect.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForIngest(); err != nil {
		return err
	}
	o.SetBuildDefaults()
	o.SetLayoutDefaults()
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForIngest checks required fields for ingestion.
func (o *Options) ValidateForIngest() error {
	if o.Input == "" && o.Records == nil {
		return errors.New(errors.ErrCodeInvalidInput, "input file or records are required")
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// SetBuildDefaults fills zero scale fields with the standard constants.
func (o *Options) SetBuildDefaults() {
	def := graph.DefaultScale()
	if o.Scale.ParameterDivisor == 0 {
		o.Scale.ParameterDivisor = def.ParameterDivisor
	}
	if o.Scale.BiologyDivisor == 0 {
		o.Scale.BiologyDivisor = def.BiologyDivisor
	}
	if o.Scale.MinWeight == 0 {
		o.Scale.MinWeight = def.MinWeight
	}
	if o.Scale.MaxWeight == 0 {
		o.Scale.MaxWeight = def.MaxWeight
	}
}

// SetLayoutDefaults fills a zero layout config with the standard constants.
func (o *Options) SetLayoutDefaults() {
	if o.Layout == (layout.Config{}) {
		o.Layout = layout.DefaultConfig()
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// SnapshotKeyOpts returns cache key options for graph building.
func (o *Options) SnapshotKeyOpts() cache.SnapshotKeyOpts {
	return cache.SnapshotKeyOpts{
		ParameterDivisor: o.Scale.ParameterDivisor,
		BiologyDivisor:   o.Scale.BiologyDivisor,
	}
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Width:        o.Layout.Width,
		Height:       o.Layout.Height,
		LinkDistance: o.Layout.LinkDistance,
		Charge:       o.Layout.Charge,
		AlphaDecay:   o.Layout.AlphaDecay,
		Seed:         o.Layout.Seed,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format: format,
		Scale:  1,
	}
}
