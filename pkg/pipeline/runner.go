package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/oceanviz/reefgraph/pkg/cache"
	"github.com/oceanviz/reefgraph/pkg/errors"
	"github.com/oceanviz/reefgraph/pkg/graph"
	"github.com/oceanviz/reefgraph/pkg/ingest"
	"github.com/oceanviz/reefgraph/pkg/layout"
	"github.com/oceanviz/reefgraph/pkg/observability"
	"github.com/oceanviz/reefgraph/pkg/render"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and server can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete ingest → build → layout → render pipeline
// with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid options")
	}
	r.applyLogger(&opts)

	result := &Result{
		RunID:     uuid.NewString(),
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Ingest
	ingestStart := time.Now()
	records, err := r.Ingest(ctx, opts)
	if err != nil {
		return nil, errors.Wrap(errors.GetCode(err), err, "ingest")
	}
	result.Stats.IngestTime = time.Since(ingestStart)
	result.Stats.RecordCount = len(records)

	r.Logger.Info("ingested measurements",
		"run", result.RunID,
		"records", len(records),
		"duration", result.Stats.IngestTime)

	// Stage 2: Build
	buildStart := time.Now()
	snap, buildHit, err := r.BuildWithCacheInfo(ctx, records, opts)
	if err != nil {
		return nil, errors.Wrap(errors.GetCode(err), err, "build")
	}
	result.Snapshot = snap
	result.Stats.BuildTime = time.Since(buildStart)
	result.Stats.NodeCount = len(snap.Nodes)
	result.Stats.EdgeCount = len(snap.Edges)
	result.CacheInfo.BuildHit = buildHit

	if snapData, err := graph.MarshalSnapshot(snap); err == nil {
		result.SnapshotHash = cache.Hash(snapData)
	}

	r.Logger.Info("built graph",
		"nodes", len(snap.Nodes),
		"edges", len(snap.Edges),
		"duration", result.Stats.BuildTime)

	// Stage 3: Layout
	layoutStart := time.Now()
	placed, ticks, layoutHit, err := r.ComputeLayoutWithCacheInfo(ctx, snap, opts)
	if err != nil {
		return nil, errors.Wrap(errors.GetCode(err), err, "layout")
	}
	result.Layout = placed
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.LayoutTicks = ticks
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"ticks", ticks,
		"duration", result.Stats.LayoutTime)

	// Stage 4: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, placed, opts)
	if err != nil {
		return nil, errors.Wrap(errors.GetCode(err), err, "render")
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Ingest reads and validates measurement records. Records supplied
// directly in the options are validated but not re-read.
func (r *Runner) Ingest(ctx context.Context, opts Options) ([]graph.MeasurementRecord, error) {
	if err := opts.ValidateForIngest(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	start := time.Now()
	observability.Pipeline().OnIngestStart(ctx, opts.Input)

	reader := ingest.NewReader()
	var (
		records []graph.MeasurementRecord
		err     error
	)
	if opts.Records != nil {
		records = opts.Records
		for _, rec := range records {
			if err = reader.ValidateRecord(rec); err != nil {
				break
			}
		}
	} else {
		records, err = reader.ReadFile(opts.Input)
	}

	observability.Pipeline().OnIngestComplete(ctx, opts.Input, len(records), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return records, nil
}

// BuildWithCacheInfo builds the snapshot with caching and returns cache
// hit info. The cache key is derived from the record content and the
// scale constants, so identical datasets share a cached snapshot.
func (r *Runner) BuildWithCacheInfo(ctx context.Context, records []graph.MeasurementRecord, opts Options) (graph.Snapshot, bool, error) {
	opts.SetBuildDefaults()
	r.applyLogger(&opts)

	recordData, err := json.Marshal(records)
	if err != nil {
		return graph.Snapshot{}, false, errors.Wrap(errors.ErrCodeInternal, err, "serialize records for cache key")
	}
	cacheKey := r.Keyer.SnapshotKey(cache.Hash(recordData), opts.SnapshotKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "snapshot")
			if snap, err := graph.ReadSnapshot(bytes.NewReader(data)); err == nil {
				return snap, true, nil
			}
			// Corrupt entry, fall through to rebuild.
		} else {
			observability.Cache().OnCacheMiss(ctx, "snapshot")
		}
	}

	start := time.Now()
	observability.Pipeline().OnBuildStart(ctx, len(records))
	snap := graph.BuildWithScale(records, opts.Scale)
	observability.Pipeline().OnBuildComplete(ctx, len(snap.Nodes), len(snap.Edges), time.Since(start), nil)

	if data, err := graph.MarshalSnapshot(snap); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLSnapshot)
		observability.Cache().OnCacheSet(ctx, "snapshot", len(data))
	}

	return snap, false, nil
}

// Build is a convenience wrapper that discards the cache hit info.
func (r *Runner) Build(ctx context.Context, records []graph.MeasurementRecord, opts Options) (graph.Snapshot, error) {
	snap, _, err := r.BuildWithCacheInfo(ctx, records, opts)
	return snap, err
}

// ComputeLayoutWithCacheInfo settles the layout with caching and returns
// the tick count and cache hit info. A cached layout reports zero ticks.
func (r *Runner) ComputeLayoutWithCacheInfo(ctx context.Context, snap graph.Snapshot, opts Options) (render.Layout, int, bool, error) {
	opts.SetLayoutDefaults()
	r.applyLogger(&opts)

	snapData, err := graph.MarshalSnapshot(snap)
	if err != nil {
		return render.Layout{}, 0, false, errors.Wrap(errors.ErrCodeInternal, err, "serialize snapshot for cache key")
	}
	cacheKey := r.Keyer.LayoutKey(cache.Hash(snapData), opts.LayoutKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "layout")
			if cached, err := render.UnmarshalLayout(data); err == nil {
				return cached, 0, true, nil
			}
		} else {
			observability.Cache().OnCacheMiss(ctx, "layout")
		}
	}

	start := time.Now()
	observability.Pipeline().OnLayoutStart(ctx, len(snap.Nodes))

	engine, err := layout.New(snap, opts.Layout)
	if err != nil {
		observability.Pipeline().OnLayoutComplete(ctx, 0, time.Since(start), err)
		return render.Layout{}, 0, false, err
	}
	positions, ticks := engine.Settle()
	placed := render.NewLayout(snap, positions, opts.Layout.Width, opts.Layout.Height)

	observability.Pipeline().OnLayoutComplete(ctx, ticks, time.Since(start), nil)

	if data, err := render.MarshalLayout(placed); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout)
		observability.Cache().OnCacheSet(ctx, "layout", len(data))
	}

	return placed, ticks, false, nil
}

// ComputeLayout is a convenience wrapper that discards the cache hit info.
func (r *Runner) ComputeLayout(ctx context.Context, snap graph.Snapshot, opts Options) (render.Layout, error) {
	placed, _, _, err := r.ComputeLayoutWithCacheInfo(ctx, snap, opts)
	return placed, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache
// hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, placed render.Layout, opts Options) (map[string][]byte, bool, error) {
	opts.SetRenderDefaults()
	r.applyLogger(&opts)
	if err := ValidateFormats(opts.Formats); err != nil {
		return nil, false, err
	}

	layoutData, err := render.MarshalLayout(placed)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "serialize layout for cache key")
	}
	layoutHash := cache.Hash(layoutData)

	// Try to get all formats from cache.
	allCached := true
	artifacts := make(map[string][]byte)
	if !opts.Refresh {
		for _, format := range opts.Formats {
			cacheKey := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
			if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
				observability.Cache().OnCacheHit(ctx, "artifact")
				artifacts[format] = data
			} else {
				observability.Cache().OnCacheMiss(ctx, "artifact")
				allCached = false
				break
			}
		}
	} else {
		allCached = false
	}

	if allCached && len(artifacts) == len(opts.Formats) {
		return artifacts, true, nil
	}

	start := time.Now()
	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	rendered, err := renderFormats(ctx, placed, opts)
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact)
		observability.Cache().OnCacheSet(ctx, "artifact", len(data))
	}

	return rendered, false, nil
}

// Render is a convenience wrapper that discards the cache hit info.
func (r *Runner) Render(ctx context.Context, placed render.Layout, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, placed, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
