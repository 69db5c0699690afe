// Package metrics implements the observability hook interfaces on top of
// Prometheus. It is wired in by the serve command; library code stays free
// of any Prometheus dependency and emits through the hook registry.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/oceanviz/reefgraph/pkg/observability"
)

// Hooks records pipeline, simulation, and cache events as Prometheus
// metrics. One Hooks value implements all three hook interfaces.
type Hooks struct {
	registry *prometheus.Registry

	stageTotal    *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	stageErrors   *prometheus.CounterVec

	graphNodes  prometheus.Gauge
	graphEdges  prometheus.Gauge
	layoutTicks prometheus.Histogram

	simTicks     prometheus.Counter
	simReheats   prometheus.Counter
	simConverged prometheus.Counter

	cacheOps  *prometheus.CounterVec
	cacheSize *prometheus.HistogramVec
}

// New creates the hooks and registers their collectors on the given
// registry. A nil registry gets a fresh one.
func New(registry *prometheus.Registry) *Hooks {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	h := &Hooks{registry: registry}

	h.stageTotal = promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "reefgraph_pipeline_stage_total",
			Help: "Total pipeline stage executions",
		},
		[]string{"stage"},
	)
	h.stageDuration = promauto.With(registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reefgraph_pipeline_stage_duration_seconds",
			Help:    "Pipeline stage duration in seconds",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 30.0},
		},
		[]string{"stage"},
	)
	h.stageErrors = promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "reefgraph_pipeline_stage_errors_total",
			Help: "Total pipeline stage failures",
		},
		[]string{"stage"},
	)

	h.graphNodes = promauto.With(registry).NewGauge(prometheus.GaugeOpts{
		Name: "reefgraph_graph_nodes",
		Help: "Node count of the most recently built graph",
	})
	h.graphEdges = promauto.With(registry).NewGauge(prometheus.GaugeOpts{
		Name: "reefgraph_graph_edges",
		Help: "Edge count of the most recently built graph",
	})
	h.layoutTicks = promauto.With(registry).NewHistogram(prometheus.HistogramOpts{
		Name:    "reefgraph_layout_ticks",
		Help:    "Simulation ticks needed for a layout to settle",
		Buckets: []float64{10, 50, 100, 200, 300, 500, 1000},
	})

	h.simTicks = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Name: "reefgraph_simulation_ticks_total",
		Help: "Total live simulation ticks",
	})
	h.simReheats = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Name: "reefgraph_simulation_reheats_total",
		Help: "Total interactive reheats",
	})
	h.simConverged = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Name: "reefgraph_simulation_converged_total",
		Help: "Total simulations that reached convergence",
	})

	h.cacheOps = promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "reefgraph_cache_operations_total",
			Help: "Cache operations by key type and outcome",
		},
		[]string{"key_type", "outcome"},
	)
	h.cacheSize = promauto.With(registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reefgraph_cache_entry_bytes",
			Help:    "Size of cached entries in bytes",
			Buckets: prometheus.ExponentialBuckets(256, 4, 8),
		},
		[]string{"key_type"},
	)

	return h
}

// Registry returns the Prometheus registry the collectors live on, for
// mounting an exposition endpoint.
func (h *Hooks) Registry() *prometheus.Registry { return h.registry }

// Install registers the hooks with the global observability registry.
func (h *Hooks) Install() {
	observability.SetPipelineHooks(h)
	observability.SetSimulationHooks(h)
	observability.SetCacheHooks(h)
}

func (h *Hooks) stageComplete(stage string, duration time.Duration, err error) {
	h.stageTotal.WithLabelValues(stage).Inc()
	h.stageDuration.WithLabelValues(stage).Observe(duration.Seconds())
	if err != nil {
		h.stageErrors.WithLabelValues(stage).Inc()
	}
}

// OnIngestStart implements observability.PipelineHooks.
func (h *Hooks) OnIngestStart(context.Context, string) {}

// OnIngestComplete implements observability.PipelineHooks.
func (h *Hooks) OnIngestComplete(_ context.Context, _ string, _ int, duration time.Duration, err error) {
	h.stageComplete("ingest", duration, err)
}

// OnBuildStart implements observability.PipelineHooks.
func (h *Hooks) OnBuildStart(context.Context, int) {}

// OnBuildComplete implements observability.PipelineHooks.
func (h *Hooks) OnBuildComplete(_ context.Context, nodeCount, edgeCount int, duration time.Duration, err error) {
	h.stageComplete("build", duration, err)
	if err == nil {
		h.graphNodes.Set(float64(nodeCount))
		h.graphEdges.Set(float64(edgeCount))
	}
}

// OnLayoutStart implements observability.PipelineHooks.
func (h *Hooks) OnLayoutStart(context.Context, int) {}

// OnLayoutComplete implements observability.PipelineHooks.
func (h *Hooks) OnLayoutComplete(_ context.Context, ticks int, duration time.Duration, err error) {
	h.stageComplete("layout", duration, err)
	if err == nil {
		h.layoutTicks.Observe(float64(ticks))
	}
}

// OnRenderStart implements observability.PipelineHooks.
func (h *Hooks) OnRenderStart(context.Context, []string) {}

// OnRenderComplete implements observability.PipelineHooks.
func (h *Hooks) OnRenderComplete(_ context.Context, _ []string, duration time.Duration, err error) {
	h.stageComplete("render", duration, err)
}

// OnTick implements observability.SimulationHooks.
func (h *Hooks) OnTick(context.Context, float64) {
	h.simTicks.Inc()
}

// OnReheat implements observability.SimulationHooks.
func (h *Hooks) OnReheat(context.Context, float64) {
	h.simReheats.Inc()
}

// OnConverged implements observability.SimulationHooks.
func (h *Hooks) OnConverged(_ context.Context, ticks int) {
	h.simConverged.Inc()
	h.layoutTicks.Observe(float64(ticks))
}

// OnCacheHit implements observability.CacheHooks.
func (h *Hooks) OnCacheHit(_ context.Context, keyType string) {
	h.cacheOps.WithLabelValues(keyType, "hit").Inc()
}

// OnCacheMiss implements observability.CacheHooks.
func (h *Hooks) OnCacheMiss(_ context.Context, keyType string) {
	h.cacheOps.WithLabelValues(keyType, "miss").Inc()
}

// OnCacheSet implements observability.CacheHooks.
func (h *Hooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.cacheOps.WithLabelValues(keyType, "set").Inc()
	h.cacheSize.WithLabelValues(keyType).Observe(float64(size))
}

// Interface checks.
var (
	_ observability.PipelineHooks   = (*Hooks)(nil)
	_ observability.SimulationHooks = (*Hooks)(nil)
	_ observability.CacheHooks      = (*Hooks)(nil)
)
