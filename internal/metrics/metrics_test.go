package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/oceanviz/reefgraph/pkg/observability"
)

func TestHooksRecordPipelineStages(t *testing.T) {
	h := New(prometheus.NewRegistry())
	ctx := context.Background()

	h.OnBuildComplete(ctx, 12, 18, 5*time.Millisecond, nil)
	h.OnLayoutComplete(ctx, 300, 50*time.Millisecond, nil)

	if got := testutil.ToFloat64(h.stageTotal.WithLabelValues("build")); got != 1 {
		t.Errorf("build stage total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(h.graphNodes); got != 12 {
		t.Errorf("graph nodes gauge = %v, want 12", got)
	}
	if got := testutil.ToFloat64(h.graphEdges); got != 18 {
		t.Errorf("graph edges gauge = %v, want 18", got)
	}
}

func TestHooksCountErrors(t *testing.T) {
	h := New(prometheus.NewRegistry())
	ctx := context.Background()

	h.OnIngestComplete(ctx, "x.csv", 0, time.Millisecond, context.DeadlineExceeded)

	if got := testutil.ToFloat64(h.stageErrors.WithLabelValues("ingest")); got != 1 {
		t.Errorf("ingest errors = %v, want 1", got)
	}
	// A failed build must not update the graph size gauges.
	h.OnBuildComplete(ctx, 0, 0, time.Millisecond, context.DeadlineExceeded)
	if got := testutil.ToFloat64(h.stageErrors.WithLabelValues("build")); got != 1 {
		t.Errorf("build errors = %v, want 1", got)
	}
}

func TestHooksRecordSimulationAndCache(t *testing.T) {
	h := New(nil)
	ctx := context.Background()

	h.OnTick(ctx, 0.9)
	h.OnTick(ctx, 0.8)
	h.OnReheat(ctx, 0.3)
	h.OnConverged(ctx, 150)

	if got := testutil.ToFloat64(h.simTicks); got != 2 {
		t.Errorf("sim ticks = %v, want 2", got)
	}
	if got := testutil.ToFloat64(h.simReheats); got != 1 {
		t.Errorf("sim reheats = %v, want 1", got)
	}
	if got := testutil.ToFloat64(h.simConverged); got != 1 {
		t.Errorf("sim converged = %v, want 1", got)
	}

	h.OnCacheHit(ctx, "snapshot")
	h.OnCacheMiss(ctx, "snapshot")
	h.OnCacheSet(ctx, "snapshot", 2048)

	if got := testutil.ToFloat64(h.cacheOps.WithLabelValues("snapshot", "hit")); got != 1 {
		t.Errorf("cache hits = %v, want 1", got)
	}
	if got := testutil.ToFloat64(h.cacheOps.WithLabelValues("snapshot", "miss")); got != 1 {
		t.Errorf("cache misses = %v, want 1", got)
	}
	if got := testutil.ToFloat64(h.cacheOps.WithLabelValues("snapshot", "set")); got != 1 {
		t.Errorf("cache sets = %v, want 1", got)
	}
}

func TestInstallRegistersGlobally(t *testing.T) {
	observability.Reset()
	defer observability.Reset()

	h := New(nil)
	h.Install()

	if observability.Pipeline() != observability.PipelineHooks(h) {
		t.Error("Install should register pipeline hooks")
	}
	if observability.Simulation() != observability.SimulationHooks(h) {
		t.Error("Install should register simulation hooks")
	}
	if observability.Cache() != observability.CacheHooks(h) {
		t.Error("Install should register cache hooks")
	}
}
