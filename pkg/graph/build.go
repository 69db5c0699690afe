package graph

// fieldSpec names one numeric measurement column and knows how to read it
// from a record. The catalogs below are the single source of truth for
// which columns become Parameter and Biology nodes.
type fieldSpec struct {
	name  string
	value func(MeasurementRecord) float64
}

// parameterFields is the fixed physical-parameter catalog. Parameter nodes
// are always created in this order, regardless of the data.
var parameterFields = []fieldSpec{
	{"salinity", func(r MeasurementRecord) float64 { return r.Salinity }},
	{"temperature", func(r MeasurementRecord) float64 { return r.Temperature }},
	{"ph", func(r MeasurementRecord) float64 { return r.PH }},
	{"dissolved_oxygen", func(r MeasurementRecord) float64 { return r.DissolvedOxygen }},
	{"depth", func(r MeasurementRecord) float64 { return r.Depth }},
}

// biologyFields is the fixed biological-indicator catalog.
var biologyFields = []fieldSpec{
	{"fish_population", func(r MeasurementRecord) float64 { return r.FishPopulation }},
	{"plankton", func(r MeasurementRecord) float64 { return r.Plankton }},
	{"coral_coverage", func(r MeasurementRecord) float64 { return r.CoralCoverage }},
}

// Scale holds the weight-normalization constants for edge construction.
// The divisors map typical measurement magnitudes into a band the drawing
// layer can use directly for stroke thickness. They are tuning values with
// no physical meaning; treat them as configuration, never derive data from
// them.
type Scale struct {
	ParameterDivisor float64 // divides per-region parameter means
	BiologyDivisor   float64 // divides per-region biology means
	MinWeight        float64 // lower clamp for normalized weights
	MaxWeight        float64 // upper clamp for normalized weights
}

// DefaultScale returns the standard normalization constants:
// parameter means / 10, biology means / 100, clamped into [0.1, 10].
func DefaultScale() Scale {
	return Scale{
		ParameterDivisor: 10,
		BiologyDivisor:   100,
		MinWeight:        0.1,
		MaxWeight:        10,
	}
}

// clamp bounds w to the scale's weight band.
func (s Scale) clamp(w float64) float64 {
	if w < s.MinWeight {
		return s.MinWeight
	}
	if w > s.MaxWeight {
		return s.MaxWeight
	}
	return w
}

// Build constructs a snapshot from a record sequence using [DefaultScale].
// See [BuildWithScale] for the algorithm.
func Build(records []MeasurementRecord) Snapshot {
	return BuildWithScale(records, DefaultScale())
}

// BuildWithScale constructs a knowledge-graph snapshot from a sequence of
// validated measurement records. It is deterministic: identical input yields
// identical node and edge sets, independent of any layout randomness.
//
// Nodes are created first - one Region node per distinct region in order of
// first occurrence, the fixed Parameter and Biology catalogs, and one
// TimePeriod node per distinct year-month in order of first occurrence -
// then edges, so every edge endpoint exists by construction.
//
// Edges connect each region to every catalog field, weighted by the region's
// arithmetic mean of that field normalized through scale, plus one weight-1
// temporal edge per distinct (year-month, region) pair.
//
// An empty record sequence yields an empty snapshot: nothing to render,
// not an error.
func BuildWithScale(records []MeasurementRecord, scale Scale) Snapshot {
	if len(records) == 0 {
		return Snapshot{}
	}

	var snap Snapshot

	// Region nodes, first-occurrence order.
	regions := make([]string, 0)
	regionSeen := make(map[string]struct{})
	for _, r := range records {
		if _, ok := regionSeen[r.Region]; !ok {
			regionSeen[r.Region] = struct{}{}
			regions = append(regions, r.Region)
		}
	}
	for _, region := range regions {
		snap.Nodes = append(snap.Nodes, Node{
			ID:    NodeID(KindRegion, region),
			Kind:  KindRegion,
			Label: region,
			Group: KindRegion.Group(),
		})
	}

	// Fixed catalogs, always present.
	for _, f := range parameterFields {
		snap.Nodes = append(snap.Nodes, Node{
			ID:    NodeID(KindParameter, f.name),
			Kind:  KindParameter,
			Label: f.name,
			Group: KindParameter.Group(),
		})
	}
	for _, f := range biologyFields {
		snap.Nodes = append(snap.Nodes, Node{
			ID:    NodeID(KindBiology, f.name),
			Kind:  KindBiology,
			Label: f.name,
			Group: KindBiology.Group(),
		})
	}

	// TimePeriod nodes, first-occurrence order of year-month tokens.
	periods := make([]string, 0)
	periodSeen := make(map[string]struct{})
	for _, r := range records {
		ym := r.YearMonth()
		if _, ok := periodSeen[ym]; !ok {
			periodSeen[ym] = struct{}{}
			periods = append(periods, ym)
		}
	}
	for _, ym := range periods {
		snap.Nodes = append(snap.Nodes, Node{
			ID:    NodeID(KindTimePeriod, ym),
			Kind:  KindTimePeriod,
			Label: ym,
			Group: KindTimePeriod.Group(),
		})
	}

	// Per-region means over all numeric fields.
	type accumulator struct {
		count int
		sums  map[string]float64
	}
	allFields := append(append([]fieldSpec{}, parameterFields...), biologyFields...)
	stats := make(map[string]*accumulator, len(regions))
	for _, r := range records {
		acc := stats[r.Region]
		if acc == nil {
			acc = &accumulator{sums: make(map[string]float64, len(allFields))}
			stats[r.Region] = acc
		}
		acc.count++
		for _, f := range allFields {
			acc.sums[f.name] += f.value(r)
		}
	}
	mean := func(region, field string) float64 {
		acc := stats[region]
		return acc.sums[field] / float64(acc.count)
	}

	// Parameter and biology edges: region → attribute, weighted by the
	// normalized mean.
	for _, region := range regions {
		src := NodeID(KindRegion, region)
		for _, f := range parameterFields {
			snap.Edges = append(snap.Edges, Edge{
				Source:   src,
				Target:   NodeID(KindParameter, f.name),
				Weight:   scale.clamp(mean(region, f.name) / scale.ParameterDivisor),
				Category: ParameterLink,
			})
		}
		for _, f := range biologyFields {
			snap.Edges = append(snap.Edges, Edge{
				Source:   src,
				Target:   NodeID(KindBiology, f.name),
				Weight:   scale.clamp(mean(region, f.name) / scale.BiologyDivisor),
				Category: BiologyLink,
			})
		}
	}

	// Temporal edges: one per distinct (year-month, region) pair, however
	// many records share it. Weight is always exactly 1.
	type pair struct{ ym, region string }
	pairSeen := make(map[pair]struct{})
	for _, r := range records {
		p := pair{r.YearMonth(), r.Region}
		if _, ok := pairSeen[p]; ok {
			continue
		}
		pairSeen[p] = struct{}{}
		snap.Edges = append(snap.Edges, Edge{
			Source:   NodeID(KindTimePeriod, p.ym),
			Target:   NodeID(KindRegion, p.region),
			Weight:   1,
			Category: TemporalLink,
		})
	}

	return snap
}
