package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/oceanviz/reefgraph/pkg/cache"
	"github.com/oceanviz/reefgraph/pkg/config"
	"github.com/oceanviz/reefgraph/pkg/graph"
	"github.com/oceanviz/reefgraph/pkg/store"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := config.Default()
	// Aggressive cooling keeps layout endpoints fast in tests.
	cfg.Layout.AlphaDecay = 0.3
	srv := New(cfg, cache.NewMemoryCache(), store.NewMemoryStore(), nil, nil)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func sampleRecords() []graph.MeasurementRecord {
	return []graph.MeasurementRecord{
		{Region: "north reef", Date: "2023-04-02", Depth: 12, Salinity: 35,
			Temperature: 21, PH: 8.1, DissolvedOxygen: 7, FishPopulation: 120,
			Plankton: 40, CoralCoverage: 60},
		{Region: "south reef", Date: "2023-05-05", Depth: 9, Salinity: 36,
			Temperature: 24, PH: 8.2, DissolvedOxygen: 7.2, FishPopulation: 90,
			Plankton: 30, CoralCoverage: 70},
	}
}

func createGraph(t *testing.T, ts *httptest.Server) string {
	t.Helper()
	body, _ := json.Marshal(createGraphRequest{Records: sampleRecords()})
	resp, err := http.Post(ts.URL+"/api/graphs", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post graph: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	var created createGraphResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created.Hash == "" {
		t.Fatal("expected a snapshot hash")
	}
	return created.Hash
}

func TestCreateAndGetGraph(t *testing.T) {
	ts := newTestServer(t)
	hash := createGraph(t, ts)

	resp, err := http.Get(ts.URL + "/api/graphs/" + hash)
	if err != nil {
		t.Fatalf("get graph: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var snap graph.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	// 2 regions + 5 parameters + 3 biology + 2 periods.
	if len(snap.Nodes) != 12 {
		t.Fatalf("expected 12 nodes, got %d", len(snap.Nodes))
	}
}

func TestCreateGraphRejectsInvalidRecords(t *testing.T) {
	ts := newTestServer(t)

	cases := []struct {
		name string
		body string
	}{
		{"empty records", `{"records":[]}`},
		{"empty region", `{"records":[{"region":"","date":"2023-04-02"}]}`},
		{"malformed date", `{"records":[{"region":"north reef","date":"April 2023"}]}`},
		{"not json", `{{`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := http.Post(ts.URL+"/api/graphs", "application/json", strings.NewReader(tc.body))
			if err != nil {
				t.Fatalf("post: %v", err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", resp.StatusCode)
			}
			var e errorResponse
			if err := json.NewDecoder(resp.Body).Decode(&e); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if e.Code == "" {
				t.Fatal("expected an error code")
			}
		})
	}
}

func TestGetGraphNotFound(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/graphs/deadbeef")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestListAndDeleteGraphs(t *testing.T) {
	ts := newTestServer(t)
	hash := createGraph(t, ts)

	resp, err := http.Get(ts.URL + "/api/graphs")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var metas []store.Meta
	if err := json.NewDecoder(resp.Body).Decode(&metas); err != nil {
		t.Fatalf("decode listing: %v", err)
	}
	resp.Body.Close()
	if len(metas) != 1 || metas[0].Hash != hash {
		t.Fatalf("unexpected listing: %+v", metas)
	}

	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/api/graphs/"+hash, nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/api/graphs/" + hash)
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", resp.StatusCode)
	}
}

func TestGetLayout(t *testing.T) {
	ts := newTestServer(t)
	hash := createGraph(t, ts)

	resp, err := http.Get(ts.URL + "/api/graphs/" + hash + "/layout")
	if err != nil {
		t.Fatalf("get layout: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var placed struct {
		Nodes []struct {
			ID string  `json:"id"`
			X  float64 `json:"x"`
			Y  float64 `json:"y"`
		} `json:"nodes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&placed); err != nil {
		t.Fatalf("decode layout: %v", err)
	}
	if len(placed.Nodes) != 12 {
		t.Fatalf("expected 12 placed nodes, got %d", len(placed.Nodes))
	}
}

func TestRenderSVGEndpoint(t *testing.T) {
	ts := newTestServer(t)
	hash := createGraph(t, ts)

	resp, err := http.Get(ts.URL + "/api/graphs/" + hash + "/render?format=svg")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/svg+xml" {
		t.Fatalf("unexpected content type %q", ct)
	}
	body, _ := io.ReadAll(resp.Body)
	if !bytes.HasPrefix(body, []byte("<svg")) {
		t.Fatal("expected an SVG document")
	}
}

func TestRenderRejectsUnknownFormat(t *testing.T) {
	ts := newTestServer(t)
	hash := createGraph(t, ts)

	resp, err := http.Get(ts.URL + "/api/graphs/" + hash + "/render?format=gif")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestLiveStreamConverges(t *testing.T) {
	ts := newTestServer(t)
	hash := createGraph(t, ts)

	resp, err := http.Get(ts.URL + "/api/graphs/" + hash + "/live")
	if err != nil {
		t.Fatalf("live: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("unexpected content type %q", ct)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read stream: %v", err)
	}
	if !bytes.Contains(body, []byte("event: frame")) {
		t.Fatal("expected frame events in the stream")
	}
	if !bytes.Contains(body, []byte("event: converged")) {
		t.Fatal("expected a converged event at the end of the stream")
	}
}
