package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/oceanviz/reefgraph/pkg/errors"
	"github.com/oceanviz/reefgraph/pkg/graph"
	"github.com/oceanviz/reefgraph/pkg/ingest"
	"github.com/oceanviz/reefgraph/pkg/pipeline"
)

// createGraphRequest is the POST /api/graphs body.
type createGraphRequest struct {
	Records []graph.MeasurementRecord `json:"records"`
}

// createGraphResponse echoes the stored snapshot's identity and size.
type createGraphResponse struct {
	Hash      string `json:"hash"`
	NodeCount int    `json:"node_count"`
	EdgeCount int    `json:"edge_count"`
}

// handleCreateGraph validates the posted records, builds the snapshot,
// and persists it under its content hash.
func (s *Server) handleCreateGraph(w http.ResponseWriter, r *http.Request) {
	var req createGraphRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body"))
		return
	}
	if len(req.Records) == 0 {
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "records must not be empty"))
		return
	}

	reader := ingest.NewReader()
	for i, rec := range req.Records {
		if err := reader.ValidateRecord(rec); err != nil {
			s.writeError(w, errors.Wrap(errors.GetCode(err), err, "record %d", i))
			return
		}
	}

	snap, err := s.runner.Build(r.Context(), req.Records, pipeline.Options{
		Records: req.Records,
		Scale:   s.cfg.Graph.Scale(),
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	hash, err := s.store.Save(r.Context(), snap)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, createGraphResponse{
		Hash:      hash,
		NodeCount: len(snap.Nodes),
		EdgeCount: len(snap.Edges),
	})
}

// handleListGraphs returns metadata for every stored snapshot.
func (s *Server) handleListGraphs(w http.ResponseWriter, r *http.Request) {
	metas, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, metas)
}

// handleGetGraph returns a stored snapshot by hash.
func (s *Server) handleGetGraph(w http.ResponseWriter, r *http.Request) {
	snap, err := s.loadSnapshot(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

// handleDeleteGraph removes a stored snapshot.
func (s *Server) handleDeleteGraph(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "hash")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleGetLayout settles (or fetches from cache) the layout for a stored
// snapshot and returns it as JSON.
func (s *Server) handleGetLayout(w http.ResponseWriter, r *http.Request) {
	snap, err := s.loadSnapshot(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	placed, err := s.runner.ComputeLayout(r.Context(), snap, pipeline.Options{
		Layout: s.cfg.Layout,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, placed)
}

// handleRender returns a rendered artifact for a stored snapshot. The
// format query parameter selects the output (default svg).
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.FormatSVG
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		s.writeError(w, err)
		return
	}

	snap, err := s.loadSnapshot(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	opts := pipeline.Options{
		Layout:     s.cfg.Layout,
		Formats:    []string{format},
		ShowLabels: true,
	}
	placed, err := s.runner.ComputeLayout(r.Context(), snap, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	artifacts, err := s.runner.Render(r.Context(), placed, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentTypes[format])
	_, _ = w.Write(artifacts[format])
}

// contentTypes maps artifact formats to response content types.
var contentTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatJSON: "application/json",
	pipeline.FormatDOT:  "text/vnd.graphviz",
	pipeline.FormatPNG:  "image/png",
}

// loadSnapshot fetches the snapshot named by the hash URL parameter.
func (s *Server) loadSnapshot(r *http.Request) (graph.Snapshot, error) {
	return s.store.Load(r.Context(), chi.URLParam(r, "hash"))
}

// writeJSON writes v as a JSON response.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "err", err)
	}
}

// errorResponse is the JSON error body.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError maps an error code to an HTTP status and writes the JSON
// error body.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	status := http.StatusInternalServerError
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidRecord, errors.ErrCodeInvalidDate,
		errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidConfig, errors.ErrCodeUnsupported:
		status = http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeSnapshotNotFound, errors.ErrCodeUnknownNode:
		status = http.StatusNotFound
	}

	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	s.writeJSON(w, status, errorResponse{
		Code:    string(code),
		Message: errors.UserMessage(err),
	})
}
