package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/oceanviz/reefgraph/pkg/errors"
	"github.com/oceanviz/reefgraph/pkg/layout"
	"github.com/oceanviz/reefgraph/pkg/observability"
	"github.com/oceanviz/reefgraph/pkg/render"
)

// liveFrameInterval paces the SSE stream so browsers can animate at a
// steady rate instead of receiving the whole settling burst at once.
const liveFrameInterval = 33 * time.Millisecond

// handleLive replays the force simulation for a stored snapshot as
// server-sent events. Each event is a render.Frame; the stream ends with
// a "converged" event once alpha drops below the configured minimum.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	snap, err := s.loadSnapshot(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, errors.New(errors.ErrCodeUnsupported, "streaming not supported"))
		return
	}

	engine, err := layout.New(snap, s.cfg.Layout)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	ctx := r.Context()
	ticker := time.NewTicker(liveFrameInterval)
	defer ticker.Stop()

	tick := 0
	for !engine.Converged() {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		positions, err := engine.Step(1)
		if err != nil {
			s.logger.Error("simulation step", "err", err)
			return
		}
		tick++
		observability.Simulation().OnTick(ctx, engine.Alpha())

		frame := render.Frame{
			Tick:      tick,
			Alpha:     engine.Alpha(),
			Converged: engine.Converged(),
			Positions: positions,
		}
		if err := writeEvent(w, "frame", frame); err != nil {
			return
		}
		flusher.Flush()
	}

	observability.Simulation().OnConverged(ctx, tick)
	final := render.Frame{
		Tick:      tick,
		Alpha:     engine.Alpha(),
		Converged: true,
		Positions: engine.Positions(),
	}
	if err := writeEvent(w, "converged", final); err != nil {
		return
	}
	flusher.Flush()
}

// writeEvent encodes v as one SSE event.
func writeEvent(w http.ResponseWriter, event string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	return err
}
