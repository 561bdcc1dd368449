package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"visualjobs.local/internal/diagram"
	"visualjobs.local/internal/domain"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.snap)
}

func (s *Server) handleDiagram(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, diagram.Build(s.snap))
}

// handleDetails answers a click on a diagram link. Both source and target
// must be present for a lookup; otherwise the placeholder is returned.
func (s *Server) handleDetails(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var key *domain.EdgeKey
	if q.Has("source") && q.Has("target") {
		key = &domain.EdgeKey{Source: q.Get("source"), Target: q.Get("target")}
	}

	d := diagram.LookupDetails(s.snap.Details, key)
	if s.metrics != nil {
		s.metrics.DetailLookup(d.Placeholder == "")
	}
	if key != nil {
		s.log.Debug("detail lookup",
			zap.String("source", key.Source),
			zap.String("target", key.Target),
			zap.Int("rows", len(d.Rows)),
		)
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	runs, err := s.history.ListRuns(r.Context(), limit)
	if err != nil {
		s.log.Error("list runs failed", zap.Error(err))
		http.Error(w, "history unavailable", http.StatusInternalServerError)
		return
	}

	type runJSON struct {
		ID        string                 `json:"id"`
		FetchedAt string                 `json:"fetched_at"`
		Mode      domain.AggregationMode `json:"mode"`
		Summary   domain.Summary         `json:"summary"`
		Stages    map[domain.Stage]int   `json:"stages"`
	}
	out := make([]runJSON, 0, len(runs))
	for _, run := range runs {
		out = append(out, runJSON{
			ID:        run.ID,
			FetchedAt: run.FetchedAt.Format(time.RFC3339),
			Mode:      run.Mode,
			Summary:   run.Summary,
			Stages:    run.Stages,
		})
	}
	writeJSON(w, http.StatusOK, out)
}
