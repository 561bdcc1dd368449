package api

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"visualjobs.local/internal/notion"
)

func (s *Server) handleDebugNotion(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	if err := s.notion.Ping(ctx); err != nil {
		s.log.Warn("debug notion ping failed", zap.Error(err))
		writeJSON(w, http.StatusBadGateway, map[string]any{
			"ok":    false,
			"error": err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok": true,
	})
}

func (s *Server) handleDebugSearchDatabases(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	dbs, err := s.notion.SearchDatabases(ctx)
	if err != nil {
		s.log.Warn("debug notion search failed", zap.Error(err))
		writeJSON(w, http.StatusBadGateway, map[string]any{
			"error": err.Error(),
		})
		return
	}
	if dbs == nil {
		dbs = []notion.DatabaseInfo{}
	}

	writeJSON(w, http.StatusOK, struct {
		Count int                   `json:"count"`
		DBs   []notion.DatabaseInfo `json:"dbs"`
	}{
		Count: len(dbs),
		DBs:   dbs,
	})
}
