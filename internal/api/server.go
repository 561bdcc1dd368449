package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"visualjobs.local/internal/domain"
	"visualjobs.local/internal/metrics"
	"visualjobs.local/internal/notion"
)

// NotionProbe is what the debug endpoints need from the Notion client.
type NotionProbe interface {
	Ping(ctx context.Context) error
	SearchDatabases(ctx context.Context) ([]notion.DatabaseInfo, error)
}

// History lists archived runs. Nil disables /api/history.
type History interface {
	ListRuns(ctx context.Context, limit int) ([]domain.Run, error)
}

// Server serves one immutable snapshot. Handlers only read it.
type Server struct {
	snap     *domain.Snapshot
	notion   NotionProbe
	history  History
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
	log      *zap.Logger
	mux      *http.ServeMux
}

type Option func(*Server)

func WithHistory(h History) Option {
	return func(s *Server) { s.history = h }
}

// WithMetrics exposes m on /metrics using g as the scrape source.
func WithMetrics(m *metrics.Metrics, g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = m
		s.gatherer = g
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Server) { s.log = l }
}

func New(snap *domain.Snapshot, n NotionProbe, opts ...Option) *Server {
	s := &Server{
		snap:   snap,
		notion: n,
		log:    zap.NewNop(),
		mux:    http.NewServeMux(),
	}
	for _, o := range opts {
		o(s)
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /{$}", s.handleDashboard)
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /api/snapshot", s.handleSnapshot)
	s.mux.HandleFunc("GET /api/diagram", s.handleDiagram)
	s.mux.HandleFunc("GET /api/details", s.handleDetails)
	s.mux.HandleFunc("GET /debug/notion", s.handleDebugNotion)
	s.mux.HandleFunc("GET /debug/notion/search", s.handleDebugSearchDatabases)

	if s.history != nil {
		s.mux.HandleFunc("GET /api/history", s.handleHistory)
	}
	if s.gatherer != nil {
		s.mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Listen serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Listen(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("HTTP listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.log.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":         true,
		"records":    len(s.snap.Records),
		"fetched_at": s.snap.FetchedAt,
	})
}
