package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/floatlab/argo-insight/internal/domain"
	"github.com/floatlab/argo-insight/internal/engine"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Recommender produces a recommendation for one request.
type Recommender interface {
	Recommend(ctx context.Context, req engine.Request) engine.Recommendation
}

// DatasetFetcher retrieves records from the upstream data API for requests
// that carry a query instead of inline records.
type DatasetFetcher interface {
	Fetch(ctx context.Context, query string, limit int) ([]domain.RawRecord, error)
}

// recommendRequest is the POST /v1/recommend body. Records may be supplied
// inline, or via a SQL query resolved against the upstream data API.
type recommendRequest struct {
	Records []domain.RawRecord `json:"records"`
	Persona string             `json:"profession"`
	Intent  string             `json:"intent"`
	Query   string             `json:"query,omitempty"`
	Limit   int                `json:"limit,omitempty"`
}

// Server exposes the recommendation API plus health, readiness, and
// metrics endpoints.
type Server struct {
	httpServer  *http.Server
	recommender Recommender
	fetcher     DatasetFetcher
	logger      *slog.Logger
}

// NewServer creates the HTTP server. fetcher may be nil, in which case
// query-based requests are rejected.
func NewServer(addr string, rec Recommender, fetcher DatasetFetcher, ready ReadinessChecker, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		recommender: rec,
		fetcher:     fetcher,
		logger:      logger,
	}

	mux.HandleFunc("POST /v1/recommend", s.handleRecommend)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	var req recommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}

	records := req.Records
	if req.Query != "" {
		if s.fetcher == nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": "query-based requests are disabled: no data API configured",
			})
			return
		}
		fetched, err := s.fetcher.Fetch(r.Context(), req.Query, req.Limit)
		if err != nil {
			s.logger.Error("data api fetch failed", "error", err)
			writeJSON(w, http.StatusBadGateway, map[string]string{"error": "upstream data fetch failed"})
			return
		}
		records = append(records, fetched...)
	}

	rec := s.recommender.Recommend(r.Context(), engine.Request{
		Records: records,
		Persona: req.Persona,
		Intent:  req.Intent,
	})
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
