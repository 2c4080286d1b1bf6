// Package httpadapter serves feed searches and operational endpoints over HTTP.
package httpadapter

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/quake-feed-search/internal/pipeline"
	"github.com/couchcryptid/quake-feed-search/internal/query"
	"github.com/couchcryptid/quake-feed-search/internal/report"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SearchRunner runs one search over the feed directory.
type SearchRunner interface {
	Search(ctx context.Context, m pipeline.Matcher) (pipeline.Result, error)
}

// Server exposes search, health, readiness, and metrics HTTP endpoints.
type Server struct {
	httpServer *http.Server
	searcher   SearchRunner
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /search, /healthz, /readyz, and /metrics routes.
func NewServer(addr string, searcher SearchRunner, ready sharedobs.ReadinessChecker, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		searcher: searcher,
		logger:   logger,
	}

	mux.HandleFunc("GET /search", s.handleSearch)
	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
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

// handleSearch renders the text report for the criteria in the query string.
// Parameter names mirror the CLI flags with underscores.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q, err := query.Build(paramsFromURL(r.URL.Query()))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, query.ErrInvalidCriterion) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}

	res, err := s.searcher.Search(r.Context(), q)
	if err != nil {
		s.logger.Error("search failed", "error", err, "query", q.Describe())
		http.Error(w, "search failed", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := report.Render(&buf, q.Describe(), res.Groups); err != nil {
		s.logger.Error("render report failed", "error", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}

	h := w.Header()
	h.Set("Content-Type", "text/plain; charset=utf-8")
	h.Set("X-Files-Scanned", strconv.Itoa(res.Stats.FilesScanned))
	h.Set("X-Files-Skipped", strconv.Itoa(res.Stats.FilesSkipped))
	h.Set("X-Entries-Skipped", strconv.Itoa(res.Stats.EntriesSkipped))
	h.Set("X-Matches", strconv.Itoa(res.Stats.Matched))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func paramsFromURL(v url.Values) query.Params {
	return query.Params{
		DateFrom:  v.Get("date_from"),
		DateTo:    v.Get("date_to"),
		TimeFrom:  v.Get("time_from"),
		TimeTo:    v.Get("time_to"),
		Date:      v.Get("date"),
		Time:      v.Get("time"),
		DateTime:  v.Get("datetime"),
		Magnitude: v.Get("magnitude"),
		Bucket:    v.Get("bucket"),
		Place:     v.Get("place"),
	}
}
