// internal/api/server.go

// Package api serves searches, query validation, provider diagnostics and
// the profile directory over HTTP, next to the health and metrics
// endpoints.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"people-search/internal/common/config"
	"people-search/internal/common/logger"
	"people-search/internal/common/metrics"
	"people-search/internal/common/validation"
	"people-search/internal/models"
	"people-search/internal/search/diagnostics"
	"people-search/internal/search/history"
	"people-search/internal/search/profiles"
)

// SchemaTaskType names the registry entry request bodies are checked
// against.
const SchemaTaskType = "http-search-request"

const maxBodyBytes = 1 << 20

// Searcher runs one search. *orchestrator.Orchestrator satisfies it.
type Searcher interface {
	PerformSearch(ctx context.Context, searchID string, q models.Query) (*models.EnhancedResult, error)
}

// HistoryReader lists recent searches. *history.PostgresLogger satisfies it.
type HistoryReader interface {
	Recent(ctx context.Context, limit int) ([]history.Record, error)
}

// Directory answers profile lookups. *profiles.Directory satisfies it.
type Directory interface {
	Lookup(ctx context.Context, searchType models.SearchType, q models.QueryFields) (*profiles.LookupResult, error)
	Profile(ctx context.Context, id string) (*profiles.Profile, error)
}

// Options wires the server. Only Searcher and Logger are required.
type Options struct {
	Searcher    Searcher
	Schema      *validation.SchemaValidator
	Diagnostics *diagnostics.Runner
	History     HistoryReader
	Directory   Directory
	// Ready reports whether backing stores are reachable; nil means always
	// ready.
	Ready  func(ctx context.Context) error
	Logger logger.Logger
}

type Server struct {
	searcher    Searcher
	schema      *validation.SchemaValidator
	diagnostics *diagnostics.Runner
	history     HistoryReader
	directory   Directory
	ready       func(ctx context.Context) error
	log         logger.Logger
	started     time.Time
}

func NewServer(opts Options) *Server {
	return &Server{
		searcher:    opts.Searcher,
		schema:      opts.Schema,
		diagnostics: opts.Diagnostics,
		history:     opts.History,
		directory:   opts.Directory,
		ready:       opts.Ready,
		log:         opts.Logger.WithFields(map[string]interface{}{"component": "api"}),
		started:     time.Now(),
	}
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.route(mux, "POST /api/search", "search", s.handleSearch)
	s.route(mux, "POST /api/validate", "validate", s.handleValidate)
	s.route(mux, "GET /api/diagnostics", "diagnostics", s.handleDiagnostics)
	s.route(mux, "GET /api/history", "history", s.handleHistory)
	s.route(mux, "POST /api/profiles/search", "profiles_search", s.handleDirectoryLookup)
	s.route(mux, "GET /api/profile/{id}", "profile", s.handleProfile)
	s.route(mux, "GET /health", "health", s.handleHealth)
	s.route(mux, "GET /ready", "ready", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())
	return mux
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context, cfg config.ServerConfig) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.Handler(),
		ReadTimeout:  config.GetDuration(cfg.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.WriteTimeout),
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("HTTP server listening", map[string]interface{}{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	s.log.Info("HTTP server stopped", nil)
	return nil
}

func (s *Server) route(mux *http.ServeMux, pattern, name string, h http.HandlerFunc) {
	mux.Handle(pattern, s.instrument(name, h))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) instrument(name string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		elapsed := time.Since(start)
		metrics.HTTPRequests.WithLabelValues(name, strconv.Itoa(rec.status)).Inc()
		metrics.HTTPDuration.WithLabelValues(name).Observe(elapsed.Seconds())
		s.log.Debug("request handled", map[string]interface{}{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     rec.status,
			"durationMs": elapsed.Milliseconds(),
		})
	})
}
