// Package server exposes a Database over HTTP with JSON bodies.
//
//	GET    /collections                  list collection names
//	POST   /collections                  {"name", "dimension"}
//	GET    /collections/{name}           stats and source counts
//	DELETE /collections/{name}
//	POST   /collections/{name}/vectors   {"vectors", "values", "source"}
//	POST   /collections/{name}/index     rebuild the index
//	POST   /collections/{name}/query     {"vector", "k", "sources"}
//	GET    /collections/{name}/docs      source tag per vector
//	GET    /metrics                      Prometheus, when configured
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/hupe1980/vecdb"
	"github.com/hupe1980/vecdb/internal/config"
)

// Server routes HTTP requests to a Database.
type Server struct {
	db      *vecdb.Database
	cfg     config.Server
	logger  *vecdb.Logger
	limiter *rate.Limiter
	mux     *http.ServeMux
}

// Option configures a Server.
type Option func(*Server)

// WithMetricsHandler serves h under /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.mux.Handle("GET /metrics", h)
	}
}

// New creates a Server for db.
func New(db *vecdb.Database, cfg config.Server, logger *vecdb.Logger, optFns ...Option) *Server {
	if logger == nil {
		logger = vecdb.NoopLogger()
	}

	s := &Server{
		db:     db,
		cfg:    cfg,
		logger: logger,
		mux:    http.NewServeMux(),
	}

	if cfg.RateLimit > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), max(cfg.RateBurst, 1))
	}

	s.setupRoutes()

	for _, fn := range optFns {
		fn(s)
	}

	return s
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("GET /collections", s.handleList)
	s.mux.HandleFunc("POST /collections", s.handleCreate)
	s.mux.HandleFunc("GET /collections/{name}", s.handleStats)
	s.mux.HandleFunc("DELETE /collections/{name}", s.handleDelete)
	s.mux.HandleFunc("POST /collections/{name}/vectors", s.handleInsert)
	s.mux.HandleFunc("POST /collections/{name}/index", s.handleBuild)
	s.mux.HandleFunc("POST /collections/{name}/query", s.handleQuery)
	s.mux.HandleFunc("GET /collections/{name}/docs", s.handleDocs)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

	if s.limiter != nil && !s.limiter.Allow() {
		writeError(rec, http.StatusTooManyRequests, errors.New("rate limit exceeded"))
	} else {
		if s.cfg.MaxBodyBytes > 0 && r.Body != nil {
			r.Body = http.MaxBytesReader(rec, r.Body, s.cfg.MaxBodyBytes)
		}
		s.mux.ServeHTTP(rec, r)
	}

	s.logger.DebugContext(r.Context(), "http request",
		"method", r.Method,
		"path", r.URL.Path,
		"status", rec.status,
		"duration", time.Since(start),
	)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

type createRequest struct {
	Name      string `json:"name"`
	Dimension int    `json:"dimension"`
}

type insertRequest struct {
	Vectors [][]float32 `json:"vectors"`
	Values  []string    `json:"values"`
	Source  string      `json:"source"`
}

type queryRequest struct {
	Vector []float32 `json:"vector"`
	K      int       `json:"k"`

	// Sources restricts the query to vectors from these source tags.
	// Omitted means no restriction.
	Sources []string `json:"sources,omitempty"`
}

type statsResponse struct {
	vecdb.CollectionStats
	Sources map[string]uint64 `json:"sources"`
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{
		"collections": s.db.ListCollections(r.Context()),
	})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if !decode(w, r, &req) {
		return
	}

	if err := s.db.CreateCollection(r.Context(), req.Name, req.Dimension); err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	writeJSON(w, http.StatusCreated, req)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	st, err := s.db.Stats(r.Context(), name)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	sources, err := s.db.Sources(r.Context(), name)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	writeJSON(w, http.StatusOK, statsResponse{CollectionStats: st, Sources: sources})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.db.DeleteCollection(r.Context(), r.PathValue("name")); err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleInsert(w http.ResponseWriter, r *http.Request) {
	var req insertRequest
	if !decode(w, r, &req) {
		return
	}

	if err := s.db.Insert(r.Context(), r.PathValue("name"), req.Vectors, req.Values, req.Source); err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"inserted": len(req.Vectors)})
}

func (s *Server) handleBuild(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	if err := s.db.BuildIndex(r.Context(), name); err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	st, err := s.db.Stats(r.Context(), name)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if !decode(w, r, &req) {
		return
	}

	var (
		results []vecdb.Result
		err     error
	)
	if req.Sources != nil {
		results, err = s.db.QueryFiltered(r.Context(), r.PathValue("name"), req.Vector, req.K, req.Sources)
	} else {
		results, err = s.db.Query(r.Context(), r.PathValue("name"), req.Vector, req.K)
	}
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	writeJSON(w, http.StatusOK, map[string][]vecdb.Result{"results": results})
}

func (s *Server) handleDocs(w http.ResponseWriter, r *http.Request) {
	docs, err := s.db.GetDocs(r.Context(), r.PathValue("name"))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	writeJSON(w, http.StatusOK, map[string][]string{"docs": docs})
}

// statusFor maps database errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, vecdb.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, vecdb.ErrAlreadyExists), errors.Is(err, vecdb.ErrIndexNotBuilt):
		return http.StatusConflict
	case errors.Is(err, vecdb.ErrDimensionMismatch),
		errors.Is(err, vecdb.ErrInvalidDimension),
		errors.Is(err, vecdb.ErrInvalidK),
		errors.Is(err, vecdb.ErrInvalidName):
		return http.StatusBadRequest
	case errors.Is(err, vecdb.ErrClosed):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		status := http.StatusBadRequest
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			status = http.StatusRequestEntityTooLarge
		}
		writeError(w, status, err)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
