// Package chi exposes the query engine as a JSON HTTP API.
package chi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/edgarsearch/internal/domain"
	"github.com/kailas-cloud/edgarsearch/internal/domain/query"
	"github.com/kailas-cloud/edgarsearch/internal/domain/search/request"
	"github.com/kailas-cloud/edgarsearch/internal/domain/search/result"
	healthuc "github.com/kailas-cloud/edgarsearch/internal/usecase/health"
)

// maxBodyBytes caps a request body. Search requests carry document lists.
const maxBodyBytes = 1 << 20

// ErrorCode is a machine-readable error class.
type ErrorCode string

// Error codes.
const (
	CodeBadRequest     ErrorCode = "bad_request"
	CodeUnauthorized   ErrorCode = "unauthorized"
	CodeInvalidQuery   ErrorCode = "invalid_query"
	CodeNotFound       ErrorCode = "not_found"
	CodeRateLimited    ErrorCode = "rate_limited"
	CodeUpstream       ErrorCode = "upstream_error"
	CodeEmptyUniverse  ErrorCode = "empty_universe"
	CodeNotImplemented ErrorCode = "not_implemented"
	CodeInternal       ErrorCode = "internal_error"
)

type errorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

type queryRequest struct {
	Query   string         `json:"query"`
	Context *query.Context `json:"context,omitempty"`
}

type listResponse[T any] struct {
	Items []T `json:"items"`
	Count int `json:"count"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the HTTP API.
type Server struct {
	orchestrator  Orchestrator
	classifier    Classifier
	discoverer    Discoverer
	searcher      Searcher
	thematic      ThematicSearcher
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	orchestrator Orchestrator,
	classifier Classifier,
	discoverer Discoverer,
	searcher Searcher,
	thematic ThematicSearcher,
	health HealthChecker,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		orchestrator: orchestrator,
		classifier:   classifier,
		discoverer:   discoverer,
		searcher:     searcher,
		thematic:     thematic,
		health:       health,
		logger:       logger,
	}
	// Order matters: a classification error also matches ErrInvalidQuery.
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, CodeInvalidQuery),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, CodeNotFound),
		sentinelHandler(domain.ErrEmptyUniverse, http.StatusUnprocessableEntity, CodeEmptyUniverse),
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, CodeRateLimited),
		sentinelHandler(domain.ErrUpstream, http.StatusBadGateway, CodeUpstream),
		sentinelHandler(domain.ErrNotImplemented, http.StatusNotImplemented, CodeNotImplemented),
	}
	return s
}

// Mount registers the API routes on r.
func (s *Server) Mount(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/query", s.Query)
		r.Post("/classify", s.Classify)
		r.Post("/discover", s.Discover)
		r.Post("/search", s.Search)
		r.Post("/thematic", s.Thematic)
	})
}

// Query handles POST /v1/query. The envelope is returned with 200 even when
// Success is false; failures are part of the answer.
func (s *Server) Query(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if !s.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, CodeInvalidQuery, "query is required")
		return
	}
	writeJSON(w, http.StatusOK, s.orchestrator.Orchestrate(r.Context(), req.Query, req.Context))
}

// Classify handles POST /v1/classify.
func (s *Server) Classify(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if !s.decode(w, r, &req) {
		return
	}
	cls, err := s.classifier.Classify(req.Query, req.Context)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cls)
}

// Discover handles POST /v1/discover.
func (s *Server) Discover(w http.ResponseWriter, r *http.Request) {
	var req request.Discovery
	if !s.decode(w, r, &req) {
		return
	}
	docs, err := s.discoverer.Discover(r.Context(), req, nil)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeList(w, docs)
}

// Search handles POST /v1/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req request.Search
	if !s.decode(w, r, &req) {
		return
	}
	results, err := s.searcher.Search(r.Context(), req, nil)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeList(w, results)
}

// Thematic handles POST /v1/thematic.
func (s *Server) Thematic(w http.ResponseWriter, r *http.Request) {
	var req request.Thematic
	if !s.decode(w, r, &req) {
		return
	}
	out, err := s.thematic.Search(r.Context(), req, nil)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if out.Results == nil {
		out.Results = []result.Result{}
	}
	writeJSON(w, http.StatusOK, out)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func writeList[T any](w http.ResponseWriter, items []T) {
	if items == nil {
		items = []T{}
	}
	writeJSON(w, http.StatusOK, listResponse[T]{Items: items, Count: len(items)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a client-safe message without exposing upstream internals.
func safeDomainMessage(err error) string {
	var ce *domain.ClassificationError
	if errors.As(err, &ce) {
		return ce.Error()
	}
	sentinels := []error{
		domain.ErrInvalidQuery,
		domain.ErrNotFound,
		domain.ErrEmptyUniverse,
		domain.ErrRateLimited,
		domain.ErrUpstream,
		domain.ErrNotImplemented,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			// Validation details are the caller's own input; keep them.
			if s == domain.ErrInvalidQuery {
				return err.Error()
			}
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternal, "internal error")
}
