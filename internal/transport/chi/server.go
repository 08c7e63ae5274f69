package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/pinsearch/internal/domain"
	dombatch "github.com/kailas-cloud/pinsearch/internal/domain/batch"
	"github.com/kailas-cloud/pinsearch/internal/domain/document"
	"github.com/kailas-cloud/pinsearch/internal/domain/page"
	healthuc "github.com/kailas-cloud/pinsearch/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/pinsearch/internal/usecase/ingest"
	searchuc "github.com/kailas-cloud/pinsearch/internal/usecase/search"
)

// DefaultMaxBodyBytes caps request bodies when WithMaxBodyBytes is not used.
const DefaultMaxBodyBytes = 64 << 20

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the search, ingest and health endpoints.
type Server struct {
	search        *searchuc.Service
	ingest        *ingestuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	ingestIndex   string
	maxBodyBytes  int64
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	search *searchuc.Service,
	ingest *ingestuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search:       search,
		ingest:       ingest,
		health:       health,
		logger:       logger,
		ingestIndex:  domain.DefaultIndex,
		maxBodyBytes: DefaultMaxBodyBytes,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrNoIngestSource, http.StatusBadRequest, ErrorCodeNoIngestSource),
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, ErrorCodeValidationFailed),
		sentinelHandler(domain.ErrIndexNotFound, http.StatusNotFound, ErrorCodeIndexNotFound),
		sentinelHandler(domain.ErrBackendUnavailable, http.StatusBadGateway, ErrorCodeBackendUnavailable),
		sentinelHandler(domain.ErrNotImplemented, http.StatusNotImplemented, ErrorCodeNotImplemented),
	}
	return s
}

// WithIngestIndex sets the index used when POST /ingest names none.
func (s *Server) WithIngestIndex(index string) *Server {
	if index != "" {
		s.ingestIndex = index
	}
	return s
}

// WithMaxBodyBytes caps request body size.
func (s *Server) WithMaxBodyBytes(n int64) *Server {
	if n > 0 {
		s.maxBodyBytes = n
	}
	return s
}

// Routes registers the API on r.
func (s *Server) Routes(r chi.Router) {
	r.Post("/search", s.Search)
	r.Post("/ingest", s.Ingest)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, ErrorCodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrorCodeMethodNotAllowed, "method not allowed")
	})
}

// Search handles POST /search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	body := http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	size, number := page.DefaultSize, page.DefaultNumber
	if req.Size != nil {
		size = *req.Size
	}
	if req.PageNumber != nil {
		number = *req.PageNumber
	}
	pr, err := page.NewRequest(req.SearchTerm, req.Pinned, size, number)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	p, err := s.search.Search(r.Context(), &pr)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, pageToResponse(p))
}

// Ingest handles POST /ingest?index=<name>. An empty body falls back to the
// configured data file.
func (s *Server) Ingest(w http.ResponseWriter, r *http.Request) {
	index := r.URL.Query().Get("index")
	if index == "" {
		index = s.ingestIndex
	}

	body := http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	summary, err := s.ingest.Ingest(r.Context(), index, body)
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			writeError(w, http.StatusRequestEntityTooLarge, ErrorCodeBadRequest, "request body too large")
			return
		}
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, summaryToResponse(summary))
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

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a client-safe message. Validation errors carry
// caller input only and are returned verbatim; backend errors collapse to
// their sentinel text.
func safeDomainMessage(err error) string {
	if errors.Is(err, domain.ErrInvalidRequest) {
		return err.Error()
	}
	sentinels := []error{
		domain.ErrNoIngestSource,
		domain.ErrIndexNotFound,
		domain.ErrBackendUnavailable,
		domain.ErrNotImplemented,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
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
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}

func pageToResponse(p *page.Page) SearchResponse {
	results := p.Results
	if results == nil {
		results = []document.Document{}
	}
	return SearchResponse{
		PageNumber: p.Number,
		Size:       p.Size,
		Results:    results,
		Count:      p.Count(),
	}
}

func summaryToResponse(s *dombatch.Summary) IngestResponse {
	failed := s.Failed()
	resp := IngestResponse{
		Ingested: s.Ingested,
		Errors:   len(failed) > 0,
		Skipped:  s.Skipped,
		Failed:   make([]IngestFailure, len(failed)),
	}
	for i, r := range failed {
		f := IngestFailure{Line: r.Line(), ID: r.ID()}
		if err := r.Err(); err != nil {
			f.Error = err.Error()
		}
		resp.Failed[i] = f
	}
	return resp
}
