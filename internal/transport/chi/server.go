package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/hybridqa/internal/domain"
	logpkg "github.com/kailas-cloud/hybridqa/internal/logger"
	healthuc "github.com/kailas-cloud/hybridqa/internal/usecase/health"
	queryuc "github.com/kailas-cloud/hybridqa/internal/usecase/query"
	searchuc "github.com/kailas-cloud/hybridqa/internal/usecase/search"
)

// maxBodyBytes caps request bodies for the JSON endpoints.
const maxBodyBytes = 1 << 20

// SearchService runs the recipe path.
type SearchService interface {
	Search(ctx context.Context, query string) (searchuc.Response, error)
}

// QueryService runs the document question-answering path.
type QueryService interface {
	Answer(ctx context.Context, q string) (queryuc.Answer, error)
}

// HealthService reports component health.
type HealthService interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, fallback string) bool

// Server serves the HTTP API.
type Server struct {
	search   SearchService
	query    QueryService
	health   HealthService
	validate *validator.Validate
	logger   *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(search SearchService, query QueryService, health HealthService, logger *zap.Logger) *Server {
	return &Server{
		search:   search,
		query:    query,
		health:   health,
		validate: newValidator(),
		logger:   logger,
	}
}

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// SearchRecipes handles POST /search.
func (s *Server) SearchRecipes(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if !s.decode(w, r, &req) {
		return
	}

	ctx, log := s.withQueryLogger(r.Context(), req.Query)
	ctx, usage := domain.NewContextWithUsage(ctx)
	resp, err := s.search.Search(ctx, req.Query)
	if err != nil {
		handleDomainError(w, log, err, "Hybrid search failed")
		return
	}

	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusOK, searchResponseFromDomain(resp))
}

// AnswerQuery handles POST /query.
func (s *Server) AnswerQuery(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if !s.decode(w, r, &req) {
		return
	}

	ctx, log := s.withQueryLogger(r.Context(), req.Query)
	ctx, usage := domain.NewContextWithUsage(ctx)
	ans, err := s.query.Answer(ctx, req.Query)
	if err != nil {
		handleDomainError(w, log, err, "Internal server error.")
		return
	}

	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusOK, answerResponseFromDomain(ans))
}

// HealthCheck handles GET /health. It always answers 200 "ok"; checks carry the
// dependency results.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())
	if report.Status != healthuc.Healthy {
		s.logger.Warn("health degraded", zap.Strings("failed", report.Failed()))
	}

	writeJSON(w, http.StatusOK, HealthResponse{
		Status: string(healthuc.Healthy),
		Checks: checksFromReport(report),
	})
}

// ReadinessCheck handles GET /ready: 503 until every dependency passes.
func (s *Server) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checksFromReport(report),
	})
}

func checksFromReport(report healthuc.Report) map[string]string {
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return checks
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// decode reads and validates a JSON body. It writes the 400 itself and returns false on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err), "")
		return false
	}
	return true
}

// validationMessage turns validator output into a client message.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		switch fe.Tag() {
		case "required":
			return `Field "` + fe.Field() + `" is required`
		case "max":
			return `Field "` + fe.Field() + `" is too long`
		}
		return `Field "` + fe.Field() + `" is invalid`
	}
	return "Invalid request body"
}

// withQueryLogger tags the request logger with the query so every stage logs it.
func (s *Server) withQueryLogger(ctx context.Context, query string) (context.Context, *zap.Logger) {
	log := s.logger.With(
		zap.String("request_id", chiMiddleware.GetReqID(ctx)),
		zap.String("query", query),
	)
	return logpkg.ContextWithLogger(ctx, log), log
}

func setEmbeddingHeaders(w http.ResponseWriter, usage *domain.EmbeddingUsage) {
	if usage != nil && usage.Used {
		w.Header().Set("X-Embedding-Tokens", strconv.Itoa(usage.TotalTokens))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, ErrorResponse{
		Error:   message,
		Details: details,
	})
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, message string) errorHandler {
	return func(w http.ResponseWriter, err error, _ string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, message, err.Error())
		return true
	}
}

// validationHandler echoes the validation reason back to the client.
func validationHandler(w http.ResponseWriter, err error, _ string) bool {
	if !errors.Is(err, domain.ErrValidation) {
		return false
	}
	writeError(w, http.StatusBadRequest, err.Error(), "")
	return true
}

var baseErrorHandlers = []errorHandler{
	validationHandler,
	sentinelHandler(domain.ErrServiceNotReady, http.StatusServiceUnavailable, "Service not ready"),
}

// handleDomainError maps err onto a response. Anything unmatched becomes a 500
// carrying fallback and the error text.
func handleDomainError(w http.ResponseWriter, log *zap.Logger, err error, fallback string) {
	for _, h := range baseErrorHandlers {
		if h(w, err, fallback) {
			log.Warn("domain error", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, fallback, err.Error())
}
