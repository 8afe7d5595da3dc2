// Package chi serves the catalog API over HTTP.
package chi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/cardex/internal/domain"
	"github.com/kailas-cloud/cardex/internal/domain/search/request"
	"github.com/kailas-cloud/cardex/internal/logger"
	"github.com/kailas-cloud/cardex/internal/repository/resource"
	"github.com/kailas-cloud/cardex/internal/repository/stringset"
	"github.com/kailas-cloud/cardex/internal/version"
	cataloguc "github.com/kailas-cloud/cardex/internal/usecase/catalog"
	healthuc "github.com/kailas-cloud/cardex/internal/usecase/health"
)

// PartialHeader is set on search responses cut short by the search timeout.
const PartialHeader = "X-Search-Partial"

// Server holds the HTTP handlers of the catalog API.
type Server struct {
	catalog       *cataloguc.Service
	health        *healthuc.Service
	maxPageSize   int
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. maxPageSize bounds and defaults
// the pageSize parameter.
func NewServer(
	catalog *cataloguc.Service,
	health *healthuc.Service,
	maxPageSize int,
	logger *zap.Logger,
) *Server {
	if maxPageSize <= 0 {
		maxPageSize = request.DefaultMaxPageSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		catalog:     catalog,
		health:      health,
		maxPageSize: maxPageSize,
		logger:      logger,
		errorHandlers: []errorHandler{
			sentinelHandler(domain.ErrNotFound, http.StatusNotFound, msgNotFound),
			sentinelHandler(domain.ErrUnknownResource, http.StatusNotFound, msgNotFound),
			sentinelHandler(domain.ErrBadRequest, http.StatusBadRequest, msgBadRequest),
		},
	}
}

// Register mounts every route on r.
func (s *Server) Register(r chi.Router) {
	r.Get("/cards/{id}", s.getRecord(resource.Cards))
	r.Get("/cards", s.searchRecords(resource.Cards))
	r.Get("/sets/{id}", s.getRecord(resource.Sets))
	r.Get("/sets", s.searchRecords(resource.Sets))
	r.Get("/types", s.values(stringset.Types))
	r.Get("/subtypes", s.values(stringset.Subtypes))
	r.Get("/supertypes", s.values(stringset.Supertypes))
	r.Get("/rarities", s.values(stringset.Rarities))
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, msgNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, msgMethodNotAllowed)
	})
}

type dataResponse struct {
	Data any `json:"data"`
}

// getRecord handles GET /{resource}/{id}.
func (s *Server) getRecord(res string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r = r.WithContext(logger.With(r.Context(), zap.String("resource", res)))
		req, err := request.NewGet(chi.URLParam(r, "id"), r.URL.Query()["select"])
		if err != nil {
			s.handleDomainError(w, r, err)
			return
		}
		rec, err := s.catalog.Get(r.Context(), res, &req)
		if err != nil {
			s.handleDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, dataResponse{Data: rec})
	}
}

// searchRecords handles GET /{resource}.
func (s *Server) searchRecords(res string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r = r.WithContext(logger.With(r.Context(), zap.String("resource", res)))
		params := r.URL.Query()
		page, err := intParam(params.Get("page"), 1)
		if err != nil {
			writeError(w, http.StatusBadRequest, msgBadRequest)
			return
		}
		pageSize, err := intParam(params.Get("pageSize"), s.maxPageSize)
		if err != nil {
			writeError(w, http.StatusBadRequest, msgBadRequest)
			return
		}

		req, err := request.New(params.Get("q"), page, pageSize, s.maxPageSize, params["orderBy"], params["select"])
		if err != nil {
			s.handleDomainError(w, r, err)
			return
		}
		p, err := s.catalog.Search(r.Context(), res, &req)
		if err != nil {
			s.handleDomainError(w, r, err)
			return
		}
		if p.Partial {
			w.Header().Set(PartialHeader, "true")
		}
		writeJSON(w, http.StatusOK, p)
	}
}

// values handles the enumerated value routes.
func (s *Server) values(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := s.catalog.Values(name)
		if err != nil {
			s.handleDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, dataResponse{Data: v})
	}
}

type healthResponse struct {
	Status  healthuc.Status                  `json:"status"`
	Checks  map[string]healthuc.CheckResult `json:"checks"`
	Version string                           `json:"version"`
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, healthResponse{
		Status:  report.Status,
		Checks:  report.Checks,
		Version: version.String(),
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())
	for _, h := range s.errorHandlers {
		if h(w, err) {
			log.Debug("Request rejected", zap.Error(err))
			return
		}
	}
	s.logger.Error("Internal error",
		zap.String("request_id", chiMiddleware.GetReqID(r.Context())),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	writeError(w, http.StatusInternalServerError, msgServerError)
}

func intParam(v string, def int) (int, error) {
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, err
	}
	return n, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}
