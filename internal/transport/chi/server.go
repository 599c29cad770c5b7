// Package chi is the HTTP transport of the link generation API.
package chi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/facetlinks/internal/domain"
	"github.com/kailas-cloud/facetlinks/internal/domain/search/result"
	"github.com/kailas-cloud/facetlinks/internal/logger"
	healthuc "github.com/kailas-cloud/facetlinks/internal/usecase/health"
	linksuc "github.com/kailas-cloud/facetlinks/internal/usecase/links"
	"github.com/kailas-cloud/facetlinks/internal/version"
)

// LinkSetBuilder builds the link set of a result.
type LinkSetBuilder interface {
	Build(ctx context.Context, res *result.Result) (linksuc.LinkSet, error)
}

// ItemWriter turns request hit documents into hits.
type ItemWriter interface {
	ToItems(objects []any) ([]result.Hit, error)
}

// Site is everything the API needs to serve one site.
type Site struct {
	Links LinkSetBuilder
	// Items may be nil when the site accepts no hits.
	Items ItemWriter
}

// SiteRegistry looks sites up by name.
type SiteRegistry interface {
	Get(name string) (Site, bool)
}

// HealthChecker reports readiness.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// BuildObserver records link set builds.
type BuildObserver interface {
	ObserveBuild(site string, start time.Time, err error)
}

// Server serves the link generation API.
type Server struct {
	sites         SiteRegistry
	defaultSite   string
	health        HealthChecker
	observer      BuildObserver
	maxBodyBytes  int64
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// Option configures a Server.
type Option func(*Server)

// WithObserver records every link set build.
func WithObserver(o BuildObserver) Option {
	return func(s *Server) { s.observer = o }
}

// WithMaxBodyBytes caps request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) { s.maxBodyBytes = n }
}

// NewServer creates an HTTP API server. defaultSite serves /api/v1/links.
func NewServer(
	sites SiteRegistry,
	defaultSite string,
	health HealthChecker,
	logger *zap.Logger,
	opts ...Option,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		sites:         sites,
		defaultSite:   defaultSite,
		health:        health,
		maxBodyBytes:  1 << 20,
		logger:        logger,
		errorHandlers: defaultErrorHandlers(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Routes mounts the API on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Get("/version", s.Version)
	r.Post("/api/v1/links", s.BuildDefaultLinks)
	r.Post("/api/v1/sites/{site}/links", s.BuildSiteLinks)
}

// BuildDefaultLinks handles POST /api/v1/links.
func (s *Server) BuildDefaultLinks(w http.ResponseWriter, r *http.Request) {
	s.buildLinks(w, r, s.defaultSite)
}

// BuildSiteLinks handles POST /api/v1/sites/{site}/links.
func (s *Server) BuildSiteLinks(w http.ResponseWriter, r *http.Request) {
	s.buildLinks(w, r, chi.URLParam(r, "site"))
}

func (s *Server) buildLinks(w http.ResponseWriter, r *http.Request, siteName string) {
	site, ok := s.sites.Get(siteName)
	if !ok {
		s.handleDomainError(w, fmt.Errorf("%w: %q", domain.ErrUnknownSite, siteName))
		return
	}

	var req LinksRequest
	body := http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	res, err := resultFromDTO(req, site.Items)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	ctx := logger.With(r.Context(), zap.String("site", siteName), zap.String("result_id", res.ID()))
	start := time.Now()
	set, err := site.Links.Build(ctx, res)
	if s.observer != nil {
		s.observer.ObserveBuild(siteName, start, err)
	}
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, linkSetToDTO(set))
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

	writeJSON(w, httpStatus, map[string]any{
		"status": string(report.Status),
		"checks": checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// Version handles GET /version.
func (s *Server) Version(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, version.Get())
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
