package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	jsoniter "github.com/json-iterator/go"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/facetlinks/internal/config"
	"github.com/kailas-cloud/facetlinks/internal/linkbuilder"
	logpkg "github.com/kailas-cloud/facetlinks/internal/logger"
	"github.com/kailas-cloud/facetlinks/internal/metrics"
	"github.com/kailas-cloud/facetlinks/internal/repository/bucket"
	"github.com/kailas-cloud/facetlinks/internal/routing"
	"github.com/kailas-cloud/facetlinks/internal/transformer"
	chiTransport "github.com/kailas-cloud/facetlinks/internal/transport/chi"
	healthuc "github.com/kailas-cloud/facetlinks/internal/usecase/health"
	linksuc "github.com/kailas-cloud/facetlinks/internal/usecase/links"
	"github.com/kailas-cloud/facetlinks/internal/version"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting facetlinks API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("default_site", cfg.DefaultSite),
		zap.Int("sites", len(cfg.Sites)),
	)

	// Register metrics explicitly (no init())
	linkMetrics := metrics.NewLinks(prometheus.DefaultRegisterer)
	httpMetrics := metrics.NewHTTP(prometheus.DefaultRegisterer)

	opts := linksOptions(cfg.Links)
	sites := bucket.New[chiTransport.Site]()
	validators := make(map[string]healthuc.RouteValidator, len(cfg.Sites))
	for name, sc := range cfg.Sites {
		site, builder, err := buildSite(name, sc, opts, linkMetrics, logger)
		if err != nil {
			logger.Fatal("Failed to build site", zap.String("site", name), zap.Error(err))
		}
		sites.Add(name, site)
		validators[name] = builder
		logger.Info("Site ready",
			zap.String("site", name),
			zap.String("base_url", sc.BaseURL),
			zap.Int("routes", len(sc.Routes)),
		)
	}

	// Routes are validated up front; a site with a broken dictionary never serves.
	healthSvc := healthuc.New(validators)
	if report := healthSvc.Check(context.Background()); report.Status != healthuc.Healthy {
		logger.Fatal("Routing validation failed", zap.Any("checks", report.Checks))
	}

	server := chiTransport.NewServer(sites, cfg.DefaultSite, healthSvc, logger,
		chiTransport.WithObserver(linkMetrics),
		chiTransport.WithMaxBodyBytes(int64(cfg.HTTP.MaxBodyBytes)),
	)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(httpMetrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

func linksOptions(cfg config.LinksConfig) linksuc.Options {
	opts := linksuc.Options{PageWindow: cfg.PageWindow}
	for _, s := range cfg.SortOptions {
		opts.Sorts = append(opts.Sorts, linksuc.SortOption{
			Field:     s.Field,
			Direction: s.Direction,
			Label:     s.Label,
		})
	}
	return opts
}

// buildSite assembles routes -> builder -> transformers -> link service for one site.
func buildSite(
	name string,
	sc config.SiteConfig,
	opts linksuc.Options,
	m *metrics.Links,
	logger *zap.Logger,
) (chiTransport.Site, *linkbuilder.Builder, error) {
	routes, err := routing.NewTable(sc.BaseURL, sc.Routes)
	if err != nil {
		return chiTransport.Site{}, nil, fmt.Errorf("routes: %w", err)
	}

	entries := make([]linkbuilder.RouteEntry, 0, len(sc.Dictionary))
	for _, e := range sc.Dictionary {
		entries = append(entries, linkbuilder.RouteEntry{Field: e.Field, Route: e.Route})
	}
	dict, err := linkbuilder.NewRoutesDictionary(entries...)
	if err != nil {
		return chiTransport.Site{}, nil, fmt.Errorf("dictionary: %w", err)
	}

	siteLogger := logger.With(zap.String("site", name))
	builder := linkbuilder.New(routes, dict, siteLogger).WithMetrics(m.ForSite(name))

	items := transformer.NewChain()
	items.AddWriteTransformer(transformer.DocumentWriter{DefaultType: defaultItemType(sc.Items)})
	for _, it := range sc.Items {
		items.AddReadTransformer(transformer.NewLinkReader(routes, it.Type, it.Route))
	}
	items.OnItemTransformed(func(t transformer.ItemTransformed) {
		siteLogger.Debug("item transformed", zap.String("id", t.Item.ID()))
	})

	svc := linksuc.New(builder, items, opts)
	return chiTransport.Site{Links: svc, Items: items}, builder, nil
}

// defaultItemType is the type given to documents without one: the only
// configured item type, or none.
func defaultItemType(items []config.ItemRouteConfig) string {
	if len(items) == 1 {
		return items[0].Type
	}
	return ""
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{
						Code:    chiTransport.ErrorCodeInternalError,
						Message: "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
