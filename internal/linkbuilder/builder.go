// Package linkbuilder derives canonical facet-navigation URLs from a search result.
//
// A Builder holds the stateless configuration: the route generator and the
// routes dictionary. Builder.For binds it to one result and returns a Links
// handle that owns the per-result route cache.
package linkbuilder

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/facetlinks/internal/domain"
	"github.com/kailas-cloud/facetlinks/internal/domain/search/result"
	"github.com/kailas-cloud/facetlinks/internal/domain/urlparams"
)

// RouteGenerator is the route template service links are generated with.
// Generated URLs must not be percent-encoded.
type RouteGenerator interface {
	// Template returns the route path with {name} placeholders.
	Template(route string, absolute bool) (string, error)
	// Generate fills placeholders from args and appends the rest as query string.
	Generate(route string, args *urlparams.Params, absolute bool) (string, error)
	// Accepts reports whether value may fill the placeholder param of route.
	Accepts(route, param, value string) bool
}

// Builder creates per-result link handles.
type Builder struct {
	routes      RouteGenerator
	dict        RoutesDictionary
	logger      *zap.Logger
	cacheTotal  *prometheus.CounterVec
	resolutions *prometheus.CounterVec
}

// New creates a link builder. logger may be nil.
func New(routes RouteGenerator, dict RoutesDictionary, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{routes: routes, dict: dict, logger: logger}
}

// WithMetrics sets counters for cache lookups (label "result": hit/miss)
// and resolutions (label "route": main/dedicated).
func (b *Builder) WithMetrics(cacheTotal, resolutions *prometheus.CounterVec) *Builder {
	b.cacheTotal = cacheTotal
	b.resolutions = resolutions
	return b
}

// Dictionary returns the routes dictionary.
func (b *Builder) Dictionary() RoutesDictionary { return b.dict }

// Validate checks that the dictionary has a main route and that every route
// it names is known to the generator.
func (b *Builder) Validate() error {
	if _, ok := b.dict.Main(); !ok {
		return domain.ErrMissingMainRoute
	}
	var errs []error
	for _, e := range b.dict.entries {
		if _, err := b.routes.Template(e.Route, false); err != nil {
			errs = append(errs, fmt.Errorf("dictionary field %q: %w", e.Field, err))
		}
	}
	return errors.Join(errs...)
}

// For binds the builder to a result. The returned handle caches per-field
// templates for the lifetime of res and is safe for concurrent use.
func (b *Builder) For(res *result.Result) *Links {
	return &Links{b: b, res: res, cache: newRouteCache()}
}

func (b *Builder) observeCache(outcome string) {
	if b.cacheTotal != nil {
		b.cacheTotal.WithLabelValues(outcome).Inc()
	}
}

func (b *Builder) observeResolution(route string) {
	if b.resolutions != nil {
		b.resolutions.WithLabelValues(route).Inc()
	}
}
