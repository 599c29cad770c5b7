package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Links holds the link generation collectors. Cache and resolution counters
// carry a "site" label; curry them per site before handing them to a builder.
type Links struct {
	CacheTotal    *prometheus.CounterVec
	Resolutions   *prometheus.CounterVec
	BuildsTotal   *prometheus.CounterVec
	BuildDuration *prometheus.HistogramVec
}

// NewLinks creates the link generation collectors and registers them on reg.
// A nil reg leaves them unregistered.
func NewLinks(reg prometheus.Registerer) *Links {
	m := &Links{
		CacheTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "facetlinks",
				Name:      "route_cache_total",
				Help:      "Per-result route cache lookups",
			},
			[]string{"site", "result"}, // "hit" / "miss"
		),
		Resolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "facetlinks",
				Name:      "resolutions_total",
				Help:      "URL resolutions by route kind",
			},
			[]string{"site", "route"}, // "main" / "dedicated"
		),
		BuildsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "facetlinks",
				Name:      "link_sets_total",
				Help:      "Link sets built",
			},
			[]string{"site", "status"},
		),
		BuildDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "facetlinks",
				Name:      "link_set_duration_seconds",
				Help:      "Link set build duration in seconds",
				Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
			},
			[]string{"site"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.CacheTotal, m.Resolutions, m.BuildsTotal, m.BuildDuration)
	}
	return m
}

// ForSite returns the cache and resolution counters curried for site.
func (m *Links) ForSite(site string) (cacheTotal, resolutions *prometheus.CounterVec) {
	labels := prometheus.Labels{"site": site}
	return m.CacheTotal.MustCurryWith(labels), m.Resolutions.MustCurryWith(labels)
}

// ObserveBuild records one link set build.
func (m *Links) ObserveBuild(site string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.BuildsTotal.WithLabelValues(site, status).Inc()
	m.BuildDuration.WithLabelValues(site).Observe(time.Since(start).Seconds())
}
