package linkbuilder

import (
	"sync/atomic"
	"testing"

	"github.com/kailas-cloud/facetlinks/internal/domain/search/filter"
	"github.com/kailas-cloud/facetlinks/internal/domain/search/query"
	"github.com/kailas-cloud/facetlinks/internal/domain/search/result"
	"github.com/kailas-cloud/facetlinks/internal/domain/urlparams"
	"github.com/kailas-cloud/facetlinks/internal/routing"
)

const base = "https://shop.example.com"

// countingRoutes wraps a route table and counts every call made to it.
type countingRoutes struct {
	inner *routing.Table
	calls atomic.Int64
}

func (c *countingRoutes) Template(route string, absolute bool) (string, error) {
	c.calls.Add(1)
	return c.inner.Template(route, absolute)
}

func (c *countingRoutes) Generate(route string, args *urlparams.Params, absolute bool) (string, error) {
	c.calls.Add(1)
	return c.inner.Generate(route, args, absolute)
}

// Accepts is not counted: it checks a value without resolving a route.
func (c *countingRoutes) Accepts(route, param, value string) bool {
	return c.inner.Accepts(route, param, value)
}

func newRoutes(t *testing.T) *countingRoutes {
	t.Helper()
	return newRoutesWith(t, "/search/color/{slug}")
}

// newRoutesWith builds the default routes with a custom by_color pattern.
func newRoutesWith(t *testing.T, colorPattern string) *countingRoutes {
	t.Helper()
	tbl, err := routing.NewTable(base, map[string]string{
		"search":   "/search",
		"by_color": colorPattern,
		"by_brand": "/brand/{slug}",
	})
	if err != nil {
		t.Fatalf("routing.NewTable: %v", err)
	}
	return &countingRoutes{inner: tbl}
}

func defaultDictionary(t *testing.T) RoutesDictionary {
	t.Helper()
	d, err := NewRoutesDictionary(
		RouteEntry{Field: "color", Route: "by_color"},
		RouteEntry{Field: "brand", Route: "by_brand"},
		RouteEntry{Field: MainField, Route: "search"},
	)
	if err != nil {
		t.Fatalf("NewRoutesDictionary: %v", err)
	}
	return d
}

type counterFixture struct {
	id, slug string
}

type aggFixture struct {
	name     string
	counters []counterFixture
}

var defaultAggs = []aggFixture{
	{"color", []counterFixture{{"c1", "red"}, {"c2", "blue"}, {"c3", "green"}}},
	{"brand", []counterFixture{{"b1", "acme"}, {"b2", "globex"}}},
	{"size", []counterFixture{{"s", "small"}, {"m", "medium"}, {"l", "large"}}},
	{"category", []counterFixture{{"cat1", "shoes"}, {"cat1a", "running"}, {"cat2", "shirts"}}},
}

// searchState describes the query a test result answers.
type searchState struct {
	filters []filter.Filter
	sort    query.SortBy
	page    int
	size    int
	total   int
}

func newFilter(t *testing.T, name string, appType filter.ApplicationType, values ...string) filter.Filter {
	t.Helper()
	f, err := filter.New(name, values, appType)
	if err != nil {
		t.Fatalf("filter.New: %v", err)
	}
	return f
}

func sortBy(t *testing.T, field, direction string) query.SortBy {
	t.Helper()
	s, err := query.NewSortBy(field, direction)
	if err != nil {
		t.Fatalf("query.NewSortBy: %v", err)
	}
	return s
}

// newResult builds a result over defaultAggs. Counters are marked used when
// their id is a value of the matching filter.
func newResult(t *testing.T, st searchState) *result.Result {
	t.Helper()
	return newResultWith(t, st, defaultAggs...)
}

// newResultWith builds a result over the given aggregations.
func newResultWith(t *testing.T, st searchState, fixtures ...aggFixture) *result.Result {
	t.Helper()
	if st.size == 0 {
		st.size = 20
	}

	q, err := query.New(st.filters, st.sort, st.page, st.size)
	if err != nil {
		t.Fatalf("query.New: %v", err)
	}

	aggs := make([]result.Aggregation, 0, len(fixtures))
	for _, a := range fixtures {
		selected := map[string]bool{}
		if f, ok := q.Filter(a.name); ok {
			for _, v := range f.Values() {
				selected[v] = true
			}
		}
		counters := make([]result.Counter, 0, len(a.counters))
		for _, cs := range a.counters {
			c, err := result.NewCounter(cs.id, map[string]string{"slug": cs.slug}, 5, selected[cs.id])
			if err != nil {
				t.Fatalf("result.NewCounter: %v", err)
			}
			counters = append(counters, c)
		}
		agg, err := result.NewAggregation(a.name, counters)
		if err != nil {
			t.Fatalf("result.NewAggregation: %v", err)
		}
		aggs = append(aggs, agg)
	}

	res, err := result.New(q, st.total, aggs, nil)
	if err != nil {
		t.Fatalf("result.New: %v", err)
	}
	return res
}

func newLinks(t *testing.T, st searchState) (*Links, *countingRoutes) {
	t.Helper()
	routes := newRoutes(t)
	return New(routes, defaultDictionary(t), nil).For(newResult(t, st)), routes
}

func assertURL(t *testing.T, got string, err error, want string) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != want {
		t.Errorf("url =\n  %q\nwant\n  %q", got, want)
	}
}
