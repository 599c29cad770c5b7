package linkbuilder

import (
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kailas-cloud/facetlinks/internal/domain"
	"github.com/kailas-cloud/facetlinks/internal/domain/search/filter"
)

func newCounters() (cacheTotal, resolutions *prometheus.CounterVec) {
	cacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_cache_total"}, []string{"result"})
	resolutions = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_resolutions_total"}, []string{"route"})
	return cacheTotal, resolutions
}

func TestAddValue_CacheAvoidsResolution(t *testing.T) {
	routes := newRoutes(t)
	cacheTotal, resolutions := newCounters()
	b := New(routes, defaultDictionary(t), nil).WithMetrics(cacheTotal, resolutions)
	l := b.For(newResult(t, searchState{}))

	first, err := l.AddValue("size", "s")
	assertURL(t, first, err, base+"/search?size[0]=s")
	calls := routes.calls.Load()
	if calls == 0 {
		t.Fatal("first request must resolve the route")
	}

	second, err := l.AddValue("size", "m")
	assertURL(t, second, err, base+"/search?size[0]=m")

	again, err := l.AddValue("size", "s")
	assertURL(t, again, err, first)

	if got := routes.calls.Load(); got != calls {
		t.Errorf("route calls = %d after cache hits, want %d", got, calls)
	}
	if n := l.cache.size(); n != 1 {
		t.Errorf("cache entries = %d, want 1", n)
	}
	if v := testutil.ToFloat64(cacheTotal.WithLabelValues("miss")); v != 1 {
		t.Errorf("cache misses = %v, want 1", v)
	}
	if v := testutil.ToFloat64(cacheTotal.WithLabelValues("hit")); v != 2 {
		t.Errorf("cache hits = %v, want 2", v)
	}
	if v := testutil.ToFloat64(resolutions.WithLabelValues(MainField)); v != 1 {
		t.Errorf("main resolutions = %v, want 1", v)
	}
}

func TestAddValue_CachedDedicatedRoute(t *testing.T) {
	l, routes := newLinks(t, searchState{})

	got, err := l.AddValue("color", "c1")
	assertURL(t, got, err, base+"/search/color/red")
	calls := routes.calls.Load()

	got, err = l.AddValue("color", "c3")
	assertURL(t, got, err, base+"/search/color/green")

	if routes.calls.Load() != calls {
		t.Error("second value of the same field must come from the cache")
	}
	if tpl, _ := l.cache.get("color"); tpl.String() != base+"/search/color/{slug}" {
		t.Errorf("cached template = %q", tpl.String())
	}
}

func TestAddValue_CachedUnderOtherFieldsRoute(t *testing.T) {
	l, _ := newLinks(t, searchState{filters: []filter.Filter{newFilter(t, "color", filter.AtLeastOne, "c1")}})

	got, err := l.AddValue("brand", "b1")
	assertURL(t, got, err, base+"/search/color/red?brand[0]=b1")

	got, err = l.AddValue("brand", "b2")
	assertURL(t, got, err, base+"/search/color/red?brand[0]=b2")

	if tpl, _ := l.cache.get("brand"); tpl.String() != base+"/search/color/red?brand[0]={id}" {
		t.Errorf("cached template = %q", tpl.String())
	}
}

func TestAddValue_SelectedValueBypassesCache(t *testing.T) {
	l, _ := newLinks(t, searchState{filters: []filter.Filter{newFilter(t, "size", filter.AtLeastOne, "s")}})

	got, err := l.AddValue("size", "m")
	assertURL(t, got, err, base+"/search?size[0]=s&size[1]=m")

	got, err = l.AddValue("size", "l")
	assertURL(t, got, err, base+"/search?size[0]=s&size[1]=l")

	got, err = l.AddValue("size", "s")
	assertURL(t, got, err, base+"/search?size[0]=s")
}

// Every cached link must equal the link a cold handle computes.
func TestAddValue_CachedMatchesUncached(t *testing.T) {
	states := map[string]searchState{
		"empty": {},
		"color selected": {filters: []filter.Filter{newFilter(t, "color", filter.AtLeastOne, "c2")}},
		"multi size": {filters: []filter.Filter{newFilter(t, "size", filter.AtLeastOne, "s", "l")}},
		"hierarchical": {filters: []filter.Filter{
			newFilter(t, "category", filter.MustAllWithLevels, "cat1", "cat1a"),
			newFilter(t, "brand", filter.AtLeastOne, "b2"),
		}},
	}

	for name, st := range states {
		t.Run(name, func(t *testing.T) {
			warm, _ := newLinks(t, st)
			for _, a := range defaultAggs {
				for _, c := range a.counters {
					counter, _ := warm.Result().Counter(a.name, c.id)
					if counter.IsUsed() {
						continue
					}
					cold, _ := newLinks(t, st)
					want, err := cold.AddValue(a.name, c.id)
					if err != nil {
						t.Fatalf("cold AddValue(%s, %s): %v", a.name, c.id, err)
					}
					got, err := warm.AddValue(a.name, c.id)
					if err != nil {
						t.Fatalf("warm AddValue(%s, %s): %v", a.name, c.id, err)
					}
					if got != want {
						t.Errorf("AddValue(%s, %s) cached = %q, uncached = %q", a.name, c.id, got, want)
					}
				}
			}
		})
	}
}

func TestAddValue_Concurrent(t *testing.T) {
	l, routes := newLinks(t, searchState{})
	ids := []string{"s", "m", "l"}

	var wg sync.WaitGroup
	errs := make(chan string, 60)
	for i := 0; i < 60; i++ {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			got, err := l.AddValue("size", id)
			if err != nil || got != base+"/search?size[0]="+id {
				errs <- got
			}
		}(ids[i%len(ids)])
	}
	wg.Wait()
	close(errs)

	for bad := range errs {
		t.Errorf("unexpected url %q", bad)
	}
	if n := l.cache.size(); n != 1 {
		t.Errorf("cache entries = %d, want 1", n)
	}
	if calls := routes.calls.Load(); calls != 2 {
		t.Errorf("route calls = %d, want 2 (one resolution)", calls)
	}
}

func TestCache_ScopedPerResult(t *testing.T) {
	routes := newRoutes(t)
	b := New(routes, defaultDictionary(t), nil)

	first := b.For(newResult(t, searchState{}))
	second := b.For(newResult(t, searchState{filters: []filter.Filter{newFilter(t, "color", filter.AtLeastOne, "c1")}}))

	if _, err := first.AddValue("brand", "b1"); err != nil {
		t.Fatalf("AddValue: %v", err)
	}
	got, err := second.AddValue("brand", "b1")
	assertURL(t, got, err, base+"/search/color/red?brand[0]=b1")
}

func TestFindQueryPair(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
		found bool
	}{
		{"first pair", "color[0]=c1&size[0]=m", "color[0]={id}&size[0]=m", true},
		{"last pair", "size[0]=m&color[0]=c1", "size[0]=m&color[0]={id}", true},
		{"suffix of other key", "subcolor[0]=c1&color[0]=c1", "subcolor[0]=c1&color[0]={id}", true},
		{"prefix of other value", "color[0]=c10", "", false},
		{"absent", "size[0]=m", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, ok := findQueryPair(tt.query, "color[0]", "c1")
			if ok != tt.found {
				t.Fatalf("found = %v, want %v", ok, tt.found)
			}
			if !ok {
				return
			}
			if got := tt.query[:start] + "{id}" + tt.query[end:]; got != tt.want {
				t.Errorf("query = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAddValue_CachedRouteChecksPattern(t *testing.T) {
	routes := newRoutesWith(t, "/search/color/{slug:[a-z]+}")
	res := newResultWith(t, searchState{}, aggFixture{"color", []counterFixture{{"c1", "red"}, {"c2", "Blue2"}, {"c3", "green"}}})
	newHandle := func() *Links { return New(routes, defaultDictionary(t), nil).For(res) }

	_, coldErr := newHandle().AddValue("color", "c2")
	if !errors.Is(coldErr, domain.ErrInvalidRouteParameter) {
		t.Fatalf("cold error = %v, want ErrInvalidRouteParameter", coldErr)
	}

	l := newHandle()
	got, err := l.AddValue("color", "c1")
	assertURL(t, got, err, base+"/search/color/red")

	_, err = l.AddValue("color", "c2")
	if !errors.Is(err, domain.ErrInvalidRouteParameter) {
		t.Errorf("warm error = %v, want ErrInvalidRouteParameter", err)
	}
	var re *domain.RouteError
	if !errors.As(err, &re) || re.Route != "by_color" || re.Param != "slug" {
		t.Errorf("warm error = %v, want route error on by_color slug", err)
	}

	got, err = l.AddValue("color", "c3")
	assertURL(t, got, err, base+"/search/color/green")
}

func TestAddValue_CachedKeepsLiteralBraces(t *testing.T) {
	freeText := searchState{filters: []filter.Filter{filter.NewQueryText("{slug}")}}
	otherValue := searchState{filters: []filter.Filter{newFilter(t, "size", filter.AtLeastOne, "{id}")}}
	tests := map[string]searchState{"free text": freeText, "other filter value": otherValue}
	for name, st := range tests {
		t.Run(name, func(t *testing.T) {
			cold, _ := newLinks(t, st)
			want, err := cold.AddValue("color", "c2")
			if err != nil {
				t.Fatalf("cold AddValue: %v", err)
			}

			warm, _ := newLinks(t, st)
			if _, err := warm.AddValue("color", "c1"); err != nil {
				t.Fatalf("warm AddValue: %v", err)
			}
			got, err := warm.AddValue("color", "c2")
			assertURL(t, got, err, want)
		})
	}

	l, _ := newLinks(t, freeText)
	got, err := l.AddValue("size", "s")
	assertURL(t, got, err, base+"/search?q={slug}&size[0]=s")
	got, err = l.AddValue("size", "m")
	assertURL(t, got, err, base+"/search?q={slug}&size[0]=m")
}
