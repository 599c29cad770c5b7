package chi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kailas-cloud/facetlinks/internal/linkbuilder"
	"github.com/kailas-cloud/facetlinks/internal/repository/bucket"
	"github.com/kailas-cloud/facetlinks/internal/routing"
	"github.com/kailas-cloud/facetlinks/internal/transformer"
	healthuc "github.com/kailas-cloud/facetlinks/internal/usecase/health"
	linksuc "github.com/kailas-cloud/facetlinks/internal/usecase/links"
)

const base = "https://shop.example.com"

// --- Mocks ---

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(_ context.Context) healthuc.Report { return m.report }

type mockObserver struct {
	sites []string
	errs  []error
}

func (m *mockObserver) ObserveBuild(site string, _ time.Time, err error) {
	m.sites = append(m.sites, site)
	m.errs = append(m.errs, err)
}

// --- Fixtures ---

func newShop(t *testing.T) Site {
	t.Helper()
	tbl, err := routing.NewTable(base, map[string]string{
		"search":   "/search",
		"by_color": "/c/{slug:[a-z-]+}",
		"product":  "/p/{slug}/{id:[0-9]+}",
	})
	if err != nil {
		t.Fatalf("routing.NewTable: %v", err)
	}
	dict, err := linkbuilder.NewRoutesDictionary(
		linkbuilder.RouteEntry{Field: "color", Route: "by_color"},
		linkbuilder.RouteEntry{Field: linkbuilder.MainField, Route: "search"},
	)
	if err != nil {
		t.Fatalf("NewRoutesDictionary: %v", err)
	}

	items := transformer.NewChain()
	items.AddReadTransformer(transformer.NewLinkReader(tbl, "product", "product"))
	items.AddWriteTransformer(transformer.DocumentWriter{DefaultType: "product"})

	svc := linksuc.New(linkbuilder.New(tbl, dict, nil), items, linksuc.Options{
		PageWindow: 3,
		Sorts:      []linksuc.SortOption{{Field: "price", Direction: "asc", Label: "cheapest"}},
	})
	return Site{Links: svc, Items: items}
}

func newTestRouter(t *testing.T, opts ...Option) (*chi.Mux, *mockHealth) {
	t.Helper()
	sites := bucket.New[Site]()
	sites.Add("shop", newShop(t))

	health := &mockHealth{report: healthuc.Report{
		Status: healthuc.Healthy,
		Checks: map[string]healthuc.CheckResult{"routes:shop": healthuc.CheckOK},
	}}
	srv := NewServer(sites, "shop", health, nil, opts...)

	r := chi.NewRouter()
	srv.Routes(r)
	return r, health
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeLinkSet(t *testing.T, rr *httptest.ResponseRecorder) LinkSetResponse {
	t.Helper()
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var resp LinkSetResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder, wantStatus int, wantCode ErrorCode) map[string]any {
	t.Helper()
	if rr.Code != wantStatus {
		t.Fatalf("status = %d, want %d, body = %s", rr.Code, wantStatus, rr.Body.String())
	}
	var body map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if body["code"] != string(wantCode) {
		t.Errorf("code = %v, want %s", body["code"], wantCode)
	}
	return body
}

const shopResult = `{
	"query": {"filters": [{"name": "color", "values": ["c1"]}], "page": 1, "size": 10},
	"total_hits": 25,
	"aggregations": [
		{"name": "color", "counters": [
			{"id": "c1", "values": {"slug": "red"}, "n": 3},
			{"id": "c2", "values": {"slug": "blue"}, "n": 2}
		]}
	],
	"hits": [{"id": "42", "type": "product", "slug": "shoe", "_score": 1.5, "price": 20}]
}`

// --- Tests ---

func TestBuildLinks_DefaultSite(t *testing.T) {
	r, _ := newTestRouter(t)
	resp := decodeLinkSet(t, do(t, r, "POST", "/api/v1/links", shopResult))

	if resp.Current != base+"/c/red" {
		t.Errorf("Current = %q", resp.Current)
	}
	if resp.SearchTemplate != base+"/c/red?q={{q}}" {
		t.Errorf("SearchTemplate = %q", resp.SearchTemplate)
	}
	if resp.Prev != "" || resp.Next != base+"/c/red?page=2" {
		t.Errorf("Prev = %q, Next = %q", resp.Prev, resp.Next)
	}
	if len(resp.Pages) != 3 || !resp.Pages[0].Current {
		t.Errorf("Pages = %+v", resp.Pages)
	}

	if len(resp.Facets) != 1 || len(resp.Facets[0].Values) != 2 {
		t.Fatalf("Facets = %+v", resp.Facets)
	}
	color := resp.Facets[0]
	if color.ClearURL != base+"/search" {
		t.Errorf("ClearURL = %q", color.ClearURL)
	}
	if v := color.Values[0]; !v.Used || v.URL != base+"/search" {
		t.Errorf("c1 = %+v (used must follow the filter)", v)
	}
	if v := color.Values[1]; v.Used || v.URL != base+"/search?color[0]=c1&color[1]=c2" {
		t.Errorf("c2 = %+v", v)
	}

	if len(resp.Sorts) != 1 || resp.Sorts[0].URL != base+"/c/red?sort_by[price]=asc" || resp.Sorts[0].Active {
		t.Errorf("Sorts = %+v", resp.Sorts)
	}

	if len(resp.Items) != 1 {
		t.Fatalf("Items = %+v", resp.Items)
	}
	item, ok := resp.Items[0].(map[string]any)
	if !ok || item["url"] != base+"/p/shoe/42" {
		t.Errorf("Items[0] = %+v", resp.Items[0])
	}
}

func TestBuildLinks_NamedSite(t *testing.T) {
	obs := &mockObserver{}
	r, _ := newTestRouter(t, WithObserver(obs))

	resp := decodeLinkSet(t, do(t, r, "POST", "/api/v1/sites/shop/links", shopResult))
	if resp.ResultID == "" {
		t.Error("ResultID is empty")
	}
	if len(obs.sites) != 1 || obs.sites[0] != "shop" || obs.errs[0] != nil {
		t.Errorf("observer = %+v", obs)
	}
}

func TestBuildLinks_UnknownSite(t *testing.T) {
	r, _ := newTestRouter(t)
	decodeError(t, do(t, r, "POST", "/api/v1/sites/blog/links", shopResult), http.StatusNotFound, ErrorCodeSiteNotFound)
}

func TestBuildLinks_BadRequests(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		code   ErrorCode
	}{
		{"malformed json", `{"query":`, http.StatusBadRequest, ErrorCodeBadRequest},
		{"bad sort direction", `{"query": {"sort": {"field": "price", "direction": "up"}}}`,
			http.StatusBadRequest, ErrorCodeValidationFailed},
		{"bad application type", `{"query": {"filters": [{"name": "color", "values": ["c1"], "application_type": "some"}]}}`,
			http.StatusBadRequest, ErrorCodeValidationFailed},
		{"negative total", `{"total_hits": -1}`, http.StatusBadRequest, ErrorCodeValidationFailed},
		{"duplicate counter", `{"aggregations": [{"name": "color", "counters": [{"id": "c1"}, {"id": "c1"}]}]}`,
			http.StatusBadRequest, ErrorCodeValidationFailed},
		{"unknown location type", `{"query": {"location": {"type": "Circle", "data": {}}}}`,
			http.StatusBadRequest, ErrorCodeValidationFailed},
		{"hit without id", `{"hits": [{"name": "shoe"}]}`, http.StatusBadRequest, ErrorCodeValidationFailed},
	}
	r, _ := newTestRouter(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decodeError(t, do(t, r, "POST", "/api/v1/links", tt.body), tt.status, tt.code)
		})
	}
}

func TestBuildLinks_Location(t *testing.T) {
	r, _ := newTestRouter(t)
	body := `{"query": {"location": {"type": "Square", "data": {"top_left": {"lat": 42, "lon": 2}, "bottom_right": {"lat": 41, "lon": 3}}}}}`

	resp := decodeLinkSet(t, do(t, r, "POST", "/api/v1/links", body))
	want := base + "/search?location[0]=Square&location[1]=42,2&location[2]=41,3"
	if resp.Current != want {
		t.Errorf("Current = %q, want %q", resp.Current, want)
	}
}

func TestBuildLinks_RouteParameterRejected(t *testing.T) {
	r, _ := newTestRouter(t)
	body := `{
		"query": {"filters": [{"name": "color", "values": ["c9"]}]},
		"aggregations": [{"name": "color", "counters": [{"id": "c9", "values": {"slug": "Not Valid"}}]}]
	}`

	resp := decodeError(t, do(t, r, "POST", "/api/v1/links", body), http.StatusUnprocessableEntity, ErrorCodeRouteParameter)
	if resp["route"] != "by_color" || resp["param"] != "slug" {
		t.Errorf("body = %+v", resp)
	}
}

func TestBuildLinks_BodyTooLarge(t *testing.T) {
	r, _ := newTestRouter(t, WithMaxBodyBytes(16))
	decodeError(t, do(t, r, "POST", "/api/v1/links", shopResult), http.StatusBadRequest, ErrorCodeBadRequest)
}

func TestHealthCheck(t *testing.T) {
	r, health := newTestRouter(t)

	rr := do(t, r, "GET", "/health", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("healthy: status = %d", rr.Code)
	}
	var body map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status = %v", body["status"])
	}

	health.report = healthuc.Report{Status: healthuc.Degraded, Checks: map[string]healthuc.CheckResult{}}
	if rr := do(t, r, "GET", "/health", ""); rr.Code != http.StatusServiceUnavailable {
		t.Errorf("degraded: status = %d, want 503", rr.Code)
	}
}

func TestVersion(t *testing.T) {
	r, _ := newTestRouter(t)
	rr := do(t, r, "GET", "/version", "")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"version"`) {
		t.Errorf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
}
