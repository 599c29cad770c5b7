package chi

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"github.com/kailas-cloud/facetlinks/internal/domain"
	"github.com/kailas-cloud/facetlinks/internal/domain/geo"
	"github.com/kailas-cloud/facetlinks/internal/domain/search/filter"
	"github.com/kailas-cloud/facetlinks/internal/domain/search/query"
	"github.com/kailas-cloud/facetlinks/internal/domain/search/result"
	linksuc "github.com/kailas-cloud/facetlinks/internal/usecase/links"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// LinksRequest is the search result document links are generated for.
type LinksRequest struct {
	Query        QueryDTO         `json:"query"`
	TotalHits    int              `json:"total_hits"`
	Aggregations []AggregationDTO `json:"aggregations"`
	// Hits are raw documents, turned into items by the site's write transformers.
	Hits []any `json:"hits"`
}

// QueryDTO is the query the result answers.
type QueryDTO struct {
	Filters  []FilterDTO         `json:"filters"`
	Q        string              `json:"q"`
	Sort     *SortDTO            `json:"sort,omitempty"`
	Page     int                 `json:"page"`
	Size     int                 `json:"size"`
	Location jsoniter.RawMessage `json:"location,omitempty"`
}

// FilterDTO is one applied filter.
type FilterDTO struct {
	Name            string   `json:"name"`
	Values          []string `json:"values"`
	ApplicationType string   `json:"application_type,omitempty"`
}

// SortDTO is the applied ordering.
type SortDTO struct {
	Field     string `json:"field"`
	Direction string `json:"direction"`
}

// AggregationDTO is one facet.
type AggregationDTO struct {
	Name     string       `json:"name"`
	Counters []CounterDTO `json:"counters"`
}

// CounterDTO is one facet value. When Used is omitted it is derived from
// the values of the filter named like the aggregation.
type CounterDTO struct {
	ID     string            `json:"id"`
	Values map[string]string `json:"values,omitempty"`
	N      int               `json:"n"`
	Used   *bool             `json:"used,omitempty"`
}

// LinkSetResponse is the link set of a result.
type LinkSetResponse struct {
	ResultID       string        `json:"result_id"`
	Current        string        `json:"current"`
	SearchTemplate string        `json:"search_template"`
	Prev           string        `json:"prev,omitempty"`
	Next           string        `json:"next,omitempty"`
	Pages          []PageDTO     `json:"pages,omitempty"`
	Facets         []FacetDTO    `json:"facets"`
	Sorts          []SortLinkDTO `json:"sorts,omitempty"`
	Items          []any         `json:"items"`
}

// PageDTO links one page.
type PageDTO struct {
	Number  int    `json:"number"`
	URL     string `json:"url"`
	Current bool   `json:"current,omitempty"`
}

// FacetDTO holds the links of one facet.
type FacetDTO struct {
	Name     string     `json:"name"`
	ClearURL string     `json:"clear_url,omitempty"`
	Values   []ValueDTO `json:"values"`
}

// ValueDTO toggles one facet value.
type ValueDTO struct {
	ID   string `json:"id"`
	Slug string `json:"slug"`
	N    int    `json:"n"`
	Used bool   `json:"used"`
	URL  string `json:"url"`
}

// SortLinkDTO switches the ordering.
type SortLinkDTO struct {
	Field     string `json:"field"`
	Direction string `json:"direction"`
	Label     string `json:"label,omitempty"`
	URL       string `json:"url"`
	Active    bool   `json:"active"`
}

// HitDTO is a hit no read transformer claimed.
type HitDTO struct {
	ID       string             `json:"id"`
	Score    float64            `json:"score"`
	Tags     map[string]string  `json:"tags,omitempty"`
	Numerics map[string]float64 `json:"numerics,omitempty"`
}

func queryFromDTO(d QueryDTO) (query.Query, error) {
	filters := make([]filter.Filter, 0, len(d.Filters)+2)
	for _, fd := range d.Filters {
		f, err := filter.New(fd.Name, fd.Values, filter.ApplicationType(fd.ApplicationType))
		if err != nil {
			return query.Query{}, fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err)
		}
		filters = append(filters, f)
	}
	if d.Q != "" {
		filters = append(filters, filter.NewQueryText(d.Q))
	}
	if len(d.Location) > 0 {
		r, err := geo.Unmarshal(d.Location)
		if err != nil {
			return query.Query{}, fmt.Errorf("location: %w", err)
		}
		f, err := geo.Filter(r)
		if err != nil {
			return query.Query{}, fmt.Errorf("%w: location: %w", domain.ErrInvalidQuery, err)
		}
		filters = append(filters, f)
	}

	var sort query.SortBy
	if d.Sort != nil {
		s, err := query.NewSortBy(d.Sort.Field, d.Sort.Direction)
		if err != nil {
			return query.Query{}, fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err)
		}
		sort = s
	}

	q, err := query.New(filters, sort, d.Page, d.Size)
	if err != nil {
		return query.Query{}, fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err)
	}
	return q, nil
}

func aggregationsFromDTO(q *query.Query, aggs []AggregationDTO) ([]result.Aggregation, error) {
	out := make([]result.Aggregation, 0, len(aggs))
	for _, ad := range aggs {
		selected := map[string]bool{}
		if f, ok := q.Filter(ad.Name); ok {
			for _, v := range f.Values() {
				selected[v] = true
			}
		}

		counters := make([]result.Counter, 0, len(ad.Counters))
		for _, cd := range ad.Counters {
			used := selected[cd.ID]
			if cd.Used != nil {
				used = *cd.Used
			}
			c, err := result.NewCounter(cd.ID, cd.Values, cd.N, used)
			if err != nil {
				return nil, fmt.Errorf("%w: aggregation %q: %w", domain.ErrInvalidResult, ad.Name, err)
			}
			counters = append(counters, c)
		}

		a, err := result.NewAggregation(ad.Name, counters)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrInvalidResult, err)
		}
		out = append(out, a)
	}
	return out, nil
}

func resultFromDTO(req LinksRequest, items ItemWriter) (*result.Result, error) {
	q, err := queryFromDTO(req.Query)
	if err != nil {
		return nil, err
	}
	aggs, err := aggregationsFromDTO(&q, req.Aggregations)
	if err != nil {
		return nil, err
	}

	var hits []result.Hit
	if len(req.Hits) > 0 {
		if items == nil {
			return nil, fmt.Errorf("%w: site accepts no hits", domain.ErrNoTransformer)
		}
		if hits, err = items.ToItems(req.Hits); err != nil {
			return nil, fmt.Errorf("hits: %w", err)
		}
	}

	res, err := result.New(q, req.TotalHits, aggs, hits)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidResult, err)
	}
	return res, nil
}

func linkSetToDTO(set linksuc.LinkSet) LinkSetResponse {
	resp := LinkSetResponse{
		ResultID:       set.ResultID,
		Current:        set.Current,
		SearchTemplate: set.SearchTemplate,
		Prev:           set.Prev,
		Next:           set.Next,
		Facets:         make([]FacetDTO, 0, len(set.Facets)),
		Items:          make([]any, 0, len(set.Items)),
	}

	for _, p := range set.Pages {
		resp.Pages = append(resp.Pages, PageDTO{Number: p.Number, URL: p.URL, Current: p.Current})
	}
	for _, f := range set.Facets {
		fd := FacetDTO{Name: f.Name, ClearURL: f.ClearURL, Values: make([]ValueDTO, 0, len(f.Values))}
		for _, v := range f.Values {
			fd.Values = append(fd.Values, ValueDTO{ID: v.ID, Slug: v.Slug, N: v.N, Used: v.Used, URL: v.URL})
		}
		resp.Facets = append(resp.Facets, fd)
	}
	for _, s := range set.Sorts {
		resp.Sorts = append(resp.Sorts, SortLinkDTO{
			Field:     s.Field,
			Direction: s.Direction,
			Label:     s.Label,
			URL:       s.URL,
			Active:    s.Active,
		})
	}
	for _, it := range set.Items {
		if h, ok := it.(result.Hit); ok {
			it = HitDTO{ID: h.ID(), Score: h.Score(), Tags: h.Tags(), Numerics: h.Numerics()}
		}
		resp.Items = append(resp.Items, it)
	}
	return resp
}
