package links

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/facetlinks/internal/domain/search/query"
	"github.com/kailas-cloud/facetlinks/internal/domain/search/result"
	"github.com/kailas-cloud/facetlinks/internal/linkbuilder"
	"github.com/kailas-cloud/facetlinks/internal/logger"
)

// SortOption is a sort order offered to clients.
type SortOption struct {
	Field     string
	Direction string
	Label     string
}

// Options tune what a LinkSet contains.
type Options struct {
	// PageWindow is the number of page links around the current page; 0 disables them.
	PageWindow int
	Sorts      []SortOption
}

// PageLink points to one page of the result.
type PageLink struct {
	Number  int
	URL     string
	Current bool
}

// ValueLink toggles one facet value.
type ValueLink struct {
	ID   string
	Slug string
	N    int
	Used bool
	URL  string
}

// FacetLinks holds the links of one aggregation.
type FacetLinks struct {
	Name string
	// ClearURL drops the whole filter; empty when the filter is not active.
	ClearURL string
	Values   []ValueLink
}

// SortLink switches the result ordering.
type SortLink struct {
	SortOption
	URL    string
	Active bool
}

// LinkSet is every navigation link of one result.
type LinkSet struct {
	ResultID string
	Current  string
	// SearchTemplate is the current URL with q set to linkbuilder.QueryPlaceholder.
	SearchTemplate string
	Prev           string
	Next           string
	Pages          []PageLink
	Facets         []FacetLinks
	Sorts          []SortLink
	Items          []any
}

// Service builds link sets for one site.
type Service struct {
	links LinkFactory
	items ItemReader
	opts  Options
}

// New creates a Service. items may be nil, in which case hits are returned as is.
func New(links LinkFactory, items ItemReader, opts Options) *Service {
	return &Service{links: links, items: items, opts: opts}
}

// Build generates the link set of res.
func (s *Service) Build(ctx context.Context, res *result.Result) (LinkSet, error) {
	l := s.links.For(res)
	set := LinkSet{ResultID: res.ID()}

	var err error
	if set.Current, err = l.Current(false); err != nil {
		return LinkSet{}, fmt.Errorf("current link: %w", err)
	}
	if set.SearchTemplate, err = l.Current(true); err != nil {
		return LinkSet{}, fmt.Errorf("search template link: %w", err)
	}
	if set.Prev, _, err = l.PrevPage(); err != nil {
		return LinkSet{}, fmt.Errorf("previous page link: %w", err)
	}
	if set.Next, _, err = l.NextPage(); err != nil {
		return LinkSet{}, fmt.Errorf("next page link: %w", err)
	}
	if set.Pages, err = s.pages(l, res); err != nil {
		return LinkSet{}, err
	}
	if set.Facets, err = s.facets(ctx, l, res); err != nil {
		return LinkSet{}, err
	}
	if set.Sorts, err = s.sorts(l); err != nil {
		return LinkSet{}, err
	}
	if set.Items, err = s.hits(res); err != nil {
		return LinkSet{}, err
	}

	logger.FromContext(ctx).Debug("link set built",
		zap.String("result_id", res.ID()),
		zap.Int("facets", len(set.Facets)),
		zap.Int("pages", len(set.Pages)),
		zap.Int("items", len(set.Items)),
	)
	return set, nil
}

func (s *Service) pages(l *linkbuilder.Links, res *result.Result) ([]PageLink, error) {
	first, last := pageWindow(res.Query().Page(), res.Query().Size(), res.TotalHits(), s.opts.PageWindow)
	if first == 0 {
		return nil, nil
	}
	pages := make([]PageLink, 0, last-first+1)
	for n := first; n <= last; n++ {
		url, err := l.Page(n)
		if err != nil {
			return nil, fmt.Errorf("page %d link: %w", n, err)
		}
		pages = append(pages, PageLink{Number: n, URL: url, Current: n == res.Query().Page()})
	}
	return pages, nil
}

// pageWindow returns the first and last page numbers of a window of size
// pages around current, or 0, 0 when there is nothing to show.
func pageWindow(current, size, total, window int) (first, last int) {
	if window <= 0 || total <= 0 || size <= 0 {
		return 0, 0
	}
	lastPage := min((total+size-1)/size, query.MaxPage)
	if current > lastPage {
		current = lastPage
	}

	first = max(1, current-window/2)
	last = min(lastPage, first+window-1)
	first = max(1, last-window+1)
	return first, last
}

func (s *Service) facets(ctx context.Context, l *linkbuilder.Links, res *result.Result) ([]FacetLinks, error) {
	aggs := res.Aggregations()
	facets := make([]FacetLinks, 0, len(aggs))
	for _, agg := range aggs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		fl := FacetLinks{Name: agg.Name()}
		if f, ok := res.Query().Filter(agg.Name()); ok && len(f.Values()) > 0 {
			url, err := l.ClearFilter(agg.Name())
			if err != nil {
				return nil, fmt.Errorf("clear %s link: %w", agg.Name(), err)
			}
			fl.ClearURL = url
		}

		counters := agg.Counters()
		fl.Values = make([]ValueLink, 0, len(counters))
		for _, c := range counters {
			url, err := l.ToggleValue(agg.Name(), c.ID())
			if err != nil {
				return nil, fmt.Errorf("toggle %s=%s link: %w", agg.Name(), c.ID(), err)
			}
			fl.Values = append(fl.Values, ValueLink{
				ID:   c.ID(),
				Slug: c.Slug(),
				N:    c.N(),
				Used: c.IsUsed(),
				URL:  url,
			})
		}
		facets = append(facets, fl)
	}
	return facets, nil
}

func (s *Service) sorts(l *linkbuilder.Links) ([]SortLink, error) {
	if len(s.opts.Sorts) == 0 {
		return nil, nil
	}
	current, err := l.Current(false)
	if err != nil {
		return nil, err
	}

	sorts := make([]SortLink, 0, len(s.opts.Sorts))
	for _, o := range s.opts.Sorts {
		url, ok, err := l.SortBy(o.Field, o.Direction)
		if err != nil {
			return nil, fmt.Errorf("sort %s %s link: %w", o.Field, o.Direction, err)
		}
		if !ok {
			url = current
		}
		sorts = append(sorts, SortLink{SortOption: o, URL: url, Active: !ok})
	}
	return sorts, nil
}

func (s *Service) hits(res *result.Result) ([]any, error) {
	hits := res.Hits()
	if s.items == nil {
		items := make([]any, len(hits))
		for i, h := range hits {
			items[i] = h
		}
		return items, nil
	}
	items, err := s.items.FromItems(hits)
	if err != nil {
		return nil, fmt.Errorf("transform hits: %w", err)
	}
	return items, nil
}
