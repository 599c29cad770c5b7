package query

import (
	"fmt"

	"github.com/kailas-cloud/facetlinks/internal/domain/search/filter"
)

// Query parameter limits.
const (
	DefaultPage = 1
	DefaultSize = 10
	MaxSize     = 1000
	MaxPage     = 100000
)

// Query is the search request a result was produced from. It is immutable.
type Query struct {
	filters []filter.Filter
	byName  map[string]int
	sortBy  SortBy
	page    int
	size    int
}

// New validates and creates a Query.
// Filters keep their order; duplicate names are rejected.
// Defaults: sort=score, page=1, size=10.
func New(filters []filter.Filter, sortBy SortBy, page, size int) (Query, error) {
	if page <= 0 {
		page = DefaultPage
	}
	if size <= 0 {
		size = DefaultSize
	}
	if page > MaxPage {
		return Query{}, fmt.Errorf("page too large (max %d)", MaxPage)
	}
	if size > MaxSize {
		return Query{}, fmt.Errorf("page size too large (max %d)", MaxSize)
	}
	if sortBy.IsZero() {
		sortBy = Score
	}

	fs := make([]filter.Filter, len(filters))
	byName := make(map[string]int, len(filters))
	for i, f := range filters {
		if _, dup := byName[f.Name()]; dup {
			return Query{}, fmt.Errorf("duplicate filter %q", f.Name())
		}
		byName[f.Name()] = i
		fs[i] = f
	}

	return Query{filters: fs, byName: byName, sortBy: sortBy, page: page, size: size}, nil
}

// Filters returns the filters in query order, including the free-text filter.
func (q *Query) Filters() []filter.Filter {
	fs := make([]filter.Filter, len(q.filters))
	copy(fs, q.filters)
	return fs
}

// Filter returns the filter with the given name.
func (q *Query) Filter(name string) (filter.Filter, bool) {
	i, ok := q.byName[name]
	if !ok {
		return filter.Filter{}, false
	}
	return q.filters[i], true
}

// Text returns the free-text search terms, or "".
func (q *Query) Text() string {
	f, ok := q.Filter(filter.QueryName)
	if !ok {
		return ""
	}
	return f.FirstValue()
}

// SortBy returns the result ordering.
func (q *Query) SortBy() SortBy { return q.sortBy }

// Page returns the 1-based page number.
func (q *Query) Page() int { return q.page }

// Size returns the page size.
func (q *Query) Size() int { return q.size }
