package result

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/kailas-cloud/facetlinks/internal/domain/search/query"
)

// Result is an immutable search outcome: the query it answers,
// the facet aggregations and the current page of hits.
type Result struct {
	id           string
	query        query.Query
	totalHits    int
	aggregations []Aggregation
	byName       map[string]int
	hits         []Hit
}

// New creates a search result. Aggregation order is kept.
func New(q query.Query, totalHits int, aggregations []Aggregation, hits []Hit) (*Result, error) {
	if totalHits < 0 {
		return nil, fmt.Errorf("total hits must not be negative, got %d", totalHits)
	}
	aggs := make([]Aggregation, len(aggregations))
	byName := make(map[string]int, len(aggregations))
	for i, a := range aggregations {
		if _, dup := byName[a.name]; dup {
			return nil, fmt.Errorf("duplicate aggregation %q", a.name)
		}
		byName[a.name] = i
		aggs[i] = a
	}
	hs := make([]Hit, len(hits))
	copy(hs, hits)

	return &Result{
		id:           uuid.NewString(),
		query:        q,
		totalHits:    totalHits,
		aggregations: aggs,
		byName:       byName,
		hits:         hs,
	}, nil
}

// ID returns a per-instance identifier, useful for log correlation.
func (r *Result) ID() string { return r.id }

// Query returns the originating query.
func (r *Result) Query() *query.Query { return &r.query }

// TotalHits returns the number of matching items across all pages.
func (r *Result) TotalHits() int { return r.totalHits }

// Aggregations returns the facets in result order.
func (r *Result) Aggregations() []Aggregation {
	aggs := make([]Aggregation, len(r.aggregations))
	copy(aggs, r.aggregations)
	return aggs
}

// Aggregation looks up a facet by name.
func (r *Result) Aggregation(name string) (Aggregation, bool) {
	i, ok := r.byName[name]
	if !ok {
		return Aggregation{}, false
	}
	return r.aggregations[i], true
}

// Counter looks up a value of a facet.
func (r *Result) Counter(aggregation, id string) (Counter, bool) {
	a, ok := r.Aggregation(aggregation)
	if !ok {
		return Counter{}, false
	}
	return a.Counter(id)
}

// Hits returns the current page of hits.
func (r *Result) Hits() []Hit {
	hs := make([]Hit, len(r.hits))
	copy(hs, r.hits)
	return hs
}
