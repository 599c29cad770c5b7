package linkbuilder

import (
	"github.com/kailas-cloud/facetlinks/internal/domain/search/filter"
	"github.com/kailas-cloud/facetlinks/internal/domain/search/result"
	"github.com/kailas-cloud/facetlinks/internal/domain/urlparams"
)

// URL parameter names.
const (
	ParamQuery  = "q"
	ParamSortBy = "sort_by"
	ParamPage   = "page"
)

// extractParams derives the canonical parameter set of res. A hierarchical
// filter named reset is emitted empty: its levels are not addressable one by
// one, so toggling a value starts the path over.
func extractParams(res *result.Result, reset string) *urlparams.Params {
	q := res.Query()
	params := urlparams.New()

	for _, f := range q.Filters() {
		if f.Name() == filter.QueryName {
			continue
		}
		if reset != "" && f.Name() == reset && f.ApplicationType().IsHierarchical() {
			params.Set(f.Name(), urlparams.List())
			continue
		}
		params.Set(f.Name(), urlparams.List(f.Values()...))
	}

	if text := q.Text(); text != "" {
		params.Set(ParamQuery, urlparams.Scalar(text))
	}

	if s := q.SortBy(); !s.IsScore() {
		params.Set(ParamSortBy, urlparams.Pair(s.Field(), s.Direction()))
	}

	return params
}
