package linkbuilder

import (
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/kailas-cloud/facetlinks/internal/domain"
	"github.com/kailas-cloud/facetlinks/internal/domain/search/query"
	"github.com/kailas-cloud/facetlinks/internal/domain/search/result"
	"github.com/kailas-cloud/facetlinks/internal/domain/urlparams"
)

// QueryPlaceholder is put in q by Current for client-side search boxes.
const QueryPlaceholder = "{{q}}"

// Links generates the navigation URLs of one search result.
type Links struct {
	b     *Builder
	res   *result.Result
	cache *routeCache
}

// Result returns the bound search result.
func (l *Links) Result() *result.Result { return l.res }

// ToggleValue removes the value from the field when it is selected and adds
// it otherwise. Unknown ids are treated as not selected.
func (l *Links) ToggleValue(field, id string) (string, error) {
	if c, ok := l.res.Counter(field, id); ok && c.IsUsed() {
		return l.RemoveValue(field, id)
	}
	return l.AddValue(field, id)
}

// AddValue returns the URL with id added to the field's selection.
// Hierarchical fields drop their current selection first.
func (l *Links) AddValue(field, id string) (string, error) {
	counter, known := l.res.Counter(field, id)
	if !known || counter.IsUsed() {
		l.b.logger.Debug("add value resolved uncached",
			zap.String("result_id", l.res.ID()),
			zap.String("field", field),
			zap.String("value", id),
			zap.Bool("known", known),
		)
		return l.resolveURL(field, id)
	}

	if tpl, ok := l.cache.get(field); ok {
		l.b.observeCache("hit")
		return l.fillOrResolve(tpl, field, counter)
	}

	v, _, _ := l.cache.group.Do(field, func() (any, error) {
		if tpl, ok := l.cache.get(field); ok {
			return cacheFill{template: tpl, cached: true}, nil
		}
		l.b.observeCache("miss")

		res, err := l.resolveAdd(field, id)
		if err != nil {
			return cacheFill{id: id, err: err}, nil
		}
		tpl, ok := deriveTemplate(field, id, res)
		if !ok {
			l.b.logger.Debug("route template not cacheable",
				zap.String("result_id", l.res.ID()),
				zap.String("field", field),
			)
			return cacheFill{id: id, url: res.URL}, nil
		}
		l.cache.put(field, tpl)
		return cacheFill{template: tpl, cached: true, id: id, url: res.URL}, nil
	})

	f, ok := v.(cacheFill)
	if !ok {
		return "", fmt.Errorf("unexpected cache fill type %T", v)
	}
	if f.id == id {
		return f.url, f.err
	}
	if !f.cached {
		return l.resolveURL(field, id)
	}
	return l.fillOrResolve(f.template, field, counter)
}

// fillOrResolve fills a cached template, resolving directly when the route
// rejects one of the counter's values.
func (l *Links) fillOrResolve(tpl routeTemplate, field string, counter result.Counter) (string, error) {
	if url, ok := tpl.fill(l.b.routes.Accepts, counter); ok {
		return url, nil
	}
	l.b.logger.Debug("cached route rejects value",
		zap.String("result_id", l.res.ID()),
		zap.String("field", field),
		zap.String("value", counter.ID()),
	)
	return l.resolveURL(field, counter.ID())
}

func (l *Links) resolveURL(field, id string) (string, error) {
	res, err := l.resolveAdd(field, id)
	if err != nil {
		return "", err
	}
	return res.URL, nil
}

func (l *Links) resolveAdd(field, id string) (Resolution, error) {
	params := extractParams(l.res, field)
	params.Append(field, id)
	return l.b.resolve(l.res, params)
}

// RemoveValue returns the URL with id dropped from the field's selection.
// An empty id, or a field not in the query, drops the whole field.
func (l *Links) RemoveValue(field, id string) (string, error) {
	params := extractParams(l.res, "")
	if id == "" || !params.Has(field) {
		params.Delete(field)
	} else {
		params.Remove(field, id)
	}
	return l.url(params)
}

// ClearFilter returns the URL without any value of the field.
func (l *Links) ClearFilter(field string) (string, error) {
	params := extractParams(l.res, "")
	params.Delete(field)
	return l.url(params)
}

// Page returns the URL of the given page.
func (l *Links) Page(page int) (string, error) {
	if page < 1 || page > query.MaxPage {
		return "", fmt.Errorf("%w: page must be in [1, %d], got %d", domain.ErrInvalidQuery, query.MaxPage, page)
	}
	params := extractParams(l.res, "")
	params.Set(ParamPage, urlparams.Scalar(strconv.Itoa(page)))
	return l.url(params)
}

// PrevPage returns the URL of the previous page; ok is false on the first page.
func (l *Links) PrevPage() (url string, ok bool, err error) {
	prev := l.res.Query().Page() - 1
	if prev < 1 {
		return "", false, nil
	}
	url, err = l.Page(prev)
	return url, err == nil, err
}

// NextPage returns the URL of the next page; ok is false when the next page
// would start past the last hit or past query.MaxPage.
func (l *Links) NextPage() (url string, ok bool, err error) {
	q := l.res.Query()
	next := q.Page() + 1
	if next > query.MaxPage || (next-1)*q.Size() > l.res.TotalHits() {
		return "", false, nil
	}
	url, err = l.Page(next)
	return url, err == nil, err
}

// SortBy returns the URL ordered by field/direction; ok is false when that
// ordering is already in effect.
func (l *Links) SortBy(field, direction string) (url string, ok bool, err error) {
	requested, err := query.NewSortBy(field, direction)
	if err != nil {
		return "", false, fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err)
	}

	params := extractParams(l.res, "")
	current, hasSort := params.Get(ParamSortBy)
	if hasSort {
		if f, d := current.Pair(); f == field && d == direction {
			return "", false, nil
		}
	}
	if !hasSort && requested.IsScore() {
		return "", false, nil
	}

	params.Delete(ParamSortBy)
	if !requested.IsScore() {
		params.Set(ParamSortBy, urlparams.Pair(field, direction))
	}

	url, err = l.url(params)
	return url, err == nil, err
}

// Current returns the canonical URL of the result itself. With
// withQueryPlaceholder, q is set to QueryPlaceholder.
func (l *Links) Current(withQueryPlaceholder bool) (string, error) {
	params := extractParams(l.res, "")
	if withQueryPlaceholder {
		params.Set(ParamQuery, urlparams.Scalar(QueryPlaceholder))
	}
	return l.url(params)
}

func (l *Links) url(params *urlparams.Params) (string, error) {
	res, err := l.b.resolve(l.res, params)
	if err != nil {
		return "", err
	}
	return res.URL, nil
}
