package linkbuilder

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/kailas-cloud/facetlinks/internal/domain"
	"github.com/kailas-cloud/facetlinks/internal/domain/search/result"
	"github.com/kailas-cloud/facetlinks/internal/domain/urlparams"
)

// Resolution is the outcome of turning a parameter set into a URL.
type Resolution struct {
	// URL is the absolute link.
	URL string
	// Params are the parameters left for the query string.
	Params *urlparams.Params
	// Route is the name of the route the URL was generated from.
	Route string
	// TemplatePath is the absolute route path with its placeholders intact.
	TemplatePath string
	// MatchedField is the facet whose dedicated route was used, "" for main.
	MatchedField string
}

// Matched reports whether a dedicated route was used.
func (r Resolution) Matched() bool { return r.MatchedField != "" }

var placeholderRe = regexp.MustCompile(`\{(.+?)\}`)

// placeholderNames lists the {name} tokens of a route template.
func placeholderNames(template string) []string {
	matches := placeholderRe.FindAllStringSubmatch(template, -1)
	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = m[1]
	}
	return names
}

// resolve picks the first dictionary route whose field holds exactly one
// known value, falling back to main. params is consumed.
func (b *Builder) resolve(res *result.Result, params *urlparams.Params) (Resolution, error) {
	for _, e := range b.dict.entries {
		if e.Field == MainField {
			continue
		}
		v, ok := params.Get(e.Field)
		if !ok {
			continue
		}
		id, ok := v.Single()
		if !ok {
			continue
		}
		counter, ok := res.Counter(e.Field, id)
		if !ok {
			continue
		}

		params.Delete(e.Field)
		resolution, err := b.resolveDedicated(e, counter, params)
		if err != nil {
			return Resolution{}, err
		}
		b.observeResolution("dedicated")
		return resolution, nil
	}

	main, ok := b.dict.Main()
	if !ok {
		return Resolution{}, domain.ErrMissingMainRoute
	}
	url, err := b.routes.Generate(main, params, true)
	if err != nil {
		return Resolution{}, fmt.Errorf("generate main route: %w", err)
	}
	tpl, err := b.routes.Template(main, true)
	if err != nil {
		return Resolution{}, fmt.Errorf("main route template: %w", err)
	}
	b.observeResolution(MainField)
	return Resolution{URL: url, Params: params, Route: main, TemplatePath: tpl}, nil
}

func (b *Builder) resolveDedicated(
	e RouteEntry, counter result.Counter, params *urlparams.Params,
) (Resolution, error) {
	tpl, err := b.routes.Template(e.Route, true)
	if err != nil {
		return Resolution{}, fmt.Errorf("route template for %q: %w", e.Field, err)
	}

	args := urlparams.New()
	for _, name := range placeholderNames(tpl) {
		if v, ok := counter.Value(name); ok {
			args.Set(name, urlparams.Scalar(v))
		}
	}
	args.Merge(params)

	url, err := b.routes.Generate(e.Route, args, true)
	if err != nil {
		return Resolution{}, fmt.Errorf("generate route for %q: %w", e.Field, err)
	}
	return Resolution{URL: url, Params: params, Route: e.Route, TemplatePath: tpl, MatchedField: e.Field}, nil
}

// withoutQuery strips the query string of a URL.
func withoutQuery(url string) string {
	path, _, _ := strings.Cut(url, "?")
	return path
}

// queryOf returns the query string of a URL, without "?".
func queryOf(url string) string {
	_, q, _ := strings.Cut(url, "?")
	return q
}
