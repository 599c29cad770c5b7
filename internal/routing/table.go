// Package routing is the named route table links are generated from.
// Patterns use chi syntax: literal segments plus {name} or {name:regexp}
// placeholders. Every pattern is registered on a chi mux when the table is
// built, so a table only holds patterns chi itself would serve.
package routing

import (
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/kailas-cloud/facetlinks/internal/domain"
	"github.com/kailas-cloud/facetlinks/internal/domain/urlparams"
)

// Table resolves route names to path templates and generates URLs from them.
// It is immutable and safe for concurrent use.
type Table struct {
	baseURL string
	routes  map[string]*route
}

type route struct {
	name     string
	pattern  string
	template string
	parts    []part
}

// part is a literal chunk of the path or a placeholder.
type part struct {
	literal string
	param   string
	re      *regexp.Regexp
}

// NewTable compiles patterns (route name -> chi pattern) under an absolute base URL.
func NewTable(baseURL string, patterns map[string]string) (*Table, error) {
	base, err := normalizeBaseURL(baseURL)
	if err != nil {
		return nil, err
	}

	t := &Table{baseURL: base, routes: make(map[string]*route, len(patterns))}
	for name, pattern := range patterns {
		if name == "" {
			return nil, fmt.Errorf("%w: empty route name", domain.ErrInvalidRoutePattern)
		}
		if err := registerOnChi(pattern); err != nil {
			return nil, fmt.Errorf("%w: %w", domain.NewRouteError(name, domain.ErrInvalidRoutePattern), err)
		}
		r, err := compile(name, pattern)
		if err != nil {
			return nil, err
		}
		t.routes[name] = r
	}
	return t, nil
}

// BaseURL returns the scheme and host prefix of absolute URLs.
func (t *Table) BaseURL() string { return t.baseURL }

// Has reports whether a route exists.
func (t *Table) Has(name string) bool {
	_, ok := t.routes[name]
	return ok
}

// Names returns the route names, sorted.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.routes))
	for n := range t.routes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Template returns the route path with placeholders reduced to {name}.
// With absolute set, the base URL is prepended.
func (t *Table) Template(name string, absolute bool) (string, error) {
	r, ok := t.routes[name]
	if !ok {
		return "", domain.NewRouteError(name, domain.ErrUnknownRoute)
	}
	if absolute {
		return t.baseURL + r.template, nil
	}
	return r.template, nil
}

// Placeholders returns the placeholder names of a route in path order.
func (t *Table) Placeholders(name string) ([]string, error) {
	r, ok := t.routes[name]
	if !ok {
		return nil, domain.NewRouteError(name, domain.ErrUnknownRoute)
	}
	var names []string
	for _, p := range r.parts {
		if p.param != "" {
			names = append(names, p.param)
		}
	}
	return names, nil
}

// Accepts reports whether value may fill placeholder param of the route.
// Unknown routes and params accept nothing.
func (t *Table) Accepts(name, param, value string) bool {
	r, ok := t.routes[name]
	if !ok {
		return false
	}
	for _, p := range r.parts {
		if p.param == param {
			return p.accepts(value)
		}
	}
	return false
}

// Generate builds a URL for the route. Arguments named like a placeholder
// fill it; all others become the query string, in argument order.
// The output is not percent-encoded.
func (t *Table) Generate(name string, args *urlparams.Params, absolute bool) (string, error) {
	r, ok := t.routes[name]
	if !ok {
		return "", domain.NewRouteError(name, domain.ErrUnknownRoute)
	}

	rest := urlparams.New()
	if args != nil {
		rest = args.Clone()
	}

	var b strings.Builder
	if absolute {
		b.WriteString(t.baseURL)
	}
	for _, p := range r.parts {
		if p.param == "" {
			b.WriteString(p.literal)
			continue
		}
		v, ok := rest.Get(p.param)
		if !ok {
			return "", domain.NewRouteParamError(name, p.param, domain.ErrMissingRouteParameter)
		}
		s, ok := v.Single()
		if !ok || !p.accepts(s) {
			return "", domain.NewRouteParamError(name, p.param, domain.ErrInvalidRouteParameter)
		}
		b.WriteString(s)
		rest.Delete(p.param)
	}

	if qs := rest.QueryString(); qs != "" {
		b.WriteByte('?')
		b.WriteString(qs)
	}
	return b.String(), nil
}

func (p part) accepts(s string) bool {
	if s == "" {
		return false
	}
	if p.re != nil {
		return p.re.MatchString(s)
	}
	return !strings.Contains(s, "/")
}

func normalizeBaseURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("base url %q must be absolute", raw)
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return "", fmt.Errorf("base url %q must not carry a query or fragment", raw)
	}
	return strings.TrimRight(raw, "/"), nil
}

// registerOnChi lets chi reject patterns it would not route.
func registerOnChi(pattern string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	chi.NewRouter().Get(pattern, func(http.ResponseWriter, *http.Request) {})
	return nil
}

// compile splits a chi pattern into literal and placeholder parts.
func compile(name, pattern string) (*route, error) {
	r := &route{name: name, pattern: pattern}
	var tpl strings.Builder

	for i := 0; i < len(pattern); {
		switch pattern[i] {
		case '*':
			return nil, fmt.Errorf("%w: wildcard routes cannot be generated",
				domain.NewRouteError(name, domain.ErrInvalidRoutePattern))
		case '{':
			end := closingBrace(pattern, i)
			if end < 0 {
				return nil, domain.NewRouteError(name, domain.ErrInvalidRoutePattern)
			}
			p, err := compilePlaceholder(pattern[i+1 : end])
			if err != nil {
				return nil, fmt.Errorf("%w: %w", domain.NewRouteError(name, domain.ErrInvalidRoutePattern), err)
			}
			r.parts = append(r.parts, p)
			tpl.WriteString("{" + p.param + "}")
			i = end + 1
		default:
			j := i
			for j < len(pattern) && pattern[j] != '{' && pattern[j] != '*' {
				j++
			}
			r.parts = append(r.parts, part{literal: pattern[i:j]})
			tpl.WriteString(pattern[i:j])
			i = j
		}
	}

	r.template = tpl.String()
	return r, nil
}

func compilePlaceholder(body string) (part, error) {
	name, expr, hasExpr := strings.Cut(body, ":")
	if name == "" {
		return part{}, fmt.Errorf("placeholder without a name")
	}
	p := part{param: name}
	if hasExpr && expr != "" {
		if !strings.HasPrefix(expr, "^") {
			expr = "^" + expr
		}
		if !strings.HasSuffix(expr, "$") {
			expr += "$"
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return part{}, fmt.Errorf("placeholder %q: %w", name, err)
		}
		p.re = re
	}
	return p, nil
}

// closingBrace returns the index of the brace closing the one at start,
// honouring braces nested inside a regexp.
func closingBrace(s string, start int) int {
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
