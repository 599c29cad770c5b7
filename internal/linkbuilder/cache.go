package linkbuilder

import (
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/kailas-cloud/facetlinks/internal/domain/search/result"
	"github.com/kailas-cloud/facetlinks/internal/domain/urlparams"
)

// segment is a literal piece of a cached URL, or a slot for a display
// value of the counter being added.
type segment struct {
	literal string
	slot    string
}

// routeTemplate is the URL adding any value of a field yields. Only slots
// are substituted; literal text is copied as is, braces included.
type routeTemplate struct {
	// route names the route whose placeholders the path slots stand for;
	// "" when the slots sit in the query string only.
	route    string
	segments []segment
}

// fill substitutes a counter into the template. ok is false when the route
// rejects one of the counter's values.
func (t routeTemplate) fill(accepts func(route, param, value string) bool, counter result.Counter) (string, bool) {
	var b strings.Builder
	for _, s := range t.segments {
		if s.slot == "" {
			b.WriteString(s.literal)
			continue
		}
		v, _ := counter.Value(s.slot)
		if t.route != "" && !accepts(t.route, s.slot, v) {
			return "", false
		}
		b.WriteString(v)
	}
	return b.String(), true
}

// String renders the template with {name} in place of every slot.
func (t routeTemplate) String() string {
	var b strings.Builder
	for _, s := range t.segments {
		if s.slot != "" {
			b.WriteString("{" + s.slot + "}")
			continue
		}
		b.WriteString(s.literal)
	}
	return b.String()
}

// routeCache maps a facet field to its routeTemplate. Entries are never
// invalidated: the result they were derived from is immutable.
type routeCache struct {
	mu        sync.RWMutex
	templates map[string]routeTemplate
	group     singleflight.Group
}

// cacheFill is what the singleflight leader hands its followers.
type cacheFill struct {
	template routeTemplate
	cached   bool
	id       string
	url      string
	err      error
}

func newRouteCache() *routeCache {
	return &routeCache{templates: make(map[string]routeTemplate)}
}

func (c *routeCache) get(field string) (routeTemplate, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	tpl, ok := c.templates[field]
	return tpl, ok
}

// put is idempotent: concurrent fills of a field compute the same template.
func (c *routeCache) put(field string, template routeTemplate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.templates[field] = template
}

func (c *routeCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.templates)
}

// deriveTemplate turns the resolution of "add id to field" into a reusable
// template for every other value of field. Path slots come from the route
// template; the query string is literal except for the field's own pair.
func deriveTemplate(field, id string, res Resolution) (routeTemplate, bool) {
	var tpl routeTemplate
	if res.Matched() && res.MatchedField != field {
		tpl.segments = append(tpl.segments, segment{literal: withoutQuery(res.URL)})
	} else {
		path := res.TemplatePath
		from := 0
		for _, loc := range placeholderRe.FindAllStringSubmatchIndex(path, -1) {
			name := path[loc[2]:loc[3]]
			if name != result.ValueID && name != result.ValueSlug {
				return routeTemplate{}, false
			}
			tpl.segments = append(tpl.segments, segment{literal: path[from:loc[0]]}, segment{slot: name})
			from = loc[1]
		}
		tpl.segments = append(tpl.segments, segment{literal: path[from:]})
		if from > 0 {
			tpl.route = res.Route
		}
	}

	q := queryOf(res.URL)
	if q == "" {
		return tpl, true
	}
	tpl.segments = append(tpl.segments, segment{literal: "?"})

	v, ok := res.Params.Get(field)
	if !ok {
		tpl.segments = append(tpl.segments, segment{literal: q})
		return tpl, true
	}
	i := v.Index(id)
	if i < 0 {
		return routeTemplate{}, false
	}
	start, end, ok := findQueryPair(q, urlparams.ListKey(field, i), id)
	if !ok {
		return routeTemplate{}, false
	}
	tpl.segments = append(tpl.segments,
		segment{literal: q[:start]},
		segment{slot: result.ValueID},
		segment{literal: q[end:]},
	)
	return tpl, true
}

// findQueryPair locates the value of the key=value pair in a query string,
// matching whole pairs only. start and end bound the value.
func findQueryPair(query, key, value string) (start, end int, ok bool) {
	pair := key + "=" + value
	for from := 0; ; {
		i := strings.Index(query[from:], pair)
		if i < 0 {
			return 0, 0, false
		}
		i += from
		stop := i + len(pair)
		if (i == 0 || query[i-1] == '&') && (stop == len(query) || query[stop] == '&') {
			return i + len(key) + 1, stop, true
		}
		from = i + 1
	}
}
