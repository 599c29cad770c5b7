package linkbuilder

import "fmt"

// MainField is the dictionary key of the generic route.
const MainField = "main"

// RouteEntry maps a facet field to the route used when exactly one of its
// values is selected.
type RouteEntry struct {
	Field string
	Route string
}

// RoutesDictionary is an ordered field -> route mapping. Order is match priority.
type RoutesDictionary struct {
	entries []RouteEntry
	main    string
}

// NewRoutesDictionary validates and creates a dictionary. A missing main entry
// is accepted here and reported when a link is first resolved.
func NewRoutesDictionary(entries ...RouteEntry) (RoutesDictionary, error) {
	d := RoutesDictionary{entries: make([]RouteEntry, 0, len(entries))}
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if e.Field == "" || e.Route == "" {
			return RoutesDictionary{}, fmt.Errorf("routes dictionary entry needs field and route, got %+v", e)
		}
		if _, dup := seen[e.Field]; dup {
			return RoutesDictionary{}, fmt.Errorf("routes dictionary has field %q twice", e.Field)
		}
		seen[e.Field] = struct{}{}
		if e.Field == MainField {
			d.main = e.Route
		}
		d.entries = append(d.entries, e)
	}
	return d, nil
}

// Main returns the generic route.
func (d RoutesDictionary) Main() (string, bool) { return d.main, d.main != "" }

// Entries returns all entries in priority order, main included.
func (d RoutesDictionary) Entries() []RouteEntry {
	es := make([]RouteEntry, len(d.entries))
	copy(es, d.entries)
	return es
}

// Routes returns every route name referenced, in priority order.
func (d RoutesDictionary) Routes() []string {
	rs := make([]string, len(d.entries))
	for i, e := range d.entries {
		rs[i] = e.Route
	}
	return rs
}
