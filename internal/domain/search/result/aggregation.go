package result

import "fmt"

// Display value keys every counter carries.
const (
	ValueID   = "id"
	ValueSlug = "slug"
)

// Counter is one selectable value of a facet.
type Counter struct {
	id     string
	values map[string]string
	n      int
	used   bool
}

// NewCounter creates a counter. values may carry extra display fields;
// "id" is always set to id and "slug" defaults to id.
func NewCounter(id string, values map[string]string, n int, used bool) (Counter, error) {
	if id == "" {
		return Counter{}, fmt.Errorf("counter id is required")
	}
	if n < 0 {
		return Counter{}, fmt.Errorf("counter %q has negative count %d", id, n)
	}
	vs := make(map[string]string, len(values)+2)
	for k, v := range values {
		vs[k] = v
	}
	vs[ValueID] = id
	if vs[ValueSlug] == "" {
		vs[ValueSlug] = id
	}
	return Counter{id: id, values: vs, n: n, used: used}, nil
}

// ID returns the value identifier.
func (c *Counter) ID() string { return c.id }

// Slug returns the URL-friendly display name.
func (c *Counter) Slug() string { return c.values[ValueSlug] }

// Values returns a copy of the display values.
func (c *Counter) Values() map[string]string {
	vs := make(map[string]string, len(c.values))
	for k, v := range c.values {
		vs[k] = v
	}
	return vs
}

// Value returns a single display value.
func (c *Counter) Value(key string) (string, bool) {
	v, ok := c.values[key]
	return v, ok
}

// N returns the number of hits carrying this value.
func (c *Counter) N() int { return c.n }

// IsUsed reports whether the value is selected in the originating query.
func (c *Counter) IsUsed() bool { return c.used }

// Aggregation is a named facet with its counters in display order.
type Aggregation struct {
	name     string
	counters []Counter
	byID     map[string]int
}

// NewAggregation creates an aggregation. Duplicate counter ids are rejected.
func NewAggregation(name string, counters []Counter) (Aggregation, error) {
	if name == "" {
		return Aggregation{}, fmt.Errorf("aggregation name is required")
	}
	cs := make([]Counter, len(counters))
	byID := make(map[string]int, len(counters))
	for i, c := range counters {
		if _, dup := byID[c.id]; dup {
			return Aggregation{}, fmt.Errorf("aggregation %q: duplicate counter %q", name, c.id)
		}
		byID[c.id] = i
		cs[i] = c
	}
	return Aggregation{name: name, counters: cs, byID: byID}, nil
}

// Name returns the facet name.
func (a *Aggregation) Name() string { return a.name }

// Counters returns the counters in display order.
func (a *Aggregation) Counters() []Counter {
	cs := make([]Counter, len(a.counters))
	copy(cs, a.counters)
	return cs
}

// Counter looks up a counter by value id.
func (a *Aggregation) Counter(id string) (Counter, bool) {
	i, ok := a.byID[id]
	if !ok {
		return Counter{}, false
	}
	return a.counters[i], true
}

// UsedCounters returns the counters selected in the originating query.
func (a *Aggregation) UsedCounters() []Counter {
	var used []Counter
	for _, c := range a.counters {
		if c.used {
			used = append(used, c)
		}
	}
	return used
}
