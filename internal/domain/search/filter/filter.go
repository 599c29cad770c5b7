package filter

import "fmt"

// MaxValuesPerFilter is the maximum number of values a single filter may carry.
const MaxValuesPerFilter = 64

// QueryName is the reserved filter holding free-text search terms.
const QueryName = "_query"

// ApplicationType controls how the values of a filter combine.
type ApplicationType string

// Application types.
const (
	// MustAll requires every value to match.
	MustAll ApplicationType = "must_all"
	// MustAllWithLevels marks a hierarchical facet: values form a level path
	// and are cleared wholesale when the facet is toggled.
	MustAllWithLevels ApplicationType = "must_all_with_levels"
	AtLeastOne        ApplicationType = "at_least_one"
	Exclude           ApplicationType = "exclude"
)

// IsValid checks if the application type is one of the supported values.
func (t ApplicationType) IsValid() bool {
	switch t {
	case MustAll, MustAllWithLevels, AtLeastOne, Exclude:
		return true
	}
	return false
}

// IsHierarchical reports whether values of this type form a level path.
func (t ApplicationType) IsHierarchical() bool { return t == MustAllWithLevels }

// Filter is a named constraint over an ordered list of values.
type Filter struct {
	name            string
	values          []string
	applicationType ApplicationType
}

// New validates and creates a Filter. An empty application type defaults to at_least_one.
func New(name string, values []string, t ApplicationType) (Filter, error) {
	if name == "" {
		return Filter{}, fmt.Errorf("filter name is required")
	}
	if t == "" {
		t = AtLeastOne
	}
	if !t.IsValid() {
		return Filter{}, fmt.Errorf("invalid application type %q for filter %q", t, name)
	}
	if len(values) > MaxValuesPerFilter {
		return Filter{}, fmt.Errorf("too many values for filter %q (max %d)", name, MaxValuesPerFilter)
	}
	vs := make([]string, len(values))
	copy(vs, values)
	return Filter{name: name, values: vs, applicationType: t}, nil
}

// NewQueryText creates the reserved free-text filter.
func NewQueryText(text string) Filter {
	return Filter{name: QueryName, values: []string{text}, applicationType: MustAll}
}

// Name returns the filter name.
func (f Filter) Name() string { return f.name }

// Values returns a copy of the filter values in their original order.
func (f Filter) Values() []string {
	vs := make([]string, len(f.values))
	copy(vs, f.values)
	return vs
}

// ApplicationType returns how the filter values combine.
func (f Filter) ApplicationType() ApplicationType { return f.applicationType }

// FirstValue returns the first value, or "" when the filter is empty.
func (f Filter) FirstValue() string {
	if len(f.values) == 0 {
		return ""
	}
	return f.values[0]
}
