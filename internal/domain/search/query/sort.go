package query

import "fmt"

// Sort directions.
const (
	Asc  = "asc"
	Desc = "desc"
)

// ScoreField is the pseudo-field that orders hits by relevance.
const ScoreField = "_score"

// SortBy is a single field/direction ordering.
type SortBy struct {
	field     string
	direction string
}

// Score is the default relevance ordering.
var Score = SortBy{field: ScoreField, direction: Asc}

// NewSortBy validates and creates a SortBy.
func NewSortBy(field, direction string) (SortBy, error) {
	if field == "" {
		return SortBy{}, fmt.Errorf("sort field is required")
	}
	if direction != Asc && direction != Desc {
		return SortBy{}, fmt.Errorf("sort direction must be %q or %q, got %q", Asc, Desc, direction)
	}
	return SortBy{field: field, direction: direction}, nil
}

// Field returns the sorted field.
func (s SortBy) Field() string { return s.field }

// Direction returns asc or desc.
func (s SortBy) Direction() string { return s.direction }

// IsScore reports whether s is the relevance ordering.
func (s SortBy) IsScore() bool { return s == Score }

// IsZero reports whether s was never set.
func (s SortBy) IsZero() bool { return s == SortBy{} }
