package geo

import (
	"fmt"

	"github.com/kailas-cloud/facetlinks/internal/domain"
	"github.com/kailas-cloud/facetlinks/internal/domain/search/filter"
)

// FilterName is the filter a location range is applied through.
const FilterName = "location"

// Kind tags a LocationRange variant on the wire.
type Kind string

// Location range kinds.
const (
	KindCoordinateAndDistance Kind = "CoordinateAndDistance"
	KindPolygon               Kind = "Polygon"
	KindSquare                Kind = "Square"
)

// LocationRange is an area a search can be restricted to.
// The set of variants is closed: CoordinateAndDistance, Polygon and Square.
type LocationRange interface {
	Kind() Kind
	// Contains reports whether c lies inside the range.
	Contains(c Coordinate) bool
	// FilterValues renders the range as filter values, kind first.
	FilterValues() []string
}

// Filter converts a location range into the search filter it stands for.
func Filter(r LocationRange) (filter.Filter, error) {
	return filter.New(FilterName, r.FilterValues(), filter.MustAll)
}

// CoordinateAndDistance is the circle of Distance around Coordinate.
type CoordinateAndDistance struct {
	coordinate Coordinate
	distance   string
	meters     float64
}

// NewCoordinateAndDistance creates a circular range. distance uses the
// ParseDistance format.
func NewCoordinateAndDistance(c Coordinate, distance string) (*CoordinateAndDistance, error) {
	if !ValidateCoordinates(c.Lat, c.Lon) {
		return nil, fmt.Errorf("%w: center %s out of range", domain.ErrInvalidLocationRange, c)
	}
	m, err := ParseDistance(distance)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidLocationRange, err)
	}
	return &CoordinateAndDistance{coordinate: c, distance: distance, meters: m}, nil
}

// Kind implements LocationRange.
func (r *CoordinateAndDistance) Kind() Kind { return KindCoordinateAndDistance }

// Coordinate returns the center.
func (r *CoordinateAndDistance) Coordinate() Coordinate { return r.coordinate }

// Distance returns the radius as given.
func (r *CoordinateAndDistance) Distance() string { return r.distance }

// Contains implements LocationRange.
func (r *CoordinateAndDistance) Contains(c Coordinate) bool {
	return r.coordinate.DistanceTo(c) <= r.meters
}

// FilterValues implements LocationRange.
func (r *CoordinateAndDistance) FilterValues() []string {
	return []string{string(KindCoordinateAndDistance), r.coordinate.String(), r.distance}
}

// Polygon is the area enclosed by at least three vertices.
type Polygon struct {
	coordinates []Coordinate
}

// NewPolygon creates a polygon range. Vertices are kept in order.
func NewPolygon(coordinates []Coordinate) (*Polygon, error) {
	if len(coordinates) < 3 {
		return nil, fmt.Errorf("%w: polygon needs at least 3 vertices, got %d",
			domain.ErrInvalidLocationRange, len(coordinates))
	}
	cs := make([]Coordinate, len(coordinates))
	for i, c := range coordinates {
		if !ValidateCoordinates(c.Lat, c.Lon) {
			return nil, fmt.Errorf("%w: vertex %d %s out of range", domain.ErrInvalidLocationRange, i, c)
		}
		cs[i] = c
	}
	return &Polygon{coordinates: cs}, nil
}

// Kind implements LocationRange.
func (r *Polygon) Kind() Kind { return KindPolygon }

// Coordinates returns a copy of the vertices.
func (r *Polygon) Coordinates() []Coordinate {
	cs := make([]Coordinate, len(r.coordinates))
	copy(cs, r.coordinates)
	return cs
}

// Contains implements LocationRange with the even-odd rule on a plane of
// degrees. Points on an edge may fall either way.
func (r *Polygon) Contains(c Coordinate) bool {
	inside := false
	n := len(r.coordinates)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := r.coordinates[i], r.coordinates[j]
		if (a.Lat > c.Lat) != (b.Lat > c.Lat) &&
			c.Lon < (b.Lon-a.Lon)*(c.Lat-a.Lat)/(b.Lat-a.Lat)+a.Lon {
			inside = !inside
		}
	}
	return inside
}

// FilterValues implements LocationRange.
func (r *Polygon) FilterValues() []string {
	vs := make([]string, 0, len(r.coordinates)+1)
	vs = append(vs, string(KindPolygon))
	for _, c := range r.coordinates {
		vs = append(vs, c.String())
	}
	return vs
}

// Square is the box between its top-left and bottom-right corners.
type Square struct {
	topLeft     Coordinate
	bottomRight Coordinate
}

// NewSquare creates a box range.
func NewSquare(topLeft, bottomRight Coordinate) (*Square, error) {
	if !ValidateCoordinates(topLeft.Lat, topLeft.Lon) || !ValidateCoordinates(bottomRight.Lat, bottomRight.Lon) {
		return nil, fmt.Errorf("%w: square corner out of range", domain.ErrInvalidLocationRange)
	}
	if topLeft.Lat < bottomRight.Lat || topLeft.Lon > bottomRight.Lon {
		return nil, fmt.Errorf("%w: top-left %s is not above-left of bottom-right %s",
			domain.ErrInvalidLocationRange, topLeft, bottomRight)
	}
	return &Square{topLeft: topLeft, bottomRight: bottomRight}, nil
}

// Kind implements LocationRange.
func (r *Square) Kind() Kind { return KindSquare }

// TopLeft returns the north-west corner.
func (r *Square) TopLeft() Coordinate { return r.topLeft }

// BottomRight returns the south-east corner.
func (r *Square) BottomRight() Coordinate { return r.bottomRight }

// Contains implements LocationRange. Boundaries are inclusive.
func (r *Square) Contains(c Coordinate) bool {
	return c.Lat <= r.topLeft.Lat && c.Lat >= r.bottomRight.Lat &&
		c.Lon >= r.topLeft.Lon && c.Lon <= r.bottomRight.Lon
}

// FilterValues implements LocationRange.
func (r *Square) FilterValues() []string {
	return []string{string(KindSquare), r.topLeft.String(), r.bottomRight.String()}
}
