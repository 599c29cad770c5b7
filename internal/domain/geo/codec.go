package geo

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"github.com/kailas-cloud/facetlinks/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// envelope is the wire form of every location range.
type envelope struct {
	Type Kind                `json:"type"`
	Data jsoniter.RawMessage `json:"data"`
}

type coordinateAndDistanceData struct {
	Coordinate Coordinate `json:"coordinate"`
	Distance   string     `json:"distance"`
}

type polygonData struct {
	Coordinates []Coordinate `json:"coordinates"`
}

type squareData struct {
	TopLeft     Coordinate `json:"top_left"`
	BottomRight Coordinate `json:"bottom_right"`
}

type decodeFunc func(data []byte) (LocationRange, error)

var decoders = map[Kind]decodeFunc{
	KindCoordinateAndDistance: func(data []byte) (LocationRange, error) {
		var d coordinateAndDistanceData
		if err := json.Unmarshal(data, &d); err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrInvalidLocationRange, err)
		}
		return NewCoordinateAndDistance(d.Coordinate, d.Distance)
	},
	KindPolygon: func(data []byte) (LocationRange, error) {
		var d polygonData
		if err := json.Unmarshal(data, &d); err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrInvalidLocationRange, err)
		}
		return NewPolygon(d.Coordinates)
	},
	KindSquare: func(data []byte) (LocationRange, error) {
		var d squareData
		if err := json.Unmarshal(data, &d); err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrInvalidLocationRange, err)
		}
		return NewSquare(d.TopLeft, d.BottomRight)
	},
}

// Marshal encodes a location range as {"type": kind, "data": {...}}.
func Marshal(r LocationRange) ([]byte, error) {
	var data any
	switch v := r.(type) {
	case *CoordinateAndDistance:
		data = coordinateAndDistanceData{Coordinate: v.coordinate, Distance: v.distance}
	case *Polygon:
		data = polygonData{Coordinates: v.coordinates}
	case *Square:
		data = squareData{TopLeft: v.topLeft, BottomRight: v.bottomRight}
	default:
		return nil, fmt.Errorf("%w: %T", domain.ErrUnknownLocationRange, r)
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal %s data: %w", r.Kind(), err)
	}
	return json.Marshal(envelope{Type: r.Kind(), Data: raw})
}

// Unmarshal decodes a location range envelope.
func Unmarshal(b []byte) (LocationRange, error) {
	var env envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidLocationRange, err)
	}
	decode, ok := decoders[env.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownLocationRange, env.Type)
	}
	if len(env.Data) == 0 {
		return nil, fmt.Errorf("%w: %s has no data", domain.ErrInvalidLocationRange, env.Type)
	}
	r, err := decode(env.Data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", env.Type, err)
	}
	return r, nil
}
