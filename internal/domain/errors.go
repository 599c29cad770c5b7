package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingMainRoute signals a routes dictionary without the "main" entry.
	ErrMissingMainRoute = errors.New("routes dictionary has no main route")
	// ErrUnknownRoute signals a route name the route table cannot resolve.
	ErrUnknownRoute = errors.New("unknown route")
	// ErrMissingRouteParameter signals a placeholder with no value to fill it.
	ErrMissingRouteParameter = errors.New("missing route parameter")
	// ErrInvalidRouteParameter signals a placeholder value rejected by its pattern.
	ErrInvalidRouteParameter = errors.New("invalid route parameter")
	// ErrInvalidRoutePattern signals a route pattern the router refuses to register.
	ErrInvalidRoutePattern = errors.New("invalid route pattern")

	// ErrInvalidQuery signals an inconsistent search query.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrInvalidResult signals an inconsistent search result.
	ErrInvalidResult = errors.New("invalid result")

	// ErrUnknownSite signals a site name with no configured routing.
	ErrUnknownSite = errors.New("unknown site")

	// ErrNoTransformer signals that no registered transformer accepted the value.
	ErrNoTransformer = errors.New("no transformer accepted value")
	// ErrUnknownLocationRange signals an unregistered location range kind.
	ErrUnknownLocationRange = errors.New("unknown location range type")
	// ErrInvalidLocationRange signals a malformed location range payload.
	ErrInvalidLocationRange = errors.New("invalid location range")
)

// RouteError wraps a routing sentinel with the route name it concerns.
type RouteError struct {
	Route string
	Param string
	Err   error
}

func (e *RouteError) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("route %q: %s %q", e.Route, e.Err.Error(), e.Param)
	}
	return fmt.Sprintf("route %q: %s", e.Route, e.Err.Error())
}

func (e *RouteError) Unwrap() error { return e.Err }

// NewRouteError creates a route error for the given sentinel.
func NewRouteError(route string, err error) error {
	return &RouteError{Route: route, Err: err}
}

// NewRouteParamError creates a route error that names the offending placeholder.
func NewRouteParamError(route, param string, err error) error {
	return &RouteError{Route: route, Param: param, Err: err}
}
