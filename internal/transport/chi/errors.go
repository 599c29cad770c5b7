package chi

import (
	"errors"
	"net/http"

	"github.com/kailas-cloud/facetlinks/internal/domain"
)

// ErrorCode is the machine-readable error kind of an API response.
type ErrorCode string

// Error codes.
const (
	ErrorCodeBadRequest           ErrorCode = "bad_request"
	ErrorCodeUnauthorized         ErrorCode = "unauthorized"
	ErrorCodeValidationFailed     ErrorCode = "validation_failed"
	ErrorCodeSiteNotFound         ErrorCode = "site_not_found"
	ErrorCodeRouteParameter       ErrorCode = "route_parameter_invalid"
	ErrorCodeRoutingMisconfigured ErrorCode = "routing_misconfigured"
	ErrorCodeInternalError        ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// exposedSentinels are the errors whose message may reach clients.
var exposedSentinels = []error{
	domain.ErrUnknownSite,
	domain.ErrInvalidQuery,
	domain.ErrInvalidResult,
	domain.ErrInvalidLocationRange,
	domain.ErrUnknownLocationRange,
	domain.ErrNoTransformer,
	domain.ErrMissingRouteParameter,
	domain.ErrInvalidRouteParameter,
	domain.ErrMissingMainRoute,
	domain.ErrUnknownRoute,
	domain.ErrInvalidRoutePattern,
}

func defaultErrorHandlers() []errorHandler {
	return []errorHandler{
		sentinelHandler(domain.ErrUnknownSite, http.StatusNotFound, ErrorCodeSiteNotFound),
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, ErrorCodeValidationFailed),
		sentinelHandler(domain.ErrInvalidResult, http.StatusBadRequest, ErrorCodeValidationFailed),
		sentinelHandler(domain.ErrInvalidLocationRange, http.StatusBadRequest, ErrorCodeValidationFailed),
		sentinelHandler(domain.ErrUnknownLocationRange, http.StatusBadRequest, ErrorCodeValidationFailed),
		sentinelHandler(domain.ErrNoTransformer, http.StatusBadRequest, ErrorCodeValidationFailed),
		routeParamHandler,
		sentinelHandler(domain.ErrMissingMainRoute, http.StatusInternalServerError, ErrorCodeRoutingMisconfigured),
		sentinelHandler(domain.ErrUnknownRoute, http.StatusInternalServerError, ErrorCodeRoutingMisconfigured),
		sentinelHandler(domain.ErrInvalidRoutePattern, http.StatusInternalServerError, ErrorCodeRoutingMisconfigured),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	for _, s := range exposedSentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// routeParamHandler reports which facet value a route could not take.
func routeParamHandler(w http.ResponseWriter, err error, msg string) bool {
	if !errors.Is(err, domain.ErrMissingRouteParameter) && !errors.Is(err, domain.ErrInvalidRouteParameter) {
		return false
	}
	var re *domain.RouteError
	if errors.As(err, &re) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"code":    ErrorCodeRouteParameter,
			"message": msg,
			"route":   re.Route,
			"param":   re.Param,
		})
		return true
	}
	writeError(w, http.StatusUnprocessableEntity, ErrorCodeRouteParameter, msg)
	return true
}
