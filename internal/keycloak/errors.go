package keycloak

import "errors"

// Failure classes returned by Client. Errors are wrapped with operation context; match
// them with errors.Is.
var (
	ErrNotFound            = errors.New("keycloak: resource not found")
	ErrConflict            = errors.New("keycloak: user already exists")
	ErrValidationRejected  = errors.New("keycloak: payload rejected")
	ErrUpstreamUnavailable = errors.New("keycloak: upstream unavailable")
	ErrMalformedResponse   = errors.New("keycloak: malformed response")
)

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrValidationRejected):
		return "rejected"
	case errors.Is(err, ErrMalformedResponse):
		return "malformed"
	default:
		return "unavailable"
	}
}
