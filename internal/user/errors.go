package user

import (
	"errors"
	"net/http"

	"backend_resources/internal/common"
	"backend_resources/internal/keycloak"
)

var (
	ErrUserAlreadyExists       = common.NewAPIError(http.StatusConflict, "USER_ALREADY_EXISTS", "A user with this username or email already exists.")
	ErrInvalidUserData         = common.NewAPIError(http.StatusBadRequest, "INVALID_USER_DATA", "The identity provider rejected the user data.")
	ErrUserNotFound            = common.NewAPIError(http.StatusNotFound, "NOT_FOUND", "User not found.")
	ErrProvisioningUnavailable = common.NewAPIError(http.StatusServiceUnavailable, "PROVISIONING_UNAVAILABLE", "The identity provider is currently unavailable. Please try again later.")

	// ErrMalformedUpstreamData means the identity provider answered with a record the
	// service cannot map. Callers see ErrProvisioningUnavailable.
	ErrMalformedUpstreamData = errors.New("user: malformed upstream data")
)

// translateError maps identity-provider client failures onto the API error taxonomy.
// Anything unrecognised is treated as the provider being unavailable.
func translateError(err error) *common.APIError {
	switch {
	case errors.Is(err, keycloak.ErrConflict):
		return ErrUserAlreadyExists
	case errors.Is(err, keycloak.ErrValidationRejected):
		return ErrInvalidUserData
	case errors.Is(err, keycloak.ErrNotFound):
		return ErrUserNotFound
	default:
		return ErrProvisioningUnavailable
	}
}
