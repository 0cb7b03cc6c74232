package user

import (
	"fmt"

	"backend_resources/internal/keycloak"
)

const passwordCredential = "password"

// toRepresentation builds the Keycloak user document for req. The account is enabled
// and the password is permanent.
func toRepresentation(req CreateUserRequest) keycloak.UserRepresentation {
	return keycloak.UserRepresentation{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Enabled:   true,
		Credentials: []keycloak.CredentialRepresentation{{
			Type:      passwordCredential,
			Value:     req.Password,
			Temporary: false,
		}},
	}
}

// toUserProfile projects a Keycloak user record plus its role and group names.
func toUserProfile(rec *keycloak.UserRepresentation, roles, groups []string) (*UserProfile, error) {
	if rec == nil {
		return nil, fmt.Errorf("%w: empty user record", ErrMalformedUpstreamData)
	}
	if rec.ID == "" {
		return nil, fmt.Errorf("%w: user record has no id", ErrMalformedUpstreamData)
	}
	if roles == nil {
		roles = []string{}
	}
	if groups == nil {
		groups = []string{}
	}
	return &UserProfile{
		ID:        rec.ID,
		FirstName: nameField(rec, rec.FirstName, "firstName"),
		LastName:  nameField(rec, rec.LastName, "lastName"),
		Roles:     roles,
		Groups:    groups,
	}, nil
}

// nameField prefers the top-level value and falls back to a custom attribute of the
// same name, which some realms populate instead.
func nameField(rec *keycloak.UserRepresentation, value, attr string) string {
	if value != "" {
		return value
	}
	if vals := rec.Attributes[attr]; len(vals) > 0 {
		return vals[0]
	}
	return ""
}
