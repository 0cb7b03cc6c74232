package keycloak

// UserRepresentation mirrors the subset of the Keycloak admin API user document the
// service reads and writes.
type UserRepresentation struct {
	ID            string                     `json:"id,omitempty"`
	Username      string                     `json:"username,omitempty"`
	Email         string                     `json:"email,omitempty"`
	FirstName     string                     `json:"firstName,omitempty"`
	LastName      string                     `json:"lastName,omitempty"`
	Enabled       bool                       `json:"enabled"`
	EmailVerified bool                       `json:"emailVerified"`
	Attributes    map[string][]string        `json:"attributes,omitempty"`
	Credentials   []CredentialRepresentation `json:"credentials,omitempty"`
}

// CredentialRepresentation carries a password on user creation.
type CredentialRepresentation struct {
	Type      string `json:"type"`
	Value     string `json:"value"`
	Temporary bool   `json:"temporary"`
}

// RoleRepresentation is a realm or client role.
type RoleRepresentation struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Composite   bool   `json:"composite"`
	ClientRole  bool   `json:"clientRole"`
	ContainerID string `json:"containerId,omitempty"`
}

// ClientMappingsRepresentation groups the client roles mapped to a user for one client.
type ClientMappingsRepresentation struct {
	ID       string               `json:"id"`
	Client   string               `json:"client"`
	Mappings []RoleRepresentation `json:"mappings"`
}

// MappingsRepresentation is the body of GET /users/{id}/role-mappings.
type MappingsRepresentation struct {
	RealmMappings  []RoleRepresentation                    `json:"realmMappings,omitempty"`
	ClientMappings map[string]ClientMappingsRepresentation `json:"clientMappings,omitempty"`
}

// GroupRepresentation is one entry of GET /users/{id}/groups.
type GroupRepresentation struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Path string `json:"path"`
}

// errorRepresentation is the error body Keycloak returns on 4xx.
type errorRepresentation struct {
	Error            string `json:"error"`
	ErrorMessage     string `json:"errorMessage"`
	ErrorDescription string `json:"error_description"`
}

func (e errorRepresentation) message() string {
	switch {
	case e.ErrorMessage != "":
		return e.ErrorMessage
	case e.ErrorDescription != "":
		return e.ErrorDescription
	default:
		return e.Error
	}
}
