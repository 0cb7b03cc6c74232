package keycloak

import "fmt"

// RealmRoleNames flattens the realm role mappings into names, keeping Keycloak's order.
func RealmRoleNames(m MappingsRepresentation) ([]string, error) {
	names := make([]string, 0, len(m.RealmMappings))
	for i, role := range m.RealmMappings {
		if role.Name == "" {
			return nil, fmt.Errorf("%w: realm role mapping %d has no name", ErrMalformedResponse, i)
		}
		names = append(names, role.Name)
	}
	return names, nil
}

// GroupNames flattens group memberships into names, keeping Keycloak's order.
func GroupNames(groups []GroupRepresentation) ([]string, error) {
	names := make([]string, 0, len(groups))
	for i, g := range groups {
		if g.Name == "" {
			return nil, fmt.Errorf("%w: group membership %d has no name", ErrMalformedResponse, i)
		}
		names = append(names, g.Name)
	}
	return names, nil
}
