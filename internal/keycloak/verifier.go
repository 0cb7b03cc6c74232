package keycloak

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"backend_resources/internal/config"
	"backend_resources/internal/shared"

	"github.com/coreos/go-oidc/v3/oidc"
)

// ErrInvalidToken is returned for any bearer token that does not verify.
var ErrInvalidToken = errors.New("keycloak: invalid access token")

// VerifierConfig selects the realm whose tokens are accepted.
type VerifierConfig struct {
	BaseURL  string
	Realm    string
	ClientID string
	// Audience, when set, must appear in the token's aud claim.
	Audience string
	// KeySet overrides the realm's remote JWKS.
	KeySet oidc.KeySet
}

// TokenVerifier checks realm-issued access tokens against the realm's signing keys and
// extracts the caller's username and roles.
type TokenVerifier struct {
	verifier *oidc.IDTokenVerifier
	realm    string
	clientID string
}

var _ shared.TokenVerifier = (*TokenVerifier)(nil)

type accessTokenClaims struct {
	PreferredUsername string `json:"preferred_username"`
	RealmAccess       struct {
		Roles []string `json:"roles"`
	} `json:"realm_access"`
	ResourceAccess map[string]struct {
		Roles []string `json:"roles"`
	} `json:"resource_access"`
}

// NewTokenVerifier builds a verifier for cfg.Realm. Keys are fetched lazily from the
// realm's certs endpoint unless cfg.KeySet is given.
func NewTokenVerifier(cfg VerifierConfig) *TokenVerifier {
	issuer := fmt.Sprintf("%s/realms/%s", strings.TrimSuffix(cfg.BaseURL, "/"), url.PathEscape(cfg.Realm))
	keySet := cfg.KeySet
	if keySet == nil {
		keySet = oidc.NewRemoteKeySet(context.Background(), issuer+"/protocol/openid-connect/certs")
	}
	return &TokenVerifier{
		verifier: oidc.NewVerifier(issuer, keySet, &oidc.Config{
			ClientID:          cfg.Audience,
			SkipClientIDCheck: cfg.Audience == "",
		}),
		realm:    cfg.Realm,
		clientID: cfg.ClientID,
	}
}

// NewTokenVerifierFromConfig builds a verifier for the configured default realm.
func NewTokenVerifierFromConfig(cfg *config.Config) *TokenVerifier {
	return NewTokenVerifier(VerifierConfig{
		BaseURL:  cfg.KeycloakBaseURL,
		Realm:    cfg.KeycloakRealm,
		ClientID: cfg.KeycloakClientID,
		Audience: cfg.KeycloakAudience,
	})
}

// Verify validates rawToken and returns the caller it identifies.
func (v *TokenVerifier) Verify(ctx context.Context, rawToken string) (*shared.Principal, error) {
	token, err := v.verifier.Verify(ctx, rawToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	var claims accessTokenClaims
	if err := token.Claims(&claims); err != nil {
		return nil, fmt.Errorf("%w: decode claims: %v", ErrInvalidToken, err)
	}

	username := claims.PreferredUsername
	if username == "" {
		username = token.Subject
	}
	if username == "" {
		return nil, fmt.Errorf("%w: token names no user", ErrInvalidToken)
	}

	roles := append([]string{}, claims.RealmAccess.Roles...)
	if client, ok := claims.ResourceAccess[v.clientID]; ok {
		roles = append(roles, client.Roles...)
	}

	return &shared.Principal{
		Subject:  token.Subject,
		Username: username,
		Realm:    v.realm,
		Roles:    roles,
	}, nil
}
