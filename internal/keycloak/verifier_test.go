package keycloak

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testIssuer = "http://keycloak.test/realms/itm"

func newTestSigner(t *testing.T) (*rsa.PrivateKey, jose.Signer) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	signer, err := jose.NewSigner(jose.SigningKey{Algorithm: jose.RS256, Key: key}, (&jose.SignerOptions{}).WithType("JWT"))
	require.NoError(t, err)
	return key, signer
}

func signToken(t *testing.T, signer jose.Signer, issuer string, expiry time.Time, extra map[string]interface{}) string {
	t.Helper()
	raw, err := jwt.Signed(signer).
		Claims(jwt.Claims{
			Issuer:   issuer,
			Subject:  "0c1f3c47-5c2b-4c55-8a9f-9b7e0a4b1d11",
			Audience: jwt.Audience{"account"},
			Expiry:   jwt.NewNumericDate(expiry),
			IssuedAt: jwt.NewNumericDate(time.Now()),
		}).
		Claims(extra).
		Serialize()
	require.NoError(t, err)
	return raw
}

func newTestVerifier(key *rsa.PrivateKey, audience string) *TokenVerifier {
	return NewTokenVerifier(VerifierConfig{
		BaseURL:  "http://keycloak.test",
		Realm:    "itm",
		ClientID: "backend-resources",
		Audience: audience,
		KeySet:   &oidc.StaticKeySet{PublicKeys: []crypto.PublicKey{key.Public()}},
	})
}

func TestTokenVerifier_ExtractsPrincipal(t *testing.T) {
	key, signer := newTestSigner(t)
	v := newTestVerifier(key, "")

	raw := signToken(t, signer, testIssuer, time.Now().Add(time.Hour), map[string]interface{}{
		"preferred_username": "testUser",
		"realm_access":       map[string]interface{}{"roles": []string{"default-roles-itm", "MODERATOR"}},
		"resource_access": map[string]interface{}{
			"backend-resources": map[string]interface{}{"roles": []string{"auditor"}},
			"account":           map[string]interface{}{"roles": []string{"view-profile"}},
		},
	})

	p, err := v.Verify(t.Context(), raw)
	require.NoError(t, err)
	assert.Equal(t, "testUser", p.Username)
	assert.Equal(t, "0c1f3c47-5c2b-4c55-8a9f-9b7e0a4b1d11", p.Subject)
	assert.Equal(t, "itm", p.Realm)
	assert.Equal(t, []string{"default-roles-itm", "MODERATOR", "auditor"}, p.Roles)
	assert.True(t, p.HasRole("MODERATOR"))
}

func TestTokenVerifier_FallsBackToSubject(t *testing.T) {
	key, signer := newTestSigner(t)
	v := newTestVerifier(key, "")

	p, err := v.Verify(t.Context(), signToken(t, signer, testIssuer, time.Now().Add(time.Hour), map[string]interface{}{}))
	require.NoError(t, err)
	assert.Equal(t, p.Subject, p.Username)
	assert.Empty(t, p.Roles)
}

func TestTokenVerifier_Rejects(t *testing.T) {
	key, signer := newTestSigner(t)
	_, otherSigner := newTestSigner(t)

	tests := []struct {
		name     string
		audience string
		token    string
	}{
		{"garbage", "", "not-a-jwt"},
		{"expired", "", signToken(t, signer, testIssuer, time.Now().Add(-time.Minute), map[string]interface{}{})},
		{"foreign realm", "", signToken(t, signer, "http://keycloak.test/realms/other", time.Now().Add(time.Hour), map[string]interface{}{})},
		{"unknown key", "", signToken(t, otherSigner, testIssuer, time.Now().Add(time.Hour), map[string]interface{}{})},
		{"wrong audience", "backend-resources", signToken(t, signer, testIssuer, time.Now().Add(time.Hour), map[string]interface{}{})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestVerifier(key, tt.audience).Verify(t.Context(), tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
