package keycloak

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"backend_resources/internal/config"
	"backend_resources/internal/platform/metrics"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const maxResponseBytes = 1 << 20

// ClientConfig describes how to reach the Keycloak admin API.
type ClientConfig struct {
	BaseURL      string
	AdminRealm   string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration
}

// Client talks to the Keycloak admin REST API using a service-account token obtained
// with the client-credentials grant. The target realm is chosen per call.
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

// NewClient builds a Client. The token endpoint lives in cfg.AdminRealm.
func NewClient(cfg ClientConfig, m *metrics.Metrics, logger *zap.Logger) *Client {
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	base := &http.Client{Timeout: cfg.Timeout}

	cc := clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     fmt.Sprintf("%s/realms/%s/protocol/openid-connect/token", baseURL, url.PathEscape(cfg.AdminRealm)),
		AuthStyle:    oauth2.AuthStyleInParams,
	}
	tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, base)

	return &Client{
		baseURL:    baseURL,
		timeout:    cfg.Timeout,
		httpClient: cc.Client(tokenCtx),
		metrics:    m,
		logger:     logger.Named("keycloak"),
	}
}

// NewClientFromConfig builds a Client from application configuration.
func NewClientFromConfig(cfg *config.Config, m *metrics.Metrics, logger *zap.Logger) *Client {
	return NewClient(ClientConfig{
		BaseURL:      cfg.KeycloakBaseURL,
		AdminRealm:   cfg.KeycloakAdminRealm,
		ClientID:     cfg.KeycloakClientID,
		ClientSecret: cfg.KeycloakClientSecret,
		Timeout:      cfg.KeycloakTimeout,
	}, m, logger)
}

// CreateUser creates user in realm and returns the id Keycloak assigned to it.
func (c *Client) CreateUser(ctx context.Context, realm string, user UserRepresentation) (id string, err error) {
	const op = "create_user"
	defer c.observe(op, time.Now(), &err)

	res, err := c.send(ctx, op, http.MethodPost, c.usersURL(realm), user)
	if err != nil {
		return "", err
	}

	switch {
	case res.status == http.StatusCreated:
	case res.status == http.StatusConflict:
		return "", fmt.Errorf("%w: %s", ErrConflict, res.errorMessage())
	case res.status == http.StatusNotFound:
		return "", fmt.Errorf("%w: %s: realm %q", ErrNotFound, op, realm)
	case res.status >= 400 && res.status < 500:
		return "", fmt.Errorf("%w: status %d: %s", ErrValidationRejected, res.status, res.errorMessage())
	default:
		return "", fmt.Errorf("%w: %s: unexpected status %d", ErrUpstreamUnavailable, op, res.status)
	}

	location := res.header.Get("Location")
	if location == "" {
		return "", fmt.Errorf("%w: %s: missing Location header", ErrMalformedResponse, op)
	}
	u, err := url.Parse(location)
	if err != nil {
		return "", fmt.Errorf("%w: %s: bad Location header %q", ErrMalformedResponse, op, location)
	}
	id = path.Base(u.Path)
	if id == "" || id == "/" || id == "." || id == "users" {
		return "", fmt.Errorf("%w: %s: no id in Location header %q", ErrMalformedResponse, op, location)
	}
	return id, nil
}

// GetUserByID fetches the raw user record.
func (c *Client) GetUserByID(ctx context.Context, realm, id string) (user *UserRepresentation, err error) {
	const op = "get_user"
	defer c.observe(op, time.Now(), &err)

	var out UserRepresentation
	if err := c.getJSON(ctx, op, c.userURL(realm, id, ""), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListRoles returns the names of the realm roles mapped directly to the user.
func (c *Client) ListRoles(ctx context.Context, realm, id string) (roles []string, err error) {
	const op = "list_roles"
	defer c.observe(op, time.Now(), &err)

	var out MappingsRepresentation
	if err := c.getJSON(ctx, op, c.userURL(realm, id, "role-mappings"), &out); err != nil {
		return nil, err
	}
	return RealmRoleNames(out)
}

// ListGroups returns the names of the groups the user belongs to.
func (c *Client) ListGroups(ctx context.Context, realm, id string) (groups []string, err error) {
	const op = "list_groups"
	defer c.observe(op, time.Now(), &err)

	var out []GroupRepresentation
	if err := c.getJSON(ctx, op, c.userURL(realm, id, "groups"), &out); err != nil {
		return nil, err
	}
	return GroupNames(out)
}

// Healthy checks that the realm is served and the service account can authenticate.
func (c *Client) Healthy(ctx context.Context, realm string) (err error) {
	const op = "realm_info"
	defer c.observe(op, time.Now(), &err)

	res, err := c.send(ctx, op, http.MethodGet, fmt.Sprintf("%s/realms/%s", c.baseURL, url.PathEscape(realm)), nil)
	if err != nil {
		return err
	}
	if res.status != http.StatusOK {
		return fmt.Errorf("%w: %s: status %d", ErrUpstreamUnavailable, op, res.status)
	}
	return nil
}

func (c *Client) usersURL(realm string) string {
	return fmt.Sprintf("%s/admin/realms/%s/users", c.baseURL, url.PathEscape(realm))
}

func (c *Client) userURL(realm, id, sub string) string {
	u := c.usersURL(realm) + "/" + url.PathEscape(id)
	if sub != "" {
		u += "/" + sub
	}
	return u
}

func (c *Client) getJSON(ctx context.Context, op, endpoint string, out interface{}) error {
	res, err := c.send(ctx, op, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	switch res.status {
	case http.StatusOK:
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, op)
	default:
		return fmt.Errorf("%w: %s: unexpected status %d", ErrUpstreamUnavailable, op, res.status)
	}
	if err := json.Unmarshal(res.body, out); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformedResponse, op, err)
	}
	return nil
}

type response struct {
	status int
	header http.Header
	body   []byte
}

func (r *response) errorMessage() string {
	var e errorRepresentation
	if err := json.Unmarshal(r.body, &e); err == nil && e.message() != "" {
		return e.message()
	}
	return http.StatusText(r.status)
}

// send performs one bounded request. Transport failures, timeouts, 5xx answers and
// rejected service-account credentials all come back as ErrUpstreamUnavailable.
func (c *Client) send(ctx context.Context, op, method, endpoint string, payload interface{}) (*response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("keycloak: %s: encode request: %w", op, err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("keycloak: %s: new request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Identity provider request failed", zap.String("operation", op), zap.Error(err))
		return nil, fmt.Errorf("%w: %s: %v", ErrUpstreamUnavailable, op, err)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: read body: %v", ErrUpstreamUnavailable, op, err)
	}

	c.logger.Debug("Identity provider responded",
		zap.String("operation", op),
		zap.String("method", method),
		zap.Int("status", res.StatusCode),
	)

	if res.StatusCode >= 500 || res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden {
		c.logger.Warn("Identity provider refused request",
			zap.String("operation", op),
			zap.Int("status", res.StatusCode),
		)
		return nil, fmt.Errorf("%w: %s: status %d", ErrUpstreamUnavailable, op, res.StatusCode)
	}

	return &response{status: res.StatusCode, header: res.Header, body: data}, nil
}

func (c *Client) observe(op string, start time.Time, err *error) {
	c.metrics.ObserveUpstream(op, outcomeOf(*err), time.Since(start))
}
