package user

import (
	"context"
	"errors"

	"backend_resources/internal/audit"
	"backend_resources/internal/keycloak"
	"backend_resources/internal/shared"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// IdentityProvider is the slice of the Keycloak admin API the service needs.
type IdentityProvider interface {
	CreateUser(ctx context.Context, realm string, user keycloak.UserRepresentation) (string, error)
	GetUserByID(ctx context.Context, realm, id string) (*keycloak.UserRepresentation, error)
	ListRoles(ctx context.Context, realm, id string) ([]string, error)
	ListGroups(ctx context.Context, realm, id string) ([]string, error)
}

// AuditRecorder persists provisioning events.
type AuditRecorder interface {
	Create(ctx context.Context, event *audit.Event) error
}

// Service defines the user provisioning operations.
type Service interface {
	CreateUser(ctx context.Context, realm string, req CreateUserRequest) (string, error)
	GetUserProfile(ctx context.Context, realm, id string) (*UserProfile, error)
	WhoAmI(p *shared.Principal) string
}

// ServiceImplementation provisions users in Keycloak. It keeps no state between calls.
type ServiceImplementation struct {
	idp    IdentityProvider
	audit  AuditRecorder
	logger *zap.Logger
}

var _ Service = (*ServiceImplementation)(nil)

// NewService creates a new user service. recorder may be nil.
func NewService(idp IdentityProvider, recorder AuditRecorder, logger *zap.Logger) *ServiceImplementation {
	return &ServiceImplementation{
		idp:    idp,
		audit:  recorder,
		logger: logger.Named("user"),
	}
}

// CreateUser creates the user in realm with a single attempt and returns its id.
func (s *ServiceImplementation) CreateUser(ctx context.Context, realm string, req CreateUserRequest) (string, error) {
	id, err := s.idp.CreateUser(ctx, realm, toRepresentation(req))
	if err != nil {
		apiErr := translateError(err)
		s.logger.Warn("User provisioning failed",
			zap.String("realm", realm),
			zap.String("username", req.Username),
			zap.String("code", apiErr.Code),
			zap.Error(err),
		)
		s.record(ctx, realm, "", req.Username, apiErr.Code)
		return "", apiErr
	}

	s.logger.Info("User provisioned",
		zap.String("realm", realm),
		zap.String("userID", id),
		zap.String("username", req.Username),
	)
	s.record(ctx, realm, id, req.Username, audit.OutcomeSuccess)
	return id, nil
}

// GetUserProfile fetches the user and enriches it with role and group names. A missing
// user stops before any lookup. A failed lookup fails the whole call.
func (s *ServiceImplementation) GetUserProfile(ctx context.Context, realm, id string) (*UserProfile, error) {
	rec, err := s.idp.GetUserByID(ctx, realm, id)
	if err != nil {
		return nil, s.fail("Fetching user failed", realm, id, err)
	}

	var roles, groups []string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		roles, err = s.idp.ListRoles(gctx, realm, id)
		return err
	})
	g.Go(func() error {
		var err error
		groups, err = s.idp.ListGroups(gctx, realm, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, s.fail("Enriching user profile failed", realm, id, err)
	}

	profile, err := toUserProfile(rec, roles, groups)
	if err != nil {
		return nil, s.fail("Mapping user profile failed", realm, id, err)
	}
	return profile, nil
}

// WhoAmI returns the caller's username.
func (s *ServiceImplementation) WhoAmI(p *shared.Principal) string {
	if p == nil {
		return ""
	}
	return p.Username
}

func (s *ServiceImplementation) fail(msg, realm, id string, err error) error {
	apiErr := translateError(err)
	fields := []zap.Field{zap.String("realm", realm), zap.String("userID", id), zap.Error(err)}
	if errors.Is(apiErr, ErrProvisioningUnavailable) {
		s.logger.Error(msg, fields...)
	} else {
		s.logger.Debug(msg, fields...)
	}
	return apiErr
}

func (s *ServiceImplementation) record(ctx context.Context, realm, targetID, username, outcome string) {
	if s.audit == nil {
		return
	}
	event := &audit.Event{
		Action:   audit.ActionCreateUser,
		Realm:    realm,
		TargetID: targetID,
		Username: username,
		Outcome:  outcome,
	}
	if p := shared.PrincipalFromContext(ctx); p != nil {
		event.Actor = p.Username
	}
	if err := s.audit.Create(ctx, event); err != nil {
		s.logger.Warn("Failed to record audit event",
			zap.String("action", event.Action),
			zap.String("username", username),
			zap.Error(err),
		)
	}
}
