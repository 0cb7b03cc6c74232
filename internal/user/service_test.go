package user

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"backend_resources/internal/audit"
	"backend_resources/internal/keycloak"
	"backend_resources/internal/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testRealm = "itm"
	fixtureID = "7faac39c-2e5a-4bd6-9554-3b81bb340c25"
	newUserID = "5a0c8c5e-53c6-4f4e-9a2e-1d3c1f0b9d21"
)

type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) CreateUser(ctx context.Context, realm string, user keycloak.UserRepresentation) (string, error) {
	args := m.Called(ctx, realm, user)
	return args.String(0), args.Error(1)
}

func (m *MockIdentityProvider) GetUserByID(ctx context.Context, realm, id string) (*keycloak.UserRepresentation, error) {
	args := m.Called(ctx, realm, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*keycloak.UserRepresentation), args.Error(1)
}

func (m *MockIdentityProvider) ListRoles(ctx context.Context, realm, id string) ([]string, error) {
	args := m.Called(ctx, realm, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockIdentityProvider) ListGroups(ctx context.Context, realm, id string) ([]string, error) {
	args := m.Called(ctx, realm, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockAuditRecorder struct {
	mock.Mock
}

func (m *MockAuditRecorder) Create(ctx context.Context, event *audit.Event) error {
	return m.Called(ctx, event).Error(0)
}

func fixtureUser() *keycloak.UserRepresentation {
	return &keycloak.UserRepresentation{
		ID:        fixtureID,
		Username:  "tati",
		FirstName: "Tati",
		LastName:  "Sorokina",
		Enabled:   true,
	}
}

func senaRequest() CreateUserRequest {
	return CreateUserRequest{
		Username:  "sena",
		Email:     "sena@gmail.com",
		Password:  "1234",
		FirstName: "Sena",
		LastName:  "Senina",
	}
}

func TestCreateUser_Success(t *testing.T) {
	idp := new(MockIdentityProvider)
	recorder := new(MockAuditRecorder)
	svc := NewService(idp, recorder, zap.NewNop())

	ctx := shared.WithPrincipal(context.Background(), &shared.Principal{Username: "testUser"})
	idp.On("CreateUser", mock.Anything, testRealm, mock.MatchedBy(func(u keycloak.UserRepresentation) bool {
		return u.Username == "sena" && u.Email == "sena@gmail.com" && u.Enabled &&
			len(u.Credentials) == 1 && u.Credentials[0].Value == "1234" && !u.Credentials[0].Temporary
	})).Return(newUserID, nil).Once()
	recorder.On("Create", mock.Anything, mock.MatchedBy(func(e *audit.Event) bool {
		return e.Action == audit.ActionCreateUser && e.Actor == "testUser" &&
			e.TargetID == newUserID && e.Outcome == audit.OutcomeSuccess && e.Realm == testRealm
	})).Return(nil).Once()

	id, err := svc.CreateUser(ctx, testRealm, senaRequest())

	require.NoError(t, err)
	assert.Equal(t, newUserID, id)
	idp.AssertExpectations(t)
	recorder.AssertExpectations(t)
}

func TestCreateUser_TranslatesFailures(t *testing.T) {
	tests := []struct {
		name     string
		upstream error
		want     error
		code     string
	}{
		{"duplicate", fmt.Errorf("%w: User exists with same username", keycloak.ErrConflict), ErrUserAlreadyExists, "USER_ALREADY_EXISTS"},
		{"rejected", fmt.Errorf("%w: status 400", keycloak.ErrValidationRejected), ErrInvalidUserData, "INVALID_USER_DATA"},
		{"unavailable", fmt.Errorf("%w: dial tcp", keycloak.ErrUpstreamUnavailable), ErrProvisioningUnavailable, "PROVISIONING_UNAVAILABLE"},
		{"malformed", fmt.Errorf("%w: missing Location header", keycloak.ErrMalformedResponse), ErrProvisioningUnavailable, "PROVISIONING_UNAVAILABLE"},
		{"unknown realm", fmt.Errorf("%w: realm", keycloak.ErrNotFound), ErrUserNotFound, "NOT_FOUND"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idp := new(MockIdentityProvider)
			recorder := new(MockAuditRecorder)
			svc := NewService(idp, recorder, zap.NewNop())

			idp.On("CreateUser", mock.Anything, testRealm, mock.Anything).Return("", tt.upstream).Once()
			recorder.On("Create", mock.Anything, mock.MatchedBy(func(e *audit.Event) bool {
				return e.Outcome == tt.code && e.TargetID == ""
			})).Return(nil).Once()

			_, err := svc.CreateUser(context.Background(), testRealm, senaRequest())

			assert.ErrorIs(t, err, tt.want)
			assert.NotErrorIs(t, err, tt.upstream)
			idp.AssertNumberOfCalls(t, "CreateUser", 1)
			recorder.AssertExpectations(t)
		})
	}
}

func TestCreateUser_AuditFailureDoesNotChangeOutcome(t *testing.T) {
	idp := new(MockIdentityProvider)
	recorder := new(MockAuditRecorder)
	svc := NewService(idp, recorder, zap.NewNop())

	idp.On("CreateUser", mock.Anything, testRealm, mock.Anything).Return(newUserID, nil).Once()
	recorder.On("Create", mock.Anything, mock.Anything).Return(errors.New("db down")).Once()

	id, err := svc.CreateUser(context.Background(), testRealm, senaRequest())

	require.NoError(t, err)
	assert.Equal(t, newUserID, id)
}

func TestCreateUser_WithoutRecorder(t *testing.T) {
	idp := new(MockIdentityProvider)
	svc := NewService(idp, nil, zap.NewNop())
	idp.On("CreateUser", mock.Anything, testRealm, mock.Anything).Return(newUserID, nil).Once()

	id, err := svc.CreateUser(context.Background(), testRealm, senaRequest())

	require.NoError(t, err)
	assert.Equal(t, newUserID, id)
}

func TestGetUserProfile_Fixture(t *testing.T) {
	idp := new(MockIdentityProvider)
	svc := NewService(idp, nil, zap.NewNop())

	idp.On("GetUserByID", mock.Anything, testRealm, fixtureID).Return(fixtureUser(), nil).Once()
	idp.On("ListRoles", mock.Anything, testRealm, fixtureID).Return([]string{"default-roles-itm"}, nil).Once()
	idp.On("ListGroups", mock.Anything, testRealm, fixtureID).Return([]string{"Moderators"}, nil).Once()

	profile, err := svc.GetUserProfile(context.Background(), testRealm, fixtureID)

	require.NoError(t, err)
	assert.Equal(t, &UserProfile{
		ID:        fixtureID,
		FirstName: "Tati",
		LastName:  "Sorokina",
		Roles:     []string{"default-roles-itm"},
		Groups:    []string{"Moderators"},
	}, profile)
	idp.AssertExpectations(t)
}

func TestGetUserProfile_NotFoundSkipsEnrichment(t *testing.T) {
	idp := new(MockIdentityProvider)
	svc := NewService(idp, nil, zap.NewNop())

	idp.On("GetUserByID", mock.Anything, testRealm, fixtureID).Return(nil, fmt.Errorf("%w: get_user", keycloak.ErrNotFound)).Once()

	profile, err := svc.GetUserProfile(context.Background(), testRealm, fixtureID)

	assert.Nil(t, profile)
	assert.ErrorIs(t, err, ErrUserNotFound)
	idp.AssertNotCalled(t, "ListRoles", mock.Anything, mock.Anything, mock.Anything)
	idp.AssertNotCalled(t, "ListGroups", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetUserProfile_EmptyEnrichmentIsSuccess(t *testing.T) {
	idp := new(MockIdentityProvider)
	svc := NewService(idp, nil, zap.NewNop())

	idp.On("GetUserByID", mock.Anything, testRealm, fixtureID).Return(fixtureUser(), nil)
	idp.On("ListRoles", mock.Anything, testRealm, fixtureID).Return([]string{}, nil)
	idp.On("ListGroups", mock.Anything, testRealm, fixtureID).Return(nil, nil)

	profile, err := svc.GetUserProfile(context.Background(), testRealm, fixtureID)

	require.NoError(t, err)
	assert.NotNil(t, profile.Roles)
	assert.Empty(t, profile.Roles)
	assert.NotNil(t, profile.Groups)
	assert.Empty(t, profile.Groups)
}

func TestGetUserProfile_FailsClosedOnEnrichmentError(t *testing.T) {
	idp := new(MockIdentityProvider)
	svc := NewService(idp, nil, zap.NewNop())

	idp.On("GetUserByID", mock.Anything, testRealm, fixtureID).Return(fixtureUser(), nil)
	idp.On("ListRoles", mock.Anything, testRealm, fixtureID).Return([]string{"default-roles-itm"}, nil).Maybe()
	idp.On("ListGroups", mock.Anything, testRealm, fixtureID).Return(nil, fmt.Errorf("%w: timeout", keycloak.ErrUpstreamUnavailable))

	profile, err := svc.GetUserProfile(context.Background(), testRealm, fixtureID)

	assert.Nil(t, profile)
	assert.ErrorIs(t, err, ErrProvisioningUnavailable)
}

func TestGetUserProfile_MalformedUpstreamData(t *testing.T) {
	t.Run("role without name", func(t *testing.T) {
		idp := new(MockIdentityProvider)
		svc := NewService(idp, nil, zap.NewNop())
		idp.On("GetUserByID", mock.Anything, testRealm, fixtureID).Return(fixtureUser(), nil)
		idp.On("ListRoles", mock.Anything, testRealm, fixtureID).Return(nil, fmt.Errorf("%w: role 0 has no name", keycloak.ErrMalformedResponse))
		idp.On("ListGroups", mock.Anything, testRealm, fixtureID).Return([]string{"Moderators"}, nil).Maybe()

		_, err := svc.GetUserProfile(context.Background(), testRealm, fixtureID)
		assert.ErrorIs(t, err, ErrProvisioningUnavailable)
	})

	t.Run("record without id", func(t *testing.T) {
		idp := new(MockIdentityProvider)
		svc := NewService(idp, nil, zap.NewNop())
		rec := fixtureUser()
		rec.ID = ""
		idp.On("GetUserByID", mock.Anything, testRealm, fixtureID).Return(rec, nil)
		idp.On("ListRoles", mock.Anything, testRealm, fixtureID).Return([]string{}, nil)
		idp.On("ListGroups", mock.Anything, testRealm, fixtureID).Return([]string{}, nil)

		_, err := svc.GetUserProfile(context.Background(), testRealm, fixtureID)
		assert.ErrorIs(t, err, ErrProvisioningUnavailable)
	})
}

func TestWhoAmI(t *testing.T) {
	svc := NewService(new(MockIdentityProvider), nil, zap.NewNop())

	assert.Equal(t, "testUser", svc.WhoAmI(&shared.Principal{Username: "testUser"}))
	assert.Equal(t, "", svc.WhoAmI(nil))
}
