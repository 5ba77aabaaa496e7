package sdk

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/firefly-oss/lib-session-manager/internal/access"
	"github.com/firefly-oss/lib-session-manager/internal/models"
	"github.com/firefly-oss/lib-session-manager/internal/roles"
	"github.com/firefly-oss/lib-session-manager/internal/server"
	"github.com/firefly-oss/lib-session-manager/internal/services/session"
	"github.com/firefly-oss/lib-session-manager/internal/store"
)

type staticProfiles struct {
	productID uuid.UUID
}

func (s *staticProfiles) build(partyID uuid.UUID) *models.CustomerProfile {
	return &models.CustomerProfile{
		PartyID: partyID,
		ActiveContracts: []models.ActiveContract{{
			ContractID: uuid.New(),
			RoleCode:   roles.CodeOwner,
			IsActive:   true,
			Product:    &models.ActiveProduct{ProductID: s.productID},
		}},
	}
}

func (s *staticProfiles) Profile(_ context.Context, partyID uuid.UUID) (*models.CustomerProfile, error) {
	return s.build(partyID), nil
}

func (s *staticProfiles) Refresh(_ context.Context, partyID uuid.UUID) (*models.CustomerProfile, error) {
	return s.build(partyID), nil
}

func newTestAPI(t *testing.T) (*Client, uuid.UUID) {
	t.Helper()

	mock := clock.NewMock()
	mock.Set(time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))

	profiles := &staticProfiles{productID: uuid.New()}
	manager := session.NewManager(
		store.NewMemoryStore(mock, zerolog.Nop(), nil),
		profiles,
		session.Config{Timeout: 30 * time.Minute, InvalidationGrace: 5 * time.Minute},
		mock, zerolog.Nop(), nil,
	)
	resolver := roles.NewResolver(roles.NewCatalog(), nil, roles.ResolverConfig{}, zerolog.Nop())
	registry, err := access.NewRegistry(
		access.NewProductValidator(manager, []string{"ADMIN"}, zerolog.Nop(), nil),
		access.NewContractValidator(manager, []string{"ADMIN"}, zerolog.Nop(), nil),
	)
	require.NoError(t, err)

	srv := httptest.NewServer(server.NewRouter(server.RouterOptions{
		SessionManager: manager,
		AccessRegistry: registry,
		RoleResolver:   resolver,
	}))
	t.Cleanup(srv.Close)

	return NewClient(srv.URL, WithHTTPClient(srv.Client())), profiles.productID
}

// TestClient_SessionLifecycle tests the session round trip through the
// SDK
func TestClient_SessionLifecycle(t *testing.T) {
	client, _ := newTestAPI(t)
	ctx := context.Background()
	partyID := uuid.New()

	created, err := client.CreateSession(ctx, CreateSessionInput{PartyID: partyID})
	require.NoError(t, err)
	assert.Equal(t, partyID, created.PartyID)
	assert.Equal(t, "ACTIVE", created.Status)

	got, err := client.GetSession(ctx, created.SessionID)
	require.NoError(t, err)
	assert.Equal(t, created.SessionID, got.SessionID)

	valid, err := client.IsSessionValid(ctx, created.SessionID)
	require.NoError(t, err)
	assert.True(t, valid)

	refreshed, err := client.RefreshSession(ctx, created.SessionID)
	require.NoError(t, err)
	assert.Equal(t, created.SessionID, refreshed.SessionID)

	require.NoError(t, client.InvalidateSession(ctx, created.SessionID))

	_, err = client.GetSession(ctx, created.SessionID)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	valid, err = client.IsSessionValid(ctx, created.SessionID)
	require.NoError(t, err)
	assert.False(t, valid)
}

// TestClient_CreateSessionRequiresParty tests client-side validation
func TestClient_CreateSessionRequiresParty(t *testing.T) {
	client, _ := newTestAPI(t)
	_, err := client.CreateSession(context.Background(), CreateSessionInput{})
	require.Error(t, err)
}

// TestClient_CheckAccess tests access decisions through the SDK
func TestClient_CheckAccess(t *testing.T) {
	client, productID := newTestAPI(t)
	ctx := context.Background()

	created, err := client.CreateSession(ctx, CreateSessionInput{PartyID: uuid.New()})
	require.NoError(t, err)

	allowed, err := client.CheckAccess(ctx, AccessCheckInput{
		SessionID:      created.SessionID,
		ResourceID:     productID.String(),
		PrincipalRoles: []string{"CUSTOMER"},
	})
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = client.CheckAccess(ctx, AccessCheckInput{
		SessionID:      created.SessionID,
		ResourceID:     uuid.NewString(),
		PrincipalRoles: []string{"CUSTOMER"},
	})
	require.NoError(t, err)
	assert.False(t, allowed)

	allowed, err = client.CheckAccess(ctx, AccessCheckInput{
		ResourceID:     uuid.NewString(),
		PrincipalRoles: []string{"ADMIN"},
	})
	require.NoError(t, err)
	assert.True(t, allowed)
}

// TestClient_Roles tests the role namespace endpoints through the SDK
func TestClient_Roles(t *testing.T) {
	client, _ := newTestAPI(t)
	ctx := context.Background()

	all, err := client.ListRoles(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 22)

	owner, err := client.GetRole(ctx, roles.CodeOwner)
	require.NoError(t, err)
	assert.Equal(t, roles.PriorityOwner, owner.Priority)

	_, err = client.GetRole(ctx, "NO_SUCH_ROLE")
	assert.True(t, IsNotFound(err))

	require.NoError(t, client.RefreshRoleCache(ctx))
}
