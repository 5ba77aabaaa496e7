package access

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/firefly-oss/lib-session-manager/internal/models"
)

var bypassRoles = []string{"ADMIN", "CUSTOMER_SUPPORT", "SUPERVISOR", "MANAGER", "BRANCH_STAFF"}

// fakeSessions serves a fixed set of sessions by id.
type fakeSessions struct {
	sessions map[string]*models.SessionContext
}

func (f *fakeSessions) GetByID(sessionID string) (*models.SessionContext, bool) {
	s, ok := f.sessions[sessionID]
	return s, ok
}

func sessionWithContracts(contracts ...models.ActiveContract) (*fakeSessions, string) {
	const sessionID = "session_test_1"
	return &fakeSessions{sessions: map[string]*models.SessionContext{
		sessionID: {
			SessionID: sessionID,
			PartyID:   uuid.New(),
			Status:    models.SessionStatusActive,
			Profile:   &models.CustomerProfile{ActiveContracts: contracts},
		},
	}}, sessionID
}

func ownedProduct(productID uuid.UUID) models.ActiveContract {
	return models.ActiveContract{
		ContractID: uuid.New(),
		RoleCode:   "OWNER",
		IsActive:   true,
		Product:    &models.ActiveProduct{ProductID: productID},
	}
}

// TestProductValidator_OwnedProductAllows tests access through an
// active contract
func TestProductValidator_OwnedProductAllows(t *testing.T) {
	productID := uuid.New()
	sessions, sessionID := sessionWithContracts(ownedProduct(productID))
	v := NewProductValidator(sessions, bypassRoles, zerolog.Nop(), nil)

	allowed := v.CanAccess(context.Background(), sessionID, productID.String(), []string{"CUSTOMER"})
	assert.True(t, allowed)
}

// TestProductValidator_UnrelatedProductDenies tests the deny path for
// resources outside the session's contracts
func TestProductValidator_UnrelatedProductDenies(t *testing.T) {
	sessions, sessionID := sessionWithContracts(ownedProduct(uuid.New()))
	v := NewProductValidator(sessions, bypassRoles, zerolog.Nop(), nil)

	allowed := v.CanAccess(context.Background(), sessionID, uuid.NewString(), []string{"CUSTOMER"})
	assert.False(t, allowed)
}

// TestProductValidator_BypassRoles tests the administrative escape
// hatch, including the parse-before-bypass ordering
func TestProductValidator_BypassRoles(t *testing.T) {
	sessions, _ := sessionWithContracts()
	v := NewProductValidator(sessions, bypassRoles, zerolog.Nop(), nil)
	ctx := context.Background()

	// Bypass works without any session at all.
	assert.True(t, v.CanAccess(ctx, "", uuid.NewString(), []string{"ADMIN"}))
	assert.True(t, v.CanAccess(ctx, "", uuid.NewString(), []string{"CUSTOMER", "SUPERVISOR"}))

	// Malformed resource ids deny before bypass is considered.
	assert.False(t, v.CanAccess(ctx, "", "zzz", []string{"ADMIN"}))

	// Non-bypass roles without a session deny.
	assert.False(t, v.CanAccess(ctx, "", uuid.NewString(), []string{"CUSTOMER"}))
}

// TestProductValidator_InactiveContractDenies tests that inactive
// contracts never grant access
func TestProductValidator_InactiveContractDenies(t *testing.T) {
	productID := uuid.New()
	contract := ownedProduct(productID)
	contract.IsActive = false
	sessions, sessionID := sessionWithContracts(contract)
	v := NewProductValidator(sessions, bypassRoles, zerolog.Nop(), nil)

	allowed := v.CanAccess(context.Background(), sessionID, productID.String(), []string{"CUSTOMER"})
	assert.False(t, allowed)
}

// TestProductValidator_MissingSessionDenies tests fail-closed on absent
// sessions
func TestProductValidator_MissingSessionDenies(t *testing.T) {
	v := NewProductValidator(&fakeSessions{}, bypassRoles, zerolog.Nop(), nil)

	allowed := v.CanAccess(context.Background(), "session_gone_0", uuid.NewString(), []string{"CUSTOMER"})
	assert.False(t, allowed)
}

// TestContractValidator tests contract-scoped access checks
func TestContractValidator(t *testing.T) {
	contract := ownedProduct(uuid.New())
	sessions, sessionID := sessionWithContracts(contract)
	v := NewContractValidator(sessions, bypassRoles, zerolog.Nop(), nil)
	ctx := context.Background()

	assert.True(t, v.CanAccess(ctx, sessionID, contract.ContractID.String(), []string{"CUSTOMER"}))
	assert.False(t, v.CanAccess(ctx, sessionID, uuid.NewString(), []string{"CUSTOMER"}))
	assert.False(t, v.CanAccess(ctx, sessionID, "not-a-uuid", []string{"CUSTOMER"}))
}

// TestRegistry_Completeness tests the startup wiring check
func TestRegistry_Completeness(t *testing.T) {
	sessions := &fakeSessions{}
	product := NewProductValidator(sessions, bypassRoles, zerolog.Nop(), nil)
	contract := NewContractValidator(sessions, bypassRoles, zerolog.Nop(), nil)

	_, err := NewRegistry(product)
	require.Error(t, err, "missing contract validator must fail startup")

	_, err = NewRegistry(product, contract, product)
	require.Error(t, err, "duplicate kinds must fail startup")

	registry, err := NewRegistry(product, contract)
	require.NoError(t, err)

	// Unknown kinds deny.
	assert.False(t, registry.CanAccess(context.Background(), Kind("tenant"), "", uuid.NewString(), []string{"ADMIN"}))
}

// TestRegistry_Dispatch tests kind-based routing
func TestRegistry_Dispatch(t *testing.T) {
	productID := uuid.New()
	contract := ownedProduct(productID)
	sessions, sessionID := sessionWithContracts(contract)

	registry, err := NewRegistry(
		NewProductValidator(sessions, bypassRoles, zerolog.Nop(), nil),
		NewContractValidator(sessions, bypassRoles, zerolog.Nop(), nil),
	)
	require.NoError(t, err)
	ctx := context.Background()

	assert.True(t, registry.CanAccess(ctx, KindProduct, sessionID, productID.String(), []string{"CUSTOMER"}))
	assert.False(t, registry.CanAccess(ctx, KindProduct, sessionID, contract.ContractID.String(), []string{"CUSTOMER"}),
		"contract ids are not product ids")
	assert.True(t, registry.CanAccess(ctx, KindContract, sessionID, contract.ContractID.String(), []string{"CUSTOMER"}))
}
