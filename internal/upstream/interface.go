// Package upstream defines the provider boundaries for party, contract
// and custom-role reference data, plus an HTTP implementation used by
// the serve command. Session and profile services depend only on the
// interfaces here so tests can substitute in-memory fakes.
package upstream

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/firefly-oss/lib-session-manager/internal/models"
)

var (
	// ErrNotFound signals that the requested entity does not exist
	// upstream. Callers distinguish this from transient failures.
	ErrNotFound = errors.New("upstream: not found")

	// ErrUnavailable signals a transient upstream failure (network,
	// timeout, 5xx). Callers may retry or degrade.
	ErrUnavailable = errors.New("upstream: unavailable")
)

// PartyRecord is the directory view of a party: identity attributes and
// relationships to other parties. Contracts are fetched separately.
type PartyRecord struct {
	PartyID     uuid.UUID
	GivenName   string
	FamilyName  string
	DateOfBirth time.Time
	Status      string

	Relationships []models.PartyRelationship
}

// PartyDirectory resolves party identity data.
type PartyDirectory interface {
	Party(ctx context.Context, partyID uuid.UUID) (PartyRecord, error)
}

// ContractProvider lists the contracts a party participates in. The
// returned contracts carry the party's role code but no flattened
// permissions; permission derivation happens during profile assembly.
type ContractProvider interface {
	ActiveContracts(ctx context.Context, partyID uuid.UUID) ([]models.ActiveContract, error)
}

// CustomRoleProvider fetches organization-defined role definitions from
// reference data.
type CustomRoleProvider interface {
	CustomRoleByCode(ctx context.Context, code string) (models.ContractRole, error)
	CustomRoles(ctx context.Context) ([]models.ContractRole, error)
}
