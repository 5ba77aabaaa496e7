// Package profile assembles customer profiles from the upstream party
// and contract providers and derives the per-contract permission sets.
package profile

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/firefly-oss/lib-session-manager/internal/models"
	"github.com/firefly-oss/lib-session-manager/internal/roles"
	"github.com/firefly-oss/lib-session-manager/internal/upstream"
)

// Config tunes profile assembly and caching.
type Config struct {
	// CacheSize bounds the number of cached profiles.
	CacheSize int
	// CacheTTL bounds how long an assembled profile may be reused
	// before the next session creation re-fetches it.
	CacheTTL time.Duration
	// FetchTimeout bounds the combined upstream fan-out.
	FetchTimeout time.Duration
}

// Service builds CustomerProfile aggregates. Party identity and
// contract listings are fetched concurrently; role permissions are
// flattened onto each contract so authorization checks never need a
// role lookup afterwards.
//
// Assembled profiles are cached per party with a TTL so that several
// session creations for the same party within the window reuse one
// upstream round trip. Refresh bypasses and replaces the cache entry.
type Service struct {
	parties   upstream.PartyDirectory
	contracts upstream.ContractProvider
	resolver  *roles.Resolver
	cache     *lru.LRU[uuid.UUID, *models.CustomerProfile]
	timeout   time.Duration
	clock     clock.Clock
	logger    zerolog.Logger
}

// NewService builds the profile service.
func NewService(parties upstream.PartyDirectory, contracts upstream.ContractProvider, resolver *roles.Resolver, cfg Config, clk clock.Clock, logger zerolog.Logger) *Service {
	size := cfg.CacheSize
	if size <= 0 {
		size = 1024
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = time.Minute
	}
	timeout := cfg.FetchTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if clk == nil {
		clk = clock.New()
	}
	return &Service{
		parties:   parties,
		contracts: contracts,
		resolver:  resolver,
		cache:     lru.NewLRU[uuid.UUID, *models.CustomerProfile](size, nil, ttl),
		timeout:   timeout,
		clock:     clk,
		logger:    logger.With().Str("component", "profile_service").Logger(),
	}
}

// Profile returns the profile for partyID, reusing a cached aggregate
// when one is fresh.
func (s *Service) Profile(ctx context.Context, partyID uuid.UUID) (*models.CustomerProfile, error) {
	if cached, ok := s.cache.Get(partyID); ok {
		return cached.Clone(), nil
	}
	return s.rebuild(ctx, partyID)
}

// Refresh re-fetches the profile from upstream unconditionally and
// replaces the cached aggregate.
func (s *Service) Refresh(ctx context.Context, partyID uuid.UUID) (*models.CustomerProfile, error) {
	return s.rebuild(ctx, partyID)
}

// Evict drops the cached profile for partyID, if any.
func (s *Service) Evict(partyID uuid.UUID) {
	s.cache.Remove(partyID)
}

func (s *Service) rebuild(ctx context.Context, partyID uuid.UUID) (*models.CustomerProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var (
		party     upstream.PartyRecord
		contracts []models.ActiveContract
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		party, err = s.parties.Party(gctx, partyID)
		if err != nil {
			return fmt.Errorf("fetching party %s: %w", partyID, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		contracts, err = s.contracts.ActiveContracts(gctx, partyID)
		if err != nil {
			return fmt.Errorf("fetching contracts for party %s: %w", partyID, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	prof := &models.CustomerProfile{
		PartyID:            partyID,
		GivenName:          party.GivenName,
		FamilyName:         party.FamilyName,
		DateOfBirth:        party.DateOfBirth,
		PartyStatus:        party.Status,
		PartyRelationships: party.Relationships,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	for _, contract := range contracts {
		prof.ActiveContracts = append(prof.ActiveContracts, s.flatten(ctx, contract))
	}

	s.cache.Add(partyID, prof.Clone())
	s.logger.Debug().
		Str("party_id", partyID.String()).
		Int("contracts", len(prof.ActiveContracts)).
		Msg("profile assembled")
	return prof, nil
}

// flatten copies the resolved role's permissions onto the contract.
// Unknown roles, inactive roles and roles not applicable to the linked
// product type all yield empty permission sets.
func (s *Service) flatten(ctx context.Context, contract models.ActiveContract) models.ActiveContract {
	role, ok := s.resolver.Resolve(ctx, contract.RoleCode)
	if !ok || !role.IsActive {
		s.logger.Warn().
			Str("contract_id", contract.ContractID.String()).
			Str("role_code", contract.RoleCode).
			Msg("contract role unresolved, granting no permissions")
		contract.OperationPermissions = nil
		contract.ResourcePermissions = nil
		return contract
	}

	contract.RoleID = role.RoleID
	contract.RoleName = role.Name
	contract.RolePriority = role.Priority

	if contract.Product != nil && !role.IsApplicableToProductType(contract.Product.ProductType) {
		s.logger.Warn().
			Str("contract_id", contract.ContractID.String()).
			Str("role_code", contract.RoleCode).
			Str("product_type", contract.Product.ProductType).
			Msg("role not applicable to product type, granting no permissions")
		contract.OperationPermissions = nil
		contract.ResourcePermissions = nil
		return contract
	}

	contract.OperationPermissions = sortedValues(role.Permissions.Operations)
	contract.ResourcePermissions = sortedValues(role.Permissions.Resources)
	return contract
}

func sortedValues(set models.StringSet) []string {
	values := set.Values()
	sort.Strings(values)
	return values
}
