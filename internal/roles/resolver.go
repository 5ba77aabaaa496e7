package roles

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog"

	"github.com/firefly-oss/lib-session-manager/internal/models"
)

// CustomRoleSource supplies organization-defined roles from the
// reference-data provider. Implementations are expected to be slow
// relative to catalog lookups; the resolver caches results.
type CustomRoleSource interface {
	// CustomRoleByCode fetches a single custom role definition.
	CustomRoleByCode(ctx context.Context, code string) (models.ContractRole, error)
	// CustomRoles lists every active custom role definition.
	CustomRoles(ctx context.Context) ([]models.ContractRole, error)
}

// ResolverConfig tunes the custom-role cache.
type ResolverConfig struct {
	CacheSize int
	CacheTTL  time.Duration
}

// Resolver answers role questions by consulting the default catalog
// first and falling back to cached custom roles from the reference-data
// provider. Every permission predicate fails closed: an unknown or
// unreachable role grants nothing.
type Resolver struct {
	catalog *Catalog
	source  CustomRoleSource
	cache   *lru.LRU[string, models.ContractRole]
	logger  zerolog.Logger
}

// NewResolver builds a resolver. source may be nil, in which case only
// catalog roles resolve.
func NewResolver(catalog *Catalog, source CustomRoleSource, cfg ResolverConfig, logger zerolog.Logger) *Resolver {
	size := cfg.CacheSize
	if size <= 0 {
		size = 256
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &Resolver{
		catalog: catalog,
		source:  source,
		cache:   lru.NewLRU[string, models.ContractRole](size, nil, ttl),
		logger:  logger.With().Str("component", "role_resolver").Logger(),
	}
}

// Resolve returns the role definition for code. Default catalog roles
// always win over custom roles with the same code.
func (r *Resolver) Resolve(ctx context.Context, code string) (models.ContractRole, bool) {
	if role, ok := r.catalog.ByCode(code); ok {
		return role, true
	}
	if role, ok := r.cache.Get(code); ok {
		return role, true
	}
	if r.source == nil {
		return models.ContractRole{}, false
	}
	role, err := r.source.CustomRoleByCode(ctx, code)
	if err != nil {
		r.logger.Warn().Err(err).Str("role_code", code).
			Msg("custom role lookup failed, treating role as unknown")
		return models.ContractRole{}, false
	}
	r.cache.Add(code, role)
	return role, true
}

// RefreshCache drops every cached custom role so the next lookup hits
// the reference-data provider again. Catalog roles are unaffected.
func (r *Resolver) RefreshCache() {
	r.cache.Purge()
	r.logger.Debug().Msg("custom role cache purged")
}

// HasOperationPermission reports whether the role identified by code is
// active and grants the given operation.
func (r *Resolver) HasOperationPermission(ctx context.Context, code, operation string) bool {
	role, ok := r.Resolve(ctx, code)
	return ok && role.IsActive && role.HasOperationPermission(operation)
}

// HasResourcePermission reports whether the role identified by code is
// active and grants access to the given resource category.
func (r *Resolver) HasResourcePermission(ctx context.Context, code, resource string) bool {
	role, ok := r.Resolve(ctx, code)
	return ok && role.IsActive && role.HasResourcePermission(resource)
}

// IsApplicableToProductType reports whether the role identified by code
// may be assigned on products of the given type.
func (r *Resolver) IsApplicableToProductType(ctx context.Context, code, productType string) bool {
	role, ok := r.Resolve(ctx, code)
	return ok && role.IsApplicableToProductType(productType)
}

// ResolveHighestPriorityRole resolves every code, discards the unknown
// ones and returns the winner by priority. It reports false when no
// code resolves.
func (r *Resolver) ResolveHighestPriorityRole(ctx context.Context, codes []string) (models.ContractRole, bool) {
	resolved := make([]models.ContractRole, 0, len(codes))
	for _, code := range codes {
		if role, ok := r.Resolve(ctx, code); ok {
			resolved = append(resolved, role)
		}
	}
	return HighestPriorityRole(resolved)
}

// HighestPriorityRole picks the winning role among candidates: highest
// priority first, role name as the deterministic tie-break.
func HighestPriorityRole(candidates []models.ContractRole) (models.ContractRole, bool) {
	if len(candidates) == 0 {
		return models.ContractRole{}, false
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Priority > best.Priority ||
			(c.Priority == best.Priority && c.Name < best.Name) {
			best = c
		}
	}
	return best, true
}

// AllRoles returns the default catalog plus every active custom role,
// sorted by priority then name. Custom-role listing failures degrade to
// catalog-only output.
func (r *Resolver) AllRoles(ctx context.Context) []models.ContractRole {
	out := r.catalog.All()
	if r.source == nil {
		return out
	}
	custom, err := r.source.CustomRoles(ctx)
	if err != nil {
		r.logger.Warn().Err(err).Msg("custom role listing failed, returning defaults only")
		return out
	}
	for _, c := range custom {
		if !c.IsActive {
			continue
		}
		if _, taken := r.catalog.ByCode(c.RoleCode); taken {
			continue
		}
		r.cache.Add(c.RoleCode, c)
		out = append(out, c)
	}
	sortRoles(out)
	return out
}
