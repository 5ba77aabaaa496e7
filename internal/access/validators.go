package access

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"github.com/firefly-oss/lib-session-manager/internal/models"
	"github.com/firefly-oss/lib-session-manager/internal/telemetry"
)

const tracerName = "sessiond/access"

// checker carries the pieces shared by every validator: the session
// read path, the bypass set, the audit log and the metric instruments.
type checker struct {
	sessions SessionReader
	bypass   models.StringSet
	logger   zerolog.Logger
	metrics  *telemetry.AccessMetrics
}

// decide runs the common algorithm:
//
//  1. Parse the resource id; malformed ids deny immediately, before
//     any bypass consideration.
//  2. Principals holding a bypass role are allowed without touching
//     the session.
//  3. Otherwise the session must exist and match() must find a
//     qualifying active contract.
//
// Every outcome is written to the audit log.
func (c *checker) decide(ctx context.Context, kind Kind, sessionID, resourceID string, principalRoles []string, match func(*models.SessionContext, uuid.UUID) bool) bool {
	ctx, span := telemetry.StartSpan(ctx, tracerName, "access.CanAccess",
		attribute.String(telemetry.AttrAccessKind, string(kind)),
		attribute.String(telemetry.AttrAccessResource, resourceID),
	)
	defer span.End()

	resourceUUID, err := uuid.Parse(resourceID)
	if err != nil {
		c.audit(ctx, kind, sessionID, resourceID, principalRoles, false, false, "malformed resource id")
		telemetry.AddEvent(span, "access.malformed_resource_id")
		span.SetAttributes(attribute.Bool(telemetry.AttrAccessAllowed, false))
		return false
	}

	if c.hasBypassRole(principalRoles) {
		c.audit(ctx, kind, sessionID, resourceID, principalRoles, true, true, "bypass role")
		span.SetAttributes(
			attribute.Bool(telemetry.AttrAccessAllowed, true),
			attribute.Bool(telemetry.AttrAccessBypass, true),
		)
		return true
	}

	session, ok := c.sessions.GetByID(sessionID)
	if !ok {
		c.audit(ctx, kind, sessionID, resourceID, principalRoles, false, false, "no session")
		span.SetAttributes(attribute.Bool(telemetry.AttrAccessAllowed, false))
		return false
	}

	allowed := match(session, resourceUUID)
	reason := "contract match"
	if !allowed {
		reason = "no matching active contract"
	}
	c.audit(ctx, kind, sessionID, resourceID, principalRoles, allowed, false, reason)
	span.SetAttributes(attribute.Bool(telemetry.AttrAccessAllowed, allowed))
	return allowed
}

func (c *checker) hasBypassRole(principalRoles []string) bool {
	for _, role := range principalRoles {
		if c.bypass.Has(role) {
			return true
		}
	}
	return false
}

// audit is the required observable effect of every access check. The
// denial reason stays internal; callers only see the boolean.
func (c *checker) audit(ctx context.Context, kind Kind, sessionID, resourceID string, principalRoles []string, allowed, bypass bool, reason string) {
	if c.metrics != nil {
		c.metrics.RecordCheck(ctx, string(kind), allowed, bypass)
	}
	c.logger.Info().
		Str("kind", string(kind)).
		Str("session_id", sessionID).
		Str("resource_id", resourceID).
		Strs("principal_roles", principalRoles).
		Bool("allowed", allowed).
		Bool("bypass", bypass).
		Str("reason", reason).
		Msg("access check")
}

// ProductValidator checks product-scoped access: the session must hold
// an active contract whose linked product matches the resource id.
type ProductValidator struct {
	checker
}

// NewProductValidator builds the product-kind validator. metrics may be
// nil.
func NewProductValidator(sessions SessionReader, bypassRoles []string, logger zerolog.Logger, metrics *telemetry.AccessMetrics) *ProductValidator {
	return &ProductValidator{checker{
		sessions: sessions,
		bypass:   models.NewStringSet(bypassRoles...),
		logger:   logger.With().Str("component", "access_audit").Logger(),
		metrics:  metrics,
	}}
}

func (v *ProductValidator) Kind() Kind { return KindProduct }

func (v *ProductValidator) CanAccess(ctx context.Context, sessionID, resourceID string, principalRoles []string) bool {
	return v.decide(ctx, KindProduct, sessionID, resourceID, principalRoles,
		func(session *models.SessionContext, productID uuid.UUID) bool {
			_, ok := session.Profile.ContractForProduct(productID)
			return ok
		})
}

// ContractValidator checks contract-scoped access: the session must
// hold the active contract named by the resource id.
type ContractValidator struct {
	checker
}

// NewContractValidator builds the contract-kind validator. metrics may
// be nil.
func NewContractValidator(sessions SessionReader, bypassRoles []string, logger zerolog.Logger, metrics *telemetry.AccessMetrics) *ContractValidator {
	return &ContractValidator{checker{
		sessions: sessions,
		bypass:   models.NewStringSet(bypassRoles...),
		logger:   logger.With().Str("component", "access_audit").Logger(),
		metrics:  metrics,
	}}
}

func (v *ContractValidator) Kind() Kind { return KindContract }

func (v *ContractValidator) CanAccess(ctx context.Context, sessionID, resourceID string, principalRoles []string) bool {
	return v.decide(ctx, KindContract, sessionID, resourceID, principalRoles,
		func(session *models.SessionContext, contractID uuid.UUID) bool {
			if session.Profile == nil {
				return false
			}
			for _, contract := range session.Profile.ActiveContracts {
				if contract.IsActive && contract.ContractID == contractID {
					return true
				}
			}
			return false
		})
}
