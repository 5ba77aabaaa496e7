// Package access answers "may this principal touch this resource"
// questions against the current session, with an explicit bypass set
// for administrative roles. Every decision is audited.
package access

import (
	"context"
	"fmt"

	"github.com/firefly-oss/lib-session-manager/internal/models"
)

// Kind tags the resource identifier space an access check runs against.
type Kind string

const (
	// KindProduct checks against the product ids linked to the
	// session's active contracts. Products are the primary unit of
	// resource authorization.
	KindProduct Kind = "product"

	// KindContract checks against contract ids directly, for callers
	// that hold a contract reference instead of a product one.
	KindContract Kind = "contract"
)

// AllKinds lists every resource kind the registry must cover.
func AllKinds() []Kind {
	return []Kind{KindProduct, KindContract}
}

// SessionReader is the slice of the session manager the validators
// need.
type SessionReader interface {
	GetByID(sessionID string) (*models.SessionContext, bool)
}

// Validator decides access for one resource kind.
type Validator interface {
	Kind() Kind
	CanAccess(ctx context.Context, sessionID, resourceID string, principalRoles []string) bool
}

// Registry dispatches access checks to the validator for the resource
// kind. Construction fails when any known kind is missing a validator,
// so an incomplete wiring is caught at startup instead of denying (or
// worse, skipping) checks at runtime.
type Registry struct {
	validators map[Kind]Validator
}

// NewRegistry builds a registry and verifies completeness.
func NewRegistry(validators ...Validator) (*Registry, error) {
	byKind := make(map[Kind]Validator, len(validators))
	for _, v := range validators {
		if _, dup := byKind[v.Kind()]; dup {
			return nil, fmt.Errorf("duplicate access validator for kind %q", v.Kind())
		}
		byKind[v.Kind()] = v
	}
	for _, kind := range AllKinds() {
		if _, ok := byKind[kind]; !ok {
			return nil, fmt.Errorf("no access validator registered for kind %q", kind)
		}
	}
	return &Registry{validators: byKind}, nil
}

// CanAccess runs the check for the given kind. Unknown kinds deny.
func (r *Registry) CanAccess(ctx context.Context, kind Kind, sessionID, resourceID string, principalRoles []string) bool {
	v, ok := r.validators[kind]
	if !ok {
		return false
	}
	return v.CanAccess(ctx, sessionID, resourceID, principalRoles)
}
