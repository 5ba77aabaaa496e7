package models

import (
	"time"

	"github.com/google/uuid"
)

// StringSet is a small membership set used for permission and
// product-type checks.
type StringSet map[string]struct{}

// NewStringSet builds a set from the given values.
func NewStringSet(values ...string) StringSet {
	s := make(StringSet, len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}

// Has reports whether v is a member of the set.
func (s StringSet) Has(v string) bool {
	_, ok := s[v]
	return ok
}

// Values returns the members in unspecified order.
func (s StringSet) Values() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	return out
}

// ContractPermissions bundles the coarse CRUD-style flags with the
// fine-grained operation and resource permission sets of a role.
type ContractPermissions struct {
	CanRead       bool
	CanWrite      bool
	CanDelete     bool
	CanAdminister bool

	Operations StringSet
	Resources  StringSet
}

// ContractRole is a named bundle of permissions with a priority used for
// conflict resolution when a party holds several roles on overlapping
// products. Default roles are immutable catalog constants; custom roles
// come from the reference-data provider and are cached.
type ContractRole struct {
	RoleID      uuid.UUID
	RoleCode    string
	Name        string
	Description string

	IsDefault bool
	IsActive  bool
	Priority  int

	Permissions ContractPermissions

	// ApplicableProductTypes restricts the role to certain product
	// types. Empty means universally applicable.
	ApplicableProductTypes StringSet

	DateCreated time.Time
	DateUpdated time.Time
}

// HasOperationPermission reports whether the role grants the given
// operation (e.g. "TRANSFER").
func (r ContractRole) HasOperationPermission(operation string) bool {
	return r.Permissions.Operations.Has(operation)
}

// HasResourcePermission reports whether the role grants access to the
// given resource category (e.g. "BALANCE").
func (r ContractRole) HasResourcePermission(resource string) bool {
	return r.Permissions.Resources.Has(resource)
}

// IsApplicableToProductType reports whether the role applies to the
// given product type. An empty restriction set means the role is
// universal.
func (r ContractRole) IsApplicableToProductType(productType string) bool {
	if len(r.ApplicableProductTypes) == 0 {
		return true
	}
	return r.ApplicableProductTypes.Has(productType)
}

// IsAdministrative reports whether the role carries administrative
// authority over the contract.
func (r ContractRole) IsAdministrative() bool {
	return r.Permissions.CanAdminister
}

// IsReadOnly reports whether the role can only read.
func (r ContractRole) IsReadOnly() bool {
	return r.Permissions.CanRead && !r.Permissions.CanWrite &&
		!r.Permissions.CanDelete && !r.Permissions.CanAdminister
}
