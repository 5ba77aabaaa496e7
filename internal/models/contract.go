package models

import (
	"time"

	"github.com/google/uuid"
)

// ActiveContract represents a contract where the session party
// participates, linking the party to a product with a specific role.
//
// The permission slices are flattened from the resolved contract role at
// profile-aggregation time so that authorization reads never need a role
// lookup. A contract with IsActive=false never grants access, whatever
// role it carries.
type ActiveContract struct {
	ContractID     uuid.UUID
	ContractNumber string
	ContractStatus string

	StartDate time.Time
	EndDate   time.Time

	// Party's role in this contract.
	ContractPartyID uuid.UUID
	RoleID          uuid.UUID
	RoleCode        string
	RoleName        string
	RolePriority    int
	IsActive        bool

	// Product linked to this contract. Contract-to-product is 1:1 in
	// the upstream contract model.
	Product *ActiveProduct

	// Permissions derived from the resolved role.
	OperationPermissions []string
	ResourcePermissions  []string
}

// Clone returns a deep copy of the contract.
func (c ActiveContract) Clone() ActiveContract {
	out := c
	if c.Product != nil {
		p := *c.Product
		out.Product = &p
	}
	out.OperationPermissions = append([]string(nil), c.OperationPermissions...)
	out.ResourcePermissions = append([]string(nil), c.ResourcePermissions...)
	return out
}

// ActiveProduct is the product side of a contract. ProductID is the
// unit of resource-based authorization: product access checks match
// against it, not against the contract id.
type ActiveProduct struct {
	ProductID             uuid.UUID
	ProductCatalogID      uuid.UUID
	ProductName           string
	ProductCode           string
	ProductType           string
	ProductStatus         string
	ProductInstanceNumber string
	Currency              string
}
