package sdk

import (
	"time"

	"github.com/google/uuid"
)

// Session is the client-side view of a session context.
type Session struct {
	SessionID      string         `json:"session_id"`
	PartyID        uuid.UUID      `json:"party_id"`
	Status         string         `json:"status"`
	CreatedAt      time.Time      `json:"created_at"`
	LastAccessedAt time.Time      `json:"last_accessed_at"`
	ExpiresAt      time.Time      `json:"expires_at"`
	Metadata       ClientMetadata `json:"metadata"`
	Profile        *Profile       `json:"profile,omitempty"`
}

// ClientMetadata carries the request attributes recorded at session
// creation.
type ClientMetadata struct {
	IPAddress         string `json:"ip_address,omitempty"`
	UserAgent         string `json:"user_agent,omitempty"`
	Channel           string `json:"channel,omitempty"`
	SourceApplication string `json:"source_application,omitempty"`
}

// Profile is the aggregated customer view embedded in a session.
type Profile struct {
	PartyID         uuid.UUID  `json:"party_id"`
	GivenName       string     `json:"given_name"`
	FamilyName      string     `json:"family_name"`
	PartyStatus     string     `json:"party_status"`
	ActiveContracts []Contract `json:"active_contracts"`
}

// Contract links the party to a product with a resolved role.
type Contract struct {
	ContractID           uuid.UUID `json:"contract_id"`
	ContractNumber       string    `json:"contract_number"`
	ContractStatus       string    `json:"contract_status"`
	RoleCode             string    `json:"role_code"`
	RoleName             string    `json:"role_name"`
	RolePriority         int       `json:"role_priority"`
	Active               bool      `json:"active"`
	Product              *Product  `json:"product,omitempty"`
	OperationPermissions []string  `json:"operation_permissions"`
	ResourcePermissions  []string  `json:"resource_permissions"`
}

// Product is the authorization resource linked to a contract.
type Product struct {
	ProductID             uuid.UUID `json:"product_id"`
	ProductName           string    `json:"product_name"`
	ProductCode           string    `json:"product_code"`
	ProductType           string    `json:"product_type"`
	ProductStatus         string    `json:"product_status"`
	ProductInstanceNumber string    `json:"product_instance_number,omitempty"`
	Currency              string    `json:"currency,omitempty"`
}

// Role is a role definition from the unified namespace.
type Role struct {
	RoleID                 uuid.UUID `json:"role_id"`
	RoleCode               string    `json:"role_code"`
	Name                   string    `json:"name"`
	Description            string    `json:"description"`
	Default                bool      `json:"default"`
	Active                 bool      `json:"active"`
	Priority               int       `json:"priority"`
	CanRead                bool      `json:"can_read"`
	CanWrite               bool      `json:"can_write"`
	CanDelete              bool      `json:"can_delete"`
	CanAdminister          bool      `json:"can_administer"`
	OperationPermissions   []string  `json:"operation_permissions"`
	ResourcePermissions    []string  `json:"resource_permissions"`
	ApplicableProductTypes []string  `json:"applicable_product_types"`
}

// CreateSessionInput parameterizes CreateSession. SessionID is optional;
// when set and still valid server-side, the existing session is reused.
type CreateSessionInput struct {
	PartyID   uuid.UUID
	SessionID string
}

// AccessCheckInput parameterizes CheckAccess. Kind defaults to
// "product" on the server.
type AccessCheckInput struct {
	Kind           string   `json:"kind,omitempty"`
	SessionID      string   `json:"session_id,omitempty"`
	ResourceID     string   `json:"resource_id"`
	PrincipalRoles []string `json:"principal_roles"`
}
