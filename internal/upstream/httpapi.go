package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/firefly-oss/lib-session-manager/internal/models"
)

// HTTPClient talks to the customer-data platform over JSON/HTTP. It
// implements PartyDirectory, ContractProvider and CustomRoleProvider.
type HTTPClient struct {
	baseURL string
	client  *http.Client
	logger  zerolog.Logger
}

// NewHTTPClient builds a client for the given base URL. timeout bounds
// each individual request on top of the caller's context.
func NewHTTPClient(baseURL string, timeout time.Duration, logger zerolog.Logger) *HTTPClient {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger.With().Str("component", "upstream_client").Logger(),
	}
}

type partyPayload struct {
	PartyID       uuid.UUID             `json:"party_id"`
	GivenName     string                `json:"given_name"`
	FamilyName    string                `json:"family_name"`
	DateOfBirth   time.Time             `json:"date_of_birth"`
	Status        string                `json:"status"`
	Relationships []relationshipPayload `json:"relationships"`
}

type relationshipPayload struct {
	RelationshipID   uuid.UUID `json:"relationship_id"`
	FromPartyID      uuid.UUID `json:"from_party_id"`
	ToPartyID        uuid.UUID `json:"to_party_id"`
	LegalEntityName  string    `json:"legal_entity_name"`
	RelationshipType string    `json:"relationship_type"`
	Active           bool      `json:"active"`
	StartDate        time.Time `json:"start_date"`
	EndDate          time.Time `json:"end_date"`
}

type contractPayload struct {
	ContractID      uuid.UUID       `json:"contract_id"`
	ContractNumber  string          `json:"contract_number"`
	ContractStatus  string          `json:"contract_status"`
	StartDate       time.Time       `json:"start_date"`
	EndDate         time.Time       `json:"end_date"`
	ContractPartyID uuid.UUID       `json:"contract_party_id"`
	RoleID          uuid.UUID       `json:"role_id"`
	RoleCode        string          `json:"role_code"`
	Active          bool            `json:"active"`
	Product         *productPayload `json:"product"`
}

type productPayload struct {
	ProductID             uuid.UUID `json:"product_id"`
	ProductCatalogID      uuid.UUID `json:"product_catalog_id"`
	ProductName           string    `json:"product_name"`
	ProductCode           string    `json:"product_code"`
	ProductType           string    `json:"product_type"`
	ProductStatus         string    `json:"product_status"`
	ProductInstanceNumber string    `json:"product_instance_number"`
	Currency              string    `json:"currency"`
}

type rolePayload struct {
	RoleID               uuid.UUID `json:"role_id"`
	RoleCode             string    `json:"role_code"`
	Name                 string    `json:"name"`
	Description          string    `json:"description"`
	Active               bool      `json:"active"`
	Priority             int       `json:"priority"`
	CanRead              bool      `json:"can_read"`
	CanWrite             bool      `json:"can_write"`
	CanDelete            bool      `json:"can_delete"`
	CanAdminister        bool      `json:"can_administer"`
	OperationPermissions []string  `json:"operation_permissions"`
	ResourcePermissions  []string  `json:"resource_permissions"`
	ProductTypes         []string  `json:"applicable_product_types"`
	DateCreated          time.Time `json:"date_created"`
	DateUpdated          time.Time `json:"date_updated"`
}

// Party implements PartyDirectory.
func (c *HTTPClient) Party(ctx context.Context, partyID uuid.UUID) (PartyRecord, error) {
	var payload partyPayload
	if err := c.getJSON(ctx, &payload, "parties", partyID.String()); err != nil {
		return PartyRecord{}, err
	}

	rec := PartyRecord{
		PartyID:     payload.PartyID,
		GivenName:   payload.GivenName,
		FamilyName:  payload.FamilyName,
		DateOfBirth: payload.DateOfBirth,
		Status:      payload.Status,
	}
	for _, rel := range payload.Relationships {
		rec.Relationships = append(rec.Relationships, models.PartyRelationship{
			RelationshipID:   rel.RelationshipID,
			FromPartyID:      rel.FromPartyID,
			ToPartyID:        rel.ToPartyID,
			LegalEntityName:  rel.LegalEntityName,
			RelationshipType: rel.RelationshipType,
			Active:           rel.Active,
			StartDate:        rel.StartDate,
			EndDate:          rel.EndDate,
		})
	}
	return rec, nil
}

// ActiveContracts implements ContractProvider.
func (c *HTTPClient) ActiveContracts(ctx context.Context, partyID uuid.UUID) ([]models.ActiveContract, error) {
	var payload []contractPayload
	if err := c.getJSON(ctx, &payload, "parties", partyID.String(), "contracts"); err != nil {
		return nil, err
	}

	contracts := make([]models.ActiveContract, 0, len(payload))
	for _, p := range payload {
		contract := models.ActiveContract{
			ContractID:      p.ContractID,
			ContractNumber:  p.ContractNumber,
			ContractStatus:  p.ContractStatus,
			StartDate:       p.StartDate,
			EndDate:         p.EndDate,
			ContractPartyID: p.ContractPartyID,
			RoleID:          p.RoleID,
			RoleCode:        p.RoleCode,
			IsActive:        p.Active,
		}
		if p.Product != nil {
			contract.Product = &models.ActiveProduct{
				ProductID:             p.Product.ProductID,
				ProductCatalogID:      p.Product.ProductCatalogID,
				ProductName:           p.Product.ProductName,
				ProductCode:           p.Product.ProductCode,
				ProductType:           p.Product.ProductType,
				ProductStatus:         p.Product.ProductStatus,
				ProductInstanceNumber: p.Product.ProductInstanceNumber,
				Currency:              p.Product.Currency,
			}
		}
		contracts = append(contracts, contract)
	}
	return contracts, nil
}

// CustomRoleByCode implements CustomRoleProvider.
func (c *HTTPClient) CustomRoleByCode(ctx context.Context, code string) (models.ContractRole, error) {
	var payload rolePayload
	if err := c.getJSON(ctx, &payload, "roles", "custom", code); err != nil {
		return models.ContractRole{}, err
	}
	return payload.toModel(), nil
}

// CustomRoles implements CustomRoleProvider.
func (c *HTTPClient) CustomRoles(ctx context.Context) ([]models.ContractRole, error) {
	var payload []rolePayload
	if err := c.getJSON(ctx, &payload, "roles", "custom"); err != nil {
		return nil, err
	}
	out := make([]models.ContractRole, 0, len(payload))
	for _, p := range payload {
		out = append(out, p.toModel())
	}
	return out, nil
}

func (p rolePayload) toModel() models.ContractRole {
	return models.ContractRole{
		RoleID:      p.RoleID,
		RoleCode:    p.RoleCode,
		Name:        p.Name,
		Description: p.Description,
		IsDefault:   false,
		IsActive:    p.Active,
		Priority:    p.Priority,
		Permissions: models.ContractPermissions{
			CanRead:       p.CanRead,
			CanWrite:      p.CanWrite,
			CanDelete:     p.CanDelete,
			CanAdminister: p.CanAdminister,
			Operations:    models.NewStringSet(p.OperationPermissions...),
			Resources:     models.NewStringSet(p.ResourcePermissions...),
		},
		ApplicableProductTypes: models.NewStringSet(p.ProductTypes...),
		DateCreated:            p.DateCreated,
		DateUpdated:            p.DateUpdated,
	}
}

func (c *HTTPClient) getJSON(ctx context.Context, out any, elem ...string) error {
	target, err := url.JoinPath(c.baseURL, elem...)
	if err != nil {
		return fmt.Errorf("invalid upstream URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("failed to build upstream request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, target)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		c.logger.Warn().Int("status", resp.StatusCode).Str("url", target).
			Msg("upstream request failed")
		return fmt.Errorf("%w: %s returned %s", ErrUnavailable, target, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode upstream response: %w", err)
	}
	return nil
}
