package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/firefly-oss/lib-session-manager/internal/access"
	"github.com/firefly-oss/lib-session-manager/internal/middleware"
	"github.com/firefly-oss/lib-session-manager/internal/models"
	"github.com/firefly-oss/lib-session-manager/internal/roles"
	"github.com/firefly-oss/lib-session-manager/internal/services/session"
)

type sessionResponse struct {
	SessionID      string                 `json:"session_id"`
	PartyID        uuid.UUID              `json:"party_id"`
	Status         string                 `json:"status"`
	CreatedAt      time.Time              `json:"created_at"`
	LastAccessedAt time.Time              `json:"last_accessed_at"`
	ExpiresAt      time.Time              `json:"expires_at"`
	Metadata       clientMetadataResponse `json:"metadata"`
	Profile        *profileResponse       `json:"profile,omitempty"`
}

type clientMetadataResponse struct {
	IPAddress         string `json:"ip_address,omitempty"`
	UserAgent         string `json:"user_agent,omitempty"`
	Channel           string `json:"channel,omitempty"`
	SourceApplication string `json:"source_application,omitempty"`
}

type profileResponse struct {
	PartyID         uuid.UUID          `json:"party_id"`
	GivenName       string             `json:"given_name"`
	FamilyName      string             `json:"family_name"`
	PartyStatus     string             `json:"party_status"`
	ActiveContracts []contractResponse `json:"active_contracts"`
}

type contractResponse struct {
	ContractID           uuid.UUID        `json:"contract_id"`
	ContractNumber       string           `json:"contract_number"`
	ContractStatus       string           `json:"contract_status"`
	RoleCode             string           `json:"role_code"`
	RoleName             string           `json:"role_name"`
	RolePriority         int              `json:"role_priority"`
	Active               bool             `json:"active"`
	Product              *productResponse `json:"product,omitempty"`
	OperationPermissions []string         `json:"operation_permissions"`
	ResourcePermissions  []string         `json:"resource_permissions"`
}

type productResponse struct {
	ProductID             uuid.UUID `json:"product_id"`
	ProductName           string    `json:"product_name"`
	ProductCode           string    `json:"product_code"`
	ProductType           string    `json:"product_type"`
	ProductStatus         string    `json:"product_status"`
	ProductInstanceNumber string    `json:"product_instance_number,omitempty"`
	Currency              string    `json:"currency,omitempty"`
}

type roleResponse struct {
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

func toSessionResponse(s *models.SessionContext) sessionResponse {
	out := sessionResponse{
		SessionID:      s.SessionID,
		PartyID:        s.PartyID,
		Status:         string(s.Status),
		CreatedAt:      s.CreatedAt,
		LastAccessedAt: s.LastAccessedAt,
		ExpiresAt:      s.ExpiresAt,
		Metadata: clientMetadataResponse{
			IPAddress:         s.Metadata.IPAddress,
			UserAgent:         s.Metadata.UserAgent,
			Channel:           s.Metadata.Channel,
			SourceApplication: s.Metadata.SourceApplication,
		},
	}
	if s.Profile != nil {
		profile := &profileResponse{
			PartyID:         s.Profile.PartyID,
			GivenName:       s.Profile.GivenName,
			FamilyName:      s.Profile.FamilyName,
			PartyStatus:     s.Profile.PartyStatus,
			ActiveContracts: make([]contractResponse, 0, len(s.Profile.ActiveContracts)),
		}
		for _, c := range s.Profile.ActiveContracts {
			contract := contractResponse{
				ContractID:           c.ContractID,
				ContractNumber:       c.ContractNumber,
				ContractStatus:       c.ContractStatus,
				RoleCode:             c.RoleCode,
				RoleName:             c.RoleName,
				RolePriority:         c.RolePriority,
				Active:               c.IsActive,
				OperationPermissions: c.OperationPermissions,
				ResourcePermissions:  c.ResourcePermissions,
			}
			if c.Product != nil {
				contract.Product = &productResponse{
					ProductID:             c.Product.ProductID,
					ProductName:           c.Product.ProductName,
					ProductCode:           c.Product.ProductCode,
					ProductType:           c.Product.ProductType,
					ProductStatus:         c.Product.ProductStatus,
					ProductInstanceNumber: c.Product.ProductInstanceNumber,
					Currency:              c.Product.Currency,
				}
			}
			profile.ActiveContracts = append(profile.ActiveContracts, contract)
		}
		out.Profile = profile
	}
	return out
}

func toRoleResponse(r models.ContractRole) roleResponse {
	return roleResponse{
		RoleID:                 r.RoleID,
		RoleCode:               r.RoleCode,
		Name:                   r.Name,
		Description:            r.Description,
		Default:                r.IsDefault,
		Active:                 r.IsActive,
		Priority:               r.Priority,
		CanRead:                r.Permissions.CanRead,
		CanWrite:               r.Permissions.CanWrite,
		CanDelete:              r.Permissions.CanDelete,
		CanAdminister:          r.Permissions.CanAdminister,
		OperationPermissions:   r.Permissions.Operations.Values(),
		ResourcePermissions:    r.Permissions.Resources.Values(),
		ApplicableProductTypes: r.ApplicableProductTypes.Values(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

type createSessionRequest struct {
	PartyID   *uuid.UUID `json:"party_id,omitempty"`
	SessionID string     `json:"session_id,omitempty"`
}

// HandleCreateSession creates a session for the calling party, or
// returns the existing one when a still-valid session id is supplied.
func HandleCreateSession(manager *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var body createSessionRequest
		if r.Body != nil && r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				writeError(w, http.StatusBadRequest, err)
				return
			}
		}

		partyID, ok := middleware.PartyIDFrom(ctx)
		if !ok && body.PartyID != nil {
			partyID, ok = *body.PartyID, true
		}
		if !ok {
			writeError(w, http.StatusBadRequest, ErrPartyIDRequired)
			return
		}

		sessionID := body.SessionID
		if sessionID == "" {
			sessionID, _ = middleware.SessionIDFrom(ctx)
		}

		result, err := manager.CreateOrGet(ctx, partyID, sessionID, middleware.ClientMetadataFrom(ctx))
		if err != nil {
			writeError(w, http.StatusBadGateway, errors.New("session creation failed"))
			return
		}
		writeJSON(w, http.StatusOK, toSessionResponse(result))
	}
}

// HandleGetSession returns a live session by id.
func HandleGetSession(manager *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := chi.URLParam(r, "sessionID")
		result, ok := manager.GetByID(sessionID)
		if !ok {
			writeError(w, http.StatusNotFound, ErrSessionNotFound)
			return
		}
		writeJSON(w, http.StatusOK, toSessionResponse(result))
	}
}

// HandleInvalidateSession terminates a session. Idempotent: repeating
// the call, or invalidating an unknown id, succeeds all the same.
func HandleInvalidateSession(manager *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		manager.Invalidate(r.Context(), chi.URLParam(r, "sessionID"))
		w.WriteHeader(http.StatusNoContent)
	}
}

// HandleRefreshSession re-aggregates the session's profile from
// upstream.
func HandleRefreshSession(manager *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := manager.Refresh(r.Context(), chi.URLParam(r, "sessionID"))
		if err != nil {
			if errors.Is(err, session.ErrSessionNotFound) {
				writeError(w, http.StatusNotFound, ErrSessionNotFound)
				return
			}
			writeError(w, http.StatusBadGateway, errors.New("session refresh failed"))
			return
		}
		writeJSON(w, http.StatusOK, toSessionResponse(result))
	}
}

// HandleSessionValidity reports whether a session is live.
func HandleSessionValidity(manager *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		current, ok := manager.GetByID(chi.URLParam(r, "sessionID"))
		writeJSON(w, http.StatusOK, map[string]bool{
			"valid": ok && manager.IsValid(current),
		})
	}
}

type accessCheckRequest struct {
	Kind           string   `json:"kind,omitempty"`
	SessionID      string   `json:"session_id,omitempty"`
	ResourceID     string   `json:"resource_id"`
	PrincipalRoles []string `json:"principal_roles"`
}

// HandleAccessCheck runs an access decision. The response never
// distinguishes why access was denied.
func HandleAccessCheck(registry *access.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var body accessCheckRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		kind := access.Kind(body.Kind)
		if body.Kind == "" {
			kind = access.KindProduct
		}
		sessionID := body.SessionID
		if sessionID == "" {
			sessionID, _ = middleware.SessionIDFrom(ctx)
		}

		allowed := registry.CanAccess(ctx, kind, sessionID, body.ResourceID, body.PrincipalRoles)
		writeJSON(w, http.StatusOK, map[string]bool{"allowed": allowed})
	}
}

// HandleListRoles returns the full role namespace: defaults plus active
// custom roles.
func HandleListRoles(resolver *roles.Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all := resolver.AllRoles(r.Context())
		out := make([]roleResponse, 0, len(all))
		for _, role := range all {
			out = append(out, toRoleResponse(role))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// HandleGetRole returns one role by code.
func HandleGetRole(resolver *roles.Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role, ok := resolver.Resolve(r.Context(), chi.URLParam(r, "code"))
		if !ok {
			writeError(w, http.StatusNotFound, ErrRoleNotFound)
			return
		}
		writeJSON(w, http.StatusOK, toRoleResponse(role))
	}
}

// HandleRoleCacheRefresh drops the custom-role cache.
func HandleRoleCacheRefresh(resolver *roles.Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		resolver.RefreshCache()
		w.WriteHeader(http.StatusNoContent)
	}
}
