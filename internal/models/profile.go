package models

import (
	"time"

	"github.com/google/uuid"
)

// CustomerProfile aggregates everything known about a party at session
// creation time: display attributes, the contracts the party
// participates in, and relationships to other parties (acting on behalf
// of a legal entity, guardianship, and so on).
//
// A profile is built once per session creation or refresh and is
// immutable within a session snapshot.
type CustomerProfile struct {
	PartyID uuid.UUID

	GivenName   string
	FamilyName  string
	DateOfBirth time.Time
	PartyStatus string

	ActiveContracts    []ActiveContract
	PartyRelationships []PartyRelationship

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Clone returns a deep copy of the profile.
func (p *CustomerProfile) Clone() *CustomerProfile {
	if p == nil {
		return nil
	}
	out := *p
	out.ActiveContracts = make([]ActiveContract, len(p.ActiveContracts))
	for i := range p.ActiveContracts {
		out.ActiveContracts[i] = p.ActiveContracts[i].Clone()
	}
	out.PartyRelationships = append([]PartyRelationship(nil), p.PartyRelationships...)
	return &out
}

// ContractForProduct returns the first active contract whose linked
// product matches productID.
func (p *CustomerProfile) ContractForProduct(productID uuid.UUID) (ActiveContract, bool) {
	if p == nil {
		return ActiveContract{}, false
	}
	for _, c := range p.ActiveContracts {
		if c.IsActive && c.Product != nil && c.Product.ProductID == productID {
			return c, true
		}
	}
	return ActiveContract{}, false
}

// PartyRelationship links the session party to another party, typically
// for acting-on-behalf-of scenarios (legal entities, guardianship).
type PartyRelationship struct {
	RelationshipID   uuid.UUID
	FromPartyID      uuid.UUID
	ToPartyID        uuid.UUID
	LegalEntityName  string
	RelationshipType string
	Active           bool
	StartDate        time.Time
	EndDate          time.Time
}
