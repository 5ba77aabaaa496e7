package models

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus describes the lifecycle state of a session record.
//
// Valid transitions:
//
//	(absent) → ACTIVE → EXPIRED    (time-based, detected lazily on read)
//	(absent) → ACTIVE → INVALIDATED (explicit call)
//	EXPIRED | INVALIDATED → (removed)
//
// No transition leaves a terminal state back to ACTIVE; a fresh login
// creates a new record (optionally reusing the session id).
type SessionStatus string

const (
	SessionStatusActive      SessionStatus = "ACTIVE"
	SessionStatusExpired     SessionStatus = "EXPIRED"
	SessionStatusInvalidated SessionStatus = "INVALIDATED"
)

// ClientMetadata carries request-level attributes captured at session
// creation time. All fields are optional.
type ClientMetadata struct {
	IPAddress         string
	UserAgent         string
	Channel           string // "web", "mobile" or "api"
	SourceApplication string
}

// SessionContext is the per-party session record: who the caller is and
// which contracts/products they may touch, plus lifecycle bookkeeping.
//
// Records are owned exclusively by the session store. Callers always
// receive snapshots (see Clone); mutating a snapshot has no effect on
// the stored record.
type SessionContext struct {
	SessionID string
	PartyID   uuid.UUID

	Profile *CustomerProfile
	Status  SessionStatus

	CreatedAt      time.Time
	LastAccessedAt time.Time
	ExpiresAt      time.Time

	// RemoveAfter is set when the session is invalidated: the record
	// stays visible as terminal until this instant, then the cleanup
	// sweep removes it physically.
	RemoveAfter time.Time

	Metadata ClientMetadata
}

// Clone returns a snapshot safe to hand outside the store boundary.
// The profile is copied so that callers cannot reach back into the
// stored record through shared slices.
func (s *SessionContext) Clone() *SessionContext {
	if s == nil {
		return nil
	}
	out := *s
	out.Profile = s.Profile.Clone()
	return &out
}
