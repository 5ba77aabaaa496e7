// Package store holds session records in memory and enforces their
// lifecycle: lazy expiration on read, terminal invalidation with a
// grace window, and periodic physical cleanup.
package store

import (
	"time"

	"github.com/firefly-oss/lib-session-manager/internal/models"
)

// SessionStore is the storage boundary for session records. All methods
// are safe for concurrent use. Implementations own the stored records;
// every record returned to a caller is a snapshot.
type SessionStore interface {
	// Put stores (or replaces) the record under its session id.
	Put(record *models.SessionContext)

	// Get returns the record when it is live. Expired records are
	// flipped to EXPIRED and removed on the spot; invalidated records
	// within their grace window stay present but read as not found.
	Get(sessionID string) (*models.SessionContext, bool)

	// Peek returns whatever record is physically present, including
	// terminal ones, without mutating it. Expired-but-unswept records
	// are reported with EXPIRED status.
	Peek(sessionID string) (*models.SessionContext, bool)

	// Touch bumps the last-access time of a live record. The expiry
	// set at creation is left untouched. It reports false when the
	// record is absent or terminal.
	Touch(sessionID string, lastAccessed time.Time) bool

	// Invalidate flips a live record to INVALIDATED and schedules its
	// physical removal for removeAfter. It reports whether it flipped
	// a record; invalidating an absent or already terminal record is a
	// no-op and reports false.
	Invalidate(sessionID string, removeAfter time.Time) bool

	// CleanupExpired removes every record whose lifetime is over:
	// active records past their expiry and terminal records past
	// their removal deadline. It returns the number removed.
	CleanupExpired() int

	// Len returns the number of physically present records.
	Len() int
}
