package store

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/rs/zerolog"

	"github.com/firefly-oss/lib-session-manager/internal/models"
	"github.com/firefly-oss/lib-session-manager/internal/telemetry"
)

// MemoryStore keeps session records in a sharded concurrent map. All
// state transitions happen inside per-key Compute callbacks, so reads
// never observe a half-applied transition.
type MemoryStore struct {
	records *xsync.MapOf[string, *models.SessionContext]
	clock   clock.Clock
	logger  zerolog.Logger
	metrics *telemetry.SessionMetrics
}

var _ SessionStore = (*MemoryStore)(nil)

// NewMemoryStore builds an empty store. clk may be nil for wall-clock
// time; metrics may be nil to disable instrument recording.
func NewMemoryStore(clk clock.Clock, logger zerolog.Logger, metrics *telemetry.SessionMetrics) *MemoryStore {
	if clk == nil {
		clk = clock.New()
	}
	return &MemoryStore{
		records: xsync.NewMapOf[string, *models.SessionContext](),
		clock:   clk,
		logger:  logger.With().Str("component", "session_store").Logger(),
		metrics: metrics,
	}
}

// recordExpired accounts for active records removed past their expiry.
// Terminal records reclaimed after their grace window were already
// counted when they were invalidated.
func (m *MemoryStore) recordExpired(n int) {
	if m.metrics == nil || n == 0 {
		return
	}
	ctx := context.Background()
	m.metrics.SessionsExpired.Add(ctx, int64(n))
	m.metrics.ActiveSessions.Add(ctx, -int64(n))
}

// Put stores a snapshot of record under its session id, replacing
// whatever was there, terminal or not.
func (m *MemoryStore) Put(record *models.SessionContext) {
	m.records.Store(record.SessionID, record.Clone())
}

// Get returns a live record. An active record past its expiry is
// removed on the spot and reads as not found; invalidated records stay
// present until their grace window ends but also read as not found.
func (m *MemoryStore) Get(sessionID string) (*models.SessionContext, bool) {
	now := m.clock.Now()

	var (
		found   *models.SessionContext
		expired bool
	)
	m.records.Compute(sessionID, func(old *models.SessionContext, loaded bool) (*models.SessionContext, bool) {
		if !loaded {
			return nil, true
		}
		if old.Status == models.SessionStatusActive && now.After(old.ExpiresAt) {
			expired = true
			return nil, true
		}
		if old.Status != models.SessionStatusActive {
			return old, false
		}
		found = old.Clone()
		return old, false
	})
	if expired {
		m.recordExpired(1)
		m.logger.Debug().Str("session_id", sessionID).Msg("expired session removed on read")
	}
	if found == nil {
		return nil, false
	}
	return found, true
}

// Peek returns whatever record is physically present, without removing
// or mutating it. A stale active record is reported as EXPIRED.
func (m *MemoryStore) Peek(sessionID string) (*models.SessionContext, bool) {
	record, ok := m.records.Load(sessionID)
	if !ok {
		return nil, false
	}
	snapshot := record.Clone()
	if snapshot.Status == models.SessionStatusActive && m.clock.Now().After(snapshot.ExpiresAt) {
		snapshot.Status = models.SessionStatusExpired
	}
	return snapshot, true
}

// Touch bumps the last-access time of a live record. The expiry fixed
// at creation is never extended.
func (m *MemoryStore) Touch(sessionID string, lastAccessed time.Time) bool {
	touched := false
	m.records.Compute(sessionID, func(old *models.SessionContext, loaded bool) (*models.SessionContext, bool) {
		if !loaded {
			return nil, true
		}
		if old.Status != models.SessionStatusActive || m.clock.Now().After(old.ExpiresAt) {
			return old, false
		}
		next := old.Clone()
		next.LastAccessedAt = lastAccessed
		touched = true
		return next, false
	})
	return touched
}

// Invalidate flips a live record to INVALIDATED and schedules removal.
// Terminal records are left as they are and report false.
func (m *MemoryStore) Invalidate(sessionID string, removeAfter time.Time) bool {
	flipped := false
	m.records.Compute(sessionID, func(old *models.SessionContext, loaded bool) (*models.SessionContext, bool) {
		if !loaded {
			return nil, true
		}
		if old.Status != models.SessionStatusActive {
			return old, false
		}
		next := old.Clone()
		next.Status = models.SessionStatusInvalidated
		next.RemoveAfter = removeAfter
		flipped = true
		return next, false
	})
	return flipped
}

// CleanupExpired physically removes every record whose lifetime is
// over and returns how many were removed.
func (m *MemoryStore) CleanupExpired() int {
	now := m.clock.Now()
	removed := 0
	expired := 0
	m.records.Range(func(sessionID string, _ *models.SessionContext) bool {
		m.records.Compute(sessionID, func(old *models.SessionContext, loaded bool) (*models.SessionContext, bool) {
			if !loaded {
				return nil, true
			}
			switch old.Status {
			case models.SessionStatusActive:
				if now.After(old.ExpiresAt) {
					removed++
					expired++
					return nil, true
				}
			default:
				if now.After(old.RemoveAfter) {
					removed++
					return nil, true
				}
			}
			return old, false
		})
		return true
	})
	m.recordExpired(expired)
	if removed > 0 {
		m.logger.Debug().Int("removed", removed).Msg("cleanup sweep completed")
	}
	return removed
}

// Len returns the number of physically present records, terminal ones
// included.
func (m *MemoryStore) Len() int {
	return m.records.Size()
}
