// Package session orchestrates the session lifecycle: create-or-get,
// read-through, refresh, invalidation and validity checks.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"github.com/firefly-oss/lib-session-manager/internal/models"
	"github.com/firefly-oss/lib-session-manager/internal/store"
	"github.com/firefly-oss/lib-session-manager/internal/telemetry"
)

const tracerName = "sessiond/services/session"

// ErrSessionNotFound is returned by Refresh when the session is absent
// or terminal. Plain reads report absence through their boolean result
// instead.
var ErrSessionNotFound = errors.New("session not found")

// ProfileSource supplies assembled customer profiles. Refresh must
// bypass any profile-level cache.
type ProfileSource interface {
	Profile(ctx context.Context, partyID uuid.UUID) (*models.CustomerProfile, error)
	Refresh(ctx context.Context, partyID uuid.UUID) (*models.CustomerProfile, error)
}

// Config tunes session lifetimes.
type Config struct {
	// Timeout is the session lifetime, fixed at creation. Reads bump
	// the last-access time but never extend the expiry.
	Timeout time.Duration

	// InvalidationGrace is how long an invalidated record stays
	// visible as terminal before physical removal.
	InvalidationGrace time.Duration
}

// Manager owns session lifecycle orchestration on top of a SessionStore
// and a ProfileSource. It holds no per-session state of its own; two
// concurrent CreateOrGet calls for the same party may create two
// sessions with different ids, each self-consistent.
type Manager struct {
	store    store.SessionStore
	profiles ProfileSource
	cfg      Config
	clock    clock.Clock
	logger   zerolog.Logger
	metrics  *telemetry.SessionMetrics
}

// NewManager builds a lifecycle manager. metrics may be nil to disable
// instrument recording.
func NewManager(st store.SessionStore, profiles ProfileSource, cfg Config, clk clock.Clock, logger zerolog.Logger, metrics *telemetry.SessionMetrics) *Manager {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Minute
	}
	if cfg.InvalidationGrace <= 0 {
		cfg.InvalidationGrace = 5 * time.Minute
	}
	if clk == nil {
		clk = clock.New()
	}
	return &Manager{
		store:    st,
		profiles: profiles,
		cfg:      cfg,
		clock:    clk,
		logger:   logger.With().Str("component", "session_manager").Logger(),
		metrics:  metrics,
	}
}

// NewSessionID synthesizes a deterministic-but-unique session id from
// the party id and a creation instant.
func NewSessionID(partyID uuid.UUID, createdAt time.Time) string {
	return fmt.Sprintf("session_%s_%d", partyID, createdAt.UnixMilli())
}

// CreateOrGet returns the session identified by sessionID when it is
// still live, bumping its last-access time. Otherwise it builds a new
// session for partyID from upstream profile data. A failed profile
// aggregation propagates as a creation error; there is never a silently
// empty session.
func (m *Manager) CreateOrGet(ctx context.Context, partyID uuid.UUID, sessionID string, meta models.ClientMetadata) (*models.SessionContext, error) {
	ctx, span := telemetry.StartSpan(ctx, tracerName, "session.CreateOrGet",
		attribute.String(telemetry.AttrPartyID, partyID.String()),
	)
	defer span.End()

	if sessionID != "" {
		if existing, ok := m.store.Get(sessionID); ok {
			now := m.clock.Now()
			if m.store.Touch(sessionID, now) {
				existing.LastAccessedAt = now
			}
			span.SetAttributes(attribute.String(telemetry.AttrSessionID, sessionID))
			telemetry.AddEvent(span, "session.reused")
			return existing, nil
		}
	}

	start := m.clock.Now()
	profile, err := m.profiles.Profile(ctx, partyID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("creating session for party %s: %w", partyID, err)
	}

	now := m.clock.Now()
	record := &models.SessionContext{
		SessionID:      NewSessionID(partyID, now),
		PartyID:        partyID,
		Profile:        profile,
		Status:         models.SessionStatusActive,
		CreatedAt:      now,
		LastAccessedAt: now,
		ExpiresAt:      now.Add(m.cfg.Timeout),
		Metadata:       meta,
	}
	m.store.Put(record)

	if m.metrics != nil {
		m.metrics.SessionsCreated.Add(ctx, 1)
		m.metrics.ActiveSessions.Add(ctx, 1)
		m.metrics.CreateDuration.Record(ctx, float64(now.Sub(start).Milliseconds()))
	}
	span.SetAttributes(attribute.String(telemetry.AttrSessionID, record.SessionID))
	m.logger.Info().
		Str("session_id", record.SessionID).
		Str("party_id", partyID.String()).
		Str("channel", meta.Channel).
		Int("contracts", len(profile.ActiveContracts)).
		Msg("session created")

	return record.Clone(), nil
}

// GetByID is a thin read-through to the store. Expired and invalidated
// sessions read as absent.
func (m *Manager) GetByID(sessionID string) (*models.SessionContext, bool) {
	return m.store.Get(sessionID)
}

// Invalidate terminates a session. Invalidating an absent or already
// terminal session is not an error.
func (m *Manager) Invalidate(ctx context.Context, sessionID string) {
	_, span := telemetry.StartSpan(ctx, tracerName, "session.Invalidate",
		attribute.String(telemetry.AttrSessionID, sessionID),
	)
	defer span.End()

	removeAfter := m.clock.Now().Add(m.cfg.InvalidationGrace)
	if m.store.Invalidate(sessionID, removeAfter) {
		if m.metrics != nil {
			m.metrics.SessionsInvalidated.Add(ctx, 1)
			m.metrics.ActiveSessions.Add(ctx, -1)
		}
		m.logger.Info().Str("session_id", sessionID).Msg("session invalidated")
	}
}

// Refresh re-aggregates the profile from upstream, bypassing the
// profile cache, and replaces the stored session's profile in place.
func (m *Manager) Refresh(ctx context.Context, sessionID string) (*models.SessionContext, error) {
	ctx, span := telemetry.StartSpan(ctx, tracerName, "session.Refresh",
		attribute.String(telemetry.AttrSessionID, sessionID),
	)
	defer span.End()

	current, ok := m.store.Get(sessionID)
	if !ok {
		telemetry.RecordError(span, ErrSessionNotFound)
		return nil, fmt.Errorf("refreshing session %s: %w", sessionID, ErrSessionNotFound)
	}

	profile, err := m.profiles.Refresh(ctx, current.PartyID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("refreshing session %s: %w", sessionID, err)
	}

	now := m.clock.Now()
	current.Profile = profile
	current.LastAccessedAt = now
	m.store.Put(current)

	m.logger.Info().
		Str("session_id", sessionID).
		Str("party_id", current.PartyID.String()).
		Int("contracts", len(profile.ActiveContracts)).
		Msg("session refreshed")

	return current.Clone(), nil
}

// IsValid is a pure validity predicate: active status and an expiry in
// the future.
func (m *Manager) IsValid(s *models.SessionContext) bool {
	return s != nil &&
		s.Status == models.SessionStatusActive &&
		s.ExpiresAt.After(m.clock.Now())
}
