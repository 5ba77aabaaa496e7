package session

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/firefly-oss/lib-session-manager/internal/models"
	"github.com/firefly-oss/lib-session-manager/internal/store"
	"github.com/firefly-oss/lib-session-manager/internal/telemetry"
	"github.com/firefly-oss/lib-session-manager/internal/upstream"
)

// fakeProfiles is a scripted ProfileSource that counts calls per path.
type fakeProfiles struct {
	err          error
	profileCalls int
	refreshCalls int
}

func (f *fakeProfiles) profile(partyID uuid.UUID) (*models.CustomerProfile, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.CustomerProfile{
		PartyID:   partyID,
		GivenName: "Ada",
		ActiveContracts: []models.ActiveContract{{
			ContractID: uuid.New(),
			IsActive:   true,
			Product:    &models.ActiveProduct{ProductID: uuid.New()},
		}},
	}, nil
}

func (f *fakeProfiles) Profile(_ context.Context, partyID uuid.UUID) (*models.CustomerProfile, error) {
	f.profileCalls++
	return f.profile(partyID)
}

func (f *fakeProfiles) Refresh(_ context.Context, partyID uuid.UUID) (*models.CustomerProfile, error) {
	f.refreshCalls++
	return f.profile(partyID)
}

func newTestManager(t *testing.T, profiles ProfileSource) (*Manager, *clock.Mock) {
	t.Helper()
	mock := clock.NewMock()
	mock.Set(time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))
	st := store.NewMemoryStore(mock, zerolog.Nop(), nil)
	m := NewManager(st, profiles, Config{
		Timeout:           30 * time.Minute,
		InvalidationGrace: 5 * time.Minute,
	}, mock, zerolog.Nop(), nil)
	return m, mock
}

// TestNewSessionID tests the session id synthesis format
func TestNewSessionID(t *testing.T) {
	partyID := uuid.New()
	at := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, fmt.Sprintf("session_%s_%d", partyID, at.UnixMilli()), NewSessionID(partyID, at))
}

// TestManager_CreateOrGet_New tests session creation from upstream data
func TestManager_CreateOrGet_New(t *testing.T) {
	profiles := &fakeProfiles{}
	m, mock := newTestManager(t, profiles)
	partyID := uuid.New()

	s, err := m.CreateOrGet(context.Background(), partyID, "", models.ClientMetadata{Channel: "web"})
	require.NoError(t, err)
	assert.Equal(t, NewSessionID(partyID, mock.Now()), s.SessionID)
	assert.Equal(t, models.SessionStatusActive, s.Status)
	assert.Equal(t, mock.Now().Add(30*time.Minute), s.ExpiresAt)
	assert.Equal(t, "web", s.Metadata.Channel)
	require.NotNil(t, s.Profile)
	assert.Equal(t, partyID, s.Profile.PartyID)
	assert.True(t, m.IsValid(s))
}

// TestManager_CreateOrGet_ReusesValidSession tests the reuse path
func TestManager_CreateOrGet_ReusesValidSession(t *testing.T) {
	profiles := &fakeProfiles{}
	m, mock := newTestManager(t, profiles)
	partyID := uuid.New()

	first, err := m.CreateOrGet(context.Background(), partyID, "", models.ClientMetadata{})
	require.NoError(t, err)

	mock.Add(10 * time.Minute)
	second, err := m.CreateOrGet(context.Background(), partyID, first.SessionID, models.ClientMetadata{})
	require.NoError(t, err)

	assert.Equal(t, first.SessionID, second.SessionID)
	assert.Equal(t, mock.Now(), second.LastAccessedAt)
	assert.Equal(t, first.ExpiresAt, second.ExpiresAt, "reuse never extends the expiry")
	assert.Equal(t, 1, profiles.profileCalls, "no second upstream aggregation")
}

// TestManager_ReuseDoesNotOutliveTimeout tests that a session accessed
// shortly before its deadline still expires at createdAt plus timeout
func TestManager_ReuseDoesNotOutliveTimeout(t *testing.T) {
	profiles := &fakeProfiles{}
	m, mock := newTestManager(t, profiles)
	partyID := uuid.New()

	first, err := m.CreateOrGet(context.Background(), partyID, "", models.ClientMetadata{})
	require.NoError(t, err)

	mock.Add(20 * time.Minute)
	_, err = m.CreateOrGet(context.Background(), partyID, first.SessionID, models.ClientMetadata{})
	require.NoError(t, err)

	mock.Add(20 * time.Minute)
	_, ok := m.GetByID(first.SessionID)
	assert.False(t, ok, "session is gone once the fixed lifetime has passed")
	assert.False(t, m.IsValid(first))
}

// TestManager_CreateOrGet_ExpiredSessionIdCreatesNew tests that a dead
// session id falls through to creation
func TestManager_CreateOrGet_ExpiredSessionIdCreatesNew(t *testing.T) {
	profiles := &fakeProfiles{}
	m, mock := newTestManager(t, profiles)
	partyID := uuid.New()

	first, err := m.CreateOrGet(context.Background(), partyID, "", models.ClientMetadata{})
	require.NoError(t, err)

	mock.Add(31 * time.Minute)
	second, err := m.CreateOrGet(context.Background(), partyID, first.SessionID, models.ClientMetadata{})
	require.NoError(t, err)

	assert.NotEqual(t, first.SessionID, second.SessionID)
	assert.Equal(t, 2, profiles.profileCalls)
}

// TestManager_CreateOrGet_UpstreamFailure tests that aggregation
// failures surface as creation errors
func TestManager_CreateOrGet_UpstreamFailure(t *testing.T) {
	profiles := &fakeProfiles{err: upstream.ErrUnavailable}
	m, _ := newTestManager(t, profiles)

	s, err := m.CreateOrGet(context.Background(), uuid.New(), "", models.ClientMetadata{})
	require.Error(t, err)
	assert.ErrorIs(t, err, upstream.ErrUnavailable)
	assert.Nil(t, s, "never a silently empty session")
}

// TestManager_InvalidateIsIdempotent tests invalidation semantics
func TestManager_InvalidateIsIdempotent(t *testing.T) {
	profiles := &fakeProfiles{}
	m, _ := newTestManager(t, profiles)

	s, err := m.CreateOrGet(context.Background(), uuid.New(), "", models.ClientMetadata{})
	require.NoError(t, err)

	m.Invalidate(context.Background(), s.SessionID)
	_, ok := m.GetByID(s.SessionID)
	assert.False(t, ok, "invalidated session reads as absent, never ACTIVE")

	// A second invalidation, and one for an unknown id, are no-ops.
	m.Invalidate(context.Background(), s.SessionID)
	m.Invalidate(context.Background(), "session_unknown_0")
	_, ok = m.GetByID(s.SessionID)
	assert.False(t, ok)
}

func metricSum(t *testing.T, reader *sdkmetric.ManualReader, name string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "instrument %s is not an int64 sum", name)
			var total int64
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
			return total
		}
	}
	return 0
}

// TestManager_LifecycleMetrics tests that create and invalidate balance
// the live-session gauge and that repeated invalidation counts once
func TestManager_LifecycleMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	prev := otel.GetMeterProvider()
	otel.SetMeterProvider(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)))
	t.Cleanup(func() { otel.SetMeterProvider(prev) })

	metrics, err := telemetry.NewSessionMetrics()
	require.NoError(t, err)

	mock := clock.NewMock()
	mock.Set(time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))
	st := store.NewMemoryStore(mock, zerolog.Nop(), metrics)
	m := NewManager(st, &fakeProfiles{}, Config{
		Timeout:           30 * time.Minute,
		InvalidationGrace: 5 * time.Minute,
	}, mock, zerolog.Nop(), metrics)

	s, err := m.CreateOrGet(context.Background(), uuid.New(), "", models.ClientMetadata{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), metricSum(t, reader, "session.active"))

	m.Invalidate(context.Background(), s.SessionID)
	m.Invalidate(context.Background(), s.SessionID)

	assert.Equal(t, int64(1), metricSum(t, reader, "session.invalidated.count"), "second invalidate is not recorded")
	assert.Equal(t, int64(0), metricSum(t, reader, "session.active"), "create and invalidate balance out")
}

// TestManager_Refresh tests profile re-aggregation in place
func TestManager_Refresh(t *testing.T) {
	profiles := &fakeProfiles{}
	m, mock := newTestManager(t, profiles)

	s, err := m.CreateOrGet(context.Background(), uuid.New(), "", models.ClientMetadata{})
	require.NoError(t, err)

	mock.Add(5 * time.Minute)
	refreshed, err := m.Refresh(context.Background(), s.SessionID)
	require.NoError(t, err)

	assert.Equal(t, s.SessionID, refreshed.SessionID)
	assert.Equal(t, mock.Now(), refreshed.LastAccessedAt)
	assert.Equal(t, s.ExpiresAt, refreshed.ExpiresAt, "refresh does not extend the lifetime")
	assert.Equal(t, 1, profiles.refreshCalls, "refresh bypasses the profile cache")

	got, ok := m.GetByID(s.SessionID)
	require.True(t, ok)
	assert.Equal(t, refreshed.LastAccessedAt, got.LastAccessedAt, "replacement is visible to readers")
}

// TestManager_Refresh_NotFound tests the error path for dead sessions
func TestManager_Refresh_NotFound(t *testing.T) {
	m, _ := newTestManager(t, &fakeProfiles{})

	_, err := m.Refresh(context.Background(), "session_unknown_0")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

// TestManager_Refresh_UpstreamFailureKeepsSession tests that a failed
// refresh leaves the stored session untouched
func TestManager_Refresh_UpstreamFailureKeepsSession(t *testing.T) {
	profiles := &fakeProfiles{}
	m, _ := newTestManager(t, profiles)

	s, err := m.CreateOrGet(context.Background(), uuid.New(), "", models.ClientMetadata{})
	require.NoError(t, err)

	profiles.err = errors.New("aggregator down")
	_, err = m.Refresh(context.Background(), s.SessionID)
	require.Error(t, err)

	got, ok := m.GetByID(s.SessionID)
	require.True(t, ok)
	assert.Equal(t, models.SessionStatusActive, got.Status)
}

// TestManager_IsValid tests the pure validity predicate
func TestManager_IsValid(t *testing.T) {
	m, mock := newTestManager(t, &fakeProfiles{})
	now := mock.Now()

	assert.False(t, m.IsValid(nil))
	assert.True(t, m.IsValid(&models.SessionContext{
		Status:    models.SessionStatusActive,
		ExpiresAt: now.Add(time.Minute),
	}))
	assert.False(t, m.IsValid(&models.SessionContext{
		Status:    models.SessionStatusActive,
		ExpiresAt: now.Add(-time.Minute),
	}))
	assert.False(t, m.IsValid(&models.SessionContext{
		Status:    models.SessionStatusInvalidated,
		ExpiresAt: now.Add(time.Minute),
	}))
}
