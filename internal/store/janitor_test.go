package store

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// TestJanitor_SweepsDeadRecords tests the scheduled sweep end to end
func TestJanitor_SweepsDeadRecords(t *testing.T) {
	st, mock := newTestStore(t)
	rec := activeRecord(mock, 10*time.Minute)
	st.Put(rec)
	mock.Add(11 * time.Minute)

	j := NewJanitor(st, 20*time.Millisecond, zerolog.Nop())
	require.NoError(t, j.Start())
	defer j.Stop()

	require.Eventually(t, func() bool {
		return st.Len() == 0
	}, 2*time.Second, 10*time.Millisecond, "sweep reclaims the expired record")
}
