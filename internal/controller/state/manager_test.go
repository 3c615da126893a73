package state

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	sm := NewManager(time.Minute)
	sm.now = func() time.Time { return now }

	_, ok := sm.Get(1)
	assert.False(t, ok)

	sm.Start(1, StateCancelReason, 42)
	d, ok := sm.Get(1)
	require.True(t, ok)
	assert.Equal(t, StateCancelReason, d.State)
	assert.Equal(t, int64(42), d.SessionID)

	sm.Start(1, StateSessionNotes, 43)
	d, ok = sm.Take(1)
	require.True(t, ok)
	assert.Equal(t, StateSessionNotes, d.State)

	_, ok = sm.Get(1)
	assert.False(t, ok, "take ends the dialog")

	sm.Start(2, StateSessionSummary, 7)
	sm.Start(2, StateNone, 0)
	_, ok = sm.Get(2)
	assert.False(t, ok)
}

func TestManagerExpiry(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	sm := NewManager(time.Minute)
	sm.now = func() time.Time { return now }

	sm.Start(1, StateCancelReason, 42)

	now = now.Add(59 * time.Second)
	_, ok := sm.Get(1)
	assert.True(t, ok)

	now = now.Add(time.Second)
	_, ok = sm.Get(1)
	assert.False(t, ok)
}
