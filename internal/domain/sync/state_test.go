package sync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestState_RememberAndForget(t *testing.T) {
	s := NewState()

	assert.False(t, s.IsActive("1001"))
	assert.False(t, s.IsForgotten("1001"))

	s.Remember("1001", "doc-1", "https://ledger/entity/salesorder/doc-1")
	require.True(t, s.IsActive("1001"))
	rec := s.Active["1001"]
	assert.Equal(t, "doc-1", rec.DocumentID)
	assert.Equal(t, "https://ledger/entity/salesorder/doc-1", rec.DocumentRef)
	assert.False(t, rec.SeenAt.IsZero())

	s.ForgetForever("1001")
	assert.False(t, s.IsActive("1001"))
	assert.True(t, s.IsForgotten("1001"))
}

// Active and Forgotten stay disjoint: forgetting always removes from
// Active first, and there is no path back from Forgotten to Active.
func TestState_SetsDisjoint(t *testing.T) {
	s := NewState()

	s.Remember("1", "d1", "r1")
	s.Remember("2", "d2", "r2")
	s.ForgetForever("1")
	s.ForgetForever("3") // never active, forget directly

	for id := range s.Forgotten {
		_, active := s.Active[id]
		assert.False(t, active, "id %s in both sets", id)
	}
	assert.True(t, s.IsActive("2"))
	assert.True(t, s.IsForgotten("1"))
	assert.True(t, s.IsForgotten("3"))
}

func TestState_ForgetActive(t *testing.T) {
	s := NewState()
	s.Remember("1001", "d", "r")

	s.ForgetActive("1001")

	assert.False(t, s.IsActive("1001"))
	assert.False(t, s.IsForgotten("1001"), "ForgetActive must not mark forgotten")
}

func TestState_ActiveIDsSorted(t *testing.T) {
	s := NewState()
	s.Remember("30", "d", "r")
	s.Remember("10", "d", "r")
	s.Remember("20", "d", "r")

	assert.Equal(t, []string{"10", "20", "30"}, s.ActiveIDs())
}

func TestState_CleanupForgotten(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	s := NewState()
	s.Forgotten["fresh"] = ForgottenRecord{ForgottenAt: now.Add(-24 * time.Hour)}
	s.Forgotten["edge"] = ForgottenRecord{ForgottenAt: now.Add(-ForgottenTTL).Add(time.Minute)}
	s.Forgotten["stale"] = ForgottenRecord{ForgottenAt: now.Add(-ForgottenTTL - time.Hour)}
	s.Forgotten["broken"] = ForgottenRecord{} // unparseable timestamp at load

	s.CleanupForgotten(now)

	assert.True(t, s.IsForgotten("fresh"))
	assert.True(t, s.IsForgotten("edge"))
	assert.False(t, s.IsForgotten("stale"))
	assert.False(t, s.IsForgotten("broken"))
}

func TestState_CleanupPreservesEntriesUnchanged(t *testing.T) {
	now := time.Now().UTC()
	s := NewState()
	kept := ForgottenRecord{ForgottenAt: now.Add(-time.Hour)}
	s.Forgotten["keep"] = kept

	s.CleanupForgotten(now)

	assert.Equal(t, kept, s.Forgotten["keep"])
}
