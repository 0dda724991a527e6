package statestore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/erp/ordersync/internal/domain/sync"
)

func TestLoad_MissingFile(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "state.json"), zap.NewNop())
	state, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, state.Active)
	assert.Empty(t, state.Forgotten)
}

func TestLoad_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	store := NewFileStore(path, zap.NewNop())
	state, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, state.Active)
}

func TestSaveLoad_Roundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	store := NewFileStore(path, zap.NewNop())

	state := sync.NewState()
	state.Remember("1001", "doc-1", "https://ledger.example/entity/salesorder/doc-1")
	state.ForgetForever("1002")
	require.NoError(t, store.Save(state))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.True(t, loaded.IsActive("1001"))
	assert.Equal(t, "doc-1", loaded.Active["1001"].DocumentID)
	assert.Equal(t, "https://ledger.example/entity/salesorder/doc-1", loaded.Active["1001"].DocumentRef)
	assert.False(t, loaded.Active["1001"].SeenAt.IsZero())
	assert.True(t, loaded.IsForgotten("1002"))
}

func TestSave_ReplacesAtomically(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	store := NewFileStore(path, zap.NewNop())

	state := sync.NewState()
	state.Remember("1001", "doc-1", "ref-1")
	require.NoError(t, store.Save(state))

	state.ForgetForever("1001")
	require.NoError(t, store.Save(state))

	// No temp file may linger after a successful save.
	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.False(t, loaded.IsActive("1001"))
	assert.True(t, loaded.IsForgotten("1001"))
}

func TestSave_CreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "state.json")
	store := NewFileStore(path, zap.NewNop())
	require.NoError(t, store.Save(sync.NewState()))
	_, err := os.Stat(path)
	require.NoError(t, err)
}

func TestSave_PurgesStaleForgotten(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	store := NewFileStore(path, zap.NewNop())

	state := sync.NewState()
	state.Forgotten["old"] = sync.ForgottenRecord{
		ForgottenAt: time.Now().UTC().Add(-sync.ForgottenTTL - time.Hour),
	}
	state.Forgotten["fresh"] = sync.ForgottenRecord{ForgottenAt: time.Now().UTC()}
	require.NoError(t, store.Save(state))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.False(t, loaded.IsForgotten("old"))
	assert.True(t, loaded.IsForgotten("fresh"))
}

func TestLoad_UnparseableForgottenTimestamp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	raw := map[string]any{
		"active": map[string]any{},
		"forgotten": map[string]string{
			"1003": "not-a-timestamp",
		},
	}
	data, err := json.Marshal(raw)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	store := NewFileStore(path, zap.NewNop())
	state, err := store.Load()
	require.NoError(t, err)

	// Still excluded until the next persist purges the broken record.
	require.True(t, state.IsForgotten("1003"))
	assert.True(t, state.Forgotten["1003"].ForgottenAt.IsZero())

	require.NoError(t, store.Save(state))
	reloaded, err := store.Load()
	require.NoError(t, err)
	assert.False(t, reloaded.IsForgotten("1003"))
}

func TestLoad_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o644))

	store := NewFileStore(path, zap.NewNop())
	_, err := store.Load()
	require.Error(t, err)
}
