// Package statestore persists the reconciliation idempotency state as a
// JSON snapshot on local disk. Writes go through a temp file and rename so
// a crash mid-write never leaves a truncated snapshot behind.
package statestore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/erp/ordersync/internal/domain/sync"
)

// activeEntry is the persisted form of one active record.
type activeEntry struct {
	SeenAt      string `json:"seen_at"`
	DocumentID  string `json:"document_id"`
	DocumentRef string `json:"document_ref"`
}

// snapshot is the on-disk layout. Forgotten maps order id to the RFC 3339
// exclusion timestamp.
type snapshot struct {
	Active    map[string]activeEntry `json:"active"`
	Forgotten map[string]string      `json:"forgotten"`
}

// FileStore implements the sync.StateStore port over a single JSON file.
type FileStore struct {
	path   string
	logger *zap.Logger
}

// NewFileStore creates a file-backed state store at the given path.
func NewFileStore(path string, logger *zap.Logger) *FileStore {
	return &FileStore{path: path, logger: logger}
}

// Load reads the last persisted snapshot. A missing or empty file yields
// an empty state. Unparseable forgotten timestamps are kept with a zero
// time so the next persist purges them.
func (f *FileStore) Load() (*sync.State, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return sync.NewState(), nil
		}
		return nil, fmt.Errorf("statestore: failed to read %s: %w", f.path, err)
	}
	if len(data) == 0 {
		return sync.NewState(), nil
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("statestore: failed to parse %s: %w", f.path, err)
	}

	state := sync.NewState()
	for id, entry := range snap.Active {
		rec := sync.ActiveRecord{
			DocumentID:  entry.DocumentID,
			DocumentRef: entry.DocumentRef,
		}
		if seenAt, perr := time.Parse(time.RFC3339, entry.SeenAt); perr == nil {
			rec.SeenAt = seenAt
		}
		state.Active[id] = rec
	}
	for id, raw := range snap.Forgotten {
		forgottenAt, perr := time.Parse(time.RFC3339, raw)
		if perr != nil {
			f.logger.Warn("Unparseable forgotten timestamp, record will be purged",
				zap.String("order_id", id),
				zap.String("value", raw))
			state.Forgotten[id] = sync.ForgottenRecord{}
			continue
		}
		state.Forgotten[id] = sync.ForgottenRecord{ForgottenAt: forgottenAt}
	}
	return state, nil
}

// Save writes the full snapshot, replacing the previous one atomically.
// Stale forgotten records are purged before every write.
func (f *FileStore) Save(state *sync.State) error {
	state.CleanupForgotten(time.Now().UTC())

	snap := snapshot{
		Active:    make(map[string]activeEntry, len(state.Active)),
		Forgotten: make(map[string]string, len(state.Forgotten)),
	}
	for id, rec := range state.Active {
		snap.Active[id] = activeEntry{
			SeenAt:      rec.SeenAt.UTC().Format(time.RFC3339),
			DocumentID:  rec.DocumentID,
			DocumentRef: rec.DocumentRef,
		}
	}
	for id, rec := range state.Forgotten {
		snap.Forgotten[id] = rec.ForgottenAt.UTC().Format(time.RFC3339)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("statestore: failed to marshal snapshot: %w", err)
	}

	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("statestore: failed to create %s: %w", dir, err)
		}
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("statestore: failed to write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("statestore: failed to replace %s: %w", f.path, err)
	}
	return nil
}

// Ensure FileStore implements the StateStore port
var _ sync.StateStore = (*FileStore)(nil)
