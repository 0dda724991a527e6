package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erp/ordersync/internal/domain/sync"
)

func newTestJournal(t *testing.T) *GormSyncJournal {
	t.Helper()
	db, err := NewDatabase(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewGormSyncJournal(db.DB)
}

func TestJournal_RecordAndRecent(t *testing.T) {
	journal := newTestJournal(t)
	ctx := context.Background()

	first := sync.NewSyncRecord("1001", sync.SyncOperationCreate, sync.SyncOutcomeSuccess, "doc-1", "NEW")
	first.CreatedAt = time.Now().UTC().Add(-time.Minute)
	require.NoError(t, journal.Record(ctx, first))
	require.NoError(t, journal.Record(ctx,
		sync.NewSyncRecord("1001", sync.SyncOperationStatusPush, sync.SyncOutcomeFailed, "doc-1", "HTTP 500")))

	records, err := journal.Recent(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Newest first.
	assert.Equal(t, sync.SyncOperationStatusPush, records[0].Operation)
	assert.Equal(t, sync.SyncOutcomeFailed, records[0].Outcome)
	assert.Equal(t, sync.SyncOperationCreate, records[1].Operation)
	assert.Equal(t, "doc-1", records[1].DocumentID)
}

func TestJournal_RecentPagination(t *testing.T) {
	journal := newTestJournal(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		rec := sync.NewSyncRecord("1001", sync.SyncOperationStatusPush, sync.SyncOutcomeSuccess, "doc-1", "")
		rec.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, journal.Record(ctx, rec))
	}

	page, err := journal.Recent(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.True(t, page[0].CreatedAt.After(page[1].CreatedAt))
}

func TestJournal_CountByOrder(t *testing.T) {
	journal := newTestJournal(t)
	ctx := context.Background()

	require.NoError(t, journal.Record(ctx,
		sync.NewSyncRecord("1001", sync.SyncOperationCreate, sync.SyncOutcomeSuccess, "doc-1", "")))
	require.NoError(t, journal.Record(ctx,
		sync.NewSyncRecord("1001", sync.SyncOperationForget, sync.SyncOutcomeSuccess, "doc-1", "terminal")))
	require.NoError(t, journal.Record(ctx,
		sync.NewSyncRecord("2002", sync.SyncOperationCreate, sync.SyncOutcomeFailed, "", "no price")))

	count, err := journal.CountByOrder(ctx, "1001")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	count, err = journal.CountByOrder(ctx, "absent")
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}
