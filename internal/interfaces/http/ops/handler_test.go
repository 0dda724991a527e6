package ops

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	domain "github.com/erp/ordersync/internal/domain/sync"
)

type stubStatus struct {
	lastTick  time.Time
	active    map[string]domain.ActiveRecord
	forgotten int
}

func (s *stubStatus) LastTick() time.Time { return s.lastTick }

func (s *stubStatus) Counts() (int, int) { return len(s.active), s.forgotten }

func (s *stubStatus) ActiveOrders() map[string]domain.ActiveRecord { return s.active }

type stubJournal struct {
	records []domain.SyncRecord
	err     error
}

func (j *stubJournal) Record(context.Context, *domain.SyncRecord) error { return nil }

func (j *stubJournal) Recent(_ context.Context, limit, offset int) ([]domain.SyncRecord, error) {
	if j.err != nil {
		return nil, j.err
	}
	return j.records, nil
}

func (j *stubJournal) CountByOrder(context.Context, string) (int64, error) { return 0, nil }

func newTestRouter(status SyncStatusProvider, journal domain.Journal) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	NewHandler(status, journal, zap.NewNop()).RegisterRoutes(engine)
	return engine
}

func doRequest(router *gin.Engine, path string) (*httptest.ResponseRecorder, map[string]any) {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	var body map[string]any
	json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

func TestHealth(t *testing.T) {
	tick := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	router := newTestRouter(&stubStatus{lastTick: tick}, nil)

	w, body := doRequest(router, "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "2026-09-01T12:00:00Z", body["last_tick"])
}

func TestHealth_BeforeFirstTick(t *testing.T) {
	router := newTestRouter(&stubStatus{}, nil)

	w, body := doRequest(router, "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, body["last_tick"])
}

func TestState(t *testing.T) {
	status := &stubStatus{
		active: map[string]domain.ActiveRecord{
			"1001": {DocumentID: "doc-1", SeenAt: time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)},
		},
		forgotten: 4,
	}
	router := newTestRouter(status, nil)

	w, body := doRequest(router, "/api/v1/sync/state")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), body["active_count"])
	assert.Equal(t, float64(4), body["forgotten_count"])

	orders := body["active"].([]any)
	require.Len(t, orders, 1)
	order := orders[0].(map[string]any)
	assert.Equal(t, "1001", order["order_id"])
	assert.Equal(t, "doc-1", order["document_id"])
}

func TestRecords(t *testing.T) {
	journal := &stubJournal{records: []domain.SyncRecord{
		*domain.NewSyncRecord("1001", domain.SyncOperationCreate, domain.SyncOutcomeSuccess, "doc-1", "NEW"),
	}}
	router := newTestRouter(&stubStatus{}, journal)

	w, body := doRequest(router, "/api/v1/sync/records?limit=10")
	require.Equal(t, http.StatusOK, w.Code)

	rows := body["records"].([]any)
	require.Len(t, rows, 1)
	row := rows[0].(map[string]any)
	assert.Equal(t, "1001", row["order_id"])
	assert.Equal(t, "CREATE", row["operation"])
}

func TestRecords_JournalDisabled(t *testing.T) {
	router := newTestRouter(&stubStatus{}, nil)
	w, _ := doRequest(router, "/api/v1/sync/records")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRecords_JournalError(t *testing.T) {
	router := newTestRouter(&stubStatus{}, &stubJournal{err: errors.New("boom")})
	w, _ := doRequest(router, "/api/v1/sync/records")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
