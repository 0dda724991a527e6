// Package ops exposes the daemon's read-only operational endpoints:
// liveness, sync state counters and the recent audit journal.
package ops

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domain "github.com/erp/ordersync/internal/domain/sync"
)

// SyncStatusProvider exposes the reconciler's observable state.
type SyncStatusProvider interface {
	// LastTick returns when the last successful tick completed
	LastTick() time.Time
	// Counts returns the sizes of the active and forgotten sets
	Counts() (active, forgotten int)
	// ActiveOrders returns a snapshot of the tracked orders
	ActiveOrders() map[string]domain.ActiveRecord
}

// Handler serves the operational endpoints.
type Handler struct {
	status  SyncStatusProvider
	journal domain.Journal
	logger  *zap.Logger
}

// NewHandler creates an ops handler. The journal may be nil when
// journaling is disabled.
func NewHandler(status SyncStatusProvider, journal domain.Journal, logger *zap.Logger) *Handler {
	return &Handler{status: status, journal: journal, logger: logger}
}

// RegisterRoutes registers the ops routes on the engine.
func (h *Handler) RegisterRoutes(engine *gin.Engine) {
	engine.GET("/healthz", h.Health)

	api := engine.Group("/api/v1/sync")
	api.GET("/state", h.State)
	api.GET("/records", h.Records)
}

// Health reports process liveness and the last tick time.
func (h *Handler) Health(c *gin.Context) {
	resp := gin.H{"status": "ok"}
	if last := h.status.LastTick(); !last.IsZero() {
		resp["last_tick"] = last.UTC().Format(time.RFC3339)
	} else {
		resp["last_tick"] = nil
	}
	c.JSON(http.StatusOK, resp)
}

// State reports the idempotency set sizes and the tracked orders.
func (h *Handler) State(c *gin.Context) {
	active, forgotten := h.status.Counts()

	orders := make([]gin.H, 0, active)
	for id, rec := range h.status.ActiveOrders() {
		orders = append(orders, gin.H{
			"order_id":    id,
			"document_id": rec.DocumentID,
			"seen_at":     rec.SeenAt.UTC().Format(time.RFC3339),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"active_count":    active,
		"forgotten_count": forgotten,
		"active":          orders,
	})
}

// Records returns the most recent journal entries, newest first.
func (h *Handler) Records(c *gin.Context) {
	if h.journal == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "journal disabled"})
		return
	}

	limit := queryInt(c, "limit", 50)
	offset := queryInt(c, "offset", 0)
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	records, err := h.journal.Recent(c.Request.Context(), limit, offset)
	if err != nil {
		h.logger.Error("Failed to read journal", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read journal"})
		return
	}

	rows := make([]gin.H, 0, len(records))
	for _, rec := range records {
		rows = append(rows, gin.H{
			"id":          rec.ID.String(),
			"order_id":    rec.OrderID,
			"operation":   rec.Operation,
			"outcome":     rec.Outcome,
			"document_id": rec.DocumentID,
			"detail":      rec.Detail,
			"created_at":  rec.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	c.JSON(http.StatusOK, gin.H{"records": rows})
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
