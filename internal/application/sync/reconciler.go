package sync

import (
	"context"
	stdsync "sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	domain "github.com/erp/ordersync/internal/domain/sync"
)

// ---------------------------------------------------------------------------
// Reconciler
// ---------------------------------------------------------------------------

// Config holds the reconciliation window settings.
type Config struct {
	// Lookback is how far back from the current tick the discovery
	// window reaches
	Lookback time.Duration
	// NotBefore is the absolute earliest order creation time ever
	// considered; the window is floored here
	NotBefore time.Time
}

// Reconciler drives one reconciliation tick: discover new marketplace
// orders and materialize them in the ledger, then walk all tracked orders
// and push their status transitions. A single goroutine calls Tick; the
// read-only snapshot accessors are safe to call concurrently.
type Reconciler struct {
	feed     domain.MarketplaceFeed
	ledger   domain.LedgerGateway
	store    domain.StateStore
	journal  domain.Journal
	resolver *LineItemResolver
	probes   []LinkProbe
	cfg      Config
	logger   *zap.Logger

	// now is replaceable in tests
	now func() time.Time

	mu       stdsync.Mutex
	state    *domain.State
	lastTick time.Time
}

// NewReconciler creates a reconciler over the given ports. The journal may
// be nil; journaling is best-effort and never changes a sync decision.
func NewReconciler(
	feed domain.MarketplaceFeed,
	ledger domain.LedgerGateway,
	store domain.StateStore,
	journal domain.Journal,
	resolver *LineItemResolver,
	state *domain.State,
	cfg Config,
	logger *zap.Logger,
) *Reconciler {
	return &Reconciler{
		feed:     feed,
		ledger:   ledger,
		store:    store,
		journal:  journal,
		resolver: resolver,
		probes:   ShipmentLinkProbes(ledger),
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
		state:    state,
	}
}

// Tick runs one full reconciliation pass: discovery, then status tracking,
// then a state persist. Orders created during discovery are not
// status-checked until the next tick.
func (r *Reconciler) Tick(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now().UTC()
	from := now.Add(-r.cfg.Lookback)
	if from.Before(r.cfg.NotBefore) {
		from = r.cfg.NotBefore
	}

	// Snapshot before discovery so this tick's creations wait a tick.
	tracked := r.state.ActiveIDs()

	if err := r.discover(ctx, from, now); err != nil {
		return err
	}
	r.track(ctx, tracked)

	if err := r.store.Save(r.state); err != nil {
		r.logger.Error("Failed to persist sync state, progress will be redone", zap.Error(err))
	}
	r.lastTick = now
	return nil
}

// LastTick returns when the last successful tick completed.
func (r *Reconciler) LastTick() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastTick
}

// Counts returns the current sizes of the active and forgotten sets.
func (r *Reconciler) Counts() (active, forgotten int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.state.Active), len(r.state.Forgotten)
}

// ActiveOrders returns a snapshot of the tracked orders.
func (r *Reconciler) ActiveOrders() map[string]domain.ActiveRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	snapshot := make(map[string]domain.ActiveRecord, len(r.state.Active))
	for id, rec := range r.state.Active {
		snapshot[id] = rec
	}
	return snapshot
}

// ---------------------------------------------------------------------------
// Pass 1: Discovery
// ---------------------------------------------------------------------------

func (r *Reconciler) discover(ctx context.Context, from, to time.Time) error {
	orders, err := r.feed.ListOrders(ctx, from, to)
	if err != nil {
		return err
	}

	for _, order := range orders {
		if r.state.IsActive(order.ID) || r.state.IsForgotten(order.ID) {
			continue
		}
		r.discoverOrder(ctx, order)
	}
	return nil
}

// discoverOrder materializes one new order as a ledger sales document.
// Every failure path excludes the order permanently: a creation that
// failed once is never retried, so the duplicate-name guard on the next
// tick cannot race against a half-finished creation.
func (r *Reconciler) discoverOrder(ctx context.Context, order domain.SourceOrder) {
	existing, err := r.ledger.FindSalesDocumentByName(ctx, order.ID)
	if err != nil {
		r.logger.Error("Duplicate guard lookup failed, excluding order",
			zap.String("order_id", order.ID),
			zap.Error(err),
		)
		r.forget(ctx, order.ID, "", "duplicate guard lookup failed: "+err.Error())
		return
	}
	if existing != nil {
		r.logger.Info("Sales document already exists, excluding order",
			zap.String("order_id", order.ID),
			zap.String("document_id", existing.ID),
		)
		r.journalRecord(ctx, order.ID, domain.SyncOperationCreate, domain.SyncOutcomeSkipped, existing.ID, "document already exists")
		r.state.ForgetForever(order.ID)
		return
	}

	if order.Article == "" {
		r.logger.Warn("Order has no article, excluding order",
			zap.String("order_id", order.ID))
		r.forget(ctx, order.ID, "", domain.ErrArticleMissing.Error())
		return
	}

	items, err := r.resolver.Resolve(ctx, order.Article, decimal.NewFromInt(1))
	if err != nil {
		r.logger.Warn("Line item resolution failed, excluding order",
			zap.String("order_id", order.ID),
			zap.String("article", order.Article),
			zap.Error(err),
		)
		r.forget(ctx, order.ID, "", "resolution failed: "+err.Error())
		return
	}

	doc, err := r.ledger.CreateSalesDocument(ctx, order.ID, items)
	if err != nil {
		r.logger.Error("Sales document creation failed, excluding order",
			zap.String("order_id", order.ID),
			zap.Error(err),
		)
		r.forget(ctx, order.ID, "", "creation failed: "+err.Error())
		return
	}

	r.state.Remember(order.ID, doc.ID, doc.Ref)
	r.journalRecord(ctx, order.ID, domain.SyncOperationCreate, domain.SyncOutcomeSuccess, doc.ID, string(domain.DocumentStateNew))
	r.logger.Info("Sales document created",
		zap.String("order_id", order.ID),
		zap.String("document_id", doc.ID),
		zap.Int("line_items", len(items)),
	)
}

// ---------------------------------------------------------------------------
// Pass 2: Status Tracking
// ---------------------------------------------------------------------------

func (r *Reconciler) track(ctx context.Context, tracked []string) {
	for start := 0; start < len(tracked); start += domain.StatusBatchSize {
		end := start + domain.StatusBatchSize
		if end > len(tracked) {
			end = len(tracked)
		}
		statuses, err := r.feed.GetStatuses(ctx, tracked[start:end])
		if err != nil {
			r.logger.Error("Status batch fetch failed, orders stay tracked",
				zap.Int("batch_size", end-start),
				zap.Error(err),
			)
			continue
		}
		for _, status := range statuses {
			r.trackOrder(ctx, status)
		}
	}
}

func (r *Reconciler) trackOrder(ctx context.Context, status domain.OrderStatus) {
	rec, ok := r.state.Active[status.ID]
	if !ok {
		return
	}

	switch {
	case status.Pair.IsTerminal():
		r.finishOrder(ctx, status, rec)

	case status.Pair.IsShipmentTrigger():
		r.triggerShipment(ctx, status.ID, rec)
		// At most one shipment attempt per order, whatever happened above.
		r.forget(ctx, status.ID, rec.DocumentID, "shipment trigger ran")

	default:
		r.pushStatus(ctx, status, rec)
	}
}

// finishOrder handles a terminal status: push the mapped state if one
// exists, then stop tracking. A failed terminal push is the one retryable
// failure; the order stays active for the next tick.
func (r *Reconciler) finishOrder(ctx context.Context, status domain.OrderStatus, rec domain.ActiveRecord) {
	if target, ok := domain.MapStatus(status.Pair); ok {
		if err := r.ledger.UpdateDocumentState(ctx, rec.DocumentRef, target); err != nil {
			r.logger.Error("Terminal state push failed, will retry next tick",
				zap.String("order_id", status.ID),
				zap.String("target_state", string(target)),
				zap.Error(err),
			)
			r.journalRecord(ctx, status.ID, domain.SyncOperationStatusPush, domain.SyncOutcomeFailed, rec.DocumentID, err.Error())
			return
		}
		r.journalRecord(ctx, status.ID, domain.SyncOperationStatusPush, domain.SyncOutcomeSuccess, rec.DocumentID, string(target))
	}
	r.forget(ctx, status.ID, rec.DocumentID, "terminal: "+status.Pair.String())
}

// pushStatus handles a non-terminal, non-trigger status. Unmapped pairs
// are ignored; a failed push leaves the order tracked for the next tick.
func (r *Reconciler) pushStatus(ctx context.Context, status domain.OrderStatus, rec domain.ActiveRecord) {
	target, ok := domain.MapStatus(status.Pair)
	if !ok {
		return
	}
	if err := r.ledger.UpdateDocumentState(ctx, rec.DocumentRef, target); err != nil {
		r.logger.Error("State push failed, will retry next tick",
			zap.String("order_id", status.ID),
			zap.String("target_state", string(target)),
			zap.Error(err),
		)
		r.journalRecord(ctx, status.ID, domain.SyncOperationStatusPush, domain.SyncOutcomeFailed, rec.DocumentID, err.Error())
		return
	}
	r.journalRecord(ctx, status.ID, domain.SyncOperationStatusPush, domain.SyncOutcomeSuccess, rec.DocumentID, string(target))
	r.logger.Info("Document state pushed",
		zap.String("order_id", status.ID),
		zap.String("target_state", string(target)),
	)
}

// triggerShipment runs the one-shot shipment flow: duplicate guards, push
// SHIPPED, copy the sales document's positions into a shipment document.
// Guard failures count as "no duplicate"; flow failures are logged and not
// retried.
func (r *Reconciler) triggerShipment(ctx context.Context, orderID string, rec domain.ActiveRecord) {
	existing, err := r.ledger.FindShipmentDocumentByName(ctx, orderID)
	if err != nil {
		r.logger.Warn("Shipment name guard failed, assuming no duplicate",
			zap.String("order_id", orderID),
			zap.Error(err),
		)
	}
	if existing != nil {
		r.logger.Info("Shipment document already exists, skipping trigger",
			zap.String("order_id", orderID),
			zap.String("document_id", existing.ID),
		)
		r.journalRecord(ctx, orderID, domain.SyncOperationShipment, domain.SyncOutcomeSkipped, rec.DocumentID, "shipment document exists")
		return
	}
	if anyLinked(ctx, r.probes, rec.DocumentID, r.logger) {
		r.logger.Info("Sales document already has a linked shipment, skipping trigger",
			zap.String("order_id", orderID),
			zap.String("document_id", rec.DocumentID),
		)
		r.journalRecord(ctx, orderID, domain.SyncOperationShipment, domain.SyncOutcomeSkipped, rec.DocumentID, "linked shipment found")
		return
	}

	if err := r.ledger.UpdateDocumentState(ctx, rec.DocumentRef, domain.DocumentStateShipped); err != nil {
		r.logger.Error("Shipped state push failed, shipment abandoned",
			zap.String("order_id", orderID),
			zap.Error(err),
		)
		r.journalRecord(ctx, orderID, domain.SyncOperationShipment, domain.SyncOutcomeFailed, rec.DocumentID, "shipped push failed: "+err.Error())
		return
	}

	items, err := r.ledger.ListDocumentItems(ctx, rec.DocumentRef)
	if err != nil {
		r.logger.Error("Position readback failed, shipment abandoned",
			zap.String("order_id", orderID),
			zap.Error(err),
		)
		r.journalRecord(ctx, orderID, domain.SyncOperationShipment, domain.SyncOutcomeFailed, rec.DocumentID, "position readback failed: "+err.Error())
		return
	}
	for i := range items {
		items[i] = items[i].WithoutReserve()
	}

	if err := r.ledger.CreateShipmentDocument(ctx, orderID, items); err != nil {
		r.logger.Error("Shipment document creation failed, not retried",
			zap.String("order_id", orderID),
			zap.Error(err),
		)
		r.journalRecord(ctx, orderID, domain.SyncOperationShipment, domain.SyncOutcomeFailed, rec.DocumentID, "creation failed: "+err.Error())
		return
	}

	r.journalRecord(ctx, orderID, domain.SyncOperationShipment, domain.SyncOutcomeSuccess, rec.DocumentID, "")
	r.logger.Info("Shipment document created",
		zap.String("order_id", orderID),
		zap.String("document_id", rec.DocumentID),
	)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// forget permanently excludes the order and journals the decision.
func (r *Reconciler) forget(ctx context.Context, orderID, documentID, detail string) {
	r.state.ForgetForever(orderID)
	r.journalRecord(ctx, orderID, domain.SyncOperationForget, domain.SyncOutcomeSuccess, documentID, detail)
}

// journalRecord writes one audit entry. Journal failures are logged and
// ignored; the journal never influences sync decisions.
func (r *Reconciler) journalRecord(ctx context.Context, orderID string, op domain.SyncOperation, outcome domain.SyncOutcome, documentID, detail string) {
	if r.journal == nil {
		return
	}
	rec := domain.NewSyncRecord(orderID, op, outcome, documentID, detail)
	if err := r.journal.Record(ctx, rec); err != nil {
		r.logger.Warn("Failed to write journal record",
			zap.String("order_id", orderID),
			zap.String("operation", string(op)),
			zap.Error(err),
		)
	}
}
