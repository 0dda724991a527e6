package sync

import (
	"context"
	"errors"
	"time"

	domain "github.com/erp/ordersync/internal/domain/sync"
)

var errFakeRemote = errors.New("remote call failed")

// fakeFeed is an in-memory marketplace feed.
type fakeFeed struct {
	orders      []domain.SourceOrder
	statuses    map[string]domain.StatusPair
	listErr     error
	statusErr   error
	statusCalls [][]string
}

func (f *fakeFeed) ListOrders(_ context.Context, _, _ time.Time) ([]domain.SourceOrder, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.orders, nil
}

func (f *fakeFeed) GetStatuses(_ context.Context, orderIDs []string) ([]domain.OrderStatus, error) {
	f.statusCalls = append(f.statusCalls, orderIDs)
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	var out []domain.OrderStatus
	for _, id := range orderIDs {
		if pair, ok := f.statuses[id]; ok {
			out = append(out, domain.OrderStatus{ID: id, Pair: pair})
		}
	}
	return out, nil
}

// fakeLedger is an in-memory ledger gateway with per-call error injection.
type fakeLedger struct {
	salesDocs     map[string]*domain.Document      // by name
	shipmentDocs  map[string]bool                  // by name
	products      map[string]*domain.CatalogEntry  // by article
	bundles       map[string]*domain.Bundle        // by article
	components    map[string][]domain.BundleComponent
	entries       map[string]*domain.CatalogEntry  // by ref
	positions     map[string][]domain.LineItem     // by document ref
	linked        map[string]bool                  // by document id

	createdSales     []createdDoc
	createdShipments []createdDoc
	stateUpdates     []stateUpdate

	findSalesErr      error
	createSalesErr    error
	createShipmentErr error
	updateStateErr    error
	listItemsErr      error
	probeErr          error
}

type createdDoc struct {
	name  string
	items []domain.LineItem
}

type stateUpdate struct {
	ref   string
	state domain.DocumentState
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		salesDocs:    make(map[string]*domain.Document),
		shipmentDocs: make(map[string]bool),
		products:     make(map[string]*domain.CatalogEntry),
		bundles:      make(map[string]*domain.Bundle),
		components:   make(map[string][]domain.BundleComponent),
		entries:      make(map[string]*domain.CatalogEntry),
		positions:    make(map[string][]domain.LineItem),
		linked:       make(map[string]bool),
	}
}

func (l *fakeLedger) FindSalesDocumentByName(_ context.Context, name string) (*domain.Document, error) {
	if l.findSalesErr != nil {
		return nil, l.findSalesErr
	}
	return l.salesDocs[name], nil
}

func (l *fakeLedger) FindShipmentDocumentByName(_ context.Context, name string) (*domain.Document, error) {
	if l.shipmentDocs[name] {
		return &domain.Document{ID: "ship-" + name}, nil
	}
	return nil, nil
}

func (l *fakeLedger) CreateSalesDocument(_ context.Context, name string, items []domain.LineItem) (*domain.Document, error) {
	if l.createSalesErr != nil {
		return nil, l.createSalesErr
	}
	doc := &domain.Document{ID: "doc-" + name, Ref: "ref-" + name}
	l.salesDocs[name] = doc
	l.positions[doc.Ref] = items
	l.createdSales = append(l.createdSales, createdDoc{name: name, items: items})
	return doc, nil
}

func (l *fakeLedger) CreateShipmentDocument(_ context.Context, name string, items []domain.LineItem) error {
	if l.createShipmentErr != nil {
		return l.createShipmentErr
	}
	l.shipmentDocs[name] = true
	l.createdShipments = append(l.createdShipments, createdDoc{name: name, items: items})
	return nil
}

func (l *fakeLedger) UpdateDocumentState(_ context.Context, ref string, state domain.DocumentState) error {
	if l.updateStateErr != nil {
		return l.updateStateErr
	}
	l.stateUpdates = append(l.stateUpdates, stateUpdate{ref: ref, state: state})
	return nil
}

func (l *fakeLedger) ListDocumentItems(_ context.Context, ref string) ([]domain.LineItem, error) {
	if l.listItemsErr != nil {
		return nil, l.listItemsErr
	}
	return l.positions[ref], nil
}

func (l *fakeLedger) FindProductBySKU(_ context.Context, article string) (*domain.CatalogEntry, error) {
	return l.products[article], nil
}

func (l *fakeLedger) FindBundleBySKU(_ context.Context, article string) (*domain.Bundle, error) {
	return l.bundles[article], nil
}

func (l *fakeLedger) GetBundleComponents(_ context.Context, bundleID string) ([]domain.BundleComponent, error) {
	return l.components[bundleID], nil
}

func (l *fakeLedger) GetCatalogEntry(_ context.Context, ref string) (*domain.CatalogEntry, error) {
	entry, ok := l.entries[ref]
	if !ok {
		return nil, errFakeRemote
	}
	return entry, nil
}

func (l *fakeLedger) ShipmentLinkedByExpansion(_ context.Context, documentID string) (bool, error) {
	if l.probeErr != nil {
		return false, l.probeErr
	}
	return l.linked[documentID], nil
}

func (l *fakeLedger) ShipmentLinkedByFieldScan(_ context.Context, documentID string) (bool, error) {
	if l.probeErr != nil {
		return false, l.probeErr
	}
	return l.linked[documentID], nil
}

func (l *fakeLedger) ShipmentLinkedBySearch(_ context.Context, documentID string) (bool, error) {
	if l.probeErr != nil {
		return false, l.probeErr
	}
	return l.linked[documentID], nil
}

// fakeStateStore keeps the state in memory and counts saves.
type fakeStateStore struct {
	saved   int
	saveErr error
}

func (s *fakeStateStore) Load() (*domain.State, error) { return domain.NewState(), nil }

func (s *fakeStateStore) Save(_ *domain.State) error {
	s.saved++
	return s.saveErr
}

// fakeJournal accumulates records in memory.
type fakeJournal struct {
	records   []domain.SyncRecord
	recordErr error
}

func (j *fakeJournal) Record(_ context.Context, rec *domain.SyncRecord) error {
	if j.recordErr != nil {
		return j.recordErr
	}
	j.records = append(j.records, *rec)
	return nil
}

func (j *fakeJournal) Recent(_ context.Context, limit, offset int) ([]domain.SyncRecord, error) {
	return nil, nil
}

func (j *fakeJournal) CountByOrder(_ context.Context, orderID string) (int64, error) {
	var n int64
	for _, rec := range j.records {
		if rec.OrderID == orderID {
			n++
		}
	}
	return n, nil
}

func (j *fakeJournal) operations(orderID string) []domain.SyncOperation {
	var ops []domain.SyncOperation
	for _, rec := range j.records {
		if rec.OrderID == orderID {
			ops = append(ops, rec.Operation)
		}
	}
	return ops
}
