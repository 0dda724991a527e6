package sync

import (
	"context"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Ledger Value Objects
// ---------------------------------------------------------------------------

// Document identifies a created ledger document.
type Document struct {
	// ID is the ledger-assigned document id
	ID string
	// Ref is the opaque address of the document, used for subsequent
	// reads and writes
	Ref string
}

// LineItem is a priced position of a ledger document. Prices are resolved
// at creation time and frozen.
type LineItem struct {
	// Quantity is the ordered quantity (positive)
	Quantity decimal.Decimal
	// Price is the unit price (non-negative)
	Price decimal.Decimal
	// Reserve is the reservation quantity. Sales documents reserve the
	// full ordered quantity; shipment documents carry no reservation.
	Reserve decimal.Decimal
	// AssortmentRef is the address of the catalog entry this line refers to
	AssortmentRef string
}

// WithoutReserve returns a copy of the line item with the reservation
// stripped, as required for shipment document positions.
func (li LineItem) WithoutReserve() LineItem {
	li.Reserve = decimal.Zero
	return li
}

// CatalogEntry is a direct product in the ledger catalog.
type CatalogEntry struct {
	// ID is the catalog entry id
	ID string
	// Ref is the address of the catalog entry
	Ref string
	// SalePrices are the configured price tiers
	SalePrices []SalePrice
}

// SalePrice is one price tier of a catalog entry.
type SalePrice struct {
	// PriceTypeID identifies the price tier
	PriceTypeID string
	// Value is the price in that tier
	Value decimal.Decimal
}

// SalePrice returns the price matching the given tier id.
func (e *CatalogEntry) SalePrice(priceTypeID string) (decimal.Decimal, bool) {
	for _, p := range e.SalePrices {
		if p.PriceTypeID == priceTypeID {
			return p.Value, true
		}
	}
	return decimal.Zero, false
}

// Bundle is a composite catalog entry whose components are expanded into
// individual line items.
type Bundle struct {
	// ID is the bundle id
	ID string
	// Ref is the address of the bundle
	Ref string
}

// BundleComponent is one component of a bundle.
type BundleComponent struct {
	// Ratio is the component quantity per one unit of the bundle
	Ratio decimal.Decimal
	// AssortmentRef is the address of the component's catalog entry
	AssortmentRef string
}

// ---------------------------------------------------------------------------
// LedgerGateway Port Interface
// ---------------------------------------------------------------------------

// LedgerGateway defines the port interface for the accounting ledger API.
// Lookups by name return nil (not an error) when nothing matches.
// Implementations live in the infrastructure layer and are expected to
// retry transient transport failures internally before surfacing an error.
type LedgerGateway interface {
	// FindSalesDocumentByName looks up a sales document by its exact name.
	FindSalesDocumentByName(ctx context.Context, name string) (*Document, error)

	// FindShipmentDocumentByName looks up a shipment document by its exact name.
	FindShipmentDocumentByName(ctx context.Context, name string) (*Document, error)

	// CreateSalesDocument creates a sales document named after the order,
	// in the NEW state, with the given priced positions.
	CreateSalesDocument(ctx context.Context, name string, items []LineItem) (*Document, error)

	// CreateShipmentDocument creates a shipment document named after the
	// order with the given positions (reservations stripped).
	CreateShipmentDocument(ctx context.Context, name string, items []LineItem) error

	// UpdateDocumentState moves the sales document at ref to the target state.
	UpdateDocumentState(ctx context.Context, ref string, state DocumentState) error

	// ListDocumentItems reads back the positions of a created sales document.
	ListDocumentItems(ctx context.Context, ref string) ([]LineItem, error)

	// FindProductBySKU looks up a direct catalog entry by article.
	FindProductBySKU(ctx context.Context, article string) (*CatalogEntry, error)

	// FindBundleBySKU looks up a composite catalog entry by article.
	FindBundleBySKU(ctx context.Context, article string) (*Bundle, error)

	// GetBundleComponents returns the component list of a bundle.
	GetBundleComponents(ctx context.Context, bundleID string) ([]BundleComponent, error)

	// GetCatalogEntry fetches the full catalog entry at the given address.
	GetCatalogEntry(ctx context.Context, ref string) (*CatalogEntry, error)

	// ShipmentLinkedByExpansion checks for a linked shipment via the
	// ledger's relation-expansion query.
	ShipmentLinkedByExpansion(ctx context.Context, documentID string) (bool, error)

	// ShipmentLinkedByFieldScan checks for a linked shipment by scanning
	// plausible relation fields on the raw document.
	ShipmentLinkedByFieldScan(ctx context.Context, documentID string) (bool, error)

	// ShipmentLinkedBySearch checks for a linked shipment via a filtered
	// search by parent-order reference.
	ShipmentLinkedBySearch(ctx context.Context, documentID string) (bool, error)
}

// ---------------------------------------------------------------------------
// StateStore Port Interface
// ---------------------------------------------------------------------------

// StateStore persists the idempotency state between process runs.
type StateStore interface {
	// Load reads the last persisted snapshot. A missing or empty snapshot
	// yields an empty state, not an error.
	Load() (*State, error)

	// Save writes the full snapshot, replacing the previous one atomically.
	Save(state *State) error
}
