package sync

import (
	"context"
	"time"
)

// StatusBatchSize is the maximum number of order ids the marketplace
// status endpoint accepts per call.
const StatusBatchSize = 100

// SourceOrder is an order record from the marketplace feed. The listing
// endpoint carries the article but no quantity; a listed order is always
// for a single unit.
type SourceOrder struct {
	// ID is the stable external order id, used as the natural key for
	// idempotency and as the ledger document name
	ID string
	// Article is the product reference to resolve against the ledger catalog
	Article string
	// CreatedAt is when the order was placed on the marketplace
	CreatedAt time.Time
}

// OrderStatus is the current status the marketplace reports for an order.
type OrderStatus struct {
	// ID is the external order id
	ID string
	// Pair is the (stage, status) pair at poll time
	Pair StatusPair
}

// MarketplaceFeed defines the port interface for the marketplace order API.
// Implementations live in the infrastructure layer.
type MarketplaceFeed interface {
	// ListOrders returns all orders created inside the time window,
	// accumulating pages until the feed is exhausted.
	ListOrders(ctx context.Context, from, to time.Time) ([]SourceOrder, error)

	// GetStatuses returns the current status for each of the given order
	// ids. Callers must pass at most StatusBatchSize ids per call. Ids
	// unknown to the marketplace are absent from the result.
	GetStatuses(ctx context.Context, orderIDs []string) ([]OrderStatus, error)
}
