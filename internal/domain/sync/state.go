package sync

import (
	"sort"
	"time"
)

// ForgottenTTL is how long a forgotten order id is retained before its
// record is purged. Retention exists only to keep the forgotten set from
// growing without bound; within the TTL a forgotten id is never reprocessed.
const ForgottenTTL = 30 * 24 * time.Hour

// ActiveRecord tracks an order that has a live ledger sales document.
type ActiveRecord struct {
	// SeenAt is when the order was first materialized in the ledger
	SeenAt time.Time
	// DocumentID is the id of the created sales document
	DocumentID string
	// DocumentRef is the opaque address of the sales document, used for
	// subsequent reads and state updates
	DocumentRef string
}

// ForgottenRecord marks an order id as permanently excluded from sync.
type ForgottenRecord struct {
	// ForgottenAt is when the order was excluded. A zero value means the
	// persisted timestamp was missing or unparseable; such records are
	// purged on the next cleanup.
	ForgottenAt time.Time
}

// State is the durable idempotency record of the reconciliation loop:
// which orders are currently tracked and which are permanently excluded.
// The two sets are disjoint by construction. State is mutated only by the
// single loop goroutine and is not safe for concurrent use.
type State struct {
	Active    map[string]ActiveRecord
	Forgotten map[string]ForgottenRecord
}

// NewState returns an empty state.
func NewState() *State {
	return &State{
		Active:    make(map[string]ActiveRecord),
		Forgotten: make(map[string]ForgottenRecord),
	}
}

// IsForgotten reports whether the order id is permanently excluded.
func (s *State) IsForgotten(orderID string) bool {
	_, ok := s.Forgotten[orderID]
	return ok
}

// IsActive reports whether the order id is currently tracked.
func (s *State) IsActive(orderID string) bool {
	_, ok := s.Active[orderID]
	return ok
}

// Remember inserts the order into the active set. The caller must have
// already confirmed successful creation of the remote sales document.
func (s *State) Remember(orderID, documentID, documentRef string) {
	s.Active[orderID] = ActiveRecord{
		SeenAt:      time.Now().UTC(),
		DocumentID:  documentID,
		DocumentRef: documentRef,
	}
}

// ForgetForever removes the order from the active set and marks it as
// permanently excluded. It has no side effects on remote systems.
func (s *State) ForgetForever(orderID string) {
	delete(s.Active, orderID)
	s.Forgotten[orderID] = ForgottenRecord{ForgottenAt: time.Now().UTC()}
}

// ForgetActive removes the order from the active set without marking it
// forgotten. Rarely needed; the order may be rediscovered on a later tick.
func (s *State) ForgetActive(orderID string) {
	delete(s.Active, orderID)
}

// ActiveIDs returns the tracked order ids in a stable order.
func (s *State) ActiveIDs() []string {
	ids := make([]string, 0, len(s.Active))
	for id := range s.Active {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// CleanupForgotten purges forgotten records older than ForgottenTTL, and
// records whose timestamp could not be parsed at load time. Invoked on
// every persist.
func (s *State) CleanupForgotten(now time.Time) {
	cutoff := now.Add(-ForgottenTTL)
	for id, rec := range s.Forgotten {
		if rec.ForgottenAt.IsZero() || rec.ForgottenAt.Before(cutoff) {
			delete(s.Forgotten, id)
		}
	}
}
