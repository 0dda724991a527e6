package sync

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// Sync Journal
// ---------------------------------------------------------------------------

// SyncOperation identifies which step of the reconciliation loop produced
// a journal entry.
type SyncOperation string

const (
	// SyncOperationCreate is the materialization of a sales document
	SyncOperationCreate SyncOperation = "CREATE"
	// SyncOperationStatusPush is a state update pushed to the ledger
	SyncOperationStatusPush SyncOperation = "STATUS_PUSH"
	// SyncOperationShipment is the one-shot shipment document trigger
	SyncOperationShipment SyncOperation = "SHIPMENT"
	// SyncOperationForget is a permanent exclusion decision
	SyncOperationForget SyncOperation = "FORGET"
)

// IsValid returns true if the operation is valid
func (o SyncOperation) IsValid() bool {
	switch o {
	case SyncOperationCreate, SyncOperationStatusPush, SyncOperationShipment, SyncOperationForget:
		return true
	default:
		return false
	}
}

// SyncOutcome is the result of a journaled operation.
type SyncOutcome string

const (
	// SyncOutcomeSuccess indicates the operation succeeded
	SyncOutcomeSuccess SyncOutcome = "SUCCESS"
	// SyncOutcomeSkipped indicates the operation was skipped by a guard
	SyncOutcomeSkipped SyncOutcome = "SKIPPED"
	// SyncOutcomeFailed indicates the operation failed
	SyncOutcomeFailed SyncOutcome = "FAILED"
)

// IsValid returns true if the outcome is valid
func (o SyncOutcome) IsValid() bool {
	switch o {
	case SyncOutcomeSuccess, SyncOutcomeSkipped, SyncOutcomeFailed:
		return true
	default:
		return false
	}
}

// SyncRecord is one audit entry of the reconciliation loop. Records are
// written best-effort: a journal failure never changes a sync decision.
type SyncRecord struct {
	// ID is the unique identifier of the record
	ID uuid.UUID
	// OrderID is the marketplace order id the operation concerned
	OrderID string
	// Operation is the reconciliation step
	Operation SyncOperation
	// Outcome is the result of the step
	Outcome SyncOutcome
	// DocumentID is the ledger document involved, if any
	DocumentID string
	// Detail carries the mapped state, guard name or error message
	Detail string
	// CreatedAt is when the record was written
	CreatedAt time.Time
}

// NewSyncRecord creates a journal record for the given operation.
func NewSyncRecord(orderID string, op SyncOperation, outcome SyncOutcome, documentID, detail string) *SyncRecord {
	return &SyncRecord{
		ID:         uuid.New(),
		OrderID:    orderID,
		Operation:  op,
		Outcome:    outcome,
		DocumentID: documentID,
		Detail:     detail,
		CreatedAt:  time.Now().UTC(),
	}
}

// Journal defines the port interface for the sync audit journal.
type Journal interface {
	// Record persists one journal entry.
	Record(ctx context.Context, rec *SyncRecord) error

	// Recent returns the most recent entries, newest first.
	Recent(ctx context.Context, limit, offset int) ([]SyncRecord, error)

	// CountByOrder returns how many entries exist for an order id.
	CountByOrder(ctx context.Context, orderID string) (int64, error)
}
