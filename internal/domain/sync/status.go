package sync

// ---------------------------------------------------------------------------
// Marketplace Status Model
// ---------------------------------------------------------------------------

// Stage represents the coarse lifecycle stage the marketplace reports for
// an order.
type Stage string

const (
	// StageNew indicates the order has just been placed
	StageNew Stage = "new"
	// StageConfirm indicates the seller has confirmed the order
	StageConfirm Stage = "confirm"
	// StageComplete indicates the order is in fulfilment
	StageComplete Stage = "complete"
	// StageCancel indicates the seller side cancelled the order
	StageCancel Stage = "cancel"
)

// String returns the string representation of Stage
func (s Stage) String() string {
	return string(s)
}

// Status represents the fine-grained status string the marketplace reports
// alongside the stage.
type Status string

const (
	// StatusWaiting indicates the order is waiting for the next step
	StatusWaiting Status = "waiting"
	// StatusSorted indicates the goods have been sorted for dispatch
	StatusSorted Status = "sorted"
	// StatusReadyForPickup indicates the goods reached the pickup point
	StatusReadyForPickup Status = "ready_for_pickup"
	// StatusSold indicates the buyer received the goods
	StatusSold Status = "sold"
	// StatusCanceled indicates the order was cancelled
	StatusCanceled Status = "canceled"
	// StatusCanceledByClient indicates the buyer cancelled the order
	StatusCanceledByClient Status = "canceled_by_client"
	// StatusDeclinedByClient indicates the buyer declined delivery
	StatusDeclinedByClient Status = "declined_by_client"
	// StatusDefect indicates the goods were rejected as defective
	StatusDefect Status = "defect"
)

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// StatusPair is the two-part status the marketplace reports for an order.
type StatusPair struct {
	Stage  Stage
	Status Status
}

// IsTerminal reports whether no further tracking of the order is useful.
// Terminality is independent of whether the pair has a state mapping:
// a terminal pair without a mapping is still removed from tracking.
func (p StatusPair) IsTerminal() bool {
	switch p.Status {
	case StatusSold, StatusCanceled, StatusCanceledByClient, StatusDeclinedByClient, StatusDefect:
		return true
	}
	return p.Stage == StageCancel
}

// IsShipmentTrigger reports whether the pair signals that goods have been
// sorted for dispatch, which causes creation of the shipment document.
func (p StatusPair) IsShipmentTrigger() bool {
	return p.Stage == StageComplete && p.Status == StatusSorted
}

// String returns the pair in "stage/status" form.
func (p StatusPair) String() string {
	return string(p.Stage) + "/" + string(p.Status)
}

// ---------------------------------------------------------------------------
// Ledger Document States
// ---------------------------------------------------------------------------

// DocumentState represents a target state of a ledger sales document.
type DocumentState string

const (
	// DocumentStateNew is the initial state of a created sales document
	DocumentStateNew DocumentState = "NEW"
	// DocumentStateAwaitingAssembly indicates the order is being assembled
	DocumentStateAwaitingAssembly DocumentState = "AWAITING_ASSEMBLY"
	// DocumentStateAwaitingShipment indicates assembly is done, awaiting handover
	DocumentStateAwaitingShipment DocumentState = "AWAITING_SHIPMENT"
	// DocumentStateShipped indicates the goods left the warehouse
	DocumentStateShipped DocumentState = "SHIPPED"
	// DocumentStateDelivering indicates the goods are on their last leg
	DocumentStateDelivering DocumentState = "DELIVERING"
	// DocumentStateDelivered indicates the buyer received the goods
	DocumentStateDelivered DocumentState = "DELIVERED"
	// DocumentStateCancelled indicates the buyer cancelled or rejected the order
	DocumentStateCancelled DocumentState = "CANCELLED"
	// DocumentStateCancelledBySeller indicates the seller side cancelled the order
	DocumentStateCancelledBySeller DocumentState = "CANCELLED_BY_SELLER"
)

// IsValid returns true if the document state is valid
func (s DocumentState) IsValid() bool {
	switch s {
	case DocumentStateNew, DocumentStateAwaitingAssembly, DocumentStateAwaitingShipment,
		DocumentStateShipped, DocumentStateDelivering, DocumentStateDelivered,
		DocumentStateCancelled, DocumentStateCancelledBySeller:
		return true
	default:
		return false
	}
}

// String returns the string representation of DocumentState
func (s DocumentState) String() string {
	return string(s)
}

// ---------------------------------------------------------------------------
// Status Mapping
// ---------------------------------------------------------------------------

// MapStatus maps a marketplace status pair to a ledger document state.
// It returns false when the pair is not actionable; the caller must not
// change remote state in that case, and must not treat it as an error.
//
// Buyer-side cancellation statuses take priority over everything else, so
// (complete, canceled_by_client) maps to CANCELLED rather than
// CANCELLED_BY_SELLER.
func MapStatus(p StatusPair) (DocumentState, bool) {
	switch p.Status {
	case StatusCanceledByClient, StatusDeclinedByClient, StatusDefect:
		return DocumentStateCancelled, true
	}
	if p.Stage == StageCancel {
		return DocumentStateCancelledBySeller, true
	}
	if p.Status == StatusCanceled {
		return DocumentStateCancelledBySeller, true
	}
	if p.Status == StatusSold {
		return DocumentStateDelivered, true
	}

	switch p {
	case StatusPair{StageNew, StatusWaiting}:
		return DocumentStateNew, true
	case StatusPair{StageConfirm, StatusWaiting}:
		return DocumentStateAwaitingAssembly, true
	case StatusPair{StageComplete, StatusWaiting}:
		return DocumentStateAwaitingShipment, true
	case StatusPair{StageComplete, StatusSorted}:
		return DocumentStateShipped, true
	case StatusPair{StageComplete, StatusReadyForPickup}:
		return DocumentStateDelivering, true
	}

	return "", false
}
