package sync

import (
	"context"

	"go.uber.org/zap"

	domain "github.com/erp/ordersync/internal/domain/sync"
)

// LinkProbeResult is the tri-state outcome of one shipment-link probe.
type LinkProbeResult int

const (
	// LinkInconclusive means the probe could not determine linkage
	LinkInconclusive LinkProbeResult = iota
	// LinkFound means the probe found an existing shipment link
	LinkFound
	// LinkNotFound means the probe found no shipment link
	LinkNotFound
)

// LinkProbe is one independent strategy for detecting a shipment already
// linked to a sales document. Ledger deployments expose the relation in
// different shapes, so several probes are tried in order.
type LinkProbe struct {
	// Name identifies the probe in logs
	Name string
	// Check reports whether a linked shipment exists
	Check func(ctx context.Context, documentID string) (bool, error)
}

// Run executes the probe, folding errors into LinkInconclusive.
func (p LinkProbe) Run(ctx context.Context, documentID string, logger *zap.Logger) LinkProbeResult {
	linked, err := p.Check(ctx, documentID)
	if err != nil {
		logger.Warn("Shipment link probe inconclusive",
			zap.String("probe", p.Name),
			zap.String("document_id", documentID),
			zap.Error(err),
		)
		return LinkInconclusive
	}
	if linked {
		return LinkFound
	}
	return LinkNotFound
}

// ShipmentLinkProbes builds the ordered probe list used by the shipment
// trigger's duplicate guard.
func ShipmentLinkProbes(ledger domain.LedgerGateway) []LinkProbe {
	return []LinkProbe{
		{Name: "expansion", Check: ledger.ShipmentLinkedByExpansion},
		{Name: "field-scan", Check: ledger.ShipmentLinkedByFieldScan},
		{Name: "search", Check: ledger.ShipmentLinkedBySearch},
	}
}

// anyLinked runs the probes in order and reports whether any of them found
// an existing link. Inconclusive probes are skipped; if every probe is
// inconclusive the aggregate answer is "not linked".
func anyLinked(ctx context.Context, probes []LinkProbe, documentID string, logger *zap.Logger) bool {
	for _, probe := range probes {
		if probe.Run(ctx, documentID, logger) == LinkFound {
			return true
		}
	}
	return false
}
