// Package sync contains the Order Reconciliation bounded context.
// This context mirrors marketplace orders into the accounting ledger as
// sales and shipment documents.
//
// Key concepts:
//   - StatusPair: a marketplace order's (stage, status) pair and its mapping
//     onto the ledger document state machine
//   - State: the durable idempotency record of orders already handled
//     (active vs. permanently forgotten)
//   - MarketplaceFeed / LedgerGateway: port interfaces for the two vendor APIs
//   - SyncRecord: the audit journal entry written for every sync decision
//
// Design Pattern: Ports & Adapters
//   - Ports (interfaces) are defined here in the domain layer
//   - Adapters (implementations) are in the infrastructure layer
package sync
