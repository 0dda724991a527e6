package ledger

import (
	"errors"
	"fmt"

	"github.com/erp/ordersync/internal/domain/sync"
)

// Config holds configuration for the accounting ledger API.
type Config struct {
	// BaseURL is the base URL of the ledger API
	BaseURL string
	// Token is the bearer credential for all calls
	Token string
	// OrganizationID is the owning organization referenced on documents
	OrganizationID string
	// AgentID is the counterparty referenced on sales documents
	AgentID string
	// SalesChannelID is the sales channel referenced on sales documents
	SalesChannelID string
	// StoreID is the warehouse referenced on documents
	StoreID string
	// SalePriceTypeID identifies the price tier used for line items
	SalePriceTypeID string
	// ShipmentStateID is the remote state id assigned to shipment documents
	ShipmentStateID string
	// StateIDs maps each target document state to its remote state id
	StateIDs map[sync.DocumentState]string
	// TimeoutSeconds is the per-request HTTP timeout
	TimeoutSeconds int
	// MaxAttempts is the transport retry ceiling per request
	MaxAttempts int
}

// Errors for ledger configuration
var (
	ErrConfigMissingBaseURL      = errors.New("ledger: base URL is required")
	ErrConfigMissingToken        = errors.New("ledger: token is required")
	ErrConfigMissingOrganization = errors.New("ledger: organization id is required")
	ErrConfigMissingStore        = errors.New("ledger: store id is required")
	ErrConfigMissingPriceType    = errors.New("ledger: sale price type id is required")
	ErrConfigMissingState        = errors.New("ledger: remote state id missing for target state")
)

// Validate validates the ledger configuration and fills defaults.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return ErrConfigMissingBaseURL
	}
	if c.Token == "" {
		return ErrConfigMissingToken
	}
	if c.OrganizationID == "" {
		return ErrConfigMissingOrganization
	}
	if c.StoreID == "" {
		return ErrConfigMissingStore
	}
	if c.SalePriceTypeID == "" {
		return ErrConfigMissingPriceType
	}
	for _, state := range []sync.DocumentState{
		sync.DocumentStateNew, sync.DocumentStateAwaitingAssembly,
		sync.DocumentStateAwaitingShipment, sync.DocumentStateShipped,
		sync.DocumentStateDelivering, sync.DocumentStateDelivered,
		sync.DocumentStateCancelled, sync.DocumentStateCancelledBySeller,
	} {
		if c.StateIDs[state] == "" {
			return fmt.Errorf("%w: %s", ErrConfigMissingState, state)
		}
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 40
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 6
	}
	return nil
}

// stateID returns the remote state id for a target document state.
func (c *Config) stateID(state sync.DocumentState) (string, error) {
	id, ok := c.StateIDs[state]
	if !ok || id == "" {
		return "", fmt.Errorf("%w: %s", ErrConfigMissingState, state)
	}
	return id, nil
}
