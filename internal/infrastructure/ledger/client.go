package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/erp/ordersync/internal/domain/sync"
)

// Collection names of the ledger entities this client touches.
const (
	collectionSalesDocument    = "salesorder"
	collectionShipmentDocument = "shipment"
	collectionProduct          = "product"
	collectionBundle           = "bundle"
)

// Client implements the sync.LedgerGateway port against the ledger's HTTP
// API. All calls go through the retrying transport.
type Client struct {
	cfg       *Config
	transport *transport
	logger    *zap.Logger
}

// NewClient creates a ledger client with the given configuration.
func NewClient(cfg *Config, logger *zap.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Client{
		cfg:       cfg,
		transport: newTransport(cfg, logger),
		logger:    logger,
	}, nil
}

// ---------------------------------------------------------------------------
// Document Lookups
// ---------------------------------------------------------------------------

// FindSalesDocumentByName looks up a sales document by its exact name.
func (c *Client) FindSalesDocumentByName(ctx context.Context, name string) (*sync.Document, error) {
	return c.findByName(ctx, collectionSalesDocument, name)
}

// FindShipmentDocumentByName looks up a shipment document by its exact name.
func (c *Client) FindShipmentDocumentByName(ctx context.Context, name string) (*sync.Document, error) {
	return c.findByName(ctx, collectionShipmentDocument, name)
}

func (c *Client) findByName(ctx context.Context, collection, name string) (*sync.Document, error) {
	u := fmt.Sprintf("%s/entity/%s?filter=name=%s&limit=1",
		c.cfg.BaseURL, collection, url.QueryEscape(name))
	var resp listResponse
	if err := c.getJSON(ctx, u, &resp); err != nil {
		return nil, err
	}
	if len(resp.Rows) == 0 {
		return nil, nil
	}
	row := resp.Rows[0]
	return &sync.Document{ID: row.ID, Ref: row.Meta.Href}, nil
}

// ---------------------------------------------------------------------------
// Document Creation & Updates
// ---------------------------------------------------------------------------

// CreateSalesDocument creates a sales document named after the order in the
// NEW state with the given priced positions.
func (c *Client) CreateSalesDocument(ctx context.Context, name string, items []sync.LineItem) (*sync.Document, error) {
	newStateID, err := c.cfg.stateID(sync.DocumentStateNew)
	if err != nil {
		return nil, err
	}

	body := salesDocumentBody{
		Name:         name,
		Organization: newEntityRef(c.cfg.BaseURL, "organization", c.cfg.OrganizationID),
		Agent:        newEntityRef(c.cfg.BaseURL, "counterparty", c.cfg.AgentID),
		SalesChannel: newEntityRef(c.cfg.BaseURL, "saleschannel", c.cfg.SalesChannelID),
		Store:        newEntityRef(c.cfg.BaseURL, "store", c.cfg.StoreID),
		State:        newStateRef(c.cfg.BaseURL, collectionSalesDocument, newStateID),
		Applicable:   true,
		Positions:    toPositionRows(items, true),
	}

	u := c.cfg.BaseURL + "/entity/" + collectionSalesDocument
	var resp entityRow
	if err := c.postJSON(ctx, u, body, &resp); err != nil {
		return nil, err
	}
	return &sync.Document{ID: resp.ID, Ref: resp.Meta.Href}, nil
}

// CreateShipmentDocument creates a shipment document named after the order.
// Positions carry no reservation.
func (c *Client) CreateShipmentDocument(ctx context.Context, name string, items []sync.LineItem) error {
	body := shipmentDocumentBody{
		Name:         name,
		Organization: newEntityRef(c.cfg.BaseURL, "organization", c.cfg.OrganizationID),
		Store:        newEntityRef(c.cfg.BaseURL, "store", c.cfg.StoreID),
		State:        newStateRef(c.cfg.BaseURL, collectionShipmentDocument, c.cfg.ShipmentStateID),
		Applicable:   true,
		Positions:    toPositionRows(items, false),
	}

	u := c.cfg.BaseURL + "/entity/" + collectionShipmentDocument
	return c.postJSON(ctx, u, body, &entityRow{})
}

// UpdateDocumentState moves the sales document at ref to the target state.
func (c *Client) UpdateDocumentState(ctx context.Context, ref string, state sync.DocumentState) error {
	stateID, err := c.cfg.stateID(state)
	if err != nil {
		return err
	}
	body := stateUpdateBody{State: newStateRef(c.cfg.BaseURL, collectionSalesDocument, stateID)}
	return c.putJSON(ctx, ref, body, &entityRow{})
}

// ListDocumentItems reads back the positions of a created sales document.
func (c *Client) ListDocumentItems(ctx context.Context, ref string) ([]sync.LineItem, error) {
	u := ref + "/positions?limit=1000&offset=0"
	var resp positionListResponse
	if err := c.getJSON(ctx, u, &resp); err != nil {
		return nil, err
	}
	items := make([]sync.LineItem, 0, len(resp.Rows))
	for _, row := range resp.Rows {
		item := sync.LineItem{
			Quantity:      row.Quantity,
			Price:         row.Price,
			AssortmentRef: row.Assortment.Meta.Href,
		}
		if row.Reserve != nil {
			item.Reserve = *row.Reserve
		}
		items = append(items, item)
	}
	return items, nil
}

// ---------------------------------------------------------------------------
// Catalog Lookups
// ---------------------------------------------------------------------------

// FindProductBySKU looks up a direct catalog entry by article.
func (c *Client) FindProductBySKU(ctx context.Context, article string) (*sync.CatalogEntry, error) {
	u := fmt.Sprintf("%s/entity/%s?filter=article=%s&limit=1",
		c.cfg.BaseURL, collectionProduct, url.QueryEscape(article))
	var resp listResponse
	if err := c.getJSON(ctx, u, &resp); err != nil {
		return nil, err
	}
	if len(resp.Rows) == 0 {
		return nil, nil
	}
	return toCatalogEntry(resp.Rows[0]), nil
}

// FindBundleBySKU looks up a composite catalog entry by article.
func (c *Client) FindBundleBySKU(ctx context.Context, article string) (*sync.Bundle, error) {
	u := fmt.Sprintf("%s/entity/%s?filter=article=%s&limit=1",
		c.cfg.BaseURL, collectionBundle, url.QueryEscape(article))
	var resp listResponse
	if err := c.getJSON(ctx, u, &resp); err != nil {
		return nil, err
	}
	if len(resp.Rows) == 0 {
		return nil, nil
	}
	return &sync.Bundle{ID: resp.Rows[0].ID, Ref: resp.Rows[0].Meta.Href}, nil
}

// GetBundleComponents returns the component list of a bundle.
func (c *Client) GetBundleComponents(ctx context.Context, bundleID string) ([]sync.BundleComponent, error) {
	u := fmt.Sprintf("%s/entity/%s/%s/components?limit=1000&offset=0",
		c.cfg.BaseURL, collectionBundle, bundleID)
	var resp componentListResponse
	if err := c.getJSON(ctx, u, &resp); err != nil {
		return nil, err
	}
	components := make([]sync.BundleComponent, 0, len(resp.Rows))
	for _, row := range resp.Rows {
		components = append(components, sync.BundleComponent{
			Ratio:         row.Quantity,
			AssortmentRef: row.Assortment.Meta.Href,
		})
	}
	return components, nil
}

// GetCatalogEntry fetches the full catalog entry at the given address.
func (c *Client) GetCatalogEntry(ctx context.Context, ref string) (*sync.CatalogEntry, error) {
	var row entityRow
	if err := c.getJSON(ctx, ref, &row); err != nil {
		return nil, err
	}
	return toCatalogEntry(row), nil
}

// ---------------------------------------------------------------------------
// Shipment Link Probes
// ---------------------------------------------------------------------------

// ShipmentLinkedByExpansion checks for a linked shipment via the ledger's
// relation-expansion query on the sales document.
func (c *Client) ShipmentLinkedByExpansion(ctx context.Context, documentID string) (bool, error) {
	u := fmt.Sprintf("%s/entity/%s/%s?expand=shipments",
		c.cfg.BaseURL, collectionSalesDocument, documentID)
	raw, err := c.getRaw(ctx, u)
	if err != nil {
		return false, err
	}
	return hasNonEmptyRelation(raw, "shipments"), nil
}

// ShipmentLinkedByFieldScan checks for a linked shipment by scanning
// plausible relation fields on the raw sales document. Relation field
// names differ between ledger deployments.
func (c *Client) ShipmentLinkedByFieldScan(ctx context.Context, documentID string) (bool, error) {
	u := fmt.Sprintf("%s/entity/%s/%s", c.cfg.BaseURL, collectionSalesDocument, documentID)
	raw, err := c.getRaw(ctx, u)
	if err != nil {
		return false, err
	}
	for _, key := range []string{"shipments", "related", "relatedDocuments"} {
		if hasNonEmptyRelation(raw, key) {
			return true, nil
		}
	}
	return false, nil
}

// ShipmentLinkedBySearch checks for a linked shipment via a filtered
// search by parent-order reference. Not all deployments support the
// filter; the caller treats errors as inconclusive.
func (c *Client) ShipmentLinkedBySearch(ctx context.Context, documentID string) (bool, error) {
	u := fmt.Sprintf("%s/entity/%s?filter=salesOrder.id=%s&limit=1",
		c.cfg.BaseURL, collectionShipmentDocument, url.QueryEscape(documentID))
	var resp listResponse
	if err := c.getJSON(ctx, u, &resp); err != nil {
		return false, err
	}
	return len(resp.Rows) > 0, nil
}

// ---------------------------------------------------------------------------
// Internal Helpers
// ---------------------------------------------------------------------------

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	body, err := c.transport.do(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &RequestError{Method: http.MethodGet, URL: url, Body: "invalid json: " + err.Error()}
	}
	return nil
}

func (c *Client) getRaw(ctx context.Context, url string) (map[string]any, error) {
	var raw map[string]any
	if err := c.getJSON(ctx, url, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func (c *Client) postJSON(ctx context.Context, url string, body, out any) error {
	respBody, err := c.transport.do(ctx, http.MethodPost, url, body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return &RequestError{Method: http.MethodPost, URL: url, Body: "invalid json: " + err.Error()}
	}
	return nil
}

func (c *Client) putJSON(ctx context.Context, url string, body, out any) error {
	respBody, err := c.transport.do(ctx, http.MethodPut, url, body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return &RequestError{Method: http.MethodPut, URL: url, Body: "invalid json: " + err.Error()}
	}
	return nil
}

// toPositionRows converts domain line items to wire positions. Sales
// documents carry the reservation; shipment documents do not.
func toPositionRows(items []sync.LineItem, withReserve bool) []positionRow {
	rows := make([]positionRow, 0, len(items))
	for _, item := range items {
		row := positionRow{
			Quantity:   item.Quantity,
			Price:      item.Price,
			Assortment: newAssortmentRef(item.AssortmentRef),
		}
		if withReserve {
			reserve := item.Reserve
			row.Reserve = &reserve
		}
		rows = append(rows, row)
	}
	return rows
}

// toCatalogEntry converts a wire row to the domain catalog entry.
func toCatalogEntry(row entityRow) *sync.CatalogEntry {
	entry := &sync.CatalogEntry{ID: row.ID, Ref: row.Meta.Href}
	for _, p := range row.SalePrices {
		entry.SalePrices = append(entry.SalePrices, sync.SalePrice{
			PriceTypeID: p.PriceType.ID,
			Value:       p.Value,
		})
	}
	return entry
}

// hasNonEmptyRelation reports whether a raw document field holds at least
// one related entity, whether the ledger renders relations as an array or
// as a rows envelope.
func hasNonEmptyRelation(raw map[string]any, key string) bool {
	v, ok := raw[key]
	if !ok {
		return false
	}
	switch rel := v.(type) {
	case []any:
		return len(rel) > 0
	case map[string]any:
		if rows, ok := rel["rows"].([]any); ok {
			return len(rows) > 0
		}
	}
	return false
}

// Ensure Client implements the LedgerGateway port
var _ sync.LedgerGateway = (*Client)(nil)
