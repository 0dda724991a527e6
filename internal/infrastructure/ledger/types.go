package ledger

import (
	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Wire Types
// ---------------------------------------------------------------------------

// Meta is the ledger's addressing envelope carried by every entity reference.
type Meta struct {
	Href      string `json:"href"`
	Type      string `json:"type,omitempty"`
	MediaType string `json:"mediaType,omitempty"`
}

// metaRef wraps a Meta for embedding as an entity reference.
type metaRef struct {
	Meta Meta `json:"meta"`
}

// newEntityRef builds a reference to an entity by collection and id.
func newEntityRef(baseURL, collection, id string) metaRef {
	return metaRef{Meta: Meta{
		Href:      baseURL + "/entity/" + collection + "/" + id,
		Type:      collection,
		MediaType: "application/json",
	}}
}

// newStateRef builds a reference to a document state in a collection's
// state metadata.
func newStateRef(baseURL, collection, stateID string) metaRef {
	return metaRef{Meta: Meta{
		Href:      baseURL + "/entity/" + collection + "/metadata/states/" + stateID,
		Type:      "state",
		MediaType: "application/json",
	}}
}

// newAssortmentRef builds a reference to a catalog entry by its address.
func newAssortmentRef(href string) metaRef {
	return metaRef{Meta: Meta{
		Href:      href,
		Type:      "product",
		MediaType: "application/json",
	}}
}

// priceTypeRef identifies the tier a sale price belongs to.
type priceTypeRef struct {
	ID string `json:"id"`
}

// salePriceRow is one price tier on a catalog entry.
type salePriceRow struct {
	Value     decimal.Decimal `json:"value"`
	PriceType priceTypeRef    `json:"priceType"`
}

// entityRow is the common shape of catalog and document rows.
type entityRow struct {
	ID         string         `json:"id"`
	Name       string         `json:"name,omitempty"`
	Meta       Meta           `json:"meta"`
	SalePrices []salePriceRow `json:"salePrices,omitempty"`
}

// listResponse is the envelope of every collection query.
type listResponse struct {
	Rows []entityRow `json:"rows"`
}

// positionRow is one priced position of a document.
type positionRow struct {
	Quantity   decimal.Decimal  `json:"quantity"`
	Price      decimal.Decimal  `json:"price"`
	Reserve    *decimal.Decimal `json:"reserve,omitempty"`
	Assortment metaRef          `json:"assortment"`
}

// positionListResponse is the envelope of a document's position listing.
type positionListResponse struct {
	Rows []positionRow `json:"rows"`
}

// componentRow is one component of a bundle.
type componentRow struct {
	Quantity   decimal.Decimal `json:"quantity"`
	Assortment metaRef         `json:"assortment"`
}

// componentListResponse is the envelope of a bundle component listing.
type componentListResponse struct {
	Rows []componentRow `json:"rows"`
}

// salesDocumentBody is the creation payload for a sales document.
type salesDocumentBody struct {
	Name         string        `json:"name"`
	Organization metaRef       `json:"organization"`
	Agent        metaRef       `json:"agent"`
	SalesChannel metaRef       `json:"salesChannel"`
	Store        metaRef       `json:"store"`
	State        metaRef       `json:"state"`
	Applicable   bool          `json:"applicable"`
	Positions    []positionRow `json:"positions"`
}

// shipmentDocumentBody is the creation payload for a shipment document.
type shipmentDocumentBody struct {
	Name         string        `json:"name"`
	Organization metaRef       `json:"organization"`
	Store        metaRef       `json:"store"`
	State        metaRef       `json:"state"`
	Applicable   bool          `json:"applicable"`
	Positions    []positionRow `json:"positions"`
}

// stateUpdateBody is the payload of a document state update.
type stateUpdateBody struct {
	State metaRef `json:"state"`
}
