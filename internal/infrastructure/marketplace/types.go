package marketplace

// orderRow is one order in the marketplace order listing. Order ids are
// numeric on the wire and carried as strings everywhere else.
type orderRow struct {
	ID        int64  `json:"id"`
	Article   string `json:"article"`
	CreatedAt string `json:"createdAt"`
}

// ordersResponse is the envelope of the paginated order listing.
type ordersResponse struct {
	Next   int64      `json:"next"`
	Orders []orderRow `json:"orders"`
}

// statusRequest is the payload of a status batch query.
type statusRequest struct {
	Orders []int64 `json:"orders"`
}

// statusRow is the two-axis status of one order: the seller-driven
// lifecycle stage and the marketplace-driven logistics status.
type statusRow struct {
	ID             int64  `json:"id"`
	SupplierStatus string `json:"supplierStatus"`
	WbStatus       string `json:"wbStatus"`
}

// statusResponse is the envelope of a status batch query.
type statusResponse struct {
	Orders []statusRow `json:"orders"`
}
