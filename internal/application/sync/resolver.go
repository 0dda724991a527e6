package sync

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	domain "github.com/erp/ordersync/internal/domain/sync"
)

// LineItemResolver resolves a marketplace article into priced ledger line
// items. Resolution fails closed: a missing catalog entry or price yields
// zero line items, never a partial document.
type LineItemResolver struct {
	ledger      domain.LedgerGateway
	priceTypeID string
}

// NewLineItemResolver creates a resolver pricing items from the given
// sale price tier.
func NewLineItemResolver(ledger domain.LedgerGateway, priceTypeID string) *LineItemResolver {
	return &LineItemResolver{ledger: ledger, priceTypeID: priceTypeID}
}

// Resolve expands the article into line items for the requested quantity.
// Bundles are tried before direct products: a bundle article emits one
// line item per component with quantity scaled by the component ratio.
func (r *LineItemResolver) Resolve(ctx context.Context, article string, quantity decimal.Decimal) ([]domain.LineItem, error) {
	if article == "" {
		return nil, domain.ErrArticleMissing
	}

	bundle, err := r.ledger.FindBundleBySKU(ctx, article)
	if err != nil {
		return nil, err
	}
	if bundle != nil {
		return r.resolveBundle(ctx, bundle, quantity)
	}

	product, err := r.ledger.FindProductBySKU(ctx, article)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrArticleNotFound, article)
	}

	price, ok := product.SalePrice(r.priceTypeID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNoSalePrice, article)
	}
	return []domain.LineItem{{
		Quantity:      quantity,
		Price:         price,
		Reserve:       quantity,
		AssortmentRef: product.Ref,
	}}, nil
}

func (r *LineItemResolver) resolveBundle(ctx context.Context, bundle *domain.Bundle, quantity decimal.Decimal) ([]domain.LineItem, error) {
	components, err := r.ledger.GetBundleComponents(ctx, bundle.ID)
	if err != nil {
		return nil, err
	}

	items := make([]domain.LineItem, 0, len(components))
	for _, component := range components {
		entry, err := r.ledger.GetCatalogEntry(ctx, component.AssortmentRef)
		if err != nil {
			return nil, err
		}
		price, ok := entry.SalePrice(r.priceTypeID)
		if !ok {
			return nil, fmt.Errorf("%w: bundle component %s", domain.ErrNoSalePrice, component.AssortmentRef)
		}
		qty := component.Ratio.Mul(quantity)
		items = append(items, domain.LineItem{
			Quantity:      qty,
			Price:         price,
			Reserve:       qty,
			AssortmentRef: component.AssortmentRef,
		})
	}
	return items, nil
}
