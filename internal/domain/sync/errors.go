package sync

import "errors"

var (
	// ErrArticleMissing is returned when a source order carries no
	// resolvable product reference
	ErrArticleMissing = errors.New("sync: order has no article")

	// ErrArticleNotFound is returned when an article matches neither a
	// direct product nor a bundle in the ledger catalog
	ErrArticleNotFound = errors.New("sync: article not found in catalog")

	// ErrNoSalePrice is returned when a catalog entry lacks a price in
	// the configured sale price tier
	ErrNoSalePrice = errors.New("sync: no sale price for catalog entry")
)
