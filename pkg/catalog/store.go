package catalog

import (
	"context"
	"time"

	"kompare/pkg/models"
)

// ProductUpdate describes a partial update applied to an existing product.
// Nil/zero fields are left untouched; HistoryAppend adds one price-history
// entry without ever rewriting the existing sequence.
type ProductUpdate struct {
	Price         *float64
	Image         string
	UpdatedAt     time.Time
	HistoryAppend *models.PricePoint
}

// Store is the catalog persistence surface the pipeline writes through. Mongo
// backs it in production; the in-memory implementation backs tests.
type Store interface {
	// EnsureBusiness finds the seller by name or atomically creates it with
	// the supplied fields. Existing records are never modified.
	EnsureBusiness(ctx context.Context, b models.Business) (models.Business, error)

	// FindProductByURL returns (nil, nil) when no product has that URL.
	FindProductByURL(ctx context.Context, productURL string) (*models.Product, error)

	InsertProduct(ctx context.Context, p models.Product) error
	UpdateProduct(ctx context.Context, productURL string, u ProductUpdate) error

	// DeleteStale removes the seller's products that were never updated since
	// creation and were not touched during the pass that started at
	// passStartedAt. Returns the number of deleted records.
	DeleteStale(ctx context.Context, businessName string, passStartedAt time.Time) (int64, error)
}
