package catalog

import (
	"context"

	"storefront/internal/domain"
)

// Repository is the read side of the catalog provider. Variants are
// addressed by their external price identifier; ids that no longer
// resolve report domain.ErrNotFound.
type Repository interface {
	GetVariantWithProduct(ctx context.Context, variantID string) (*domain.VariantWithProduct, error)
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error)
	ListCollections(ctx context.Context) ([]domain.Collection, error)
	GetCollectionBySlug(ctx context.Context, slug string) (*domain.Collection, error)
}

// Writer is the ingestion side used by the seeder and the importer.
type Writer interface {
	UpsertProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	UpsertVariant(ctx context.Context, productID string, variant domain.ProductVariant) error
}
