package seed

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/domain"
	"storefront/internal/repository/catalog"
)

type productSeed struct {
	Slug        string
	Name        string
	Description string
	Images      []string
	Collections []string
	Variants    []domain.ProductVariant
}

func colorOption(value, swatch string) domain.VariantOption {
	return domain.NormalizeOption(domain.VariantOption{
		Key:        "color",
		Label:      "Color",
		Value:      value,
		Type:       domain.OptionColor,
		ColorValue: swatch,
	})
}

func sizeOption(value string) domain.VariantOption {
	return domain.NormalizeOption(domain.VariantOption{
		Key:   "size",
		Label: "Size",
		Value: value,
		Type:  domain.OptionString,
	})
}

var products = []productSeed{
	{
		Slug:        "basic-tee",
		Name:        "Basic Tee",
		Description: "Soft mid-weight cotton tee",
		Images:      []string{"https://cdn.example.com/basic-tee-black.jpg", "https://cdn.example.com/basic-tee-sage.jpg"},
		Collections: []string{"apparel"},
		Variants: []domain.ProductVariant{
			{
				ID:      "price_seed_tee_black_s",
				Price:   domain.Money{Amount: 1999, Currency: "USD"},
				Options: []domain.VariantOption{colorOption("Black", "#000000"), sizeOption("S")},
			},
			{
				ID:      "price_seed_tee_black_m",
				Price:   domain.Money{Amount: 1999, Currency: "USD"},
				Options: []domain.VariantOption{colorOption("Black", "#000000"), sizeOption("M")},
			},
			{
				ID:      "price_seed_tee_sage_m",
				Price:   domain.Money{Amount: 2199, Currency: "USD"},
				Options: []domain.VariantOption{colorOption("Sage", "#9CAF88"), sizeOption("M")},
			},
		},
	},
	{
		Slug:        "canvas-tote",
		Name:        "Canvas Tote",
		Description: "Heavy canvas tote for everyday carry",
		Images:      []string{"https://cdn.example.com/canvas-tote.jpg"},
		Collections: []string{"accessories"},
		Variants: []domain.ProductVariant{
			{
				ID:      "price_seed_tote",
				Price:   domain.Money{Amount: 2500, Currency: "USD"},
				Options: []domain.VariantOption{sizeOption("One Size")},
			},
		},
	},
	{
		Slug:        "ceramic-mug",
		Name:        "Ceramic Mug",
		Description: "Stoneware mug, 350ml",
		Images:      []string{"https://cdn.example.com/ceramic-mug.jpg"},
		Collections: []string{"accessories"},
		Variants: []domain.ProductVariant{
			{
				ID:      "price_seed_mug_white",
				Price:   domain.Money{Amount: 1299, Currency: "USD"},
				Options: []domain.VariantOption{colorOption("White", "#ffffff")},
			},
			{
				ID:      "price_seed_mug_terracotta",
				Price:   domain.Money{Amount: 1299, Currency: "USD"},
				Options: []domain.VariantOption{colorOption("Terracotta", "#c8553d")},
			},
		},
	},
}

var collections = []domain.Collection{
	{Slug: "apparel", Name: "Apparel", Description: "Clothing and basics"},
	{Slug: "accessories", Name: "Accessories", Description: "Bags, mugs and more"},
}

// Apply inserts demo catalog data for manual testing. It is idempotent
// via the repository upserts and ON CONFLICT.
func Apply(ctx context.Context, pool *pgxpool.Pool, logger *log.Logger) error {
	repo := catalog.NewPostgres(pool, logger)

	collectionIDs := make(map[string]string, len(collections))
	for _, c := range collections {
		id, err := upsertCollection(ctx, pool, c)
		if err != nil {
			return fmt.Errorf("upsert collection %s: %w", c.Slug, err)
		}
		collectionIDs[c.Slug] = id
	}

	for _, p := range products {
		stored, err := repo.UpsertProduct(ctx, domain.Product{
			Slug:        p.Slug,
			Name:        p.Name,
			Description: p.Description,
			Images:      p.Images,
		})
		if err != nil {
			return fmt.Errorf("upsert product %s: %w", p.Slug, err)
		}
		for _, v := range p.Variants {
			if err := repo.UpsertVariant(ctx, stored.ID, v); err != nil {
				return fmt.Errorf("upsert variant %s: %w", v.ID, err)
			}
		}
		for _, slug := range p.Collections {
			if err := linkCollection(ctx, pool, stored.ID, collectionIDs[slug]); err != nil {
				return fmt.Errorf("link product %s to collection %s: %w", p.Slug, slug, err)
			}
		}
	}

	return nil
}

func upsertCollection(ctx context.Context, pool *pgxpool.Pool, c domain.Collection) (string, error) {
	const q = `
INSERT INTO collections (slug, name, description)
VALUES ($1, $2, $3)
ON CONFLICT (slug) DO UPDATE
SET name = EXCLUDED.name,
    description = EXCLUDED.description
RETURNING id::text
`
	var id string
	if err := pool.QueryRow(ctx, q, c.Slug, c.Name, c.Description).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func linkCollection(ctx context.Context, pool *pgxpool.Pool, productID, collectionID string) error {
	const q = `
INSERT INTO product_collections (product_id, collection_id)
VALUES ($1, $2)
ON CONFLICT DO NOTHING
`
	_, err := pool.Exec(ctx, q, productID, collectionID)
	return err
}
