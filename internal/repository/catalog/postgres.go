package catalog

import (
	"context"
	"errors"
	"io"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/domain"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

// NewPostgres builds the Postgres-backed catalog provider.
func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) *postgresRepo {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) GetVariantWithProduct(ctx context.Context, variantID string) (*domain.VariantWithProduct, error) {
	const q = `
SELECT v.price_id, v.price_cents, v.currency, v.images, v.options,
       p.id::text, p.name, p.slug, p.images
FROM product_variants v
JOIN products p ON p.id = v.product_id
WHERE v.price_id = $1 AND v.active AND p.active
`
	var (
		variant domain.ProductVariant
		product domain.ProductSummary
	)
	err := r.pool.QueryRow(ctx, q, variantID).Scan(
		&variant.ID, &variant.Price.Amount, &variant.Price.Currency,
		&variant.Images, &variant.Options,
		&product.ID, &product.Name, &product.Slug, &product.Images,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Printf("catalog repo: variant id=%s not found", variantID)
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("catalog repo: variant id=%s error=%v", variantID, err)
		return nil, err
	}
	normalizeVariant(&variant)
	return &domain.VariantWithProduct{Product: product, Variant: variant}, nil
}

func (r *postgresRepo) ListProducts(ctx context.Context) ([]domain.Product, error) {
	const q = `
SELECT id::text, slug, name, COALESCE(description, ''), images, created_at
FROM products
WHERE active
ORDER BY created_at DESC
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		r.logger.Printf("catalog repo: list products error=%v", err)
		return nil, err
	}
	defer rows.Close()

	var products []domain.Product
	ids := make([]string, 0)
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Slug, &p.Name, &p.Description, &p.Images, &p.CreatedAt); err != nil {
			return nil, err
		}
		products = append(products, p)
		ids = append(ids, p.ID)
	}
	if err := rows.Err(); err != nil {
		r.logger.Printf("catalog repo: list products rows error=%v", err)
		return nil, err
	}

	if err := r.attachVariants(ctx, products, ids); err != nil {
		return nil, err
	}

	// Only products with at least one live variant are sellable.
	sellable := products[:0]
	for _, p := range products {
		if len(p.Variants) > 0 {
			sellable = append(sellable, p)
		}
	}
	r.logger.Printf("catalog repo: list products count=%d", len(sellable))
	return sellable, nil
}

func (r *postgresRepo) GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	const q = `
SELECT id::text, slug, name, COALESCE(description, ''), images, created_at
FROM products
WHERE slug = $1 AND active
`
	var p domain.Product
	err := r.pool.QueryRow(ctx, q, slug).Scan(&p.ID, &p.Slug, &p.Name, &p.Description, &p.Images, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("catalog repo: get product slug=%s error=%v", slug, err)
		return nil, err
	}

	products := []domain.Product{p}
	if err := r.attachVariants(ctx, products, []string{p.ID}); err != nil {
		return nil, err
	}
	if len(products[0].Variants) == 0 {
		return nil, domain.ErrNotFound
	}
	return &products[0], nil
}

func (r *postgresRepo) attachVariants(ctx context.Context, products []domain.Product, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	const q = `
SELECT product_id::text, price_id, price_cents, currency, images, options
FROM product_variants
WHERE active AND product_id = ANY($1::uuid[])
ORDER BY created_at
`
	rows, err := r.pool.Query(ctx, q, ids)
	if err != nil {
		r.logger.Printf("catalog repo: attach variants error=%v", err)
		return err
	}
	defer rows.Close()

	byProduct := make(map[string][]domain.ProductVariant, len(ids))
	for rows.Next() {
		var (
			productID string
			v         domain.ProductVariant
		)
		if err := rows.Scan(&productID, &v.ID, &v.Price.Amount, &v.Price.Currency, &v.Images, &v.Options); err != nil {
			return err
		}
		normalizeVariant(&v)
		byProduct[productID] = append(byProduct[productID], v)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for i := range products {
		products[i].Variants = byProduct[products[i].ID]
	}
	return nil
}

func (r *postgresRepo) ListCollections(ctx context.Context) ([]domain.Collection, error) {
	const q = `
SELECT id::text, slug, name, COALESCE(description, ''), COALESCE(image, ''), created_at
FROM collections
ORDER BY created_at
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		r.logger.Printf("catalog repo: list collections error=%v", err)
		return nil, err
	}
	defer rows.Close()

	var collections []domain.Collection
	for rows.Next() {
		var c domain.Collection
		if err := rows.Scan(&c.ID, &c.Slug, &c.Name, &c.Description, &c.Image, &c.CreatedAt); err != nil {
			return nil, err
		}
		collections = append(collections, c)
	}
	return collections, rows.Err()
}

func (r *postgresRepo) GetCollectionBySlug(ctx context.Context, slug string) (*domain.Collection, error) {
	const q = `
SELECT id::text, slug, name, COALESCE(description, ''), COALESCE(image, ''), created_at
FROM collections
WHERE slug = $1
`
	var c domain.Collection
	err := r.pool.QueryRow(ctx, q, slug).Scan(&c.ID, &c.Slug, &c.Name, &c.Description, &c.Image, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("catalog repo: get collection slug=%s error=%v", slug, err)
		return nil, err
	}

	const productQ = `
SELECT p.id::text, p.slug, p.name, COALESCE(p.description, ''), p.images, p.created_at
FROM products p
JOIN product_collections pc ON pc.product_id = p.id
WHERE pc.collection_id = $1::uuid AND p.active
ORDER BY p.created_at DESC
`
	rows, err := r.pool.Query(ctx, productQ, c.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var (
		products []domain.Product
		ids      []string
	)
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Slug, &p.Name, &p.Description, &p.Images, &p.CreatedAt); err != nil {
			return nil, err
		}
		products = append(products, p)
		ids = append(ids, p.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachVariants(ctx, products, ids); err != nil {
		return nil, err
	}
	for _, p := range products {
		if len(p.Variants) > 0 {
			c.Products = append(c.Products, p)
		}
	}
	return &c, nil
}

func (r *postgresRepo) UpsertProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	slug := product.Slug
	if slug == "" {
		slug = domain.Slugify(product.Name)
	}
	const q = `
INSERT INTO products (id, slug, name, description, images, active)
VALUES (COALESCE(NULLIF($1, '')::uuid, gen_random_uuid()), $2, $3, NULLIF($4, ''), $5, TRUE)
ON CONFLICT (slug) DO UPDATE SET
    name = EXCLUDED.name,
    description = EXCLUDED.description,
    images = EXCLUDED.images,
    active = TRUE
RETURNING id::text, created_at
`
	res := product
	res.Slug = slug
	images := product.Images
	if images == nil {
		images = []string{}
	}
	err := r.pool.QueryRow(ctx, q, product.ID, slug, product.Name, product.Description, images).
		Scan(&res.ID, &res.CreatedAt)
	if err != nil {
		r.logger.Printf("catalog repo: upsert product slug=%s error=%v", slug, err)
		return nil, err
	}
	r.logger.Printf("catalog repo: upserted product slug=%s id=%s", slug, res.ID)
	return &res, nil
}

// UpsertVariant inserts or refreshes a variant. The currency column is
// deliberately absent from the update set: a variant's currency is
// immutable once created.
func (r *postgresRepo) UpsertVariant(ctx context.Context, productID string, variant domain.ProductVariant) error {
	const q = `
INSERT INTO product_variants (product_id, price_id, price_cents, currency, images, options, active)
VALUES ($1::uuid, $2, $3, $4, $5, $6, TRUE)
ON CONFLICT (price_id) DO UPDATE SET
    price_cents = EXCLUDED.price_cents,
    images = EXCLUDED.images,
    options = EXCLUDED.options,
    active = TRUE
`
	options := make([]domain.VariantOption, 0, len(variant.Options))
	for _, opt := range variant.Options {
		options = append(options, domain.NormalizeOption(opt))
	}
	images := variant.Images
	if images == nil {
		images = []string{}
	}
	_, err := r.pool.Exec(ctx, q, productID, variant.ID, variant.Price.Amount, variant.Price.Currency, images, options)
	if err != nil {
		r.logger.Printf("catalog repo: upsert variant price_id=%s error=%v", variant.ID, err)
	}
	return err
}

// normalizeVariant re-settles option tags on rows read from storage so a
// hand-edited or imported row cannot leak an undecided option shape.
func normalizeVariant(v *domain.ProductVariant) {
	for i, opt := range v.Options {
		v.Options[i] = domain.NormalizeOption(opt)
	}
	if v.Images == nil {
		v.Images = []string{}
	}
}
