// Package postgres implements the domain repositories on PostgreSQL using
// pgx.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/smartcart/backend/internal/domain"
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock satisfies it
// in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store implements domain.Store using a pgx connection pool.
type Store struct {
	pool    Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `mapstructure:"max_conns"`
	MinConns int32 `mapstructure:"min_conns"`
}

// New creates a Store with a connection pool.
func New(ctx context.Context, connString string, poolCfg *PoolConfig) (*Store, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &Store{pool: pool, closeFn: pool.Close}, nil
}

// NewWithPool wraps an existing pool. Used by tests.
func NewWithPool(pool Pool) *Store {
	return &Store{pool: pool}
}

const migration = `
CREATE TABLE IF NOT EXISTS retailers (
	id       BIGSERIAL PRIMARY KEY,
	name     TEXT NOT NULL,
	slug     TEXT NOT NULL UNIQUE,
	base_url TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS categories (
	id   BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL,
	slug TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS products (
	id          BIGSERIAL PRIMARY KEY,
	name        TEXT NOT NULL,
	brand       TEXT,
	ean         TEXT,
	category_id BIGINT REFERENCES categories(id),
	unit        TEXT,
	unit_size   DOUBLE PRECISION,
	image_url   TEXT,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS listings (
	id          BIGSERIAL PRIMARY KEY,
	product_id  BIGINT NOT NULL REFERENCES products(id),
	retailer_id BIGINT NOT NULL REFERENCES retailers(id),
	sku         TEXT NOT NULL,
	title       TEXT NOT NULL,
	url         TEXT,
	active      BOOLEAN NOT NULL DEFAULT true,
	UNIQUE (retailer_id, sku)
);

CREATE TABLE IF NOT EXISTS price_samples (
	id          BIGSERIAL PRIMARY KEY,
	listing_id  BIGINT NOT NULL REFERENCES listings(id),
	price       DOUBLE PRECISION NOT NULL,
	promo_price DOUBLE PRECISION,
	promo_label TEXT,
	unit_price  DOUBLE PRECISION,
	in_stock    BOOLEAN NOT NULL DEFAULT true,
	observed_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_products_ean ON products(ean);
CREATE INDEX IF NOT EXISTS idx_listings_product_id ON listings(product_id);
CREATE INDEX IF NOT EXISTS idx_price_samples_listing_id ON price_samples(listing_id);
`

// Migrate creates the schema.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, migration)
	return eris.Wrap(err, "postgres: migrate")
}

// Close releases the connection pool.
func (s *Store) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

const productColumns = `p.id, p.name, p.brand, p.ean, p.category_id, p.unit, p.unit_size, p.image_url, p.created_at`

// SingletonProducts returns products owning exactly one listing, ascending
// by ID.
func (s *Store) SingletonProducts(ctx context.Context) ([]domain.Product, error) {
	return s.productsByListingCount(ctx, `= 1`)
}

// EstablishedProducts returns products owning two or more listings,
// ascending by ID.
func (s *Store) EstablishedProducts(ctx context.Context) ([]domain.Product, error) {
	return s.productsByListingCount(ctx, `>= 2`)
}

func (s *Store) productsByListingCount(ctx context.Context, countCond string) ([]domain.Product, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+productColumns+`
		 FROM products p
		 JOIN listings l ON l.product_id = p.id
		 GROUP BY p.id
		 HAVING COUNT(l.id) `+countCond+`
		 ORDER BY p.id`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query products by listing count")
	}
	defer rows.Close()

	var out []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan product")
		}
		out = append(out, *p)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate products")
}

// ProductByEAN returns the lowest-ID product claiming the EAN.
func (s *Store) ProductByEAN(ctx context.Context, ean string) (*domain.Product, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products p WHERE p.ean = $1 ORDER BY p.id LIMIT 1`,
		ean,
	)
	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: product by ean %s", ean)
	}
	return p, nil
}

// CreateProduct inserts the product and fills in its ID.
func (s *Store) CreateProduct(ctx context.Context, p *domain.Product) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO products (name, brand, ean, category_id, unit, unit_size, image_url)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at`,
		p.Name, p.Brand, p.EAN, p.CategoryID, p.Unit, p.UnitSize, p.ImageURL,
	).Scan(&p.ID, &p.CreatedAt)
	return eris.Wrap(err, "postgres: insert product")
}

// PatchProduct fills empty columns from the patch. COALESCE keeps populated
// columns untouched.
func (s *Store) PatchProduct(ctx context.Context, id int64, patch domain.ProductPatch) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE products SET
			ean = COALESCE(ean, $2),
			brand = COALESCE(brand, $3),
			unit = COALESCE(unit, $4),
			unit_size = COALESCE(unit_size, $5),
			image_url = COALESCE(image_url, $6),
			category_id = COALESCE(category_id, $7)
		 WHERE id = $1`,
		id, patch.EAN, patch.Brand, patch.Unit, patch.UnitSize, patch.ImageURL, patch.CategoryID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: patch product %d", id)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

// DeleteProduct removes a product, refusing while listings still reference
// it.
func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	var listings int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM listings WHERE product_id = $1`, id,
	).Scan(&listings)
	if err != nil {
		return eris.Wrapf(err, "postgres: count listings of product %d", id)
	}
	if listings > 0 {
		return domain.ErrProductInUse
	}

	tag, err := s.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete product %d", id)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

const listingColumns = `id, product_id, retailer_id, sku, title, url, active`

// ListingByRetailerSKU returns the listing keyed by (retailer, SKU).
func (s *Store) ListingByRetailerSKU(ctx context.Context, retailerID int64, sku string) (*domain.Listing, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+listingColumns+` FROM listings WHERE retailer_id = $1 AND sku = $2`,
		retailerID, sku,
	)
	l, err := scanListing(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrListingNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: listing by retailer %d sku %s", retailerID, sku)
	}
	return l, nil
}

// SoleListing returns the single listing of a singleton product. Several
// rows mean the product is no longer a singleton; both that and zero rows
// report ErrListingNotFound.
func (s *Store) SoleListing(ctx context.Context, productID int64) (*domain.Listing, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+listingColumns+` FROM listings WHERE product_id = $1 LIMIT 2`,
		productID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: listings of product %d", productID)
	}
	defer rows.Close()

	var found *domain.Listing
	for rows.Next() {
		if found != nil {
			return nil, domain.ErrListingNotFound
		}
		found, err = scanListing(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan listing")
		}
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate listings")
	}
	if found == nil {
		return nil, domain.ErrListingNotFound
	}
	return found, nil
}

// CreateListing inserts the listing and fills in its ID.
func (s *Store) CreateListing(ctx context.Context, l *domain.Listing) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO listings (product_id, retailer_id, sku, title, url, active)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		l.ProductID, l.RetailerID, l.SKU, l.Title, l.URL, l.Active,
	).Scan(&l.ID)
	return eris.Wrap(err, "postgres: insert listing")
}

// UpdateListing refreshes a listing's title, URL, and active flag.
func (s *Store) UpdateListing(ctx context.Context, l *domain.Listing) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE listings SET title = $2, url = $3, active = $4 WHERE id = $1`,
		l.ID, l.Title, l.URL, l.Active,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update listing %d", l.ID)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrListingNotFound
	}
	return nil
}

// ReassignListing atomically re-points a listing at a new owning product.
func (s *Store) ReassignListing(ctx context.Context, listingID, toProductID int64) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE listings SET product_id = $2 WHERE id = $1`,
		listingID, toProductID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: reassign listing %d to product %d", listingID, toProductID)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrListingNotFound
	}
	return nil
}

// AddPriceSample appends a price observation for a listing.
func (s *Store) AddPriceSample(ctx context.Context, sample *domain.PriceSample) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO price_samples (listing_id, price, promo_price, promo_label, unit_price, in_stock)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, observed_at`,
		sample.ListingID, sample.Price, sample.PromoPrice, sample.PromoLabel, sample.UnitPrice, sample.InStock,
	).Scan(&sample.ID, &sample.ObservedAt)
	return eris.Wrap(err, "postgres: insert price sample")
}

// CategoryBySlug returns the category with the given slug.
func (s *Store) CategoryBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	var c domain.Category
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, slug FROM categories WHERE slug = $1`, slug,
	).Scan(&c.ID, &c.Name, &c.Slug)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrCategoryNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: category by slug %s", slug)
	}
	return &c, nil
}

// CreateCategory inserts the category and fills in its ID.
func (s *Store) CreateCategory(ctx context.Context, c *domain.Category) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO categories (name, slug) VALUES ($1, $2) RETURNING id`,
		c.Name, c.Slug,
	).Scan(&c.ID)
	return eris.Wrap(err, "postgres: insert category")
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	err := row.Scan(&p.ID, &p.Name, &p.Brand, &p.EAN, &p.CategoryID, &p.Unit, &p.UnitSize, &p.ImageURL, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func scanListing(row pgx.Row) (*domain.Listing, error) {
	var l domain.Listing
	err := row.Scan(&l.ID, &l.ProductID, &l.RetailerID, &l.SKU, &l.Title, &l.URL, &l.Active)
	if err != nil {
		return nil, err
	}
	return &l, nil
}
