package domain

import "context"

// ProductRepository is the persistence contract for canonical products and
// the reconciliation pass. Lookups that find nothing return the package's
// sentinel not-found errors; list operations return results in ascending ID
// order so every pass scans candidates deterministically.
type ProductRepository interface {
	// SingletonProducts returns every product owning exactly one listing.
	SingletonProducts(ctx context.Context) ([]Product, error)

	// EstablishedProducts returns every product owning two or more listings.
	EstablishedProducts(ctx context.Context) ([]Product, error)

	// ProductByEAN returns the product claiming the given EAN, or
	// ErrProductNotFound.
	ProductByEAN(ctx context.Context, ean string) (*Product, error)

	// CreateProduct inserts the product and fills in its ID.
	CreateProduct(ctx context.Context, p *Product) error

	// PatchProduct fills the named fields on the product, but only where the
	// stored column is currently empty. Populated columns are never
	// overwritten.
	PatchProduct(ctx context.Context, id int64, patch ProductPatch) error

	// DeleteProduct removes a product. Returns ErrProductInUse if any
	// listing still references it.
	DeleteProduct(ctx context.Context, id int64) error
}

// ListingRepository is the persistence contract for retailer listings.
type ListingRepository interface {
	// ListingByRetailerSKU returns the listing keyed by (retailer, SKU), or
	// ErrListingNotFound.
	ListingByRetailerSKU(ctx context.Context, retailerID int64, sku string) (*Listing, error)

	// SoleListing returns the single listing owned by a singleton product,
	// or ErrListingNotFound when the product owns zero or several listings.
	SoleListing(ctx context.Context, productID int64) (*Listing, error)

	// CreateListing inserts the listing and fills in its ID.
	CreateListing(ctx context.Context, l *Listing) error

	// UpdateListing refreshes a listing's title, URL, and active flag.
	UpdateListing(ctx context.Context, l *Listing) error

	// ReassignListing atomically re-points a listing at a new owning
	// product.
	ReassignListing(ctx context.Context, listingID, toProductID int64) error
}

// PriceRepository appends price history. Reconciliation never touches it.
type PriceRepository interface {
	AddPriceSample(ctx context.Context, s *PriceSample) error
}

// CategoryRepository resolves and creates categories during ingest.
type CategoryRepository interface {
	// CategoryBySlug returns the category with the given slug, or
	// ErrCategoryNotFound.
	CategoryBySlug(ctx context.Context, slug string) (*Category, error)

	// CreateCategory inserts the category and fills in its ID.
	CreateCategory(ctx context.Context, c *Category) error
}

// Store bundles the repositories the ingest and reconciliation services
// operate over. A single implementation usually backs all of them.
type Store interface {
	ProductRepository
	ListingRepository
	PriceRepository
	CategoryRepository
}
