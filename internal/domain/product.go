package domain

import "time"

// Product is the canonical, de-duplicated notion of one real-world grocery
// product. Listings from any number of retailers point at it; price
// comparison is only meaningful between listings that share a Product.
type Product struct {
	ID         int64
	Name       string
	Brand      *string
	EAN        *string // 13-digit GTIN, nil when unknown
	CategoryID *int64
	Unit       *string  // canonical short unit, e.g. "l", "g"
	UnitSize   *float64 // quantity in Unit, e.g. 2 for "2l"
	ImageURL   *string
	CreatedAt  time.Time
}

// Listing is one retailer's presentation of a product, keyed by (retailer,
// SKU). ProductID is the one mutable relationship in the model:
// reconciliation re-points it when two canonical products turn out to be
// the same thing.
type Listing struct {
	ID         int64
	ProductID  int64
	RetailerID int64
	SKU        string
	Title      string // the retailer's own wording, raw input to matching
	URL        *string
	Active     bool
}

// Observation carries one scraped product row before it is linked to a
// canonical Product. It is never persisted as-is. ListingID is non-zero
// when the observation was rebuilt from an existing listing during
// reconciliation, zero for a fresh scrape.
type Observation struct {
	Title     string
	EAN       string // empty means absent; validate with NormalizeEAN before use
	Brand     string
	ListingID int64

	SKU        string
	URL        string
	Category   string
	Unit       string
	UnitSize   float64
	ImageURL   string
	Price      float64
	PromoPrice *float64
	PromoLabel string
	InStock    bool
}

// PriceSample is a timestamped price observation for one listing. Samples
// stay attached to their listing when it is re-pointed; reconciliation
// never touches price history.
type PriceSample struct {
	ID         int64
	ListingID  int64
	Price      float64
	PromoPrice *float64
	PromoLabel *string
	UnitPrice  *float64
	InStock    bool
	ObservedAt time.Time
}

// Retailer is a store whose site we track.
type Retailer struct {
	ID      int64
	Name    string
	Slug    string
	BaseURL string
}

// Category is a coarse product grouping shared across retailers.
type Category struct {
	ID   int64
	Name string
	Slug string
}

// ProductPatch names exactly the fields a merge may set on a surviving
// product. Nil fields are left alone. Repositories apply patches with
// fill-empty-only semantics: a populated column is never overwritten.
type ProductPatch struct {
	EAN        *string
	Brand      *string
	Unit       *string
	UnitSize   *float64
	ImageURL   *string
	CategoryID *int64
}

// IsZero reports whether the patch would change nothing.
func (p ProductPatch) IsZero() bool {
	return p.EAN == nil && p.Brand == nil && p.Unit == nil &&
		p.UnitSize == nil && p.ImageURL == nil && p.CategoryID == nil
}
