// Package memstore provides a thread-safe in-memory implementation of the
// domain repositories, used by tests and local fixture runs.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/smartcart/backend/internal/domain"
)

// Store is a mutex-guarded in-memory domain.Store. IDs are assigned from a
// single monotonically increasing sequence.
type Store struct {
	mutex sync.RWMutex

	products   map[int64]*domain.Product
	listings   map[int64]*domain.Listing
	prices     map[int64]*domain.PriceSample
	categories map[int64]*domain.Category

	nextID int64
}

// NewStore creates an empty in-memory store
func NewStore() *Store {
	return &Store{
		products:   make(map[int64]*domain.Product),
		listings:   make(map[int64]*domain.Listing),
		prices:     make(map[int64]*domain.PriceSample),
		categories: make(map[int64]*domain.Category),
	}
}

func (s *Store) allocID() int64 {
	s.nextID++
	return s.nextID
}

// listingCount counts listings owned by a product. Caller holds the lock.
func (s *Store) listingCount(productID int64) int {
	count := 0
	for _, l := range s.listings {
		if l.ProductID == productID {
			count++
		}
	}
	return count
}

// SingletonProducts returns products owning exactly one listing, ascending
// by ID.
func (s *Store) SingletonProducts(ctx context.Context) ([]domain.Product, error) {
	return s.productsByListingCount(func(n int) bool { return n == 1 }), nil
}

// EstablishedProducts returns products owning two or more listings,
// ascending by ID.
func (s *Store) EstablishedProducts(ctx context.Context) ([]domain.Product, error) {
	return s.productsByListingCount(func(n int) bool { return n >= 2 }), nil
}

func (s *Store) productsByListingCount(keep func(int) bool) []domain.Product {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var out []domain.Product
	for id, p := range s.products {
		if keep(s.listingCount(id)) {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ProductByEAN returns the product claiming the EAN, or ErrProductNotFound.
func (s *Store) ProductByEAN(ctx context.Context, ean string) (*domain.Product, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	// Scan in ID order so duplicate EANs resolve deterministically.
	ids := make([]int64, 0, len(s.products))
	for id := range s.products {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		p := s.products[id]
		if p.EAN != nil && *p.EAN == ean {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrProductNotFound
}

// CreateProduct inserts the product and assigns its ID.
func (s *Store) CreateProduct(ctx context.Context, p *domain.Product) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	p.ID = s.allocID()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	cp := *p
	s.products[p.ID] = &cp
	return nil
}

// PatchProduct fills empty fields on the product from the patch. Populated
// fields are never overwritten.
func (s *Store) PatchProduct(ctx context.Context, id int64, patch domain.ProductPatch) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	p, ok := s.products[id]
	if !ok {
		return domain.ErrProductNotFound
	}

	if p.EAN == nil && patch.EAN != nil {
		p.EAN = patch.EAN
	}
	if p.Brand == nil && patch.Brand != nil {
		p.Brand = patch.Brand
	}
	if p.Unit == nil && patch.Unit != nil {
		p.Unit = patch.Unit
	}
	if p.UnitSize == nil && patch.UnitSize != nil {
		p.UnitSize = patch.UnitSize
	}
	if p.ImageURL == nil && patch.ImageURL != nil {
		p.ImageURL = patch.ImageURL
	}
	if p.CategoryID == nil && patch.CategoryID != nil {
		p.CategoryID = patch.CategoryID
	}
	return nil
}

// DeleteProduct removes a product, refusing while listings still reference
// it.
func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, ok := s.products[id]; !ok {
		return domain.ErrProductNotFound
	}
	if s.listingCount(id) > 0 {
		return domain.ErrProductInUse
	}
	delete(s.products, id)
	return nil
}

// ListingByRetailerSKU returns the listing keyed by (retailer, SKU).
func (s *Store) ListingByRetailerSKU(ctx context.Context, retailerID int64, sku string) (*domain.Listing, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	for _, l := range s.listings {
		if l.RetailerID == retailerID && l.SKU == sku {
			cl := *l
			return &cl, nil
		}
	}
	return nil, domain.ErrListingNotFound
}

// SoleListing returns the single listing of a singleton product.
func (s *Store) SoleListing(ctx context.Context, productID int64) (*domain.Listing, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var found *domain.Listing
	for _, l := range s.listings {
		if l.ProductID != productID {
			continue
		}
		if found != nil {
			return nil, domain.ErrListingNotFound
		}
		found = l
	}
	if found == nil {
		return nil, domain.ErrListingNotFound
	}
	cl := *found
	return &cl, nil
}

// CreateListing inserts the listing and assigns its ID.
func (s *Store) CreateListing(ctx context.Context, l *domain.Listing) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	l.ID = s.allocID()
	cl := *l
	s.listings[l.ID] = &cl
	return nil
}

// UpdateListing replaces the stored listing.
func (s *Store) UpdateListing(ctx context.Context, l *domain.Listing) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, ok := s.listings[l.ID]; !ok {
		return domain.ErrListingNotFound
	}
	cl := *l
	s.listings[l.ID] = &cl
	return nil
}

// ReassignListing re-points a listing at a new owning product.
func (s *Store) ReassignListing(ctx context.Context, listingID, toProductID int64) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	l, ok := s.listings[listingID]
	if !ok {
		return domain.ErrListingNotFound
	}
	if _, ok := s.products[toProductID]; !ok {
		return domain.ErrProductNotFound
	}
	l.ProductID = toProductID
	return nil
}

// AddPriceSample appends a price observation.
func (s *Store) AddPriceSample(ctx context.Context, sample *domain.PriceSample) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	sample.ID = s.allocID()
	if sample.ObservedAt.IsZero() {
		sample.ObservedAt = time.Now()
	}
	cs := *sample
	s.prices[sample.ID] = &cs
	return nil
}

// CategoryBySlug returns the category with the slug, or ErrCategoryNotFound.
func (s *Store) CategoryBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	for _, c := range s.categories {
		if c.Slug == slug {
			cc := *c
			return &cc, nil
		}
	}
	return nil, domain.ErrCategoryNotFound
}

// CreateCategory inserts the category and assigns its ID.
func (s *Store) CreateCategory(ctx context.Context, c *domain.Category) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	c.ID = s.allocID()
	cc := *c
	s.categories[c.ID] = &cc
	return nil
}

// Product returns a copy of one product by ID (test helper).
func (s *Store) Product(id int64) (*domain.Product, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, false
	}
	cp := *p
	return &cp, true
}

// Listing returns a copy of one listing by ID (test helper).
func (s *Store) Listing(id int64) (*domain.Listing, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	l, ok := s.listings[id]
	if !ok {
		return nil, false
	}
	cl := *l
	return &cl, true
}

// ProductCount returns the number of products (test helper).
func (s *Store) ProductCount() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.products)
}

// PriceSampleCount returns the number of price samples for a listing (test
// helper).
func (s *Store) PriceSampleCount(listingID int64) int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	count := 0
	for _, p := range s.prices {
		if p.ListingID == listingID {
			count++
		}
	}
	return count
}
