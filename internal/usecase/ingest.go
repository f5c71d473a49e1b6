package usecase

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/smartcart/backend/internal/domain"
)

// IngestService persists scraped product observations. For each observation
// it either refreshes the listing already known for (retailer, SKU), links
// a new listing to an existing product found by EAN, or creates a fresh
// product. A price sample is always appended.
type IngestService struct {
	store      domain.Store
	normalizer *Normalizer
	logger     *zap.Logger
}

// NewIngestService creates an ingest service
func NewIngestService(store domain.Store, normalizer *Normalizer, logger *zap.Logger) *IngestService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IngestService{
		store:      store,
		normalizer: normalizer,
		logger:     logger,
	}
}

// RecordBatch persists a batch of observations for one retailer and returns
// the number saved. A failure on one observation is logged and does not
// abort the rest of the batch.
func (s *IngestService) RecordBatch(ctx context.Context, retailerID int64, observations []domain.Observation) int {
	saved := 0
	for _, obs := range observations {
		if err := s.Record(ctx, retailerID, obs); err != nil {
			s.logger.Error("failed to save observation",
				zap.Int64("retailer_id", retailerID),
				zap.String("sku", obs.SKU),
				zap.String("title", obs.Title),
				zap.Error(err))
			continue
		}
		saved++
	}
	s.logger.Info("ingest batch complete",
		zap.Int64("retailer_id", retailerID),
		zap.Int("saved", saved),
		zap.Int("total", len(observations)))
	return saved
}

// Record persists one observation.
func (s *IngestService) Record(ctx context.Context, retailerID int64, obs domain.Observation) error {
	if strings.TrimSpace(obs.Title) == "" {
		return domain.ErrEmptyTitle
	}

	listing, err := s.store.ListingByRetailerSKU(ctx, retailerID, obs.SKU)
	switch {
	case err == nil:
		listing.Title = obs.Title
		if obs.URL != "" {
			url := obs.URL
			listing.URL = &url
		}
		listing.Active = true
		if err := s.store.UpdateListing(ctx, listing); err != nil {
			return err
		}
	case errors.Is(err, domain.ErrListingNotFound):
		listing, err = s.createListing(ctx, retailerID, obs)
		if err != nil {
			return err
		}
	default:
		return err
	}

	sample := &domain.PriceSample{
		ListingID:  listing.ID,
		Price:      obs.Price,
		PromoPrice: obs.PromoPrice,
		InStock:    obs.InStock,
	}
	if obs.PromoLabel != "" {
		label := obs.PromoLabel
		sample.PromoLabel = &label
	}
	return s.store.AddPriceSample(ctx, sample)
}

// createListing links the observation to a product found by EAN, or creates
// a new product, then creates the listing.
func (s *IngestService) createListing(ctx context.Context, retailerID int64, obs domain.Observation) (*domain.Listing, error) {
	var product *domain.Product

	// Only a structurally valid EAN may link to an existing product.
	ean, eanErr := domain.NormalizeEAN(obs.EAN)
	if eanErr == nil {
		p, err := s.store.ProductByEAN(ctx, ean)
		switch {
		case err == nil:
			product = p
		case errors.Is(err, domain.ErrProductNotFound):
			// No owner yet; the new product claims the EAN below.
		default:
			return nil, err
		}
	}

	categoryID, err := s.resolveCategory(ctx, obs.Category)
	if err != nil {
		return nil, err
	}

	if product == nil {
		product = &domain.Product{
			Name:       obs.Title,
			CategoryID: categoryID,
		}
		if eanErr == nil {
			product.EAN = &ean
		}
		if obs.Brand != "" {
			brand := obs.Brand
			product.Brand = &brand
		} else if brand := s.normalizer.ExtractBrand(obs.Title); brand != "" {
			product.Brand = &brand
		}
		if obs.Unit != "" {
			unit := obs.Unit
			product.Unit = &unit
		}
		if obs.UnitSize > 0 {
			size := obs.UnitSize
			product.UnitSize = &size
		}
		if obs.ImageURL != "" {
			img := obs.ImageURL
			product.ImageURL = &img
		}
		if err := s.store.CreateProduct(ctx, product); err != nil {
			return nil, err
		}
	}

	listing := &domain.Listing{
		ProductID:  product.ID,
		RetailerID: retailerID,
		SKU:        obs.SKU,
		Title:      obs.Title,
		Active:     true,
	}
	if obs.URL != "" {
		url := obs.URL
		listing.URL = &url
	}
	if err := s.store.CreateListing(ctx, listing); err != nil {
		return nil, err
	}
	return listing, nil
}

// resolveCategory maps a scraped category name to a category row, creating
// it on first sight. Returns nil when the observation has no category.
func (s *IngestService) resolveCategory(ctx context.Context, name string) (*int64, error) {
	if name == "" {
		return nil, nil
	}

	slug := categorySlug(name)
	category, err := s.store.CategoryBySlug(ctx, slug)
	switch {
	case err == nil:
		return &category.ID, nil
	case errors.Is(err, domain.ErrCategoryNotFound):
		category = &domain.Category{Name: name, Slug: slug}
		if err := s.store.CreateCategory(ctx, category); err != nil {
			return nil, err
		}
		return &category.ID, nil
	default:
		return nil, err
	}
}

func categorySlug(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.ReplaceAll(slug, "&", "and")
	slug = strings.Join(strings.Fields(slug), "-")
	return slug
}
