package usecase

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/smartcart/backend/internal/domain"
)

// ReconcileService folds duplicate canonical products together. A pass
// scans every singleton (a product owning exactly one listing), looks for a
// matching product in the rest of the population, re-points the singleton's
// listing at the match, enriches the survivor, and retires the singleton.
//
// A pass is idempotent: re-running over an unchanged population performs
// zero merges. The caller must serialize passes; concurrent passes over the
// same population race on re-pointing.
type ReconcileService struct {
	store      domain.Store
	normalizer *Normalizer
	resolver   *Resolver
	logger     *zap.Logger
}

// NewReconcileService creates a reconciliation service
func NewReconcileService(store domain.Store, normalizer *Normalizer, resolver *Resolver, logger *zap.Logger) *ReconcileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReconcileService{
		store:      store,
		normalizer: normalizer,
		resolver:   resolver,
		logger:     logger,
	}
}

// Run executes one reconciliation pass and returns the number of merges
// performed. Zero merges is a valid, non-error outcome. A persistence
// failure during one merge is logged and skips only that singleton; the
// pass carries on. Only repository errors while loading the population are
// fatal.
func (s *ReconcileService) Run(ctx context.Context) (int, error) {
	log := s.logger.With(zap.String("run_id", uuid.NewString()))
	log.Info("starting reconciliation pass")

	singletons, err := s.store.SingletonProducts(ctx)
	if err != nil {
		return 0, err
	}
	if len(singletons) == 0 {
		log.Info("no singleton products, nothing to reconcile")
		return 0, nil
	}

	established, err := s.store.EstablishedProducts(ctx)
	if err != nil {
		return 0, err
	}

	// Candidate pool: established products plus the singletons themselves,
	// deduplicated by ID. Two singletons from different retailers can merge
	// with each other.
	seen := make(map[int64]bool, len(established)+len(singletons))
	candidates := make([]domain.Product, 0, len(established)+len(singletons))
	for _, p := range established {
		if !seen[p.ID] {
			seen[p.ID] = true
			candidates = append(candidates, p)
		}
	}
	for _, p := range singletons {
		if !seen[p.ID] {
			seen[p.ID] = true
			candidates = append(candidates, p)
		}
	}

	// Singletons retired earlier in this pass must not be matched against
	// later. The candidate it merged into stays; its listings and enriched
	// metadata are part of the pool going forward. A singleton that absorbed
	// another one now owns two listings and is no longer singleton work
	// itself, so it is skipped as a work item while staying in the pool.
	retired := make(map[int64]bool)
	survivors := make(map[int64]bool)

	merges := 0
	for _, singleton := range singletons {
		if retired[singleton.ID] || survivors[singleton.ID] {
			continue
		}

		select {
		case <-ctx.Done():
			return merges, ctx.Err()
		default:
		}

		listing, err := s.store.SoleListing(ctx, singleton.ID)
		if err != nil {
			log.Error("failed to load singleton listing",
				zap.Int64("singleton_id", singleton.ID),
				zap.Error(err))
			continue
		}

		obs := observationFromProduct(singleton, listing)

		live := candidates[:0:0]
		for _, c := range candidates {
			if !retired[c.ID] {
				live = append(live, c)
			}
		}

		match := s.resolver.FindMatch(obs, live, singleton.ID)
		if match == nil {
			continue
		}

		if err := s.merge(ctx, singleton, *match, listing, log); err != nil {
			// One failed merge must not abort the pass.
			log.Error("merge failed",
				zap.Int64("singleton_id", singleton.ID),
				zap.Int64("survivor_id", match.ID),
				zap.Error(err))
			continue
		}

		retired[singleton.ID] = true
		survivors[match.ID] = true
		merges++
	}

	log.Info("reconciliation pass complete", zap.Int("merges", merges))
	return merges, nil
}

// merge re-points the singleton's sole listing at the survivor, fills the
// survivor's empty fields from the singleton, and deletes the now
// listing-less singleton.
func (s *ReconcileService) merge(ctx context.Context, singleton, survivor domain.Product, listing *domain.Listing, log *zap.Logger) error {
	log.Info("merging product",
		zap.Int64("singleton_id", singleton.ID),
		zap.String("singleton_name", singleton.Name),
		zap.Int64("survivor_id", survivor.ID),
		zap.String("survivor_name", survivor.Name),
		zap.Int64("listing_id", listing.ID))

	if err := s.store.ReassignListing(ctx, listing.ID, survivor.ID); err != nil {
		return err
	}

	patch := s.enrichmentPatch(singleton, survivor)
	if !patch.IsZero() {
		if err := s.store.PatchProduct(ctx, survivor.ID, patch); err != nil {
			// The listing already moved; the survivor just misses some
			// metadata. Report it and keep going with the deletion.
			log.Warn("survivor enrichment failed",
				zap.Int64("survivor_id", survivor.ID),
				zap.Int64("listing_id", listing.ID),
				zap.Error(err))
		}
	}

	return s.store.DeleteProduct(ctx, singleton.ID)
}

// enrichmentPatch collects the singleton's fields the survivor is missing.
// Populated survivor fields are left alone; the repository enforces the
// same fill-empty-only rule again at write time. When neither side carries
// a brand, the brand extractor gets a shot at the singleton's name.
func (s *ReconcileService) enrichmentPatch(singleton, survivor domain.Product) domain.ProductPatch {
	var patch domain.ProductPatch

	if survivor.EAN == nil && singleton.EAN != nil {
		patch.EAN = singleton.EAN
	}
	if survivor.Brand == nil {
		if singleton.Brand != nil {
			patch.Brand = singleton.Brand
		} else if brand := s.normalizer.ExtractBrand(singleton.Name); brand != "" {
			patch.Brand = &brand
		}
	}
	if survivor.Unit == nil && singleton.Unit != nil {
		patch.Unit = singleton.Unit
	}
	if survivor.UnitSize == nil && singleton.UnitSize != nil {
		patch.UnitSize = singleton.UnitSize
	}
	if survivor.ImageURL == nil && singleton.ImageURL != nil {
		patch.ImageURL = singleton.ImageURL
	}
	if survivor.CategoryID == nil && singleton.CategoryID != nil {
		patch.CategoryID = singleton.CategoryID
	}

	return patch
}

// observationFromProduct rebuilds the matching input from a stored
// singleton and its sole listing.
func observationFromProduct(p domain.Product, listing *domain.Listing) domain.Observation {
	obs := domain.Observation{
		Title:     p.Name,
		ListingID: listing.ID,
		SKU:       listing.SKU,
	}
	if p.EAN != nil {
		obs.EAN = *p.EAN
	}
	if p.Brand != nil {
		obs.Brand = *p.Brand
	}
	return obs
}
