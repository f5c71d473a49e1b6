package usecase

import (
	"sort"

	"github.com/smartcart/backend/internal/domain"
)

// ResolverConfig holds configuration for the match resolver
type ResolverConfig struct {
	// Threshold is the minimum similarity score (0-100) a fuzzy match must
	// reach. Defaults to 85.
	Threshold float64
}

const defaultMatchThreshold = 85.0

// Resolver decides whether an incoming observation refers to an existing
// canonical product. Strategy, in strict order:
//
//  1. EAN exact match (fastest, most reliable).
//  2. Fuzzy name match above the threshold.
//  3. Unit cross-check veto on the fuzzy result.
//
// Candidates are always scanned in ascending ID order, so first-found
// tie-breaks (duplicate EANs upstream) are deterministic.
type Resolver struct {
	normalizer *Normalizer
	threshold  float64
}

// NewResolver creates a resolver with the given configuration
func NewResolver(normalizer *Normalizer, config ResolverConfig) *Resolver {
	threshold := config.Threshold
	if threshold <= 0 {
		threshold = defaultMatchThreshold
	}

	return &Resolver{
		normalizer: normalizer,
		threshold:  threshold,
	}
}

// FindMatch returns the canonical product the observation refers to, or nil
// when no candidate qualifies. A nil result is a normal outcome, never an
// error. selfID excludes the observation's own prior product from matching;
// pass 0 for a brand-new observation.
func (r *Resolver) FindMatch(obs domain.Observation, candidates []domain.Product, selfID int64) *domain.Product {
	if len(candidates) == 0 {
		return nil
	}

	ordered := make([]domain.Product, len(candidates))
	copy(ordered, candidates)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	if match := r.eanMatch(obs.EAN, ordered, selfID); match != nil {
		return match
	}

	match := r.fuzzyMatch(obs.Title, ordered, selfID)
	if match == nil {
		return nil
	}

	// Unit cross-check: "Milk 1L" must not merge into "Milk 2L" on name
	// similarity alone. Skipped when either side lacks a recognizable
	// quantity, since there is nothing to veto on.
	obsUnit, obsSize, obsOK := r.normalizer.ExtractUnitInfo(obs.Title)
	matchUnit, matchSize, matchOK := r.normalizer.ExtractUnitInfo(match.Name)
	if obsOK && matchOK {
		if obsUnit != matchUnit || obsSize != matchSize {
			return nil
		}
	}

	return match
}

// eanMatch returns the first candidate claiming the observation's EAN,
// skipping the observation's own product.
func (r *Resolver) eanMatch(ean string, candidates []domain.Product, selfID int64) *domain.Product {
	if ean == "" {
		return nil
	}
	for i := range candidates {
		c := &candidates[i]
		if c.ID == selfID {
			continue
		}
		if c.EAN != nil && *c.EAN == ean {
			return c
		}
	}
	return nil
}

// fuzzyMatch returns the highest-scoring candidate at or above the
// threshold, or nil.
func (r *Resolver) fuzzyMatch(title string, candidates []domain.Product, selfID int64) *domain.Product {
	normalized := r.normalizer.Normalize(title)
	if normalized == "" {
		return nil
	}

	var (
		bestScore float64
		bestMatch *domain.Product
	)

	for i := range candidates {
		c := &candidates[i]
		if c.ID == selfID {
			continue
		}

		candidateNorm := r.normalizer.Normalize(c.Name)
		if candidateNorm == "" {
			continue
		}

		score := Similarity(normalized, candidateNorm)
		if score > bestScore {
			bestScore = score
			bestMatch = c
		}
	}

	if bestMatch == nil || bestScore < r.threshold {
		return nil
	}
	return bestMatch
}
