// Package dedup collapses duplicate listings: first exact copies, then
// listings sharing a matching key, keeping the most complete record.
package dedup

import (
	"context"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/lily/pkg/fingerprint"
	"github.com/Ramsey-B/lily/pkg/matching"
	"github.com/Ramsey-B/lily/pkg/models"
	"github.com/Ramsey-B/lily/pkg/tracing"
)

// Resolver removes duplicate listings
type Resolver struct {
	logger ectologger.Logger
}

// Result is the outcome of a dedup pass
type Result struct {
	Listings     []*models.Listing
	ExactRemoved int
	FuzzyRemoved int
	// Groups counts matching keys shared by more than one listing
	Groups int
}

// NewResolver creates a new resolver
func NewResolver(logger ectologger.Logger) *Resolver {
	return &Resolver{logger: logger}
}

// Resolve returns one listing per matching key. Within a key the listing with
// the most known fields wins; ties keep the first one seen. Groups come out in
// the order their first member was seen.
func (r *Resolver) Resolve(ctx context.Context, listings []*models.Listing) *Result {
	ctx, span := tracing.StartSpan(ctx, "dedup.Resolver.Resolve")
	defer span.End()

	unique := RemoveExact(listings)
	result := &Result{ExactRemoved: len(listings) - len(unique)}

	var order []string
	groups := make(map[string][]*models.Listing)
	for _, l := range unique {
		key := matching.Key(l)
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], l)
	}

	result.Listings = make([]*models.Listing, 0, len(order))
	for _, key := range order {
		members := groups[key]
		if len(members) > 1 {
			result.Groups++
		}
		result.Listings = append(result.Listings, MostComplete(members))
	}
	result.FuzzyRemoved = len(unique) - len(result.Listings)

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"input":         len(listings),
		"exact_removed": result.ExactRemoved,
		"fuzzy_removed": result.FuzzyRemoved,
		"groups":        result.Groups,
		"output":        len(result.Listings),
	}).Info("Resolved duplicate listings")

	return result
}

// RemoveExact drops listings identical to an earlier one in every canonical field
func RemoveExact(listings []*models.Listing) []*models.Listing {
	seen := make(map[string]bool, len(listings))
	unique := make([]*models.Listing, 0, len(listings))
	for _, l := range listings {
		fp := fingerprint.Listing(l)
		if seen[fp] {
			continue
		}
		seen[fp] = true
		unique = append(unique, l)
	}
	return unique
}

// MostComplete returns the listing with the highest completeness score, the earliest on ties
func MostComplete(group []*models.Listing) *models.Listing {
	if len(group) == 0 {
		return nil
	}
	best, bestScore := group[0], matching.Completeness(group[0])
	for _, l := range group[1:] {
		if score := matching.Completeness(l); score > bestScore {
			best, bestScore = l, score
		}
	}
	return best
}
