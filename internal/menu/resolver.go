package menu

import (
	"context"
	"strings"

	"foodbot/internal/models"
)

// Resolver maps free-text item names spoken by the user onto canonical menu
// entries. Matching runs in tiers from most to least specific so that a short
// candidate like "pizza" cannot shadow a more specific one like
// "Hawaiian Pizza" when the exact phrase was said.
type Resolver struct {
	catalog Catalog
}

// NewResolver creates a resolver over the given catalog
func NewResolver(catalog Catalog) *Resolver {
	return &Resolver{catalog: catalog}
}

// Resolve returns the best-matching available menu item for a candidate name.
// The returned item carries the current price, so price lookup can never
// diverge from name resolution. The second result is false when no tier
// matches.
func (r *Resolver) Resolve(ctx context.Context, candidate string) (models.MenuItem, bool, error) {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		return models.MenuItem{}, false, nil
	}

	// A verbatim hit needs no tier chain and no full menu scan.
	if item, ok, err := r.catalog.FindByExactName(ctx, candidate); err != nil {
		return models.MenuItem{}, false, err
	} else if ok && item.Available {
		return item, true, nil
	}

	items, err := r.catalog.ListAvailable(ctx)
	if err != nil {
		return models.MenuItem{}, false, err
	}

	names := make([]string, len(items))
	for i, item := range items {
		names[i] = item.Name
	}

	idx, ok := MatchName(candidate, names)
	if !ok {
		return models.MenuItem{}, false, nil
	}
	return items[idx], true, nil
}

// MatchName runs the tiered matching chain over a list of canonical names and
// returns the index of the first match. Tiers, first match wins:
//
//  1. exact match
//  2. case-insensitive exact match
//  3. all candidate words contained in the name (multi-word candidates only)
//  4. substring match in either direction, case-insensitive
//
// Ties inside a tier go to the earliest name, so callers must pass names in a
// stable order.
func MatchName(candidate string, names []string) (int, bool) {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		return 0, false
	}

	for i, name := range names {
		if name == candidate {
			return i, true
		}
	}

	for i, name := range names {
		if strings.EqualFold(name, candidate) {
			return i, true
		}
	}

	lowerCandidate := strings.ToLower(candidate)
	words := strings.Fields(lowerCandidate)

	// A two-word phrase like "chicken pizza" should pick the one entry
	// containing both words over any single-word substring hit.
	if len(words) > 1 {
		for i, name := range names {
			lowerName := strings.ToLower(name)
			all := true
			for _, word := range words {
				if !strings.Contains(lowerName, word) {
					all = false
					break
				}
			}
			if all {
				return i, true
			}
		}
	}

	for i, name := range names {
		lowerName := strings.ToLower(name)
		if strings.Contains(lowerName, lowerCandidate) || strings.Contains(lowerCandidate, lowerName) {
			return i, true
		}
	}

	return 0, false
}
