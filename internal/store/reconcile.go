package store

import (
	"time"

	"storefront/internal/domain"
)

// Snapshot is the persisted catalog state. Products is always derived from
// Categories; it is stored only so readers need not re-flatten.
type Snapshot struct {
	Products           []domain.Product     `json:"products"`
	Categories         []domain.Category    `json:"categories"`
	CategoryTimestamps map[string]time.Time `json:"categoryTimestamps"`
}

// Outcome names the rule applied to one category during reconciliation.
type Outcome string

const (
	OutcomeNew           Outcome = "new"            // absent from cache, server populated
	OutcomeNewSkeleton   Outcome = "new_skeleton"   // absent from cache, server skeleton
	OutcomeServerWins    Outcome = "server_wins"    // server populated overwrites cache
	OutcomeExpired       Outcome = "expired"        // cache stale: reduced to a skeleton
	OutcomeKeptCache     Outcome = "kept_cache"     // server skeleton, cache fresh and populated
	OutcomeSkeleton      Outcome = "skeleton"       // server skeleton, cache fresh but empty
	OutcomeRetainedCache Outcome = "retained_cache" // cached only, not in server payload
)

type Decision struct {
	CategoryID string
	Outcome    Outcome
}

// Expired reports whether a category stamped at ts is stale at now.
// A missing stamp counts as stale.
func Expired(ts time.Time, ok bool, now time.Time, ttl time.Duration) bool {
	if !ok || ts.IsZero() {
		return true
	}
	return now.Sub(ts) > ttl
}

// Reconcile merges a server category payload into a cached snapshot.
//
// Per server category, in order:
//  1. not cached: insert; stamp now only if populated.
//  2. server populated: server wins, stamp now.
//  3. server skeleton:
//     a. cache expired: adopt the skeleton, drop the stamp.
//     b. cache fresh and populated: keep cached catalogs under server metadata.
//     c. cache fresh and empty: adopt the skeleton.
//
// Output order follows the server payload; cached categories the server did
// not mention are kept after it in their cached order, reduced to skeletons
// (and unstamped) once expired. Inputs are not mutated.
func Reconcile(cached Snapshot, server []domain.Category, now time.Time, ttl time.Duration, mediaBase string) (Snapshot, []Decision) {
	byID := make(map[string]domain.Category, len(cached.Categories))
	for _, c := range cached.Categories {
		byID[c.ID] = c
	}
	stamps := make(map[string]time.Time, len(cached.CategoryTimestamps)+len(server))
	for id, ts := range cached.CategoryTimestamps {
		stamps[id] = ts
	}

	merged := make([]domain.Category, 0, len(server)+len(cached.Categories))
	decisions := make([]Decision, 0, len(server))
	seen := make(map[string]bool, len(server))

	for _, sc := range server {
		if seen[sc.ID] {
			continue
		}
		seen[sc.ID] = true

		cc, inCache := byID[sc.ID]
		var out domain.Category
		var outcome Outcome

		switch {
		case !inCache && !sc.IsSkeleton():
			out, outcome = sc, OutcomeNew
			stamps[sc.ID] = now
		case !inCache:
			out, outcome = sc, OutcomeNewSkeleton
			delete(stamps, sc.ID)
		case !sc.IsSkeleton():
			out, outcome = sc, OutcomeServerWins
			stamps[sc.ID] = now
		default:
			ts, ok := stamps[sc.ID]
			switch {
			case Expired(ts, ok, now, ttl):
				out, outcome = sc, OutcomeExpired
				delete(stamps, sc.ID)
			case !cc.IsSkeleton():
				out = sc
				out.Catalogs = cc.Catalogs
				outcome = OutcomeKeptCache
			default:
				out, outcome = sc, OutcomeSkeleton
			}
		}
		merged = append(merged, out)
		decisions = append(decisions, Decision{CategoryID: sc.ID, Outcome: outcome})
	}

	// Categories the server did not send are kept, but an expired one is
	// reduced to its skeleton so stale products stop being served.
	for _, cc := range cached.Categories {
		if seen[cc.ID] {
			continue
		}
		seen[cc.ID] = true
		outcome := OutcomeRetainedCache
		if ts, ok := stamps[cc.ID]; !cc.IsSkeleton() && Expired(ts, ok, now, ttl) {
			cc.Catalogs = nil
			outcome = OutcomeExpired
		}
		if cc.IsSkeleton() {
			delete(stamps, cc.ID)
		}
		merged = append(merged, cc)
		decisions = append(decisions, Decision{CategoryID: cc.ID, Outcome: outcome})
	}

	// Stamps for categories that no longer exist are dropped.
	for id := range stamps {
		if !seen[id] {
			delete(stamps, id)
		}
	}

	return Snapshot{
		Products:           Flatten(merged, mediaBase),
		Categories:         merged,
		CategoryTimestamps: stamps,
	}, decisions
}

// Flatten derives the product list from categories[].catalogs[].products[],
// annotating each product with its display image and owning ids.
func Flatten(categories []domain.Category, mediaBase string) []domain.Product {
	var out []domain.Product
	for _, cat := range categories {
		for _, cl := range cat.Catalogs {
			for _, p := range cl.Products {
				if img, ok := p.PrimaryImage(); ok {
					p.ImageURL = domain.MediaURL(mediaBase, img.URL)
				}
				if p.CategoryID == "" {
					p.CategoryID = cat.ID
				}
				if p.CatalogID == "" {
					p.CatalogID = cl.ID
				}
				out = append(out, p)
			}
		}
	}
	return out
}
