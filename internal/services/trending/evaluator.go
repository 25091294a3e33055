package trending

import "listingtrendgo/internal/store/listingstore"

// Thresholds are the configured admission parameters. MaxSlots <= 0 means
// unbounded capacity, which disables the eviction branch entirely.
type Thresholds struct {
	MinViews int64
	MaxSlots int64
}

// ShouldBeTrending is the single admission predicate for the trending
// flag. Ordered short-circuit:
//
//  1. below the view floor -> false
//  2. deleted, disabled or sold -> false
//  3. slots full -> only a strictly higher view count than the weakest
//     current occupant gets in
//  4. otherwise -> true
//
// pop may come from a racy, eventually-consistent read; a wrong decision
// here is corrected by the next sweep, never prevented.
func ShouldBeTrending(l *listingstore.Listing, th Thresholds, pop listingstore.Snapshot) bool {
	if l.ViewCount < th.MinViews {
		return false
	}
	if l.IsDeleted || l.IsDisabled || l.IsSold {
		return false
	}
	if th.MaxSlots > 0 && pop.Count >= th.MaxSlots {
		return l.ViewCount > pop.MinViewCount
	}
	return true
}
