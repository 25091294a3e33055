package trending

import (
	"testing"

	"github.com/stretchr/testify/require"

	"listingtrendgo/internal/store/listingstore"
)

func candidate(views int64) *listingstore.Listing {
	return &listingstore.Listing{ID: "cand", ViewCount: views}
}

func TestShouldBeTrending_ViewFloor(t *testing.T) {
	th := Thresholds{MinViews: 10}

	require.False(t, ShouldBeTrending(candidate(9), th, listingstore.Snapshot{}))
	require.True(t, ShouldBeTrending(candidate(10), th, listingstore.Snapshot{}))
}

func TestShouldBeTrending_DisqualifyingFlags(t *testing.T) {
	th := Thresholds{MinViews: 10}

	for name, mutate := range map[string]func(*listingstore.Listing){
		"deleted":  func(l *listingstore.Listing) { l.IsDeleted = true },
		"disabled": func(l *listingstore.Listing) { l.IsDisabled = true },
		"sold":     func(l *listingstore.Listing) { l.IsSold = true },
	} {
		t.Run(name, func(t *testing.T) {
			l := candidate(1000)
			mutate(l)
			require.False(t, ShouldBeTrending(l, th, listingstore.Snapshot{}))
		})
	}
}

func TestShouldBeTrending_CapacityEviction(t *testing.T) {
	// One slot, occupied by a listing with 50 views.
	th := Thresholds{MinViews: 10, MaxSlots: 1}
	pop := listingstore.Snapshot{Count: 1, MinViewCount: 50}

	// Above the floor but below the weakest occupant: stays out.
	require.False(t, ShouldBeTrending(candidate(40), th, pop))
	// Tie does not evict: strictly higher only.
	require.False(t, ShouldBeTrending(candidate(50), th, pop))
	// Strictly higher than the weakest occupant: gets in.
	require.True(t, ShouldBeTrending(candidate(60), th, pop))
}

func TestShouldBeTrending_OpenSlots(t *testing.T) {
	th := Thresholds{MinViews: 10, MaxSlots: 3}
	pop := listingstore.Snapshot{Count: 2, MinViewCount: 50}

	// Capacity not reached: view floor alone decides.
	require.True(t, ShouldBeTrending(candidate(11), th, pop))
}

func TestShouldBeTrending_UnboundedSlots(t *testing.T) {
	// MaxSlots 0 disables the eviction branch entirely.
	th := Thresholds{MinViews: 10}
	pop := listingstore.Snapshot{Count: 1_000_000, MinViewCount: 999}

	require.True(t, ShouldBeTrending(candidate(10), th, pop))
}
