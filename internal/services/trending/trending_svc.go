package trending

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"listingtrendgo/internal/store/listingstore"
)

const (
	// EventsChannel carries trending-change and sweep events for subscribers.
	EventsChannel = "listings:trending:events"

	sweepLockKey = "trending:sweep:lock"
	sweepLockTTL = 10 * time.Minute
)

var ErrSweepInProgress = errors.New("sweep already in progress")

// ListingStore is the slice of the persistence layer the engine needs.
type ListingStore interface {
	FindByID(ctx context.Context, id string) (*listingstore.Listing, error)
	IncrementViewCount(ctx context.Context, id string) error
	SetTrending(ctx context.Context, id string, trending bool) error
	TrendingSnapshot(ctx context.Context, excludeID string) (listingstore.Snapshot, error)
	ListSweepCandidates(ctx context.Context, minViews int64) ([]*listingstore.Listing, error)
}

// Enqueuer schedules a delayed re-evaluation of one listing.
type Enqueuer interface {
	Enqueue(ctx context.Context, listingID string) error
}

// SweepResult aggregates one full reconciliation pass.
type SweepResult struct {
	UpdatedCount  int64 `json:"updatedCount"`
	TrendingCount int64 `json:"trendingCount"`
}

type Service struct {
	store ListingStore
	queue Enqueuer
	rdc   *redis.Client
	th    Thresholds
}

func NewService(store ListingStore, queue Enqueuer, rdc *redis.Client, th Thresholds) *Service {
	return &Service{store: store, queue: queue, rdc: rdc, th: th}
}

// OnListingViewed bumps the view counter and schedules a re-evaluation.
// It never touches is_trending itself. An enqueue failure degrades to a
// stale flag (the sweep catches up), so it is logged, not surfaced.
func (s *Service) OnListingViewed(ctx context.Context, listingID string) error {
	if err := s.store.IncrementViewCount(ctx, listingID); err != nil {
		return err
	}
	if err := s.queue.Enqueue(ctx, listingID); err != nil {
		zap.L().Warn("trending.enqueue", zap.String("listing_id", listingID), zap.Error(err))
	}
	return nil
}

// Reconcile is the queue worker: re-evaluate one listing and persist the
// flag only when it changed. A listing deleted between enqueue and run is
// a benign no-op. Safe to run twice for the same listing.
func (s *Service) Reconcile(ctx context.Context, listingID string) error {
	l, err := s.store.FindByID(ctx, listingID)
	if errors.Is(err, listingstore.ErrNotFound) {
		zap.L().Debug("trending.reconcile_gone", zap.String("listing_id", listingID))
		return nil
	}
	if err != nil {
		return err
	}

	snap, err := s.store.TrendingSnapshot(ctx, listingID)
	if err != nil {
		return err
	}

	want := ShouldBeTrending(l, s.th, snap)
	if want == l.IsTrending {
		return nil
	}
	if err := s.store.SetTrending(ctx, listingID, want); err != nil {
		return err
	}
	s.publish(ctx, map[string]any{
		"event":      "trending/changed",
		"listingId":  listingID,
		"isTrending": want,
	})
	return nil
}

// SetTrendingManually is the admin toggle, the only flag write outside
// the reconciliation paths.
func (s *Service) SetTrendingManually(ctx context.Context, listingID string, trending bool) error {
	if err := s.store.SetTrending(ctx, listingID, trending); err != nil {
		return err
	}
	s.publish(ctx, map[string]any{
		"event":      "trending/changed",
		"listingId":  listingID,
		"isTrending": trending,
	})
	return nil
}

// SweepAll re-evaluates every listing above the view floor, highest view
// count first, against an admission context built up inside the pass
// itself. One listing failing to update is logged and skipped; the rest
// of the sweep proceeds. A Redis lease keeps a slow pass from overlapping
// the next scheduled one.
func (s *Service) SweepAll(ctx context.Context) (SweepResult, error) {
	ok, err := s.rdc.SetNX(ctx, sweepLockKey, 1, sweepLockTTL).Result()
	if err != nil {
		return SweepResult{}, err
	}
	if !ok {
		return SweepResult{}, ErrSweepInProgress
	}
	defer s.rdc.Del(context.WithoutCancel(ctx), sweepLockKey)

	candidates, err := s.store.ListSweepCandidates(ctx, s.th.MinViews)
	if err != nil {
		return SweepResult{}, err
	}

	var res SweepResult
	var admitted int64
	var admittedMin int64
	for _, l := range candidates {
		pop := listingstore.Snapshot{Count: admitted, MinViewCount: admittedMin}
		want := ShouldBeTrending(l, s.th, pop)

		if want != l.IsTrending {
			if err := s.store.SetTrending(ctx, l.ID, want); err != nil {
				zap.L().Error("trending.sweep_item",
					zap.String("listing_id", l.ID), zap.Error(err))
				continue
			}
			res.UpdatedCount++
			s.publish(ctx, map[string]any{
				"event":      "trending/changed",
				"listingId":  l.ID,
				"isTrending": want,
			})
		}
		if want {
			res.TrendingCount++
			admitted++
			// candidates arrive in descending view-count order, so the
			// latest admission is always the weakest occupant
			admittedMin = l.ViewCount
		}
	}

	s.publish(ctx, map[string]any{
		"event":    "trending/sweep",
		"updated":  res.UpdatedCount,
		"trending": res.TrendingCount,
	})
	return res, nil
}

func (s *Service) publish(ctx context.Context, body map[string]any) {
	payload, err := json.Marshal(body)
	if err != nil {
		return
	}
	if err := s.rdc.Publish(ctx, EventsChannel, payload).Err(); err != nil {
		zap.L().Warn("trending.publish", zap.Error(err))
	}
}
