package listing

import (
	"context"
	"time"

	"github.com/google/uuid"

	"listingtrendgo/internal/services/window"
	"listingtrendgo/internal/store/listingstore"
)

// Store is the persistence surface the write path needs.
type Store interface {
	FindByID(ctx context.Context, id string) (*listingstore.Listing, error)
	Insert(ctx context.Context, l *listingstore.Listing) error
	UpdateAuctionWindow(ctx context.Context, id string, a *listingstore.Auction) error
	List(ctx context.Context, f listingstore.Filter, now time.Time) ([]*listingstore.Listing, error)
}

// CreateInput is a new listing before any derived field exists.
type CreateInput struct {
	Title    string
	Price    float64
	SaleType string
	Auction  *window.AuctionSettings
}

type IListingService interface {
	Create(ctx context.Context, in CreateInput) (*listingstore.Listing, error)
	UpdateAuction(ctx context.Context, id string, settings window.AuctionSettings) (*listingstore.Listing, error)
	Get(ctx context.Context, id string) (*listingstore.Listing, error)
	List(ctx context.Context, f listingstore.Filter) ([]*listingstore.Listing, error)
}

type listingService struct {
	store Store
	now   func() time.Time
}

func NewListingService(store Store) IListingService {
	return &listingService{store: store, now: func() time.Time { return time.Now().UTC() }}
}

// Create computes the auction window synchronously for AUCTION listings
// and rejects the whole write on a validation failure — no listing is
// ever persisted with an unset deadline.
func (svc *listingService) Create(ctx context.Context, in CreateInput) (*listingstore.Listing, error) {
	l := &listingstore.Listing{
		ID:       uuid.NewString(),
		Title:    in.Title,
		Price:    in.Price,
		SaleType: in.SaleType,
	}
	if in.SaleType == listingstore.SaleTypeAuction {
		if in.Auction == nil {
			return nil, &window.ValidationError{Field: "auctionSettings", Msg: "is required for auction listings"}
		}
		a, err := buildAuction(*in.Auction, svc.now())
		if err != nil {
			return nil, err
		}
		l.Auction = a
	}
	if err := svc.store.Insert(ctx, l); err != nil {
		return nil, err
	}
	return svc.store.FindByID(ctx, l.ID)
}

// UpdateAuction recomputes the window wholesale from the new parameters.
// Only AUCTION listings carry a window; a FIXED listing must never end up
// with is_bidding_open set, so non-auction targets are rejected outright.
func (svc *listingService) UpdateAuction(ctx context.Context, id string, settings window.AuctionSettings) (*listingstore.Listing, error) {
	l, err := svc.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if l.SaleType != listingstore.SaleTypeAuction {
		return nil, &window.ValidationError{Field: "saleType", Msg: "listing is not an auction"}
	}

	a, err := buildAuction(settings, svc.now())
	if err != nil {
		return nil, err
	}
	if err := svc.store.UpdateAuctionWindow(ctx, id, a); err != nil {
		return nil, err
	}
	return svc.store.FindByID(ctx, id)
}

func (svc *listingService) Get(ctx context.Context, id string) (*listingstore.Listing, error) {
	return svc.store.FindByID(ctx, id)
}

func (svc *listingService) List(ctx context.Context, f listingstore.Filter) ([]*listingstore.Listing, error) {
	return svc.store.List(ctx, f, svc.now())
}

func buildAuction(settings window.AuctionSettings, now time.Time) (*listingstore.Auction, error) {
	w, err := window.ComputeWindow(settings, now)
	if err != nil {
		return nil, err
	}
	return &listingstore.Auction{
		StartingPrice:     settings.StartingPrice,
		ReservePrice:      settings.ReservePrice,
		BidIncrementPrice: settings.BidIncrementPrice,
		EndDate:           w.NormalizedEndDate,
		EndTime:           w.NormalizedEndTime,
		TimeZone:          w.TimeZone,
		BiddingEndsAt:     w.BiddingEndsAt,
		IsBiddingOpen:     w.IsBiddingOpen,
	}, nil
}
