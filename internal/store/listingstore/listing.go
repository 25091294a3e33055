package listingstore

import "time"

const (
	SaleTypeFixed   = "FIXED"
	SaleTypeAuction = "AUCTION"
)

// Listing is the sellable item record. The trending flag and the auction
// window fields are derived values: computed once, stored, and refreshed
// only by their owning code paths.
type Listing struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Price      float64   `json:"price"`
	SaleType   string    `json:"saleType"`
	ViewCount  int64     `json:"viewCount"`
	IsTrending bool      `json:"isTrending"`
	IsDeleted  bool      `json:"isDeleted"`
	IsDisabled bool      `json:"isDisable"`
	IsSold     bool      `json:"isSold"`
	Auction    *Auction  `json:"auctionSettings,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Auction carries the stored auction parameters plus the computed window.
type Auction struct {
	StartingPrice     float64   `json:"startingPrice"`
	ReservePrice      float64   `json:"reservePrice"`
	BidIncrementPrice float64   `json:"biddingIncrementPrice"`
	EndDate           string    `json:"endDate"`
	EndTime           string    `json:"endTime"`
	TimeZone          string    `json:"timeZone"`
	BiddingEndsAt     time.Time `json:"biddingEndsAt"`
	IsBiddingOpen     bool      `json:"isBiddingOpen"`
}
