package window

import "time"

// AuctionSettings are the auction parameters as supplied on a listing
// create/update. Price fields ride along untouched; only the deadline
// spec participates in the window computation.
type AuctionSettings struct {
	StartingPrice     float64      `json:"startingPrice"`
	ReservePrice      float64      `json:"reservePrice"`
	BidIncrementPrice float64      `json:"biddingIncrementPrice"`
	Deadline          DeadlineSpec `json:"deadline"`
}

// Window is the computed, stored output of ComputeWindow.
type Window struct {
	BiddingEndsAt     time.Time
	IsBiddingOpen     bool
	NormalizedEndDate string
	NormalizedEndTime string
	TimeZone          string
}

// ComputeWindow resolves the deadline and derives the stored window state.
// It runs on listing creation and on every update touching auction
// parameters; never on reads.
func ComputeWindow(s AuctionSettings, nowUTC time.Time) (Window, error) {
	endsAt, err := ResolveDeadline(s.Deadline, nowUTC)
	if err != nil {
		return Window{}, err
	}

	loc, _ := time.LoadLocation(s.Deadline.TimeZone) // validated by ResolveDeadline
	local := endsAt.In(loc)

	return Window{
		BiddingEndsAt:     endsAt,
		IsBiddingOpen:     IsCurrentlyOpen(endsAt, nowUTC),
		NormalizedEndDate: local.Format(dateLayout),
		NormalizedEndTime: local.Format(timeLayout),
		TimeZone:          s.Deadline.TimeZone,
	}, nil
}

// IsCurrentlyOpen is the single authoritative "is this auction open"
// comparison. The stored flag and any query-time filter must both be
// expressions of this predicate.
func IsCurrentlyOpen(biddingEndsAt, now time.Time) bool {
	return now.Before(biddingEndsAt)
}
