package listingstore

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"
)

var ErrNotFound = errors.New("listing not found")

// Snapshot describes the currently-trending population: how many listings
// hold a slot and the weakest occupant's view count. It is read without
// any locking and may be stale by the time it is used; the periodic sweep
// corrects any mis-decision taken against it.
type Snapshot struct {
	Count        int64
	MinViewCount int64
}

// Filter narrows List queries. Zero values mean "no constraint".
type Filter struct {
	SaleType     string
	TrendingOnly bool
	OpenOnly     bool // bidding_ends_at > now, same predicate as the stored flag
	Limit        int
	Offset       int
}

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store { return &Store{db: db} }

const listingCols = `id, title, price, sale_type, view_count,
	       is_trending, is_deleted, is_disabled, is_sold,
	       starting_price, reserve_price, bid_increment,
	       end_date, end_time, time_zone, bidding_ends_at, is_bidding_open,
	       created_at, updated_at`

func (s *Store) FindByID(ctx context.Context, id string) (*Listing, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+listingCols+` FROM listings WHERE id = $1`, id)
	l, err := scanListing(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return l, err
}

func (s *Store) Insert(ctx context.Context, l *Listing) error {
	var (
		startPrice, reservePrice, increment sql.NullFloat64
		endDate, endTime, tz                sql.NullString
		endsAt                              sql.NullTime
		biddingOpen                         bool
	)
	if a := l.Auction; a != nil {
		startPrice = sql.NullFloat64{Float64: a.StartingPrice, Valid: true}
		reservePrice = sql.NullFloat64{Float64: a.ReservePrice, Valid: true}
		increment = sql.NullFloat64{Float64: a.BidIncrementPrice, Valid: true}
		endDate = sql.NullString{String: a.EndDate, Valid: true}
		endTime = sql.NullString{String: a.EndTime, Valid: true}
		tz = sql.NullString{String: a.TimeZone, Valid: true}
		endsAt = sql.NullTime{Time: a.BiddingEndsAt, Valid: true}
		biddingOpen = a.IsBiddingOpen
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO listings (id, title, price, sale_type,
		                      starting_price, reserve_price, bid_increment,
		                      end_date, end_time, time_zone,
		                      bidding_ends_at, is_bidding_open)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		l.ID, l.Title, l.Price, l.SaleType,
		startPrice, reservePrice, increment,
		endDate, endTime, tz, endsAt, biddingOpen)
	return err
}

// UpdateAuctionWindow re-stores the auction parameters and the freshly
// computed window wholesale. Never patches individual window fields.
func (s *Store) UpdateAuctionWindow(ctx context.Context, id string, a *Auction) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE listings
		   SET starting_price = $2, reserve_price = $3, bid_increment = $4,
		       end_date = $5, end_time = $6, time_zone = $7,
		       bidding_ends_at = $8, is_bidding_open = $9,
		       updated_at = now()
		 WHERE id = $1`,
		id, a.StartingPrice, a.ReservePrice, a.BidIncrementPrice,
		a.EndDate, a.EndTime, a.TimeZone, a.BiddingEndsAt, a.IsBiddingOpen)
	if err != nil {
		return err
	}
	return mustAffect(res)
}

// IncrementViewCount is the only write the view-tracking path performs.
func (s *Store) IncrementViewCount(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE listings SET view_count = view_count + 1, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return mustAffect(res)
}

// SetTrending flips the derived flag. Callers are the reconciliation
// worker, the sweep, and the admin manual toggle — nothing else.
func (s *Store) SetTrending(ctx context.Context, id string, trending bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE listings SET is_trending = $2, updated_at = now() WHERE id = $1`, id, trending)
	if err != nil {
		return err
	}
	return mustAffect(res)
}

// TrendingSnapshot aggregates the current trending population, excluding
// excludeID so a listing never competes against itself on re-evaluation.
func (s *Store) TrendingSnapshot(ctx context.Context, excludeID string) (Snapshot, error) {
	var snap Snapshot
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(MIN(view_count), 0)
		  FROM listings
		 WHERE is_trending AND id <> $1`, excludeID).
		Scan(&snap.Count, &snap.MinViewCount)
	return snap, err
}

// ListSweepCandidates returns every listing that clears the view floor,
// highest view count first, so sweep slot admission is deterministic.
func (s *Store) ListSweepCandidates(ctx context.Context, minViews int64) ([]*Listing, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+listingCols+` FROM listings
		  WHERE view_count >= $1
		  ORDER BY view_count DESC, id ASC`, minViews)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

func (s *Store) List(ctx context.Context, f Filter, now time.Time) ([]*Listing, error) {
	limit := f.Limit
	if limit == 0 {
		limit = 10
	}

	q := `SELECT ` + listingCols + ` FROM listings WHERE NOT is_deleted AND NOT is_disabled`
	args := []any{}
	if f.SaleType != "" {
		args = append(args, f.SaleType)
		q += ` AND sale_type = $` + strconv.Itoa(len(args))
	}
	if f.TrendingOnly {
		q += ` AND is_trending`
	}
	if f.OpenOnly {
		args = append(args, now)
		q += ` AND bidding_ends_at > $` + strconv.Itoa(len(args))
	}
	args = append(args, limit)
	q += ` ORDER BY created_at DESC LIMIT $` + strconv.Itoa(len(args))
	args = append(args, f.Offset)
	q += ` OFFSET $` + strconv.Itoa(len(args))

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

// helpers

type rowScanner interface {
	Scan(dest ...any) error
}

func scanListing(r rowScanner) (*Listing, error) {
	var (
		l                                   Listing
		startPrice, reservePrice, increment sql.NullFloat64
		endDate, endTime, tz                sql.NullString
		endsAt                              sql.NullTime
		biddingOpen                         bool
	)
	err := r.Scan(&l.ID, &l.Title, &l.Price, &l.SaleType, &l.ViewCount,
		&l.IsTrending, &l.IsDeleted, &l.IsDisabled, &l.IsSold,
		&startPrice, &reservePrice, &increment,
		&endDate, &endTime, &tz, &endsAt, &biddingOpen,
		&l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if l.SaleType == SaleTypeAuction && endsAt.Valid {
		l.Auction = &Auction{
			StartingPrice:     startPrice.Float64,
			ReservePrice:      reservePrice.Float64,
			BidIncrementPrice: increment.Float64,
			EndDate:           endDate.String,
			EndTime:           endTime.String,
			TimeZone:          tz.String,
			BiddingEndsAt:     endsAt.Time.UTC(),
			IsBiddingOpen:     biddingOpen,
		}
	}
	return &l, nil
}

func collect(rows *sql.Rows) ([]*Listing, error) {
	list := make([]*Listing, 0, 10)
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, l)
	}
	return list, rows.Err()
}

func mustAffect(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

