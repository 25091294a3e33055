package db_client

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func Open(host, port, user, pass, database string) (*sql.DB, error) {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s",
		user, pass, host, port, database,
	)

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(50)
	db.SetConnMaxIdleTime(time.Minute)
	return db, db.Ping()
}

// EnsureSchema creates the listings table and the indexes backing the
// trending snapshot and sweep queries. Safe to run on every boot.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS listings (
	    id              TEXT PRIMARY KEY,
	    title           TEXT NOT NULL,
	    price           DOUBLE PRECISION NOT NULL DEFAULT 0,
	    sale_type       TEXT NOT NULL DEFAULT 'FIXED',
	    view_count      BIGINT NOT NULL DEFAULT 0,
	    is_trending     BOOLEAN NOT NULL DEFAULT FALSE,
	    is_deleted      BOOLEAN NOT NULL DEFAULT FALSE,
	    is_disabled     BOOLEAN NOT NULL DEFAULT FALSE,
	    is_sold         BOOLEAN NOT NULL DEFAULT FALSE,
	    starting_price  DOUBLE PRECISION,
	    reserve_price   DOUBLE PRECISION,
	    bid_increment   DOUBLE PRECISION,
	    end_date        TEXT,
	    end_time        TEXT,
	    time_zone       TEXT,
	    bidding_ends_at TIMESTAMPTZ,
	    is_bidding_open BOOLEAN NOT NULL DEFAULT FALSE,
	    created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	    updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS idx_listings_trending   ON listings (is_trending) WHERE is_trending;
	CREATE INDEX IF NOT EXISTS idx_listings_view_count ON listings (view_count DESC);
	CREATE INDEX IF NOT EXISTS idx_listings_ends_at    ON listings (bidding_ends_at);
	`
	_, err := db.ExecContext(ctx, ddl)
	return err
}
