package postgres

import (
	"context"
	"fmt"
	"math/big"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/caydia/brokerbot/internal/domain"
	"github.com/caydia/brokerbot/internal/nego"
)

// HistoryStore records concluded negotiations. Prices are stored as NUMERIC
// and transit as decimal strings so arbitrary-precision amounts survive the
// round trip exactly.
type HistoryStore struct {
	pool *pgxpool.Pool
}

// NewHistoryStore creates a HistoryStore backed by the given pool.
func NewHistoryStore(pool *pgxpool.Pool) *HistoryStore {
	return &HistoryStore{pool: pool}
}

// Insert writes one negotiation record.
func (s *HistoryStore) Insert(ctx context.Context, rec nego.Record) error {
	const query = `
		INSERT INTO negotiations (
			id, party_id, listing_id, party_name,
			item_id, item_name, quantity,
			offered_price, seller_price,
			outcome, final_stage, started_at, ended_at
		) VALUES (
			$1, $2, $3, $4,
			$5, $6, $7,
			$8, $9,
			$10, $11, $12, $13
		) ON CONFLICT (id) DO NOTHING`

	_, err := s.pool.Exec(ctx, query,
		rec.DealID, int64(rec.PartyID), int64(rec.ListingID), rec.PartyName,
		int64(rec.ItemID), rec.ItemName, int64(rec.Quantity),
		rec.OfferedPrice.String(), rec.SellerPrice.String(),
		string(rec.Outcome), rec.FinalStage, rec.StartedAt, rec.EndedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: insert negotiation %s: %w", rec.DealID, err)
	}
	return nil
}

// Recent returns the most recently concluded negotiations, newest first.
func (s *HistoryStore) Recent(ctx context.Context, limit int) ([]nego.Record, error) {
	const query = `
		SELECT id, party_id, listing_id, party_name,
			item_id, item_name, quantity,
			offered_price::TEXT, seller_price::TEXT,
			outcome, final_stage, started_at, ended_at
		FROM negotiations
		ORDER BY ended_at DESC
		LIMIT $1`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: query recent negotiations: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

func scanRecords(rows pgx.Rows) ([]nego.Record, error) {
	var recs []nego.Record
	for rows.Next() {
		var (
			rec                      nego.Record
			partyID, listingID       int64
			itemID, quantity         int64
			offered, seller, outcome string
		)
		if err := rows.Scan(
			&rec.DealID, &partyID, &listingID, &rec.PartyName,
			&itemID, &rec.ItemName, &quantity,
			&offered, &seller,
			&outcome, &rec.FinalStage, &rec.StartedAt, &rec.EndedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan negotiation: %w", err)
		}

		rec.PartyID = uint32(partyID)
		rec.ListingID = uint32(listingID)
		rec.ItemID = uint32(itemID)
		rec.Quantity = uint32(quantity)

		var ok bool
		if rec.OfferedPrice, ok = new(big.Int).SetString(offered, 10); !ok {
			return nil, fmt.Errorf("postgres: bad offered_price %q", offered)
		}
		if rec.SellerPrice, ok = new(big.Int).SetString(seller, 10); !ok {
			return nil, fmt.Errorf("postgres: bad seller_price %q", seller)
		}
		rec.Outcome = domain.Outcome(outcome)

		recs = append(recs, rec)
	}
	return recs, rows.Err()
}
