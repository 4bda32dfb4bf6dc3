package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gridworks-mx/availability-sync/internal/models"
)

const lastAvailabilitiesSQL = `
SELECT unit_id, hour, capacity_mw, fetched_at
FROM console.availabilities
WHERE market = $1 AND day = $2 AND source = $3
`

const upsertAvailabilitySQL = `
INSERT INTO console.availabilities (unit_id, market, day, hour, capacity_mw, source, fetched_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (unit_id, market, day, hour, source)
DO UPDATE SET capacity_mw = EXCLUDED.capacity_mw, fetched_at = EXCLUDED.fetched_at
`

// Store wraps the connection pool for the availability tables.
type Store struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

// FetchLast loads the stored figures for one market/day/source keyed by
// "unit_id|hour" so new rows can be compared before writing.
func (s *Store) FetchLast(ctx context.Context, market string, day time.Time, source string) (map[string]models.LastAvailability, error) {
	rows, err := s.pool.Query(ctx, lastAvailabilitiesSQL, market, day, source)
	if err != nil {
		return nil, fmt.Errorf("query availabilities: %w", err)
	}
	defer rows.Close()

	last := make(map[string]models.LastAvailability)
	for rows.Next() {
		var unitID string
		var hour int
		var entry models.LastAvailability
		if err := rows.Scan(&unitID, &hour, &entry.CapacityMW, &entry.FetchedAt); err != nil {
			return nil, fmt.Errorf("scan availability: %w", err)
		}
		last[RowKey(unitID, hour)] = entry
	}
	return last, rows.Err()
}

// UpsertRows writes the changed rows in a single batch.
func (s *Store) UpsertRows(ctx context.Context, rows []models.AvailabilityRow) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, row := range rows {
		batch.Queue(upsertAvailabilitySQL,
			row.UnitID, row.Market, row.Day, row.Hour, row.CapacityMW, row.Source, row.FetchedAt)
	}

	res := s.pool.SendBatch(ctx, batch)
	defer res.Close()

	for range rows {
		if _, err := res.Exec(); err != nil {
			return 0, fmt.Errorf("upsert availability: %w", err)
		}
	}
	return len(rows), nil
}

// RowKey builds the comparison key used by FetchLast.
func RowKey(unitID string, hour int) string {
	return fmt.Sprintf("%s|%d", unitID, hour)
}
