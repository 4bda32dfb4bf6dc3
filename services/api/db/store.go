package db

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store wraps database access helpers.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a Store backed by a pgx pool.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

// Close releases the pool resources.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Unit represents a generation unit and its fuel configuration. FuelType2 is
// nil for single-fuel units, which changes the submission schema.
type Unit struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	FuelType1 string    `json:"fuel_type_1"`
	FuelType2 *string   `json:"fuel_type_2,omitempty"`
	Timezone  string    `json:"timezone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

const listUnitsSQL = `
    SELECT id, name, fuel_type_1, fuel_type_2, timezone, created_at, updated_at
    FROM console.units
    ORDER BY id
`

// ListUnits returns all generation units.
func (s *Store) ListUnits(ctx context.Context) ([]Unit, error) {
	rows, err := s.pool.Query(ctx, listUnitsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	units := make([]Unit, 0)
	for rows.Next() {
		var u Unit
		if err := rows.Scan(
			&u.ID,
			&u.Name,
			&u.FuelType1,
			&u.FuelType2,
			&u.Timezone,
			&u.CreatedAt,
			&u.UpdatedAt,
		); err != nil {
			return nil, err
		}
		units = append(units, u)
	}
	return units, rows.Err()
}

const getUnitSQL = `
    SELECT id, name, fuel_type_1, fuel_type_2, timezone, created_at, updated_at
    FROM console.units
    WHERE id = $1
`

// GetUnit returns a single unit, or nil when the id is unknown.
func (s *Store) GetUnit(ctx context.Context, unitID string) (*Unit, error) {
	row := s.pool.QueryRow(ctx, getUnitSQL, unitID)

	var u Unit
	if err := row.Scan(
		&u.ID,
		&u.Name,
		&u.FuelType1,
		&u.FuelType2,
		&u.Timezone,
		&u.CreatedAt,
		&u.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// LookupQuery identifies the unit/date/market tuple every grid fetch is
// keyed by.
type LookupQuery struct {
	UnitID string
	Day    time.Time
	Market string
}

// Availability is an upstream-provided per-hour capacity figure, read-only
// to operators.
type Availability struct {
	UnitID     string    `json:"unit_id"`
	Market     string    `json:"market"`
	Day        time.Time `json:"day"`
	Hour       int       `json:"hour"`
	CapacityMW *float64  `json:"capacity_mw"`
	Source     string    `json:"source"`
	FetchedAt  time.Time `json:"fetched_at"`
}

const availabilitiesSQL = `
    SELECT unit_id, market, day, hour, capacity_mw, source, fetched_at
    FROM console.availabilities
    WHERE unit_id = $1 AND day = $2 AND market = $3
    ORDER BY hour, source
`

// FetchAvailabilities returns the capacity figures for the lookup tuple,
// one row per hour per upstream source.
func (s *Store) FetchAvailabilities(ctx context.Context, q LookupQuery) ([]Availability, error) {
	rows, err := s.pool.Query(ctx, availabilitiesSQL, q.UnitID, q.Day, q.Market)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	availabilities := make([]Availability, 0)
	for rows.Next() {
		var a Availability
		if err := rows.Scan(
			&a.UnitID,
			&a.Market,
			&a.Day,
			&a.Hour,
			&a.CapacityMW,
			&a.Source,
			&a.FetchedAt,
		); err != nil {
			return nil, err
		}
		availabilities = append(availabilities, a)
	}
	return availabilities, rows.Err()
}
