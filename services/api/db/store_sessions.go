package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gridworks-mx/insumo-console/services/api/session"
)

const loadSessionSQL = `
    SELECT unit_id, day, market, show_availability, show_prices
    FROM console.sessions
    WHERE token = $1
`

// LoadSession restores the selector state for a token. Unknown tokens return
// the default state so a fresh browser starts from a sane selection.
func (s *Store) LoadSession(ctx context.Context, token uuid.UUID) (session.State, bool, error) {
	row := s.pool.QueryRow(ctx, loadSessionSQL, token)

	var state session.State
	if err := row.Scan(
		&state.UnitID,
		&state.Date,
		&state.Market,
		&state.ShowAvailability,
		&state.ShowPrices,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return session.Default(), false, nil
		}
		return session.Default(), false, err
	}
	return state, true, nil
}

const saveSessionSQL = `
    INSERT INTO console.sessions (token, unit_id, day, market, show_availability, show_prices, created_at, updated_at)
    VALUES ($1,$2,$3,$4,$5,$6,NOW(),NOW())
    ON CONFLICT (token) DO UPDATE
    SET unit_id = EXCLUDED.unit_id,
        day = EXCLUDED.day,
        market = EXCLUDED.market,
        show_availability = EXCLUDED.show_availability,
        show_prices = EXCLUDED.show_prices,
        updated_at = NOW()
`

// SaveSession persists the selector state on every change.
func (s *Store) SaveSession(ctx context.Context, token uuid.UUID, state session.State) error {
	_, err := s.pool.Exec(ctx, saveSessionSQL,
		token, state.UnitID, state.Date, state.Market,
		state.ShowAvailability, state.ShowPrices,
	)
	return err
}
