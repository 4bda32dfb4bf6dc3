package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/gridworks-mx/insumo-console/services/api/insumo"
)

// Insumo is a stored hourly offer for a unit/date/market tuple.
type Insumo struct {
	UnitID    string    `json:"unit_id"`
	Market    string    `json:"market"`
	Day       time.Time `json:"day"`
	Hour      int       `json:"hour"`
	MinMW     *float64  `json:"min"`
	MaxMW     *float64  `json:"max"`
	ShareFT1  *float64  `json:"share_ft1"`
	ShareFT2  *float64  `json:"share_ft2"`
	Note      string    `json:"note"`
	AGC       bool      `json:"agc"`
	PriceFT1  float64   `json:"price_ft1"`
	PriceFT2  *float64  `json:"price_ft2"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

const fetchInsumosSQL = `
    SELECT unit_id, market, day, hour, min_mw, max_mw, share_ft1, share_ft2,
           note, agc, price_ft1, price_ft2, created_at, updated_at
    FROM console.insumos
    WHERE unit_id = $1 AND day = $2 AND market = $3
    ORDER BY hour
`

// FetchInsumos returns the previously submitted offers for the lookup tuple,
// used to pre-populate the grid.
func (s *Store) FetchInsumos(ctx context.Context, q LookupQuery) ([]Insumo, error) {
	rows, err := s.pool.Query(ctx, fetchInsumosSQL, q.UnitID, q.Day, q.Market)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanInsumos(rows)
}

func scanInsumos(rows pgx.Rows) ([]Insumo, error) {
	insumos := make([]Insumo, 0)
	for rows.Next() {
		var i Insumo
		if err := rows.Scan(
			&i.UnitID,
			&i.Market,
			&i.Day,
			&i.Hour,
			&i.MinMW,
			&i.MaxMW,
			&i.ShareFT1,
			&i.ShareFT2,
			&i.Note,
			&i.AGC,
			&i.PriceFT1,
			&i.PriceFT2,
			&i.CreatedAt,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		insumos = append(insumos, i)
	}
	return insumos, rows.Err()
}

const lockInsumosSQL = `
    SELECT unit_id, market, day, hour, min_mw, max_mw, share_ft1, share_ft2,
           note, agc, price_ft1, price_ft2, created_at, updated_at
    FROM console.insumos
    WHERE unit_id = $1 AND day = $2 AND market = $3
    FOR UPDATE
`

const upsertInsumoSQL = `
    INSERT INTO console.insumos
        (unit_id, market, day, hour, min_mw, max_mw, share_ft1, share_ft2,
         note, agc, price_ft1, price_ft2, created_at, updated_at)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,NOW(),NOW())
    ON CONFLICT (unit_id, market, day, hour) DO UPDATE
    SET min_mw = EXCLUDED.min_mw,
        max_mw = EXCLUDED.max_mw,
        share_ft1 = EXCLUDED.share_ft1,
        share_ft2 = EXCLUDED.share_ft2,
        note = EXCLUDED.note,
        agc = EXCLUDED.agc,
        price_ft1 = EXCLUDED.price_ft1,
        price_ft2 = EXCLUDED.price_ft2,
        updated_at = NOW()
`

// UpsertInsumos writes one validated batch inside a transaction and reports
// which hours were newly created and which stored fields changed per hour.
// Rows identical to what is already stored are left alone and appear in
// neither list.
func (s *Store) UpsertInsumos(ctx context.Context, unitID, market string, day time.Time, rows []insumo.Row) (insumo.UpsertResult, error) {
	result := insumo.UpsertResult{Inserted: []int{}, Updated: map[int][]string{}}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return result, err
	}
	defer tx.Rollback(ctx)

	existingRows, err := tx.Query(ctx, lockInsumosSQL, unitID, day, market)
	if err != nil {
		return result, err
	}
	existing, err := scanInsumos(existingRows)
	if err != nil {
		return result, err
	}
	byHour := make(map[int]Insumo, len(existing))
	for _, e := range existing {
		byHour[e.Hour] = e
	}

	batch := &pgx.Batch{}
	queued := 0
	for _, r := range rows {
		prev, found := byHour[r.Hour]
		if found {
			changed := diffInsumo(prev, r)
			if len(changed) == 0 {
				continue
			}
			result.Updated[r.Hour] = changed
		} else {
			result.Inserted = append(result.Inserted, r.Hour)
		}
		batch.Queue(upsertInsumoSQL,
			unitID, market, day, r.Hour,
			r.Min, r.Max, r.ShareFT1, r.ShareFT2,
			r.Note, r.AGC, r.PriceFT1, r.PriceFT2,
		)
		queued++
	}

	if queued > 0 {
		res := tx.SendBatch(ctx, batch)
		for i := 0; i < queued; i++ {
			if _, err := res.Exec(); err != nil {
				res.Close()
				return insumo.UpsertResult{Inserted: []int{}, Updated: map[int][]string{}}, err
			}
		}
		if err := res.Close(); err != nil {
			return insumo.UpsertResult{Inserted: []int{}, Updated: map[int][]string{}}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return insumo.UpsertResult{Inserted: []int{}, Updated: map[int][]string{}}, err
	}
	return result, nil
}

// diffInsumo lists the wire field names whose stored value would change,
// in the grid's column order.
func diffInsumo(prev Insumo, next insumo.Row) []string {
	var changed []string
	if !eqFloatPtr(prev.MinMW, next.Min) {
		changed = append(changed, "min")
	}
	if !eqFloatPtr(prev.MaxMW, next.Max) {
		changed = append(changed, "max")
	}
	if !eqFloatPtr(prev.ShareFT1, next.ShareFT1) {
		changed = append(changed, "share_ft1")
	}
	if !eqFloatPtr(prev.ShareFT2, next.ShareFT2) {
		changed = append(changed, "share_ft2")
	}
	if prev.Note != next.Note {
		changed = append(changed, "note")
	}
	if prev.AGC != next.AGC {
		changed = append(changed, "agc")
	}
	if prev.PriceFT1 != next.PriceFT1 {
		changed = append(changed, "price_ft1")
	}
	if !eqFloatPtr(prev.PriceFT2, next.PriceFT2) {
		changed = append(changed, "price_ft2")
	}
	return changed
}

func eqFloatPtr(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
