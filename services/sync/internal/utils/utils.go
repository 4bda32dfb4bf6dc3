package utils

import (
	"math"
	"sort"
	"time"

	"github.com/gridworks-mx/availability-sync/internal/models"
)

// BuildSIVRows flattens the per-unit SIV series into availability rows.
func BuildSIVRows(resp *models.SIVResponse, day time.Time, market string, fetchedAt time.Time) []models.AvailabilityRow {
	if resp == nil {
		return nil
	}
	var rows []models.AvailabilityRow
	for _, unit := range resp.Units {
		for _, h := range unit.Hours {
			if h.Hour < 1 || h.Hour > 25 {
				continue
			}
			rows = append(rows, models.AvailabilityRow{
				UnitID:     unit.UnitID,
				Market:     market,
				Day:        day,
				Hour:       h.Hour,
				CapacityMW: h.CapacityMW,
				Source:     "siv",
				FetchedAt:  fetchedAt,
			})
		}
	}
	return rows
}

// BuildCENACERows normalizes the flat CENACE record list into availability rows.
// Duplicate unit/hour entries keep the last record seen, matching the feed's
// own corrections ordering.
func BuildCENACERows(resp *models.CENACEResponse, day time.Time, market string, fetchedAt time.Time) []models.AvailabilityRow {
	if resp == nil {
		return nil
	}
	type key struct {
		unit string
		hour int
	}
	latest := make(map[key]models.AvailabilityRow)
	for _, rec := range resp.Records {
		if rec.Hour < 1 || rec.Hour > 25 {
			continue
		}
		latest[key{rec.UnitKey, rec.Hour}] = models.AvailabilityRow{
			UnitID:     rec.UnitKey,
			Market:     market,
			Day:        day,
			Hour:       rec.Hour,
			CapacityMW: rec.CapacityMW,
			Source:     "cenace",
			FetchedAt:  fetchedAt,
		}
	}
	rows := make([]models.AvailabilityRow, 0, len(latest))
	for _, row := range latest {
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].UnitID != rows[j].UnitID {
			return rows[i].UnitID < rows[j].UnitID
		}
		return rows[i].Hour < rows[j].Hour
	})
	return rows
}

// FilterChanged drops rows whose stored value already matches within epsilon.
func FilterChanged(rows []models.AvailabilityRow, last map[string]models.LastAvailability, keyFn func(models.AvailabilityRow) string, epsilon float64) []models.AvailabilityRow {
	var changed []models.AvailabilityRow
	for _, row := range rows {
		prev, ok := last[keyFn(row)]
		if ok && ValuesEqual(prev.CapacityMW, row.CapacityMW, epsilon) {
			continue
		}
		changed = append(changed, row)
	}
	return changed
}

// ValuesEqual compares two nullable capacity figures within epsilon.
func ValuesEqual(a, b *float64, epsilon float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return math.Abs(*a-*b) <= epsilon
}
