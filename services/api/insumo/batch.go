package insumo

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// ErrPastDate rejects a submission whose target date is strictly before
// today in the unit's timezone. Raised before any field is parsed.
var ErrPastDate = errors.New("offers for past dates cannot be submitted")

// UnitInfo is the slice of unit metadata the pipeline depends on.
type UnitInfo struct {
	ID       string
	DualFuel bool
	Timezone string
}

// Submission is one all-or-nothing upsert batch for a unit/date/market tuple.
type Submission struct {
	Date    string `json:"date"`
	UnitID  string `json:"unit_id"`
	Market  string `json:"market"`
	Insumos []Row  `json:"insumos"`
}

// Variant returns the schema variant for the unit's fuel configuration.
func (u UnitInfo) Variant() Variant {
	if u.DualFuel {
		return DualFuel
	}
	return SingleFuel
}

// Markets is the closed set of trading-market codes that partition
// availability and insumo data.
var Markets = []string{"MDA", "MTR"}

// ValidMarket reports whether code is a known market.
func ValidMarket(code string) bool {
	for _, m := range Markets {
		if m == code {
			return true
		}
	}
	return false
}

// CheckDate parses a YYYY-MM-DD submission date and rejects dates strictly
// before today in the unit's timezone. Runs before any field is parsed.
func CheckDate(date, tz string) (time.Time, error) {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	if beforeToday(day, tz) {
		return time.Time{}, ErrPastDate
	}
	return day, nil
}

// HoursInDay returns how many grid rows the date has in the given timezone:
// 24 normally, 25 on the long DST day, 23 on the short one.
func HoursInDay(day time.Time, tz string) int {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return 24
	}
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1)
	return int(end.Sub(start) / time.Hour)
}

// Build runs the form pipeline up to (but not including) the upsert call:
// past-date guard, field decoding, per-row validation, batch assembly.
//
// If any row fails, the returned BatchErrors is non-empty and the Submission
// is nil; valid rows are never submitted alongside invalid ones. Hour groups
// where every field is empty are dropped before validation and appear in
// neither result. Rows are ordered by hour.
func Build(unit UnitInfo, date, market string, fields []Field) (*Submission, BatchErrors, error) {
	if _, err := CheckDate(date, unit.Timezone); err != nil {
		return nil, nil, err
	}

	variant := unit.Variant()
	groups := DecodeFields(fields)

	errs := make(BatchErrors)
	rows := make([]Row, 0, len(groups))
	for hourKey, group := range groups {
		if IsEmptyRow(group) {
			continue
		}
		row, bad := ValidateRow(hourKey, group, variant)
		if len(bad) > 0 {
			errs[hourKey] = bad
			continue
		}
		rows = append(rows, row)
	}

	if len(errs) > 0 {
		return nil, errs, nil
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].Hour < rows[j].Hour })
	return &Submission{Date: date, UnitID: unit.ID, Market: market, Insumos: rows}, nil, nil
}

// beforeToday reports whether day falls strictly before the current date in
// the given IANA timezone. An unknown timezone falls back to UTC.
func beforeToday(day time.Time, tz string) bool {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc = time.UTC
	}
	now := clock.Now().In(loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	target := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	return target.Before(today)
}
