package insumo

import (
	"sort"
	"strconv"
)

// Variant selects the schema applied to every row of one submission. It is
// chosen once, from the unit's fuel metadata, before any row is validated.
type Variant int

const (
	// SingleFuel drops price_ft2 and share_ft2 entirely: not coerced, not
	// required, never reported as invalid.
	SingleFuel Variant = iota
	// DualFuel requires price_ft2 and share_ft2 on every non-empty row.
	DualFuel
)

// Notes is the closed set of operational note codes an hourly offer may carry.
var Notes = []string{
	"DISPONIBLE",
	"OBLIGADO",
	"FALLA",
	"MANTENIMIENTO",
	"PRUEBA",
	"LIMITADO",
}

// Row is a validated, normalized hourly offer. Shares are stored as [0,1]
// fractions; nil means the operator left the field blank.
type Row struct {
	Hour     int      `json:"hour"`
	Min      *float64 `json:"min"`
	Max      *float64 `json:"max"`
	ShareFT1 *float64 `json:"share_ft1"`
	ShareFT2 *float64 `json:"share_ft2"`
	Note     string   `json:"note"`
	AGC      bool     `json:"agc"`
	PriceFT1 float64  `json:"price_ft1"`
	PriceFT2 *float64 `json:"price_ft2"`
}

// BatchErrors maps an hour key to the ordered list of field names that failed
// validation for that hour. Rebuilt from scratch on every submission attempt.
type BatchErrors map[string][]string

// IsEmptyRow reports whether every value in an hour group is the empty
// string, meaning the operator never touched that row.
func IsEmptyRow(fields map[string]string) bool {
	for _, v := range fields {
		if v != "" {
			return false
		}
	}
	return true
}

// ValidateRow validates one decoded hour group against the active schema
// variant. On success the second return is empty; otherwise it holds the
// ordered names of the failing fields and the row must be discarded.
func ValidateRow(hourKey string, fields map[string]string, variant Variant) (Row, []string) {
	var row Row
	var bad []string

	hour, err := strconv.Atoi(hourKey)
	if err != nil || hour < 1 || hour > 25 {
		bad = append(bad, "hour")
	} else {
		row.Hour = hour
	}

	for _, p := range properties {
		if variant == SingleFuel && (p == PropShareFT2 || p == PropPriceFT2) {
			continue
		}
		value := fields[string(p)]

		switch p {
		case PropMin:
			row.Min, bad = coerceRange(value, 0, 1000, "min", bad)
		case PropMax:
			row.Max, bad = coerceRange(value, 0, 1000, "max", bad)
		case PropShareFT1:
			row.ShareFT1, bad = coerceShare(value, "share_ft1", bad)
		case PropShareFT2:
			row.ShareFT2, bad = coerceShare(value, "share_ft2", bad)
			if row.ShareFT2 == nil && !fieldFailed(bad, "share_ft2") {
				bad = append(bad, "share_ft2") // required for dual fuel
			}
		case PropNote:
			if !validNote(value) {
				bad = append(bad, "note")
			} else {
				row.Note = value
			}
		case PropAGC:
			agc, ok := parseToggle(value)
			if !ok {
				bad = append(bad, "agc")
			} else {
				row.AGC = agc
			}
		case PropPriceFT1:
			price, failed := coerceRange(value, 0, 1000, "price_ft1", nil)
			switch {
			case failed != nil:
				bad = append(bad, failed...)
			case price == nil:
				bad = append(bad, "price_ft1") // always required
			default:
				row.PriceFT1 = *price
			}
		case PropPriceFT2:
			row.PriceFT2, bad = coerceRange(value, 0, 1000, "price_ft2", bad)
			if row.PriceFT2 == nil && !fieldFailed(bad, "price_ft2") {
				bad = append(bad, "price_ft2") // required for dual fuel
			}
		}
	}

	for _, name := range unknownFields(fields) {
		bad = append(bad, name)
	}

	return row, bad
}

// ValidateTyped applies the range and required-field rules to rows that
// arrived already typed (the JSON submission path). Shares here are the
// stored [0,1] fractions.
func ValidateTyped(rows []Row, variant Variant) BatchErrors {
	errs := make(BatchErrors)
	for _, r := range rows {
		var bad []string
		if r.Hour < 1 || r.Hour > 25 {
			bad = append(bad, "hour")
		}
		bad = checkPtrRange(r.Min, 0, 1000, "min", bad)
		bad = checkPtrRange(r.Max, 0, 1000, "max", bad)
		bad = checkPtrRange(r.ShareFT1, 0, 1, "share_ft1", bad)
		if r.PriceFT1 < 0 || r.PriceFT1 > 1000 {
			bad = append(bad, "price_ft1")
		}
		if !validNote(r.Note) {
			bad = append(bad, "note")
		}
		if variant == DualFuel {
			if r.ShareFT2 == nil {
				bad = append(bad, "share_ft2")
			} else {
				bad = checkPtrRange(r.ShareFT2, 0, 1, "share_ft2", bad)
			}
			if r.PriceFT2 == nil {
				bad = append(bad, "price_ft2")
			} else {
				bad = checkPtrRange(r.PriceFT2, 0, 1000, "price_ft2", bad)
			}
		}
		if len(bad) > 0 {
			errs[strconv.Itoa(r.Hour)] = bad
		}
	}
	return errs
}

// coerceRange parses a numeric form value into [lo,hi]. The empty string is
// the explicit "absent" sentinel, never an error.
func coerceRange(value string, lo, hi float64, name string, bad []string) (*float64, []string) {
	if value == "" {
		return nil, bad
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil || v < lo || v > hi {
		return nil, append(bad, name)
	}
	return &v, bad
}

// coerceShare parses a 0-100 percentage input and normalizes it to a [0,1]
// fraction. Absent stays absent, not zero.
func coerceShare(value, name string, bad []string) (*float64, []string) {
	pct, bad := coerceRange(value, 0, 100, name, bad)
	if pct == nil {
		return nil, bad
	}
	frac := *pct / 100
	return &frac, bad
}

func checkPtrRange(v *float64, lo, hi float64, name string, bad []string) []string {
	if v != nil && (*v < lo || *v > hi) {
		return append(bad, name)
	}
	return bad
}

func validNote(value string) bool {
	if value == "" {
		return true
	}
	for _, n := range Notes {
		if n == value {
			return true
		}
	}
	return false
}

// parseToggle maps the on/off form toggle to a boolean, defaulting to false
// when absent.
func parseToggle(value string) (bool, bool) {
	switch value {
	case "on", "true":
		return true, true
	case "", "off", "false":
		return false, true
	default:
		return false, false
	}
}

func fieldFailed(bad []string, name string) bool {
	for _, b := range bad {
		if b == name {
			return true
		}
	}
	return false
}

// unknownFields returns the property names in a group that are outside the
// closed set, sorted so error lists stay deterministic.
func unknownFields(fields map[string]string) []string {
	var out []string
	for name := range fields {
		if !KnownProperty(name) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
