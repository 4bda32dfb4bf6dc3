package insumo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fptr(v float64) *float64 { return &v }

func TestValidateRowSingleFuelValid(t *testing.T) {
	fields := map[string]string{
		"min":       "10",
		"max":       "150",
		"share_ft1": "100",
		"note":      "DISPONIBLE",
		"agc":       "on",
		"price_ft1": "42.5",
	}

	row, bad := ValidateRow("14", fields, SingleFuel)

	require.Empty(t, bad)
	assert.Equal(t, 14, row.Hour)
	assert.Equal(t, fptr(10.0), row.Min)
	assert.Equal(t, fptr(150.0), row.Max)
	assert.Equal(t, fptr(1.0), row.ShareFT1)
	assert.Equal(t, "DISPONIBLE", row.Note)
	assert.True(t, row.AGC)
	assert.Equal(t, 42.5, row.PriceFT1)
	assert.Nil(t, row.ShareFT2)
	assert.Nil(t, row.PriceFT2)
}

func TestValidateRowShareNormalization(t *testing.T) {
	row, bad := ValidateRow("1", map[string]string{
		"share_ft1": "37.5",
		"price_ft1": "1",
	}, SingleFuel)

	require.Empty(t, bad)
	assert.InDelta(t, 0.375, *row.ShareFT1, 1e-9)
}

func TestValidateRowEmptyNumericIsAbsentNotZero(t *testing.T) {
	row, bad := ValidateRow("1", map[string]string{
		"min":       "",
		"max":       "",
		"share_ft1": "",
		"price_ft1": "5",
	}, SingleFuel)

	require.Empty(t, bad)
	assert.Nil(t, row.Min)
	assert.Nil(t, row.Max)
	assert.Nil(t, row.ShareFT1)
}

func TestValidateRowPriceFT1AlwaysRequired(t *testing.T) {
	_, bad := ValidateRow("1", map[string]string{"min": "10"}, SingleFuel)

	assert.Contains(t, bad, "price_ft1")
}

func TestValidateRowDualFuelRequirements(t *testing.T) {
	t.Run("missing second fuel fields fail", func(t *testing.T) {
		_, bad := ValidateRow("1", map[string]string{"price_ft1": "5"}, DualFuel)

		assert.Contains(t, bad, "share_ft2")
		assert.Contains(t, bad, "price_ft2")
	})

	t.Run("complete dual fuel row passes", func(t *testing.T) {
		row, bad := ValidateRow("1", map[string]string{
			"price_ft1": "5",
			"price_ft2": "7",
			"share_ft2": "40",
		}, DualFuel)

		require.Empty(t, bad)
		assert.Equal(t, fptr(7.0), row.PriceFT2)
		assert.InDelta(t, 0.4, *row.ShareFT2, 1e-9)
	})
}

func TestValidateRowSingleFuelIgnoresSecondFuel(t *testing.T) {
	// Out-of-range values in the dropped fields must not surface as errors.
	row, bad := ValidateRow("1", map[string]string{
		"price_ft1": "5",
		"price_ft2": "99999",
		"share_ft2": "-4",
	}, SingleFuel)

	assert.Empty(t, bad)
	assert.Nil(t, row.PriceFT2)
	assert.Nil(t, row.ShareFT2)
}

func TestValidateRowErrorOrdering(t *testing.T) {
	// hour first, then schema order, then unknown names sorted last.
	_, bad := ValidateRow("99", map[string]string{
		"min":       "abc",
		"max":       "2000",
		"share_ft1": "150",
		"note":      "WRONG",
		"agc":       "maybe",
		"price_ft1": "",
		"zz_extra":  "1",
		"aa_extra":  "1",
	}, SingleFuel)

	assert.Equal(t, []string{
		"hour", "min", "max", "share_ft1", "note", "agc", "price_ft1",
		"aa_extra", "zz_extra",
	}, bad)
}

func TestValidateRowHourBounds(t *testing.T) {
	cases := map[string]bool{
		"0":   false,
		"1":   true,
		"25":  true,
		"26":  false,
		"-1":  false,
		"abc": false,
	}
	for key, ok := range cases {
		_, bad := ValidateRow(key, map[string]string{"price_ft1": "1"}, SingleFuel)
		if ok {
			assert.NotContains(t, bad, "hour", key)
		} else {
			assert.Contains(t, bad, "hour", key)
		}
	}
}

func TestValidateRowNotes(t *testing.T) {
	for _, note := range Notes {
		_, bad := ValidateRow("1", map[string]string{"note": note, "price_ft1": "1"}, SingleFuel)
		assert.Empty(t, bad, note)
	}

	_, bad := ValidateRow("1", map[string]string{"note": "INVENTED", "price_ft1": "1"}, SingleFuel)
	assert.Contains(t, bad, "note")
}

func TestParseToggle(t *testing.T) {
	cases := []struct {
		in    string
		value bool
		ok    bool
	}{
		{"on", true, true},
		{"true", true, true},
		{"", false, true},
		{"off", false, true},
		{"false", false, true},
		{"yes", false, false},
		{"1", false, false},
	}
	for _, tc := range cases {
		value, ok := parseToggle(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		assert.Equal(t, tc.value, value, tc.in)
	}
}

func TestIsEmptyRow(t *testing.T) {
	assert.True(t, IsEmptyRow(map[string]string{"min": "", "max": ""}))
	assert.True(t, IsEmptyRow(map[string]string{}))
	assert.False(t, IsEmptyRow(map[string]string{"min": "", "max": "5"}))
}

func TestValidateTyped(t *testing.T) {
	t.Run("valid rows produce no errors", func(t *testing.T) {
		errs := ValidateTyped([]Row{
			{Hour: 1, PriceFT1: 10, ShareFT1: fptr(0.5)},
			{Hour: 2, PriceFT1: 20, Note: "FALLA"},
		}, SingleFuel)

		assert.Empty(t, errs)
	})

	t.Run("typed shares use the fraction range", func(t *testing.T) {
		errs := ValidateTyped([]Row{
			{Hour: 1, PriceFT1: 10, ShareFT1: fptr(37.5)},
		}, SingleFuel)

		require.Contains(t, errs, "1")
		assert.Contains(t, errs["1"], "share_ft1")
	})

	t.Run("dual fuel requirements apply", func(t *testing.T) {
		errs := ValidateTyped([]Row{{Hour: 1, PriceFT1: 10}}, DualFuel)

		require.Contains(t, errs, "1")
		assert.Contains(t, errs["1"], "share_ft2")
		assert.Contains(t, errs["1"], "price_ft2")
	})

	t.Run("out of range values", func(t *testing.T) {
		errs := ValidateTyped([]Row{
			{Hour: 26, PriceFT1: -1, Min: fptr(-5), Max: fptr(2000), Note: "NOPE"},
		}, SingleFuel)

		require.Contains(t, errs, "26")
		assert.Equal(t, []string{"hour", "min", "max", "price_ft1", "note"}, errs["26"])
	})
}
