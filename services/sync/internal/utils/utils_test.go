package utils

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridworks-mx/availability-sync/internal/models"
)

func fptr(v float64) *float64 { return &v }

func TestBuildSIVRows(t *testing.T) {
	day := time.Date(2026, 9, 16, 0, 0, 0, 0, time.UTC)
	fetchedAt := time.Now().UTC()

	resp := &models.SIVResponse{
		Units: []models.SIVUnit{
			{UnitID: "U-001", Hours: []models.SIVHour{
				{Hour: 1, CapacityMW: fptr(120)},
				{Hour: 2, CapacityMW: nil},
				{Hour: 26, CapacityMW: fptr(99)},
			}},
		},
	}

	rows := BuildSIVRows(resp, day, "MDA", fetchedAt)

	require.Len(t, rows, 2)
	assert.Equal(t, "U-001", rows[0].UnitID)
	assert.Equal(t, 1, rows[0].Hour)
	assert.Equal(t, "siv", rows[0].Source)
	assert.Nil(t, rows[1].CapacityMW)
}

func TestBuildCENACERowsKeepsLastDuplicate(t *testing.T) {
	day := time.Date(2026, 9, 16, 0, 0, 0, 0, time.UTC)

	resp := &models.CENACEResponse{
		Records: []models.CENACERecord{
			{UnitKey: "U-001", Hour: 1, CapacityMW: fptr(100)},
			{UnitKey: "U-001", Hour: 1, CapacityMW: fptr(110)},
			{UnitKey: "U-002", Hour: 1, CapacityMW: fptr(50)},
		},
	}

	rows := BuildCENACERows(resp, day, "MTR", time.Now().UTC())

	require.Len(t, rows, 2)
	assert.Equal(t, "U-001", rows[0].UnitID)
	assert.Equal(t, 110.0, *rows[0].CapacityMW)
	assert.Equal(t, "U-002", rows[1].UnitID)
	assert.Equal(t, "cenace", rows[1].Source)
}

func TestFilterChanged(t *testing.T) {
	rows := []models.AvailabilityRow{
		{UnitID: "U-001", Hour: 1, CapacityMW: fptr(100)},
		{UnitID: "U-001", Hour: 2, CapacityMW: fptr(100.005)},
		{UnitID: "U-001", Hour: 3, CapacityMW: fptr(101)},
		{UnitID: "U-001", Hour: 4, CapacityMW: nil},
	}
	last := map[string]models.LastAvailability{
		"U-001|1": {CapacityMW: fptr(100)},
		"U-001|2": {CapacityMW: fptr(100)},
		"U-001|3": {CapacityMW: fptr(100)},
		"U-001|4": {CapacityMW: fptr(100)},
	}

	keyFn := func(r models.AvailabilityRow) string {
		return fmt.Sprintf("%s|%d", r.UnitID, r.Hour)
	}
	changed := FilterChanged(rows, last, keyFn, 0.01)

	require.Len(t, changed, 2)
	assert.Equal(t, 3, changed[0].Hour)
	assert.Equal(t, 4, changed[1].Hour)
}

func TestValuesEqual(t *testing.T) {
	assert.True(t, ValuesEqual(fptr(1), fptr(1.005), 0.01))
	assert.False(t, ValuesEqual(fptr(1), fptr(1.02), 0.01))
	assert.True(t, ValuesEqual(nil, nil, 0.01))
	assert.False(t, ValuesEqual(nil, fptr(0), 0.01))
	assert.False(t, ValuesEqual(fptr(0), nil, 0.01))
}
