package insumo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldName(t *testing.T) {
	assert.Equal(t, "14-price_ft1", FieldName(14, PropPriceFT1))
	assert.Equal(t, "1-min", FieldName(1, PropMin))
	assert.Equal(t, "25-agc", FieldName(25, PropAGC))
}

func TestDecodeFieldsGroupsByHour(t *testing.T) {
	fields := []Field{
		{Name: "1-min", Value: "10"},
		{Name: "1-max", Value: "100"},
		{Name: "2-min", Value: "20"},
		{Name: "14-price_ft1", Value: "55.5"},
	}

	rows := DecodeFields(fields)

	require.Len(t, rows, 3)
	assert.Equal(t, map[string]string{"min": "10", "max": "100"}, rows["1"])
	assert.Equal(t, map[string]string{"min": "20"}, rows["2"])
	assert.Equal(t, map[string]string{"price_ft1": "55.5"}, rows["14"])
}

func TestDecodeFieldsSplitsOnFirstDash(t *testing.T) {
	rows := DecodeFields([]Field{{Name: "3-price-ft1", Value: "x"}})

	require.Contains(t, rows, "3")
	assert.Equal(t, "x", rows["3"]["price-ft1"])
}

func TestDecodeFieldsNameWithoutDash(t *testing.T) {
	rows := DecodeFields([]Field{{Name: "bogus", Value: "1"}})

	require.Contains(t, rows, "bogus")
	assert.Equal(t, "1", rows["bogus"][""])
}

func TestDecodeFieldsPreservesValuesUncoerced(t *testing.T) {
	rows := DecodeFields([]Field{
		{Name: "5-min", Value: "not-a-number"},
		{Name: "5-mystery", Value: "kept"},
	})

	assert.Equal(t, "not-a-number", rows["5"]["min"])
	assert.Equal(t, "kept", rows["5"]["mystery"])
}

func TestKnownProperty(t *testing.T) {
	for _, p := range properties {
		assert.True(t, KnownProperty(string(p)), string(p))
	}
	assert.False(t, KnownProperty("mystery"))
	assert.False(t, KnownProperty(""))
}
