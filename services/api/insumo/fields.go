package insumo

import (
	"strconv"
	"strings"
)

// Property names the editable controls of one grid row. The set is closed;
// anything else arriving in a form is rejected by the validator, not here.
type Property string

const (
	PropMax      Property = "max"
	PropMin      Property = "min"
	PropShareFT1 Property = "share_ft1"
	PropShareFT2 Property = "share_ft2"
	PropNote     Property = "note"
	PropAGC      Property = "agc"
	PropPriceFT1 Property = "price_ft1"
	PropPriceFT2 Property = "price_ft2"
)

// properties lists every known property in validation order. The order is
// what makes per-row error lists deterministic.
var properties = []Property{
	PropMin, PropMax,
	PropShareFT1, PropShareFT2,
	PropNote, PropAGC,
	PropPriceFT1, PropPriceFT2,
}

// KnownProperty reports whether name is one of the closed property set.
func KnownProperty(name string) bool {
	for _, p := range properties {
		if string(p) == name {
			return true
		}
	}
	return false
}

// Field is one raw (name, value) pair collected from a submitted grid form.
// Names follow the "<hour>-<property>" wire contract.
type Field struct {
	Name  string
	Value string
}

// FieldName builds the wire name for an hour/property pair, e.g. "14-price_ft1".
func FieldName(hour int, p Property) string {
	return strconv.Itoa(hour) + "-" + string(p)
}

// DecodeFields regroups raw form pairs into per-hour property maps. The name
// is split on the first "-"; names without a dash are grouped under their
// full text so the validator can reject them. Purely structural: values are
// not coerced and unknown property names pass through unchanged.
func DecodeFields(fields []Field) map[string]map[string]string {
	rows := make(map[string]map[string]string)
	for _, f := range fields {
		hour, prop, found := strings.Cut(f.Name, "-")
		if !found {
			hour, prop = f.Name, ""
		}
		if rows[hour] == nil {
			rows[hour] = make(map[string]string)
		}
		rows[hour][prop] = f.Value
	}
	return rows
}
