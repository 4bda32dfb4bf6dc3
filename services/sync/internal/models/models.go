package models

import "time"

// SIVResponse models the JSON payload returned by the SIV availability feed.
type SIVResponse struct {
	Day    string    `json:"dia"`
	Market string    `json:"mercado"`
	Units  []SIVUnit `json:"unidades"`
}

// SIVUnit is one unit's hourly series in the SIV feed.
type SIVUnit struct {
	UnitID string    `json:"unidad"`
	Hours  []SIVHour `json:"horas"`
}

// SIVHour is a single hourly capacity figure; null means no figure published.
type SIVHour struct {
	Hour       int      `json:"hora"`
	CapacityMW *float64 `json:"mw"`
}

// CENACEResponse models the CENACE program feed, which publishes a flat list
// of hourly records rather than per-unit series.
type CENACEResponse struct {
	Date    string         `json:"fecha"`
	Market  string         `json:"mercado"`
	Records []CENACERecord `json:"resultados"`
}

// CENACERecord is one unit/hour entry of the CENACE feed.
type CENACERecord struct {
	UnitKey    string   `json:"clave"`
	Hour       int      `json:"hora"`
	CapacityMW *float64 `json:"potencia_mw"`
}

// AvailabilityRow is a normalized per-hour capacity figure ready for upsert.
type AvailabilityRow struct {
	UnitID     string
	Market     string
	Day        time.Time
	Hour       int
	CapacityMW *float64
	Source     string
	FetchedAt  time.Time
}

// LastAvailability is the most recent stored figure for change comparison.
type LastAvailability struct {
	CapacityMW *float64
	FetchedAt  time.Time
}
