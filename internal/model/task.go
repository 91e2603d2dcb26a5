package model

// TaskEntry is one row of the point ledger.
type TaskEntry struct {
	ID     int64   `json:"id"`
	Date   string  `json:"date"`
	Name   string  `json:"name"`
	Points float64 `json:"points"`
	Note   string  `json:"note"`
}

// PredefinedTask is a catalog entry with a fixed point value.
type PredefinedTask struct {
	Name   string  `json:"name"`
	Points float64 `json:"points"`
}
