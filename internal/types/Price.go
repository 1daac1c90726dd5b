package types

import "time"

// PriceData is a single observation in a reference price series.
type PriceData struct {
	Timestamp time.Time `json:"timestamp"`
	Price     float64   `json:"price"`
}

// ReserveSample is an on-chain style pool reserve snapshot, already converted
// from integer base units to display units.
type ReserveSample struct {
	Timestamp time.Time `json:"timestamp"`
	ReserveX  float64   `json:"reserve_x"`
	ReserveY  float64   `json:"reserve_y"`
}
