/*

This file contains the snapshot types persisted per simulation run.
A RunSnapshot captures one full run (N days across M market instances of a
single pool class); DailySnapshot rows carry the per-day aggregates the
analytics queries and the dashboard work from.

*/

package types

import "time"

// DailySnapshot aggregates one simulated day across a single market instance.
type DailySnapshot struct {
	Day            int     `json:"day"`
	Market         int     `json:"market"`
	ReferencePrice float64 `json:"reference_price"`
	SpotPrice      float64 `json:"spot_price"`
	Fee            float64 `json:"fee"`
	TargetRatio    float64 `json:"target_ratio"`
	VolumeQuote    float64 `json:"volume_quote"`
	TVLQuote       float64 `json:"tvl_quote"`
	FeesEarned     float64 `json:"fees_earned"`
	ArbProfit      float64 `json:"arb_profit"`
	TradesExecuted int     `json:"trades_executed"`
}

// RunSummary holds the aggregate statistics computed at the end of a run.
type RunSummary struct {
	MeanFee           float64 `json:"mean_fee"`
	TerminalFee       float64 `json:"terminal_fee"`
	MinFee            float64 `json:"min_fee"`
	MaxFee            float64 `json:"max_fee"`
	TotalVolumeQuote  float64 `json:"total_volume_quote"`
	TotalFeesEarned   float64 `json:"total_fees_earned"`
	TotalArbProfit    float64 `json:"total_arb_profit"`
	FinalTVLQuote     float64 `json:"final_tvl_quote"`
	PriceVolatility   float64 `json:"price_volatility"`
	DaysOutOfBand     int     `json:"days_out_of_band"`
	SnapshotsRecorded int     `json:"snapshots_recorded"`
}

// RunSnapshot captures a complete simulation run for persistence.
type RunSnapshot struct {
	SnapshotID int64     `json:"snapshot_id,omitempty"`
	RunNumber  int       `json:"run_number"`
	RunID      string    `json:"run_id"` // UUID for tracing logs across a run
	Timestamp  time.Time `json:"timestamp"`

	PoolClass PoolClass        `json:"pool_class"`
	Config    SimulationConfig `json:"config"`

	// Pre-run state
	InitialTVLQuote float64 `json:"initial_tvl_quote"`
	InitialFee      float64 `json:"initial_fee"`

	// Outcome
	Summary RunSummary `json:"summary"`

	// MeanFeeSeries is the per-day fee averaged across market instances,
	// stored as a flat array for cheap charting queries.
	MeanFeeSeries []float64 `json:"mean_fee_series"`

	Daily []DailySnapshot `json:"daily,omitempty"`
}
