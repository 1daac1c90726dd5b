/*

This file contains the read-side queries the dashboard API serves: recent
runs, individual run lookups, and cross-run aggregate statistics.

*/

package state

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"

	"github.com/openamm/dfs/internal/types"
)

// scanRunSnapshot reads one run_snapshots row. Daily detail is included
// only when withDaily is set; list queries skip it to keep payloads small.
func scanRunSnapshot(row *sql.Row, withDaily bool) (types.RunSnapshot, error) {
	var (
		snapshot    types.RunSnapshot
		configJSON  []byte
		summaryJSON []byte
		dailyJSON   []byte
	)

	dest := []any{
		&snapshot.SnapshotID, &snapshot.RunNumber, &snapshot.RunID, &snapshot.Timestamp,
		&snapshot.PoolClass, &configJSON,
		&snapshot.InitialTVLQuote, &snapshot.InitialFee,
		&summaryJSON, pq.Array(&snapshot.MeanFeeSeries),
	}
	if withDaily {
		dest = append(dest, &dailyJSON)
	}

	if err := row.Scan(dest...); err != nil {
		return types.RunSnapshot{}, err
	}

	if err := json.Unmarshal(configJSON, &snapshot.Config); err != nil {
		return types.RunSnapshot{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := json.Unmarshal(summaryJSON, &snapshot.Summary); err != nil {
		return types.RunSnapshot{}, fmt.Errorf("failed to unmarshal summary: %w", err)
	}
	if withDaily && len(dailyJSON) > 0 {
		if err := json.Unmarshal(dailyJSON, &snapshot.Daily); err != nil {
			return types.RunSnapshot{}, fmt.Errorf("failed to unmarshal daily snapshots: %w", err)
		}
	}
	return snapshot, nil
}

const runColumns = `snapshot_id, run_number, run_id, snapshot_timestamp,
	pool_class, config, initial_tvl_quote, initial_fee, summary, mean_fee_series`

// GetRecentRuns returns the most recent runs, newest first, without daily
// detail.
func GetRecentRuns(limit int) ([]types.RunSnapshot, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	if limit <= 0 {
		limit = 10
	}

	query := `SELECT ` + runColumns + `
		FROM run_snapshots
		ORDER BY snapshot_timestamp DESC
		LIMIT $1;`

	rows, err := DB.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent runs: %w", err)
	}
	defer rows.Close()

	var snapshots []types.RunSnapshot
	for rows.Next() {
		var (
			snapshot    types.RunSnapshot
			configJSON  []byte
			summaryJSON []byte
		)
		err := rows.Scan(
			&snapshot.SnapshotID, &snapshot.RunNumber, &snapshot.RunID, &snapshot.Timestamp,
			&snapshot.PoolClass, &configJSON,
			&snapshot.InitialTVLQuote, &snapshot.InitialFee,
			&summaryJSON, pq.Array(&snapshot.MeanFeeSeries),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run snapshot: %w", err)
		}
		if err := json.Unmarshal(configJSON, &snapshot.Config); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
		if err := json.Unmarshal(summaryJSON, &snapshot.Summary); err != nil {
			return nil, fmt.Errorf("failed to unmarshal summary: %w", err)
		}
		snapshots = append(snapshots, snapshot)
	}
	return snapshots, rows.Err()
}

// GetRunByID returns a single run with full daily detail.
func GetRunByID(snapshotID int64) (types.RunSnapshot, error) {
	if DB == nil {
		return types.RunSnapshot{}, fmt.Errorf("database not initialized")
	}

	query := `SELECT ` + runColumns + `, daily
		FROM run_snapshots
		WHERE snapshot_id = $1;`

	return scanRunSnapshot(DB.QueryRow(query, snapshotID), true)
}

// GetLatestRun returns the most recent run with full daily detail.
func GetLatestRun() (types.RunSnapshot, error) {
	if DB == nil {
		return types.RunSnapshot{}, fmt.Errorf("database not initialized")
	}

	query := `SELECT ` + runColumns + `, daily
		FROM run_snapshots
		ORDER BY snapshot_timestamp DESC
		LIMIT 1;`

	return scanRunSnapshot(DB.QueryRow(query), true)
}

// RunStats aggregates outcomes across stored runs of one pool class.
type RunStats struct {
	PoolClass       string  `json:"pool_class"`
	Runs            int     `json:"runs"`
	AvgMeanFee      float64 `json:"avg_mean_fee"`
	AvgTerminalFee  float64 `json:"avg_terminal_fee"`
	AvgTotalVolume  float64 `json:"avg_total_volume"`
	AvgFeesEarned   float64 `json:"avg_fees_earned"`
	AvgFinalTVL     float64 `json:"avg_final_tvl"`
	LatestRunNumber int     `json:"latest_run_number"`
}

// GetRunStats returns per-class aggregates across all stored runs.
func GetRunStats() ([]RunStats, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	query := `
		SELECT
			pool_class,
			COUNT(*),
			COALESCE(AVG((summary->>'mean_fee')::DOUBLE PRECISION), 0),
			COALESCE(AVG((summary->>'terminal_fee')::DOUBLE PRECISION), 0),
			COALESCE(AVG((summary->>'total_volume_quote')::DOUBLE PRECISION), 0),
			COALESCE(AVG((summary->>'total_fees_earned')::DOUBLE PRECISION), 0),
			COALESCE(AVG((summary->>'final_tvl_quote')::DOUBLE PRECISION), 0),
			COALESCE(MAX(run_number), 0)
		FROM run_snapshots
		GROUP BY pool_class
		ORDER BY pool_class;`

	rows, err := DB.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query run stats: %w", err)
	}
	defer rows.Close()

	var stats []RunStats
	for rows.Next() {
		var s RunStats
		err := rows.Scan(
			&s.PoolClass, &s.Runs,
			&s.AvgMeanFee, &s.AvgTerminalFee,
			&s.AvgTotalVolume, &s.AvgFeesEarned, &s.AvgFinalTVL,
			&s.LatestRunNumber,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run stats: %w", err)
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}
