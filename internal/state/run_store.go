// ./internal/state/run_store.go
package state

import (
	"encoding/json"
	"fmt"

	"github.com/lib/pq" // PostgreSQL driver for array support
	"github.com/rs/zerolog/log"

	"github.com/openamm/dfs/internal/types"
)

// SaveRunSnapshot saves a complete run snapshot to the database.
func SaveRunSnapshot(snapshot types.RunSnapshot) (int64, error) {
	if DB == nil {
		return 0, fmt.Errorf("database not initialized")
	}

	configJSON, err := json.Marshal(snapshot.Config)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config: %w", err)
	}

	summaryJSON, err := json.Marshal(snapshot.Summary)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal summary: %w", err)
	}

	dailyJSON, err := json.Marshal(snapshot.Daily)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal daily snapshots: %w", err)
	}

	query := `
		INSERT INTO run_snapshots (
			run_number, run_id, snapshot_timestamp, pool_class,
			config,
			initial_tvl_quote, initial_fee,
			summary, mean_fee_series, daily
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING snapshot_id;
	`

	var snapshotID int64
	err = DB.QueryRow(
		query,
		snapshot.RunNumber, snapshot.RunID, snapshot.Timestamp, snapshot.PoolClass,
		configJSON,
		snapshot.InitialTVLQuote, snapshot.InitialFee,
		summaryJSON, pq.Array(snapshot.MeanFeeSeries), dailyJSON,
	).Scan(&snapshotID)

	if err != nil {
		return 0, fmt.Errorf("failed to save run snapshot: %w", err)
	}

	log.Info().
		Int64("snapshot_id", snapshotID).
		Int("run_number", snapshot.RunNumber).
		Str("pool_class", string(snapshot.PoolClass)).
		Float64("terminal_fee", snapshot.Summary.TerminalFee).
		Msg("Run snapshot saved to database")

	return snapshotID, nil
}
