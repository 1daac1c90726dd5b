/*

This file holds the published per-risk-class fee controller parameter sets
and the default simulation parameters. Configs are resolved and validated
once at startup, before any pool or controller state exists.

*/

package config

import (
	"errors"
	"fmt"

	"github.com/openamm/dfs/internal/types"
)

// ErrUnknownPoolClass signals a risk class name with no parameter set.
var ErrUnknownPoolClass = errors.New("unknown pool class")

// DefaultPoolClassConfigs are the published controller parameter sets.
// MaxFeeDelta is in hundredths of a basis point.
var DefaultPoolClassConfigs = map[types.PoolClass]types.PoolClassConfig{
	types.PoolClassStable: {
		Class:             types.PoolClassStable,
		Description:       "Stable pairs (USDC/USDT)",
		LinearSlope:       0.5,
		Alpha:             0.10,
		MaxFeeDelta:       50,
		Tolerance:         0.02,
		InitialFee:        0.0001,
		MinFee:            0.00005,
		MaxFee:            0.01,
		MaxAdjustmentRate: 100,
	},
	types.PoolClassStandard: {
		Class:             types.PoolClassStandard,
		Description:       "Standard pairs (ETH/USDC)",
		LinearSlope:       1.0,
		Alpha:             0.15,
		MaxFeeDelta:       100,
		Tolerance:         0.05,
		InitialFee:        0.0005,
		MinFee:            0.0001,
		MaxFee:            0.03,
		MaxAdjustmentRate: 100,
	},
	types.PoolClassVolatile: {
		Class:             types.PoolClassVolatile,
		Description:       "Volatile pairs (MEME/ETH)",
		LinearSlope:       2.0,
		Alpha:             0.20,
		MaxFeeDelta:       200,
		Tolerance:         0.05,
		InitialFee:        0.003,
		MinFee:            0.0005,
		MaxFee:            0.05,
		MaxAdjustmentRate: 100,
	},
}

// ResolvePoolClass returns the validated parameter set for the named risk
// class. Unknown names and malformed parameter sets fail here, before any
// simulation state is constructed.
func ResolvePoolClass(name string) (types.PoolClassConfig, error) {
	cfg, ok := DefaultPoolClassConfigs[types.PoolClass(name)]
	if !ok {
		return types.PoolClassConfig{}, fmt.Errorf("%w: %q", ErrUnknownPoolClass, name)
	}
	if err := cfg.Validate(); err != nil {
		return types.PoolClassConfig{}, fmt.Errorf("pool class %q: %w", name, err)
	}
	return cfg, nil
}

// DefaultSimulationConfig returns the baseline simulation parameters: one
// simulated year of daily steps across 100 market instances, an ETH-like
// reference asset at $2000 with 80% annualized volatility, and a $1M pool.
func DefaultSimulationConfig() types.SimulationConfig {
	return types.SimulationConfig{
		Markets:         100,
		Days:            252,
		Horizon:         1.0,
		InitialPrice:    2000,
		Drift:           0.05,
		Volatility:      0.8,
		InitialReserveX: 500,
		InitialReserveY: 1_000_000,
		StaticFee:       0.0005,
		CEXFee:          0.001,
		Seed:            1,
	}
}
