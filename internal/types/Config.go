/*

This file contains the configurable parameter sets for the dynamic fee
simulator: the per-risk-class fee controller parameters and the global
simulation parameters.

*/

package types

import (
	"errors"
	"fmt"
)

// PoolClass identifies a pool risk class (stable, standard, volatile).
type PoolClass string

const (
	PoolClassStable   PoolClass = "stable"
	PoolClassStandard PoolClass = "standard"
	PoolClassVolatile PoolClass = "volatile"
)

// PoolClassConfig holds the dynamic fee controller parameters for one pool
// risk class. A config is resolved once at startup and never mutated; every
// market instance of the class shares the same config.
type PoolClassConfig struct {
	Class       PoolClass `json:"class"`
	Description string    `json:"description,omitempty"`

	// LinearSlope scales how strongly a volume/TVL deviation from target
	// translates into a relative fee adjustment.
	LinearSlope float64 `json:"linear_slope"`

	// Alpha is the EMA smoothing factor for the target ratio, in (0, 1].
	Alpha float64 `json:"alpha"`

	// MaxFeeDelta is the per-period step bound, expressed in hundredths of a
	// basis point (1,000,000 units = 1.0 in decimal fee terms).
	MaxFeeDelta int `json:"max_fee_delta"`

	// Tolerance is the fractional half-width of the no-adjustment band
	// around the target ratio.
	Tolerance float64 `json:"tolerance"`

	InitialFee float64 `json:"initial_fee"`
	MinFee     float64 `json:"min_fee"`
	MaxFee     float64 `json:"max_fee"`

	// MaxAdjustmentRate caps the relative fee change computed from the
	// deviation before the step bound is applied.
	MaxAdjustmentRate float64 `json:"max_adjustment_rate"`
}

// Validation errors for PoolClassConfig.
var (
	ErrInvalidAlpha     = errors.New("alpha must be in (0, 1]")
	ErrInvalidFeeBounds = errors.New("fee bounds are invalid")
	ErrInvalidTolerance = errors.New("tolerance must be positive")
	ErrInvalidSlope     = errors.New("linear slope must be positive")
	ErrInvalidFeeDelta  = errors.New("max fee delta must be positive")
)

// Validate checks the config for parameter combinations that would make the
// fee controller ill-defined. It is called at configuration-resolution time,
// before any pool or controller state is constructed.
func (c PoolClassConfig) Validate() error {
	if c.Alpha <= 0 || c.Alpha > 1 {
		return fmt.Errorf("%w: got %f", ErrInvalidAlpha, c.Alpha)
	}
	if c.MinFee < 0 || c.MaxFee <= 0 || c.MinFee > c.MaxFee {
		return fmt.Errorf("%w: min=%f max=%f", ErrInvalidFeeBounds, c.MinFee, c.MaxFee)
	}
	if c.InitialFee < c.MinFee || c.InitialFee > c.MaxFee {
		return fmt.Errorf("%w: initial fee %f outside [%f, %f]", ErrInvalidFeeBounds, c.InitialFee, c.MinFee, c.MaxFee)
	}
	if c.Tolerance <= 0 {
		return fmt.Errorf("%w: got %f", ErrInvalidTolerance, c.Tolerance)
	}
	if c.LinearSlope <= 0 {
		return fmt.Errorf("%w: got %f", ErrInvalidSlope, c.LinearSlope)
	}
	if c.MaxFeeDelta <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidFeeDelta, c.MaxFeeDelta)
	}
	if c.MaxAdjustmentRate <= 0 {
		return fmt.Errorf("%w: max adjustment rate %f", ErrInvalidSlope, c.MaxAdjustmentRate)
	}
	return nil
}

// SimulationConfig holds the global parameters for one simulation run.
type SimulationConfig struct {
	// Markets is the number of independent market instances simulated per
	// pool class (statistical replicates sharing one PoolClassConfig).
	Markets int `json:"markets"`

	// Days is the number of simulated trading days.
	Days int `json:"days"`

	// Horizon is the time horizon in years covered by Days.
	Horizon float64 `json:"horizon"`

	// InitialPrice is the starting reference price (quote per asset).
	InitialPrice float64 `json:"initial_price"`

	// Drift and Volatility parameterize the synthetic geometric Brownian
	// price path (annualized).
	Drift      float64 `json:"drift"`
	Volatility float64 `json:"volatility"`

	// InitialReserveX is the asset-side reserve, InitialReserveY the
	// quote-side reserve of each pool at day zero.
	InitialReserveX float64 `json:"initial_reserve_x"`
	InitialReserveY float64 `json:"initial_reserve_y"`

	// StaticFee is the baseline fee used by the static comparison pools.
	StaticFee float64 `json:"static_fee"`

	// CEXFee is the taker fee charged on the external reference venue,
	// used by the arbitrage calculator.
	CEXFee float64 `json:"cex_fee"`

	// Seed is the base seed for all per-agent generators; runs with equal
	// seeds and configs produce identical results.
	Seed int64 `json:"seed"`
}

// Dt returns the simulated time step in years.
func (c SimulationConfig) Dt() float64 {
	if c.Days == 0 {
		return 0
	}
	return c.Horizon / float64(c.Days)
}

// InitialTVL returns the pool value in quote terms at day zero.
func (c SimulationConfig) InitialTVL() float64 {
	return c.InitialReserveY + c.InitialReserveX*c.InitialPrice
}

// Validate checks the simulation config for values that would make a run
// meaningless.
func (c SimulationConfig) Validate() error {
	if c.Markets <= 0 {
		return fmt.Errorf("markets must be positive, got %d", c.Markets)
	}
	if c.Days <= 0 {
		return fmt.Errorf("days must be positive, got %d", c.Days)
	}
	if c.InitialPrice <= 0 {
		return fmt.Errorf("initial price must be positive, got %f", c.InitialPrice)
	}
	if c.InitialReserveX <= 0 || c.InitialReserveY <= 0 {
		return fmt.Errorf("initial reserves must be positive, got x=%f y=%f", c.InitialReserveX, c.InitialReserveY)
	}
	if c.Volatility < 0 {
		return fmt.Errorf("volatility cannot be negative, got %f", c.Volatility)
	}
	return nil
}
