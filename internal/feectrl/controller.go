/*

This file implements the per-market dynamic fee controller: a bounded,
escalating feedback loop that moves the pool fee toward a volume/TVL
activity target. One State per market instance; the class-level knobs live
in types.PoolClassConfig and are shared across instances.

*/

package feectrl

import (
	"math"

	"github.com/openamm/dfs/internal/types"
)

// Direction classifies the current volume/TVL ratio against the tolerance
// band around the target ratio.
type Direction int

const (
	Below Direction = iota - 1
	Within
	Above
)

func (d Direction) String() string {
	switch d {
	case Below:
		return "below"
	case Above:
		return "above"
	default:
		return "within"
	}
}

// State holds the mutable per-market controller state. The class config is
// read-only and shared; everything here is exclusively owned by one market
// instance.
type State struct {
	CurrentFee         float64   `json:"current_fee"`
	TargetRatio        float64   `json:"target_ratio"`
	ConsecutiveCounter int       `json:"consecutive_counter"`
	LastDirection      Direction `json:"last_direction"`
}

// NewState seeds a controller from the class config: fee at the class
// initial fee, target at the class tolerance-free baseline.
func NewState(cfg types.PoolClassConfig, initialTargetRatio float64) State {
	return State{
		CurrentFee:  cfg.InitialFee,
		TargetRatio: initialTargetRatio,
	}
}

// classify places ratio against the band [target*(1-tol), target*(1+tol)].
func classify(ratio, target, tolerance float64) Direction {
	switch {
	case ratio < target*(1-tolerance):
		return Below
	case ratio > target*(1+tolerance):
		return Above
	default:
		return Within
	}
}

// Step advances the controller by one period given the period's traded
// volume and TVL, both in quote terms. A non-positive TVL skips the period
// entirely, leaving the state untouched.
//
// The transition order is load-bearing: the fee update reads the target
// ratio before the EMA moves it, and the counter is updated before the step
// bound that consumes it.
func (s *State) Step(cfg types.PoolClassConfig, volume, tvl float64) {
	if tvl <= 0 {
		return
	}

	ratio := volume / tvl

	direction := classify(ratio, s.TargetRatio, cfg.Tolerance)

	switch {
	case direction == Within:
		s.ConsecutiveCounter = 0
	case direction == s.LastDirection:
		s.ConsecutiveCounter++
	default:
		s.ConsecutiveCounter = 1
	}

	var adjustmentRate float64
	if s.TargetRatio != 0 {
		deviation := math.Abs(ratio - s.TargetRatio)
		adjustmentRate = math.Min(deviation*cfg.LinearSlope/s.TargetRatio, cfg.MaxAdjustmentRate)
	}

	feeDelta := s.CurrentFee * adjustmentRate

	// Fees fall twice as readily as they rise.
	multiplier := 1.0
	if ratio < s.TargetRatio {
		multiplier = 2.0
	}

	// MaxFeeDelta is expressed in hundredths of a basis point.
	stepBound := float64(cfg.MaxFeeDelta) * float64(s.ConsecutiveCounter) * multiplier / 1_000_000

	boundedDelta := math.Min(feeDelta, stepBound)

	if ratio > s.TargetRatio {
		s.CurrentFee += boundedDelta
	} else {
		s.CurrentFee -= boundedDelta
	}
	s.CurrentFee = math.Min(math.Max(s.CurrentFee, cfg.MinFee), cfg.MaxFee)

	// EMA drift of the target happens after the fee move, on purpose.
	s.TargetRatio = cfg.Alpha*ratio + (1-cfg.Alpha)*s.TargetRatio

	s.LastDirection = direction
}
