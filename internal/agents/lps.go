/*

This file implements the liquidity provider agents: passive LPs that
reconsider their pool roughly every 90 days, and active LPs that shop
around weekly and carry a speculation premium on prospective pools. Agents
switch only when the APR pickup over the holding period covers the
switching cost.

*/

package agents

import (
	"math/rand"
)

// LPType distinguishes liquidity provider behavior patterns.
type LPType string

const (
	LPPassive LPType = "passive"
	LPActive  LPType = "active"
)

// LPProfile holds the decision parameters for one LP class.
type LPProfile struct {
	Type LPType `json:"type"`

	// AvgSwitchingDays is the mean interval between switch evaluations.
	AvgSwitchingDays int `json:"avg_switching_days"`

	// SwitchingCostPct is the fraction of capital burned by a switch.
	SwitchingCostPct float64 `json:"switching_cost_pct"`

	// SpeculationMultiplier scales perceived APR, modeling expectations of
	// side rewards. 1.0 is neutral.
	SpeculationMultiplier float64 `json:"speculation_multiplier"`
}

var (
	PassiveLPProfile = LPProfile{
		Type:                  LPPassive,
		AvgSwitchingDays:      90,
		SwitchingCostPct:      0.005,
		SpeculationMultiplier: 1.0,
	}
	ActiveLPProfile = LPProfile{
		Type:                  LPActive,
		AvgSwitchingDays:      7,
		SwitchingCostPct:      0.001,
		SpeculationMultiplier: 1.2,
	}
)

// PoolYield is the per-pool view an LP decides on: an identifier and the
// current fee APR.
type PoolYield struct {
	PoolID string
	APR    float64
}

// LPPosition is the agent's current deployment.
type LPPosition struct {
	PoolID        string
	Capital       float64
	EntryDay      int
	NextSwitchDay int
}

// SwitchAction describes the liquidity movement an executed switch implies.
// RemoveFrom is empty on the initial deployment.
type SwitchAction struct {
	RemoveFrom   string
	RemoveAmount float64
	AddTo        string
	AddAmount    float64
}

// LP is a single liquidity provider agent.
type LP struct {
	ID                  int
	Profile             LPProfile
	Position            *LPPosition
	Switches            int
	TotalSwitchingCosts float64

	initialCapital float64
	rng            *rand.Rand
}

// NewLP creates an LP with its own generator seeded from the base seed plus
// the agent ID.
func NewLP(id int, profile LPProfile, capital float64, seed int64) *LP {
	return &LP{
		ID:             id,
		Profile:        profile,
		initialCapital: capital,
		rng:            rand.New(rand.NewSource(seed + int64(id))),
	}
}

// ShouldCheckSwitch reports whether the agent evaluates a switch today.
// Unpositioned agents always do.
func (l *LP) ShouldCheckSwitch(day int) bool {
	if l.Position == nil {
		return true
	}
	return day >= l.Position.NextSwitchDay
}

// EvaluateSwitch picks the pool to move to, or returns "" to stay put.
// Unpositioned agents pick the highest speculation-adjusted APR. Positioned
// agents switch only when the APR pickup, prorated over the switching
// interval, exceeds the switching cost.
func (l *LP) EvaluateSwitch(current PoolYield, alternatives []PoolYield) string {
	if l.Position == nil {
		bestID := current.PoolID
		bestScore := current.APR * l.Profile.SpeculationMultiplier
		for _, alt := range alternatives {
			if score := alt.APR * l.Profile.SpeculationMultiplier; score > bestScore {
				bestScore = score
				bestID = alt.PoolID
			}
		}
		return bestID
	}

	currentAPR := current.APR * l.Profile.SpeculationMultiplier
	holdingYears := float64(l.Profile.AvgSwitchingDays) / 365

	bestID := ""
	bestAPR := currentAPR
	for _, alt := range alternatives {
		if alt.PoolID == l.Position.PoolID {
			continue
		}
		adjusted := alt.APR * l.Profile.SpeculationMultiplier
		if (adjusted-currentAPR)*holdingYears > l.Profile.SwitchingCostPct && adjusted > bestAPR {
			bestAPR = adjusted
			bestID = alt.PoolID
		}
	}
	return bestID
}

// ExecuteSwitch moves the agent's capital to poolID, paying the switching
// cost when an existing position moves, and schedules the next evaluation
// with a ±20% jitter around the class interval.
func (l *LP) ExecuteSwitch(poolID string, day int) SwitchAction {
	var action SwitchAction

	switch {
	case l.Position != nil && l.Position.PoolID != poolID:
		cost := l.Position.Capital * l.Profile.SwitchingCostPct
		l.TotalSwitchingCosts += cost
		l.Switches++

		remaining := l.Position.Capital - cost
		action = SwitchAction{
			RemoveFrom:   l.Position.PoolID,
			RemoveAmount: l.Position.Capital,
			AddTo:        poolID,
			AddAmount:    remaining,
		}

		l.Position.PoolID = poolID
		l.Position.Capital = remaining
		l.Position.EntryDay = day

	case l.Position == nil:
		action = SwitchAction{AddTo: poolID, AddAmount: l.initialCapital}
		l.Position = &LPPosition{
			PoolID:   poolID,
			Capital:  l.initialCapital,
			EntryDay: day,
		}
	}

	if l.Position != nil {
		noise := 0.8 + l.rng.Float64()*0.4
		next := int(float64(l.Profile.AvgSwitchingDays) * noise)
		if next < 1 {
			next = 1
		}
		l.Position.NextSwitchDay = day + next
	}

	return action
}

// AccrueFees compounds the position by the pool's fee APR over daysPassed.
func (l *LP) AccrueFees(poolAPR float64, daysPassed int) {
	if l.Position == nil {
		return
	}
	l.Position.Capital *= 1 + poolAPR/365*float64(daysPassed)
}

// NewLPPopulation builds a deterministic LP population with the given
// per-type counts, all with the same starting capital.
func NewLPPopulation(passive, active int, capitalPerLP float64, seed int64) []*LP {
	lps := make([]*LP, 0, passive+active)
	for i := 0; i < passive; i++ {
		lps = append(lps, NewLP(len(lps), PassiveLPProfile, capitalPerLP, seed))
	}
	for i := 0; i < active; i++ {
		lps = append(lps, NewLP(len(lps), ActiveLPProfile, capitalPerLP, seed))
	}
	return lps
}
