/*

This file implements the trader agent population: arbitrageurs that trade
exact opportunity sizes, retail traders making small frequent trades, and
whales making large infrequent ones. Every agent carries its own seeded
generator so populations replay deterministically.

*/

package agents

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/openamm/dfs/internal/amm"
)

// TraderType distinguishes trading behavior patterns.
type TraderType string

const (
	TraderArbitrageur TraderType = "arb"
	TraderRetail      TraderType = "retail"
	TraderWhale       TraderType = "whale"
)

// TraderProfile holds the sizing parameters for one trader class. Sizes are
// in quote units; sampling is log-normal around AvgTradeSize.
type TraderProfile struct {
	Type         TraderType `json:"type"`
	AvgTradeSize float64    `json:"avg_trade_size"`
	TradeSizeStd float64    `json:"trade_size_std"`
	MinTradeSize float64    `json:"min_trade_size"`
	MaxTradeSize float64    `json:"max_trade_size"`
}

// Predefined trader profiles.
var (
	ArbitrageurProfile = TraderProfile{
		Type:         TraderArbitrageur,
		MaxTradeSize: math.Inf(1), // sized by the opportunity, not the profile
	}
	RetailProfile = TraderProfile{
		Type:         TraderRetail,
		AvgTradeSize: 100,
		TradeSizeStd: 0.3,
		MinTradeSize: 10,
		MaxTradeSize: 1_000,
	}
	WhaleProfile = TraderProfile{
		Type:         TraderWhale,
		AvgTradeSize: 500_000,
		TradeSizeStd: 0.6,
		MinTradeSize: 100_000,
		MaxTradeSize: 10_000_000,
	}
)

// Trader is a single trading agent. Fields are exclusively owned by the
// agent; the embedded generator makes behavior a pure function of the seed.
type Trader struct {
	ID             int
	Profile        TraderProfile
	TradesExecuted int
	TotalVolume    float64

	rng *rand.Rand
}

// NewTrader creates a trader whose generator is seeded from the base seed
// plus the agent ID, so each agent has an independent reproducible stream.
func NewTrader(id int, profile TraderProfile, seed int64) *Trader {
	return &Trader{
		ID:      id,
		Profile: profile,
		rng:     rand.New(rand.NewSource(seed + int64(id))),
	}
}

// TradeSize samples a trade size in quote units. Arbitrageurs trade exactly
// the opportunity size (zero when there is none); other types sample
// log-normally and clip to the profile bounds.
func (t *Trader) TradeSize(opportunitySize float64) float64 {
	if t.Profile.Type == TraderArbitrageur {
		return opportunitySize
	}

	size := math.Exp(math.Log(t.Profile.AvgTradeSize) + t.rng.NormFloat64()*t.Profile.TradeSizeStd)
	return math.Min(math.Max(size, t.Profile.MinTradeSize), t.Profile.MaxTradeSize)
}

// ShouldTrade decides whether the agent trades this period. Arbitrageurs
// trade exactly when an opportunity exists; retail trades 70% of periods,
// whales 20%.
func (t *Trader) ShouldTrade(hasOpportunity bool) bool {
	switch t.Profile.Type {
	case TraderArbitrageur:
		return hasOpportunity
	case TraderRetail:
		return t.rng.Float64() < 0.7
	case TraderWhale:
		return t.rng.Float64() < 0.2
	default:
		return false
	}
}

// ChoosePool quotes the trade against every pool and returns the one with
// the best execution, or nil when no pool can serve it.
func (t *Trader) ChoosePool(pools []*amm.Pool, size float64, isBuy bool) *amm.Pool {
	best, _ := amm.GetBestExecution(pools, size, isBuy)
	return best
}

// RecordTrade accumulates a completed trade into the agent's tally.
func (t *Trader) RecordTrade(volume float64) {
	t.TradesExecuted++
	t.TotalVolume += volume
}

// NewTraderPopulation builds a deterministic population from per-type
// counts. Agent IDs are assigned in arb, retail, whale order so a given
// (distribution, seed) pair always yields the same agents.
func NewTraderPopulation(arbs, retail, whales int, seed int64) ([]*Trader, error) {
	if arbs < 0 || retail < 0 || whales < 0 {
		return nil, fmt.Errorf("negative trader count: arbs=%d retail=%d whales=%d", arbs, retail, whales)
	}

	traders := make([]*Trader, 0, arbs+retail+whales)
	for i := 0; i < arbs; i++ {
		traders = append(traders, NewTrader(len(traders), ArbitrageurProfile, seed))
	}
	for i := 0; i < retail; i++ {
		traders = append(traders, NewTrader(len(traders), RetailProfile, seed))
	}
	for i := 0; i < whales; i++ {
		traders = append(traders, NewTrader(len(traders), WhaleProfile, seed))
	}
	return traders, nil
}
