/*

This file implements a conservative arbitrage pass used by the simulation
driver: each call closes only a tenth of the price gap, with tight absolute
caps, so rebalancing happens across many small trades rather than one
price-equalizing swing.

*/

package arbitrage

import (
	"math"

	"github.com/openamm/dfs/internal/amm"
)

// Fraction of the spread the arbitrageur is assumed to capture after
// execution costs on both venues.
const spreadCapture = 0.3

// SimpleResult reports one conservative arbitrage pass.
type SimpleResult struct {
	Executed    bool    `json:"executed"`
	Direction   string  `json:"direction"`
	VolumeQuote float64 `json:"volume_quote"`
	Profit      float64 `json:"profit"`
	PriceImpact float64 `json:"price_impact"`
}

// SimpleArbitrage nudges the pool price a tenth of the way toward cexPrice,
// executing directly on the live pool. maxTradePct caps the trade as a
// fraction of reserves (0.001 = 0.1%). Gaps under 0.1% are left alone.
func SimpleArbitrage(pool *amm.Pool, cexPrice, maxTradePct float64) (SimpleResult, error) {
	ammPrice := pool.SpotPrice()
	if cexPrice <= 0 || ammPrice <= 0 {
		return SimpleResult{Direction: DirectionNone}, nil
	}
	if math.Abs(ammPrice-cexPrice)/cexPrice < 0.001 {
		return SimpleResult{Direction: DirectionNone}, nil
	}

	k := pool.K()

	if ammPrice > cexPrice {
		// Pool price too high: sell the asset into the pool.
		targetPrice := ammPrice - (ammPrice-cexPrice)*0.1

		// Reserves at the target price keep k constant, so the asset
		// reserve there is sqrt(k / target).
		assetNeeded := math.Sqrt(k/targetPrice) - pool.ReserveX

		assetTrade := math.Min(assetNeeded, pool.ReserveX*maxTradePct)
		assetTrade = math.Min(assetTrade, 0.01)
		if assetTrade <= 0 {
			return SimpleResult{Direction: DirectionNone}, nil
		}

		if _, err := pool.ExecuteTrade(assetTrade, false); err != nil {
			return SimpleResult{Direction: DirectionNone}, err
		}

		return SimpleResult{
			Executed:    true,
			Direction:   DirectionSellToAMM,
			VolumeQuote: assetTrade * cexPrice,
			Profit:      (ammPrice - cexPrice) * assetTrade * spreadCapture,
			PriceImpact: (pool.SpotPrice() - ammPrice) / ammPrice,
		}, nil
	}

	// Pool price too low: buy the asset from the pool.
	targetPrice := ammPrice + (cexPrice-ammPrice)*0.1

	quoteNeeded := math.Sqrt(k*targetPrice) - pool.ReserveY

	quoteTrade := math.Min(quoteNeeded, pool.ReserveY*maxTradePct)
	quoteTrade = math.Min(quoteTrade, 100)
	if quoteTrade <= 0 {
		return SimpleResult{Direction: DirectionNone}, nil
	}

	result, err := pool.ExecuteTrade(quoteTrade, true)
	if err != nil {
		return SimpleResult{Direction: DirectionNone}, err
	}

	return SimpleResult{
		Executed:    true,
		Direction:   DirectionBuyFromAMM,
		VolumeQuote: quoteTrade,
		Profit:      (cexPrice - ammPrice) * result.Output * spreadCapture,
		PriceImpact: (pool.SpotPrice() - ammPrice) / ammPrice,
	}, nil
}
