/*

This file implements the CEX/AMM arbitrage calculator: closed-form optimal
trade sizing from the constant product relation, capped by capital, pool
impact and an absolute ceiling, then verified by simulation on a cloned pool
before anything touches live reserves.

Convention: pool X = asset, pool Y = quote, prices in quote per asset.

*/

package arbitrage

import (
	"math"

	"github.com/openamm/dfs/internal/amm"
)

// Trade directions between the reference venue and the pool.
const (
	DirectionSellToAMM  = "sell_to_amm"
	DirectionBuyFromAMM = "buy_from_amm"
	DirectionNone       = "none"
)

// Price gaps below this fraction are not worth sizing a trade for.
const minPriceGap = 0.0001

// DefaultMinProfit is the execution threshold in quote units when the
// caller does not supply one.
const DefaultMinProfit = 0.01

// Opportunity describes a sized and simulated arbitrage trade. Profit and
// fees are in quote units; the trade has not been executed yet.
type Opportunity struct {
	Direction      string  `json:"direction"`
	CEXPrice       float64 `json:"cex_price"`
	AMMPriceBefore float64 `json:"amm_price_before"`
	AMMPriceAfter  float64 `json:"amm_price_after"`
	TradeSizeAsset float64 `json:"trade_size_asset"`
	TradeSizeQuote float64 `json:"trade_size_quote"`
	Profit         float64 `json:"profit"`
	CEXFeePaid     float64 `json:"cex_fee_paid"`
	AMMFeePaid     float64 `json:"amm_fee_paid"`
}

// Arbitrageur trades between an external reference venue and a pool to
// capture price differences.
type Arbitrageur struct {
	// CEXFee is the taker fee on the reference venue, as a decimal.
	CEXFee float64
	// MaxCapital is the quote budget available per opportunity.
	MaxCapital float64
}

// NewArbitrageur returns an arbitrageur with the given reference-venue fee
// and quote capital budget.
func NewArbitrageur(cexFee, maxCapital float64) *Arbitrageur {
	return &Arbitrageur{CEXFee: cexFee, MaxCapital: maxCapital}
}

// CalculateArbitrage sizes the trade that equalizes effective prices
// between the pool and the reference venue, caps it, and simulates it on a
// clone. Returns nil when no profitable opportunity exists. The live pool
// is never touched.
func (a *Arbitrageur) CalculateArbitrage(pool *amm.Pool, cexPrice float64) *Opportunity {
	ammPrice := pool.SpotPrice()
	if cexPrice <= 0 || ammPrice <= 0 {
		return nil
	}
	if math.Abs(ammPrice-cexPrice)/cexPrice < minPriceGap {
		return nil
	}

	var direction string
	var assetAmount float64

	if ammPrice > cexPrice {
		// Asset is expensive on the pool: buy on the reference venue,
		// sell into the pool.
		direction = DirectionSellToAMM

		ratio := (ammPrice * (1 - pool.Fee)) / (cexPrice * (1 + a.CEXFee))
		if ratio <= 0 {
			return nil
		}
		assetAmount = pool.ReserveX * (1 - math.Sqrt(1/ratio))

		assetAmount = math.Min(assetAmount, a.MaxCapital/cexPrice)
	} else {
		// Asset is cheap on the pool: buy from the pool, sell on the
		// reference venue.
		direction = DirectionBuyFromAMM

		ratio := (ammPrice * (1 + pool.Fee)) / (cexPrice * (1 - a.CEXFee))
		if ratio <= 0 {
			return nil
		}
		assetAmount = pool.ReserveX * (math.Sqrt(1/ratio) - 1)

		assetAmount = math.Min(assetAmount, a.MaxCapital/(cexPrice*(1+pool.Fee)))
	}

	// Pool impact cap and an absolute per-trade ceiling.
	assetAmount = math.Min(assetAmount, pool.ReserveX*0.001)
	assetAmount = math.Min(assetAmount, math.Min(1000/cexPrice, 0.1))

	if assetAmount <= 0 {
		return nil
	}

	opp := a.simulate(pool, cexPrice, assetAmount, direction)
	if opp == nil || opp.Profit <= 0 {
		return nil
	}
	return opp
}

// simulate replays the candidate trade on a cloned pool to obtain exact
// execution numbers.
func (a *Arbitrageur) simulate(pool *amm.Pool, cexPrice, assetAmount float64, direction string) *Opportunity {
	priceBefore := pool.SpotPrice()
	temp := pool.Clone()

	if direction == DirectionSellToAMM {
		// Buy the asset on the reference venue, then sell it into the pool.
		cexCost := assetAmount * cexPrice * (1 + a.CEXFee)

		result, err := temp.ExecuteTrade(assetAmount, false)
		if err != nil {
			return nil
		}

		return &Opportunity{
			Direction:      direction,
			CEXPrice:       cexPrice,
			AMMPriceBefore: priceBefore,
			AMMPriceAfter:  temp.SpotPrice(),
			TradeSizeAsset: assetAmount,
			TradeSizeQuote: cexCost,
			Profit:         result.Output - cexCost,
			CEXFeePaid:     cexCost * a.CEXFee,
			AMMFeePaid:     result.FeePaid,
		}
	}

	// Buying from the pool: invert the swap formula to find the quote input
	// that yields exactly assetAmount of output, then execute with that.
	if assetAmount >= pool.ReserveX {
		return nil
	}
	quoteAfterFee := (assetAmount * pool.ReserveY) / (pool.ReserveX - assetAmount)
	quoteNeeded := quoteAfterFee / (1 - pool.Fee)

	result, err := temp.ExecuteTrade(quoteNeeded, true)
	if err != nil {
		return nil
	}

	cexRevenue := result.Output * cexPrice * (1 - a.CEXFee)

	return &Opportunity{
		Direction:      direction,
		CEXPrice:       cexPrice,
		AMMPriceBefore: priceBefore,
		AMMPriceAfter:  temp.SpotPrice(),
		TradeSizeAsset: assetAmount,
		TradeSizeQuote: result.Input,
		Profit:         cexRevenue - result.Input,
		CEXFeePaid:     cexRevenue * a.CEXFee / (1 - a.CEXFee),
		AMMFeePaid:     result.FeePaid,
	}
}

// ExecuteArbitrage calculates the opportunity and, if its simulated profit
// meets minProfit, replays it against the live pool. Returns whether the
// trade was executed together with the opportunity (which may be non-nil
// even when not executed).
func (a *Arbitrageur) ExecuteArbitrage(pool *amm.Pool, cexPrice, minProfit float64) (bool, *Opportunity, error) {
	opp := a.CalculateArbitrage(pool, cexPrice)
	if opp == nil || opp.Profit < minProfit {
		return false, opp, nil
	}

	var err error
	if opp.Direction == DirectionSellToAMM {
		_, err = pool.ExecuteTrade(opp.TradeSizeAsset, false)
	} else {
		_, err = pool.ExecuteTrade(opp.TradeSizeQuote, true)
	}
	if err != nil {
		return false, opp, err
	}
	return true, opp, nil
}

// FindEquilibriumPrice returns the midpoint of the fee-implied no-arbitrage
// band as an analytic estimate of the pool price that would eliminate
// arbitrage against cexPrice.
func (a *Arbitrageur) FindEquilibriumPrice(pool *amm.Pool, cexPrice float64) float64 {
	upper := cexPrice * (1 + a.CEXFee) / (1 - pool.Fee)
	lower := cexPrice * (1 - a.CEXFee) / (1 + pool.Fee)
	return (upper + lower) / 2
}
