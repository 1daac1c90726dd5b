/*

This file implements the constant product pool: trade execution under a
proportional input fee, liquidity token accounting, and the x*y=k invariant
guard. A Pool is owned by exactly one writer at a time; callers serialize
trades per pool per simulated tick.

*/

package amm

import (
	"errors"
	"fmt"
	"math"
)

// MinLiquidityFloor is the default reserve floor preventing division by zero
// and full pool drainage.
const MinLiquidityFloor = 1e-8

// Invariant tolerance: k may not shrink by more than this relative amount
// across a fee-bearing trade. The band covers floating point rounding.
const invariantTolerance = 1e-4

var (
	// ErrInsufficientLiquidity signals that a reserve sits below the floor
	// and the pool cannot safely quote. Callers skip the pool; the run
	// continues.
	ErrInsufficientLiquidity = errors.New("insufficient liquidity in pool")

	// ErrInvariantViolated signals that k decreased beyond tolerance after a
	// trade. This is a modeling defect and must abort the run.
	ErrInvariantViolated = errors.New("constant product invariant violated")
)

// Pool is a two-asset constant product pool. Reserve and fee mutations happen
// in place; cumulative volume and fees are accounted in quote (Y) terms.
type Pool struct {
	Name string `json:"name"`

	// Fee is the proportional input fee, as a decimal (0.0005 = 5bp).
	Fee float64 `json:"fee"`

	ReserveX float64 `json:"reserve_x"` // asset units
	ReserveY float64 `json:"reserve_y"` // quote units

	TotalVolume          float64 `json:"total_volume"`           // quote units
	TotalFeesEarned      float64 `json:"total_fees_earned"`      // quote units
	TotalLiquidityTokens float64 `json:"total_liquidity_tokens"` // LP token supply

	// MinLiquidity is the reserve floor. Withdrawals clamp back up to it,
	// leaving dust rather than draining the pool.
	MinLiquidity float64 `json:"min_liquidity"`
}

// TradeResult is the structured outcome of a single executed trade. Fee paid
// is reported in quote terms for both directions so costs are comparable.
type TradeResult struct {
	Input          float64 `json:"input"`
	Output         float64 `json:"output"`
	ExecutionPrice float64 `json:"execution_price"`
	SpotPrice      float64 `json:"spot_price"` // pre-trade
	Slippage       float64 `json:"slippage"`
	FeePaid        float64 `json:"fee_paid"`
	TotalCost      float64 `json:"total_cost"` // fee rate + slippage
	PostTradePrice float64 `json:"post_trade_price"`
}

// LiquidityReceipt reports the outcome of an AddLiquidity call.
type LiquidityReceipt struct {
	TokensMinted float64 `json:"liquidity_tokens"`
	ActualX      float64 `json:"actual_x"`
	ActualY      float64 `json:"actual_y"`
}

// WithdrawalReceipt reports the reserves returned by RemoveLiquidity.
type WithdrawalReceipt struct {
	AmountX float64 `json:"amount_x"`
	AmountY float64 `json:"amount_y"`
}

// NewPool creates a pool with the given initial reserves and fee. The initial
// liquidity token supply is the geometric mean of the reserves.
func NewPool(name string, fee, reserveX, reserveY float64) *Pool {
	p := &Pool{
		Name:         name,
		Fee:          fee,
		ReserveX:     reserveX,
		ReserveY:     reserveY,
		MinLiquidity: MinLiquidityFloor,
	}
	if reserveX > 0 && reserveY > 0 {
		p.TotalLiquidityTokens = math.Sqrt(reserveX * reserveY)
	}
	return p
}

// K returns the invariant constant reserve_x * reserve_y.
func (p *Pool) K() float64 {
	return p.ReserveX * p.ReserveY
}

// SpotPrice returns the instantaneous marginal price (quote per asset).
// Returns 0 when the asset reserve sits below the floor; never errors.
func (p *Pool) SpotPrice() float64 {
	if p.ReserveX < p.MinLiquidity {
		return 0
	}
	return p.ReserveY / p.ReserveX
}

// TVL returns the pool value in quote terms at the given market price.
// Pass the spot price for the naive variant; for imbalanced pools the two
// can diverge materially.
func (p *Pool) TVL(marketPrice float64) float64 {
	return p.ReserveX*marketPrice + p.ReserveY
}

// Clone returns an independent copy of the pool, used to simulate candidate
// trades without touching live state.
func (p *Pool) Clone() *Pool {
	cp := *p
	return &cp
}

// ExecuteTrade applies a single trade to the pool and returns the execution
// details. isBuy means buying X with Y (Y is the input asset); otherwise X is
// sold for Y. A non-positive size is a defined no-op, not an error. Reserves,
// cumulative volume and fees are updated together on success.
func (p *Pool) ExecuteTrade(size float64, isBuy bool) (TradeResult, error) {
	if p.ReserveX < p.MinLiquidity || p.ReserveY < p.MinLiquidity {
		return TradeResult{}, fmt.Errorf("%w: %s", ErrInsufficientLiquidity, p.Name)
	}

	spot := p.SpotPrice()
	if size <= 0 {
		return TradeResult{
			ExecutionPrice: spot,
			SpotPrice:      spot,
			PostTradePrice: spot,
		}, nil
	}

	kBefore := p.K()

	var (
		result    TradeResult
		newX, newY float64
		volume    float64
	)

	if isBuy {
		dyIn := size
		dyAfterFee := dyIn * (1 - p.Fee)
		dxOut := (p.ReserveX * dyAfterFee) / (p.ReserveY + dyAfterFee)

		execPrice := math.Inf(1)
		if dxOut > 0 {
			execPrice = dyIn / dxOut
		}
		feePaid := dyIn * p.Fee

		newX = p.ReserveX - dxOut
		newY = p.ReserveY + dyAfterFee
		postPrice := math.Inf(1)
		if newX > p.MinLiquidity {
			postPrice = newY / newX
		}

		result = TradeResult{
			Input:          dyIn,
			Output:         dxOut,
			ExecutionPrice: execPrice,
			SpotPrice:      spot,
			Slippage:       execPrice/spot - 1,
			FeePaid:        feePaid,
			TotalCost:      p.Fee + (execPrice/spot - 1),
			PostTradePrice: postPrice,
		}
		volume = dyIn
	} else {
		dxIn := size
		dxAfterFee := dxIn * (1 - p.Fee)
		dyOut := (p.ReserveY * dxAfterFee) / (p.ReserveX + dxAfterFee)

		// No-fee comparison output; the difference is the fee cost
		// expressed in quote terms.
		dyOutNoFee := (p.ReserveY * dxIn) / (p.ReserveX + dxIn)
		feePaid := dyOutNoFee - dyOut

		execPrice := dyOut / dxIn
		slippage := 1 - execPrice/spot

		newX = p.ReserveX + dxAfterFee
		newY = p.ReserveY - dyOut
		postPrice := 0.0
		if newX > p.MinLiquidity {
			postPrice = newY / newX
		}

		result = TradeResult{
			Input:          dxIn,
			Output:         dyOut,
			ExecutionPrice: execPrice,
			SpotPrice:      spot,
			Slippage:       slippage,
			FeePaid:        feePaid,
			TotalCost:      p.Fee + slippage,
			PostTradePrice: postPrice,
		}
		volume = dyOut
	}

	kAfter := newX * newY
	if kAfter < kBefore*(1-invariantTolerance) {
		return TradeResult{}, fmt.Errorf("%w: pool %s, k %f -> %f", ErrInvariantViolated, p.Name, kBefore, kAfter)
	}

	p.ReserveX = newX
	p.ReserveY = newY
	p.TotalVolume += volume
	p.TotalFeesEarned += result.FeePaid

	return result, nil
}

// AddLiquidity deposits up to (amountX, amountY) into the pool. Non-positive
// inputs mint nothing. The first deposit sets the ratio and mints the
// geometric mean; later deposits accept only the ratio-matching amounts, with
// the limiting asset deciding, and mint tokens proportional to the fractional
// growth of the asset reserve.
func (p *Pool) AddLiquidity(amountX, amountY float64) LiquidityReceipt {
	if amountX <= 0 || amountY <= 0 {
		return LiquidityReceipt{}
	}

	var minted, actualX, actualY float64
	if p.TotalLiquidityTokens == 0 {
		minted = math.Sqrt(amountX * amountY)
		actualX = amountX
		actualY = amountY
	} else {
		ratio := p.ReserveY / p.ReserveX
		optimalY := amountX * ratio

		if amountY >= optimalY {
			// X is the limiting factor
			actualX = amountX
			actualY = optimalY
		} else {
			actualX = amountY / ratio
			actualY = amountY
		}
		minted = (actualX / p.ReserveX) * p.TotalLiquidityTokens
	}

	p.ReserveX += actualX
	p.ReserveY += actualY
	p.TotalLiquidityTokens += minted

	return LiquidityReceipt{TokensMinted: minted, ActualX: actualX, ActualY: actualY}
}

// RemoveLiquidity burns tokens and returns the pro-rata share of both
// reserves. Requests for a non-positive amount or more than the outstanding
// supply are no-ops. Reserves and supply that fall below the floor are
// clamped back up, retaining dust in the pool.
func (p *Pool) RemoveLiquidity(tokens float64) WithdrawalReceipt {
	if tokens <= 0 || tokens > p.TotalLiquidityTokens {
		return WithdrawalReceipt{}
	}

	share := tokens / p.TotalLiquidityTokens
	amountX := p.ReserveX * share
	amountY := p.ReserveY * share

	p.ReserveX -= amountX
	p.ReserveY -= amountY
	p.TotalLiquidityTokens -= tokens

	if p.ReserveX < p.MinLiquidity {
		p.ReserveX = p.MinLiquidity
	}
	if p.ReserveY < p.MinLiquidity {
		p.ReserveY = p.MinLiquidity
	}
	if p.TotalLiquidityTokens < p.MinLiquidity {
		p.TotalLiquidityTokens = p.MinLiquidity
	}

	return WithdrawalReceipt{AmountX: amountX, AmountY: amountY}
}
