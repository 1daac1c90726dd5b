/*

This file contains the simulation driver: N days of trading across M
independent market instances of one pool risk class. Each market pairs a
dynamic-fee pool with a static-fee comparison pool; traders route to the
better execution, an arbitrageur closes gaps against the reference price
path, liquidity providers migrate between the two pools on yield, and the
fee controller batch-updates the dynamic fees once per day.

*/

package simulator

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/openamm/dfs/internal/agents"
	"github.com/openamm/dfs/internal/amm"
	"github.com/openamm/dfs/internal/analyzer"
	"github.com/openamm/dfs/internal/arbitrage"
	"github.com/openamm/dfs/internal/feectrl"
	"github.com/openamm/dfs/internal/logger"
	"github.com/openamm/dfs/internal/pricepath"
	"github.com/openamm/dfs/internal/state"
	"github.com/openamm/dfs/internal/types"
)

// Per-market agent population sizes.
const (
	retailPerMarket  = 8
	whalesPerMarket  = 1
	passivePerMarket = 1
	activePerMarket  = 1
)

// defaultInitialTargetRatio seeds the controller target before any
// activity has been observed; the EMA takes over immediately.
const defaultInitialTargetRatio = 0.05

// minArbProfit is the execution threshold for the per-day arbitrage pass.
const minArbProfit = 0.01

// market bundles the per-instance simulation state. Instances never read
// each other's fields during the fee update.
type market struct {
	dynamic *amm.Pool
	static  *amm.Pool
	traders []*agents.Trader
	lps     []*agents.LP

	// direction coin flips for trader flow, seeded per market
	rng *rand.Rand

	// previous-day cumulative counters for delta computation
	prevVolume map[string]float64
	prevFees   map[string]float64

	// outstanding LP tokens per agent ID
	lpTokens map[int]float64
}

// Simulator drives one complete run.
type Simulator struct {
	logger   zerolog.Logger
	classCfg types.PoolClassConfig
	simCfg   types.SimulationConfig

	paths   [][]types.PriceData
	arb     *arbitrage.Arbitrageur
	persist bool

	runCount int
}

// Config holds the configuration for creating a new Simulator instance.
type Config struct {
	ClassConfig types.PoolClassConfig
	SimConfig   types.SimulationConfig

	// PricePaths optionally supplies reference price paths (one per
	// market, each Days+1 observations). Nil means synthetic paths are
	// generated from the simulation config.
	PricePaths [][]types.PriceData

	// Persist controls whether completed runs are written to the database.
	Persist bool
}

// NewSimulator creates a new Simulator instance with dependency injection.
func NewSimulator(cfg Config) (*Simulator, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("simulator configuration validation failed: %w", err)
	}

	sim := &Simulator{
		logger:   logger.GetForComponent("simulator"),
		classCfg: cfg.ClassConfig,
		simCfg:   cfg.SimConfig,
		paths:    cfg.PricePaths,
		arb:      arbitrage.NewArbitrageur(cfg.SimConfig.CEXFee, 100_000),
		persist:  cfg.Persist,
	}

	sim.logger.Info().
		Str("poolClass", string(cfg.ClassConfig.Class)).
		Int("markets", cfg.SimConfig.Markets).
		Int("days", cfg.SimConfig.Days).
		Msg("Simulator instance created")

	return sim, nil
}

func validateConfig(cfg Config) error {
	if err := cfg.ClassConfig.Validate(); err != nil {
		return err
	}
	if err := cfg.SimConfig.Validate(); err != nil {
		return err
	}
	if cfg.PricePaths != nil {
		if len(cfg.PricePaths) != cfg.SimConfig.Markets {
			return fmt.Errorf("expected %d price paths, got %d", cfg.SimConfig.Markets, len(cfg.PricePaths))
		}
		for i, path := range cfg.PricePaths {
			if len(path) != cfg.SimConfig.Days+1 {
				return fmt.Errorf("price path %d has %d observations, need %d", i, len(path), cfg.SimConfig.Days+1)
			}
		}
	}
	return nil
}

// Run executes one complete simulation run and returns its snapshot. The
// context is checked once per simulated day; an invariant violation in any
// pool aborts the run.
func (s *Simulator) Run(ctx context.Context) (types.RunSnapshot, error) {
	runStart := time.Now()
	s.runCount++

	// Unique run ID for tracing logs across the entire run.
	runID := uuid.New().String()
	runLogger := s.logger.With().Str("run_id", runID).Logger()
	runLogger.Info().Msg("--- Starting simulation run ---")

	paths := s.paths
	if paths == nil {
		var err error
		paths, err = pricepath.GeneratePaths(s.simCfg, runStart.UTC(), s.simCfg.Seed, s.simCfg.Markets)
		if err != nil {
			return types.RunSnapshot{}, fmt.Errorf("failed to generate price paths: %w", err)
		}
	}

	markets, err := s.buildMarkets()
	if err != nil {
		return types.RunSnapshot{}, err
	}

	batch := feectrl.NewBatch(s.classCfg, s.simCfg.Markets, defaultInitialTargetRatio)

	volumes := make([]float64, s.simCfg.Markets)
	tvls := make([]float64, s.simCfg.Markets)
	daily := make([]types.DailySnapshot, 0, s.simCfg.Markets*s.simCfg.Days)

	for day := 1; day <= s.simCfg.Days; day++ {
		if err := ctx.Err(); err != nil {
			runLogger.Warn().Int("day", day).Msg("Run cancelled")
			return types.RunSnapshot{}, err
		}

		type dayStats struct {
			arbProfit float64
			trades    int
		}
		stats := make([]dayStats, s.simCfg.Markets)

		for m, mkt := range markets {
			refPrice := paths[m][day].Price

			trades, err := s.runTraderFlow(mkt, refPrice)
			if err != nil {
				runLogger.Error().Err(err).Int("market", m).Int("day", day).Msg("Run aborted")
				return types.RunSnapshot{}, err
			}
			stats[m].trades = trades

			profit, err := s.runArbitrage(mkt, refPrice)
			if err != nil {
				runLogger.Error().Err(err).Int("market", m).Int("day", day).Msg("Run aborted")
				return types.RunSnapshot{}, err
			}
			stats[m].arbProfit = profit

			volumes[m] = mkt.dynamic.TotalVolume - mkt.prevVolume[mkt.dynamic.Name]
			tvls[m] = mkt.dynamic.TVL(refPrice)
		}

		fees, err := batch.UpdateParallel(volumes, tvls)
		if err != nil {
			return types.RunSnapshot{}, fmt.Errorf("fee update failed on day %d: %w", day, err)
		}

		for m, mkt := range markets {
			refPrice := paths[m][day].Price
			mkt.dynamic.Fee = fees[m]

			feesEarned := mkt.dynamic.TotalFeesEarned - mkt.prevFees[mkt.dynamic.Name]
			daily = append(daily, types.DailySnapshot{
				Day:            day,
				Market:         m,
				ReferencePrice: refPrice,
				SpotPrice:      mkt.dynamic.SpotPrice(),
				Fee:            fees[m],
				TargetRatio:    batch.States[m].TargetRatio,
				VolumeQuote:    volumes[m],
				TVLQuote:       tvls[m],
				FeesEarned:     feesEarned,
				ArbProfit:      stats[m].arbProfit,
				TradesExecuted: stats[m].trades,
			})

			s.runLPFlow(mkt, refPrice, day)

			mkt.prevVolume[mkt.dynamic.Name] = mkt.dynamic.TotalVolume
			mkt.prevFees[mkt.dynamic.Name] = mkt.dynamic.TotalFeesEarned
			mkt.prevVolume[mkt.static.Name] = mkt.static.TotalVolume
			mkt.prevFees[mkt.static.Name] = mkt.static.TotalFeesEarned
		}
	}

	snapshot := types.RunSnapshot{
		RunNumber:       s.runNumber(),
		RunID:           runID,
		Timestamp:       runStart,
		PoolClass:       s.classCfg.Class,
		Config:          s.simCfg,
		InitialTVLQuote: s.simCfg.InitialTVL(),
		InitialFee:      s.classCfg.InitialFee,
		Summary:         analyzer.SummarizeRun(daily, s.classCfg.Tolerance),
		MeanFeeSeries:   analyzer.MeanFeeByDay(daily),
		Daily:           daily,
	}

	if s.persist {
		s.saveRunSnapshot(snapshot, runLogger)
	}

	runLogger.Info().
		Dur("elapsed", time.Since(runStart)).
		Float64("meanFee", snapshot.Summary.MeanFee).
		Float64("terminalFee", snapshot.Summary.TerminalFee).
		Float64("totalVolume", snapshot.Summary.TotalVolumeQuote).
		Msg("--- Simulation run completed ---")

	return snapshot, nil
}

// buildMarkets initializes the per-instance pools and agent populations.
// Seeds are offset per market so instances replay independently.
func (s *Simulator) buildMarkets() ([]*market, error) {
	markets := make([]*market, s.simCfg.Markets)
	for m := range markets {
		seed := s.simCfg.Seed + int64(m)*10_000

		traders, err := agents.NewTraderPopulation(0, retailPerMarket, whalesPerMarket, seed)
		if err != nil {
			return nil, err
		}

		dynamic := amm.NewPool(fmt.Sprintf("dyn-%d", m), s.classCfg.InitialFee,
			s.simCfg.InitialReserveX, s.simCfg.InitialReserveY)
		static := amm.NewPool(fmt.Sprintf("static-%d", m), s.simCfg.StaticFee,
			s.simCfg.InitialReserveX, s.simCfg.InitialReserveY)

		markets[m] = &market{
			dynamic:    dynamic,
			static:     static,
			traders:    traders,
			lps:        agents.NewLPPopulation(passivePerMarket, activePerMarket, 100_000, seed+5_000),
			rng:        rand.New(rand.NewSource(seed + 9_999)),
			prevVolume: map[string]float64{dynamic.Name: 0, static.Name: 0},
			prevFees:   map[string]float64{dynamic.Name: 0, static.Name: 0},
			lpTokens:   make(map[int]float64),
		}
	}
	return markets, nil
}

// runTraderFlow executes one day of retail and whale trades in a market.
// Traders quote both pools and route to the better execution. Pools below
// the liquidity floor are skipped; an invariant violation is fatal.
func (s *Simulator) runTraderFlow(mkt *market, refPrice float64) (int, error) {
	pools := []*amm.Pool{mkt.dynamic, mkt.static}

	trades := 0
	for _, trader := range mkt.traders {
		if !trader.ShouldTrade(false) {
			continue
		}

		quoteSize := trader.TradeSize(0)
		isBuy := mkt.rng.Float64() < 0.5

		// Trade sizes are sampled in quote units; sells are submitted in
		// asset units.
		size := quoteSize
		if !isBuy {
			size = quoteSize / refPrice
		}

		pool := trader.ChoosePool(pools, size, isBuy)
		if pool == nil {
			continue
		}

		result, err := pool.ExecuteTrade(size, isBuy)
		if err != nil {
			if errors.Is(err, amm.ErrInvariantViolated) {
				return trades, err
			}
			continue
		}

		if isBuy {
			trader.RecordTrade(result.Input)
		} else {
			trader.RecordTrade(result.Output)
		}
		trades++
	}
	return trades, nil
}

// runArbitrage closes price gaps between each pool and the reference price,
// returning the profit captured on the dynamic pool.
func (s *Simulator) runArbitrage(mkt *market, refPrice float64) (float64, error) {
	var dynamicProfit float64
	for _, pool := range []*amm.Pool{mkt.dynamic, mkt.static} {
		executed, opp, err := s.arb.ExecuteArbitrage(pool, refPrice, minArbProfit)
		if err != nil {
			if errors.Is(err, amm.ErrInvariantViolated) {
				return 0, err
			}
			continue
		}
		if executed && pool == mkt.dynamic {
			dynamicProfit = opp.Profit
		}
	}
	return dynamicProfit, nil
}

// runLPFlow accrues fees to LP positions and lets agents migrate between
// the dynamic and static pool when the yield pickup covers the cost.
func (s *Simulator) runLPFlow(mkt *market, refPrice float64, day int) {
	yields := map[string]agents.PoolYield{
		mkt.dynamic.Name: {PoolID: mkt.dynamic.Name, APR: poolAPR(mkt, mkt.dynamic, refPrice)},
		mkt.static.Name:  {PoolID: mkt.static.Name, APR: poolAPR(mkt, mkt.static, refPrice)},
	}
	alternatives := []agents.PoolYield{yields[mkt.dynamic.Name], yields[mkt.static.Name]}

	for _, lp := range mkt.lps {
		if lp.Position != nil {
			lp.AccrueFees(yields[lp.Position.PoolID].APR, 1)
		}
		if !lp.ShouldCheckSwitch(day) {
			continue
		}

		current := yields[mkt.dynamic.Name]
		if lp.Position != nil {
			current = yields[lp.Position.PoolID]
		}

		target := lp.EvaluateSwitch(current, alternatives)
		if target == "" {
			continue
		}

		action := lp.ExecuteSwitch(target, day)
		s.applyLPAction(mkt, action, lp.ID, refPrice)
	}
}

// applyLPAction translates an agent switch decision into pool liquidity
// movements, tracking the LP token balance per agent.
func (s *Simulator) applyLPAction(mkt *market, action agents.SwitchAction, lpID int, refPrice float64) {
	if action.RemoveFrom != "" {
		pool := mkt.poolByName(action.RemoveFrom)
		if pool != nil && mkt.lpTokens[lpID] > 0 {
			pool.RemoveLiquidity(mkt.lpTokens[lpID])
			mkt.lpTokens[lpID] = 0
		}
	}
	if action.AddTo != "" && action.AddAmount > 0 && refPrice > 0 {
		pool := mkt.poolByName(action.AddTo)
		if pool != nil {
			receipt := pool.AddLiquidity(action.AddAmount/(2*refPrice), action.AddAmount/2)
			mkt.lpTokens[lpID] = receipt.TokensMinted
		}
	}
}

func (mkt *market) poolByName(name string) *amm.Pool {
	switch name {
	case mkt.dynamic.Name:
		return mkt.dynamic
	case mkt.static.Name:
		return mkt.static
	}
	return nil
}

// poolAPR estimates annualized fee yield from the pool's previous-day fee
// income.
func poolAPR(mkt *market, pool *amm.Pool, refPrice float64) float64 {
	tvl := pool.TVL(refPrice)
	if tvl <= 0 {
		return 0
	}
	dailyFees := pool.TotalFeesEarned - mkt.prevFees[pool.Name]
	return dailyFees * 365 / tvl
}

// runNumber allocates the next global run number, falling back to the
// in-process counter when no database is available.
func (s *Simulator) runNumber() int {
	if state.DB != nil {
		if n, err := state.IncrementRunNumber(); err == nil {
			return n
		}
		s.logger.Warn().Msg("Failed to increment persistent run counter, using in-process count")
	}
	return s.runCount
}

// saveRunSnapshot persists the run; persistence failures are logged and do
// not fail the run.
func (s *Simulator) saveRunSnapshot(snapshot types.RunSnapshot, runLogger zerolog.Logger) {
	snapshotID, err := state.SaveRunSnapshot(snapshot)
	if err != nil {
		runLogger.Error().Err(err).Msg("Failed to save run snapshot to database")
		return
	}
	runLogger.Info().Int64("snapshot_id", snapshotID).Msg("Run snapshot saved")
}
