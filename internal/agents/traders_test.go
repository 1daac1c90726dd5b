package agents

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openamm/dfs/internal/amm"
)

func TestTradeSizeBoundsAndDeterminism(t *testing.T) {
	a := NewTrader(3, RetailProfile, 42)
	b := NewTrader(3, RetailProfile, 42)

	for i := 0; i < 1000; i++ {
		size := a.TradeSize(0)
		require.GreaterOrEqual(t, size, RetailProfile.MinTradeSize)
		require.LessOrEqual(t, size, RetailProfile.MaxTradeSize)
		require.Equal(t, size, b.TradeSize(0))
	}
}

func TestTradeSizeIndependentStreamsPerAgent(t *testing.T) {
	a := NewTrader(0, WhaleProfile, 42)
	b := NewTrader(1, WhaleProfile, 42)
	require.NotEqual(t, a.TradeSize(0), b.TradeSize(0))
}

func TestArbitrageurTradesOpportunitySize(t *testing.T) {
	arb := NewTrader(0, ArbitrageurProfile, 42)

	require.Zero(t, arb.TradeSize(0))
	require.InDelta(t, 1234.5, arb.TradeSize(1234.5), 1e-12)
	require.True(t, arb.ShouldTrade(true))
	require.False(t, arb.ShouldTrade(false))
}

func TestShouldTradeFrequencies(t *testing.T) {
	retail := NewTrader(0, RetailProfile, 7)
	whale := NewTrader(1, WhaleProfile, 7)

	const trials = 10_000
	var retailHits, whaleHits int
	for i := 0; i < trials; i++ {
		if retail.ShouldTrade(false) {
			retailHits++
		}
		if whale.ShouldTrade(false) {
			whaleHits++
		}
	}

	require.InDelta(t, 0.7, float64(retailHits)/trials, 0.02)
	require.InDelta(t, 0.2, float64(whaleHits)/trials, 0.02)
}

func TestChoosePoolPicksBestExecution(t *testing.T) {
	cheap := amm.NewPool("cheap", 0.0005, 500, 1_000_000)
	dear := amm.NewPool("dear", 0.01, 500, 1_000_000)

	trader := NewTrader(0, RetailProfile, 1)
	best := trader.ChoosePool([]*amm.Pool{dear, cheap}, 100, true)
	require.NotNil(t, best)
	require.Equal(t, "cheap", best.Name)

	require.Nil(t, trader.ChoosePool(nil, 100, true))
}

func TestRecordTrade(t *testing.T) {
	trader := NewTrader(0, RetailProfile, 1)
	trader.RecordTrade(250)
	trader.RecordTrade(100)
	require.Equal(t, 2, trader.TradesExecuted)
	require.InDelta(t, 350.0, trader.TotalVolume, 1e-12)
}

func TestNewTraderPopulation(t *testing.T) {
	traders, err := NewTraderPopulation(2, 5, 1, 42)
	require.NoError(t, err)
	require.Len(t, traders, 8)

	require.Equal(t, TraderArbitrageur, traders[0].Profile.Type)
	require.Equal(t, TraderRetail, traders[2].Profile.Type)
	require.Equal(t, TraderWhale, traders[7].Profile.Type)

	// IDs are sequential, so streams are independent and reproducible.
	for i, trader := range traders {
		require.Equal(t, i, trader.ID)
	}

	again, err := NewTraderPopulation(2, 5, 1, 42)
	require.NoError(t, err)
	require.Equal(t, traders[3].TradeSize(0), again[3].TradeSize(0))

	_, err = NewTraderPopulation(-1, 0, 0, 42)
	require.Error(t, err)
}
