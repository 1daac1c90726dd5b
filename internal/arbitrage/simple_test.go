package arbitrage

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSimpleArbitrageNoOpInsideBand(t *testing.T) {
	pool := referencePool()

	result, err := SimpleArbitrage(pool, 2001, 0.001) // 0.05% gap
	require.NoError(t, err)
	require.False(t, result.Executed)
	require.Equal(t, DirectionNone, result.Direction)
	require.InDelta(t, 2000.0, pool.SpotPrice(), 1e-12)
}

func TestSimpleArbitrageBuysWhenPoolCheap(t *testing.T) {
	pool := referencePool()

	result, err := SimpleArbitrage(pool, 2100, 0.001)
	require.NoError(t, err)
	require.True(t, result.Executed)
	require.Equal(t, DirectionBuyFromAMM, result.Direction)

	// The $100 per-pass ceiling binds at this depth.
	require.InDelta(t, 100.0, result.VolumeQuote, 1e-12)
	require.Greater(t, result.Profit, 0.0)
	require.Greater(t, result.PriceImpact, 0.0)
	require.Greater(t, pool.SpotPrice(), 2000.0)
}

func TestSimpleArbitrageSellsWhenPoolRich(t *testing.T) {
	pool := referencePool()

	result, err := SimpleArbitrage(pool, 1900, 0.001)
	require.NoError(t, err)
	require.True(t, result.Executed)
	require.Equal(t, DirectionSellToAMM, result.Direction)

	// The 0.01 asset ceiling binds before the pool-impact cap.
	require.InDelta(t, 0.01*1900, result.VolumeQuote, 1e-9)
	require.Greater(t, result.Profit, 0.0)
	require.Less(t, result.PriceImpact, 0.0)
	require.Less(t, pool.SpotPrice(), 2000.0)
}

func TestSimpleArbitrageRepeatedPassesConverge(t *testing.T) {
	pool := referencePool()

	prevGap := pool.SpotPrice() - 2100
	for i := 0; i < 20; i++ {
		result, err := SimpleArbitrage(pool, 2100, 0.001)
		require.NoError(t, err)
		require.True(t, result.Executed)

		gap := pool.SpotPrice() - 2100
		require.Greater(t, gap, prevGap) // gap is negative, shrinking in magnitude
		prevGap = gap
	}
}
