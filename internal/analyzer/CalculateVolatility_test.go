package analyzer

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/openamm/dfs/internal/types"
)

func dailySeries(prices ...float64) []types.PriceData {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	series := make([]types.PriceData, len(prices))
	for i, p := range prices {
		series[i] = types.PriceData{Timestamp: base.AddDate(0, 0, i), Price: p}
	}
	return series
}

func TestCalculateVolatilityConstantPrices(t *testing.T) {
	vol, err := CalculateVolatility(dailySeries(100, 100, 100, 100), 252)
	require.NoError(t, err)
	require.Zero(t, vol)
}

func TestCalculateVolatilityKnownSeries(t *testing.T) {
	// Alternating +/-10% log moves: returns are +ln(1.1), -ln(1.1), ...
	vol, err := CalculateVolatility(dailySeries(100, 110, 99, 108.9, 98.01), 252)
	require.NoError(t, err)

	r := math.Log(1.1)
	d := math.Log(0.9)
	mean := (2*r + 2*d) / 4
	variance := (2*(r-mean)*(r-mean) + 2*(d-mean)*(d-mean)) / 4
	require.InDelta(t, math.Sqrt(variance*252), vol, 1e-9)
}

func TestCalculateVolatilitySortsInput(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	shuffled := []types.PriceData{
		{Timestamp: base.AddDate(0, 0, 2), Price: 120},
		{Timestamp: base, Price: 100},
		{Timestamp: base.AddDate(0, 0, 1), Price: 110},
	}

	vol, err := CalculateVolatility(shuffled, 252)
	require.NoError(t, err)

	ordered, err := CalculateVolatility(dailySeries(100, 110, 120), 252)
	require.NoError(t, err)
	require.InDelta(t, ordered, vol, 1e-12)
}

func TestCalculateVolatilityInsufficientData(t *testing.T) {
	_, err := CalculateVolatility(nil, 252)
	require.ErrorIs(t, err, ErrInsufficientData)

	_, err = CalculateVolatility(dailySeries(100), 252)
	require.ErrorIs(t, err, ErrInsufficientData)

	// All pairs skipped due to non-positive prices.
	_, err = CalculateVolatility(dailySeries(0, -1, 0), 252)
	require.ErrorIs(t, err, ErrInsufficientData)
}
