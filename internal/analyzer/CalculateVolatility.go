package analyzer

import (
	"errors"
	"math"
	"sort"

	"github.com/openamm/dfs/internal/types"
)

// ErrInsufficientData indicates that not enough data points were provided
// to calculate volatility (need at least 2 points for 1 return).
var ErrInsufficientData = errors.New("insufficient data points to calculate volatility")

// CalculateVolatility calculates annualized historical volatility from a
// price series using logarithmic returns and population standard deviation.
// The series is sorted chronologically first if needed. The
// annualizationFactor should match the data frequency (252 for trading-day
// data, 8760 for hourly).
func CalculateVolatility(prices []types.PriceData, annualizationFactor float64) (float64, error) {
	if len(prices) < 2 {
		return 0, ErrInsufficientData
	}

	sort.Slice(prices, func(i, j int) bool {
		return prices[i].Timestamp.Before(prices[j].Timestamp)
	})

	logReturns := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		// Non-positive prices would break the log; skip the pair.
		if prices[i-1].Price <= 0 || prices[i].Price <= 0 {
			continue
		}
		logReturns = append(logReturns, math.Log(prices[i].Price/prices[i-1].Price))
	}
	if len(logReturns) == 0 {
		return 0, ErrInsufficientData
	}

	return stdDev(logReturns) * math.Sqrt(annualizationFactor), nil
}

// stdDev is the population standard deviation (divide by N, not N-1).
func stdDev(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var sumSqDiff float64
	for _, v := range values {
		diff := v - mean
		sumSqDiff += diff * diff
	}
	return math.Sqrt(sumSqDiff / float64(len(values)))
}
