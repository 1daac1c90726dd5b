/*

This file computes end-of-run aggregate statistics from the per-day
snapshots a simulation produced: fee path statistics, cumulative volume and
fee income, realized reference-price volatility, and how often activity sat
outside the controller's tolerance band.

*/

package analyzer

import (
	"math"
	"time"

	"github.com/openamm/dfs/internal/types"
)

// TradingDaysPerYear is the annualization base for daily observations.
const TradingDaysPerYear = 252

// SummarizeRun reduces the daily snapshots of one run to a RunSummary.
// tolerance is the fee controller band half-width used to count
// out-of-band days. An empty snapshot slice yields a zero summary.
func SummarizeRun(daily []types.DailySnapshot, tolerance float64) types.RunSummary {
	if len(daily) == 0 {
		return types.RunSummary{}
	}

	summary := types.RunSummary{
		MinFee:            math.Inf(1),
		MaxFee:            math.Inf(-1),
		SnapshotsRecorded: len(daily),
	}

	lastDay := 0
	for _, snap := range daily {
		if snap.Day > lastDay {
			lastDay = snap.Day
		}
	}

	var feeSum float64
	for _, snap := range daily {
		feeSum += snap.Fee
		summary.MinFee = math.Min(summary.MinFee, snap.Fee)
		summary.MaxFee = math.Max(summary.MaxFee, snap.Fee)
		summary.TotalVolumeQuote += snap.VolumeQuote
		summary.TotalFeesEarned += snap.FeesEarned
		summary.TotalArbProfit += snap.ArbProfit

		if snap.TVLQuote > 0 {
			ratio := snap.VolumeQuote / snap.TVLQuote
			if ratio < snap.TargetRatio*(1-tolerance) || ratio > snap.TargetRatio*(1+tolerance) {
				summary.DaysOutOfBand++
			}
		}

		if snap.Day == lastDay {
			summary.FinalTVLQuote += snap.TVLQuote
			if snap.Market == 0 {
				summary.TerminalFee = snap.Fee
			}
		}
	}
	summary.MeanFee = feeSum / float64(len(daily))

	summary.PriceVolatility = realizedVolatility(daily)

	return summary
}

// realizedVolatility computes annualized volatility from the reference
// price series of market instance 0. Runs shorter than two days report 0.
func realizedVolatility(daily []types.DailySnapshot) float64 {
	base := time.Unix(0, 0).UTC()
	var prices []types.PriceData
	for _, snap := range daily {
		if snap.Market != 0 {
			continue
		}
		prices = append(prices, types.PriceData{
			Timestamp: base.AddDate(0, 0, snap.Day),
			Price:     snap.ReferencePrice,
		})
	}

	vol, err := CalculateVolatility(prices, TradingDaysPerYear)
	if err != nil {
		return 0
	}
	return vol
}

// MeanFeeByDay averages the fee across market instances for each day,
// returning a dense series indexed by day (day numbering starts at 1).
func MeanFeeByDay(daily []types.DailySnapshot) []float64 {
	maxDay := 0
	for _, snap := range daily {
		if snap.Day > maxDay {
			maxDay = snap.Day
		}
	}
	if maxDay == 0 {
		return nil
	}

	sums := make([]float64, maxDay)
	counts := make([]int, maxDay)
	for _, snap := range daily {
		if snap.Day < 1 {
			continue
		}
		sums[snap.Day-1] += snap.Fee
		counts[snap.Day-1]++
	}

	series := make([]float64, maxDay)
	for i := range series {
		if counts[i] > 0 {
			series[i] = sums[i] / float64(counts[i])
		}
	}
	return series
}
