package analyzer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openamm/dfs/internal/types"
)

func TestSummarizeRunEmpty(t *testing.T) {
	require.Equal(t, types.RunSummary{}, SummarizeRun(nil, 0.05))
}

func TestSummarizeRun(t *testing.T) {
	daily := []types.DailySnapshot{
		{Day: 1, Market: 0, ReferencePrice: 2000, Fee: 0.0005, TargetRatio: 0.05, VolumeQuote: 100_000, TVLQuote: 2_000_000, FeesEarned: 50, ArbProfit: 10},
		{Day: 1, Market: 1, ReferencePrice: 2000, Fee: 0.0006, TargetRatio: 0.05, VolumeQuote: 102_000, TVLQuote: 2_000_000, FeesEarned: 60, ArbProfit: 5},
		{Day: 2, Market: 0, ReferencePrice: 2100, Fee: 0.0007, TargetRatio: 0.052, VolumeQuote: 104_000, TVLQuote: 2_050_000, FeesEarned: 70, ArbProfit: 0},
		{Day: 2, Market: 1, ReferencePrice: 2100, Fee: 0.0004, TargetRatio: 0.052, VolumeQuote: 106_500, TVLQuote: 2_048_000, FeesEarned: 40, ArbProfit: 15},
	}

	summary := SummarizeRun(daily, 0.05)

	require.Equal(t, 4, summary.SnapshotsRecorded)
	require.InDelta(t, (0.0005+0.0006+0.0007+0.0004)/4, summary.MeanFee, 1e-12)
	require.InDelta(t, 0.0004, summary.MinFee, 1e-12)
	require.InDelta(t, 0.0007, summary.MaxFee, 1e-12)
	require.InDelta(t, 0.0007, summary.TerminalFee, 1e-12) // market 0 on the last day
	require.InDelta(t, 412_500.0, summary.TotalVolumeQuote, 1e-6)
	require.InDelta(t, 220.0, summary.TotalFeesEarned, 1e-9)
	require.InDelta(t, 30.0, summary.TotalArbProfit, 1e-9)
	require.InDelta(t, 2_050_000.0+2_048_000.0, summary.FinalTVLQuote, 1e-6)
	// Two days give a single log return, whose population stddev is zero.
	require.Zero(t, summary.PriceVolatility)
}

func TestSummarizeRunCountsOutOfBandDays(t *testing.T) {
	daily := []types.DailySnapshot{
		// ratio 0.05 == target, within a 5% band
		{Day: 1, Market: 0, ReferencePrice: 2000, Fee: 0.0005, TargetRatio: 0.05, VolumeQuote: 100, TVLQuote: 2_000},
		// ratio 0.10 against target 0.05: far above
		{Day: 2, Market: 0, ReferencePrice: 2000, Fee: 0.0006, TargetRatio: 0.05, VolumeQuote: 200, TVLQuote: 2_000},
		// ratio 0.01: far below
		{Day: 3, Market: 0, ReferencePrice: 2000, Fee: 0.0005, TargetRatio: 0.05, VolumeQuote: 20, TVLQuote: 2_000},
		// zero TVL rows are not counted
		{Day: 4, Market: 0, ReferencePrice: 2000, Fee: 0.0005, TargetRatio: 0.05, VolumeQuote: 20, TVLQuote: 0},
	}

	summary := SummarizeRun(daily, 0.05)
	require.Equal(t, 2, summary.DaysOutOfBand)
}

func TestMeanFeeByDay(t *testing.T) {
	daily := []types.DailySnapshot{
		{Day: 1, Market: 0, Fee: 0.0004},
		{Day: 1, Market: 1, Fee: 0.0006},
		{Day: 2, Market: 0, Fee: 0.0008},
		{Day: 2, Market: 1, Fee: 0.0010},
	}

	series := MeanFeeByDay(daily)
	require.Len(t, series, 2)
	require.InDelta(t, 0.0005, series[0], 1e-12)
	require.InDelta(t, 0.0009, series[1], 1e-12)

	require.Nil(t, MeanFeeByDay(nil))
}
