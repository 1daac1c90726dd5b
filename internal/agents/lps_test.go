package agents

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLPInitialDeployment(t *testing.T) {
	lp := NewLP(0, PassiveLPProfile, 100_000, 42)

	require.True(t, lp.ShouldCheckSwitch(0))

	choice := lp.EvaluateSwitch(
		PoolYield{PoolID: "a", APR: 0.05},
		[]PoolYield{{PoolID: "b", APR: 0.08}, {PoolID: "c", APR: 0.02}},
	)
	require.Equal(t, "b", choice)

	action := lp.ExecuteSwitch("b", 0)
	require.Empty(t, action.RemoveFrom)
	require.Equal(t, "b", action.AddTo)
	require.InDelta(t, 100_000.0, action.AddAmount, 1e-9)

	require.NotNil(t, lp.Position)
	require.Equal(t, "b", lp.Position.PoolID)
	// Next check is jittered around the 90 day interval.
	require.GreaterOrEqual(t, lp.Position.NextSwitchDay, 72)
	require.LessOrEqual(t, lp.Position.NextSwitchDay, 108)
	require.False(t, lp.ShouldCheckSwitch(1))
	require.True(t, lp.ShouldCheckSwitch(lp.Position.NextSwitchDay))
}

func TestLPSwitchRequiresCostCoverage(t *testing.T) {
	lp := NewLP(0, PassiveLPProfile, 100_000, 42)
	lp.ExecuteSwitch("a", 0)

	// 0.5% cost over a 90 day hold needs roughly 2% of APR pickup.
	// A 1% pickup is not enough.
	choice := lp.EvaluateSwitch(
		PoolYield{PoolID: "a", APR: 0.05},
		[]PoolYield{{PoolID: "b", APR: 0.06}},
	)
	require.Empty(t, choice)

	// A 5% pickup clears the bar.
	choice = lp.EvaluateSwitch(
		PoolYield{PoolID: "a", APR: 0.05},
		[]PoolYield{{PoolID: "b", APR: 0.10}},
	)
	require.Equal(t, "b", choice)
}

func TestLPActiveSwitchesOnSmallerEdge(t *testing.T) {
	lp := NewLP(0, ActiveLPProfile, 100_000, 42)
	lp.ExecuteSwitch("a", 0)

	// 0.1% cost over 7 days needs just over a 5.2% APR pickup.
	choice := lp.EvaluateSwitch(
		PoolYield{PoolID: "a", APR: 0.05},
		[]PoolYield{{PoolID: "b", APR: 0.12}},
	)
	require.Equal(t, "b", choice)
}

func TestLPExecuteSwitchPaysCost(t *testing.T) {
	lp := NewLP(0, PassiveLPProfile, 100_000, 42)
	lp.ExecuteSwitch("a", 0)

	action := lp.ExecuteSwitch("b", 90)
	require.Equal(t, "a", action.RemoveFrom)
	require.InDelta(t, 100_000.0, action.RemoveAmount, 1e-9)
	require.Equal(t, "b", action.AddTo)
	require.InDelta(t, 99_500.0, action.AddAmount, 1e-9)

	require.Equal(t, 1, lp.Switches)
	require.InDelta(t, 500.0, lp.TotalSwitchingCosts, 1e-9)
	require.Equal(t, "b", lp.Position.PoolID)
	require.InDelta(t, 99_500.0, lp.Position.Capital, 1e-9)
	require.Equal(t, 90, lp.Position.EntryDay)
}

func TestLPSwitchToSamePoolIsNoOp(t *testing.T) {
	lp := NewLP(0, ActiveLPProfile, 100_000, 42)
	lp.ExecuteSwitch("a", 0)

	action := lp.ExecuteSwitch("a", 7)
	require.Empty(t, action.AddTo)
	require.Zero(t, lp.Switches)
	require.InDelta(t, 100_000.0, lp.Position.Capital, 1e-9)
}

func TestLPAccrueFees(t *testing.T) {
	lp := NewLP(0, PassiveLPProfile, 100_000, 42)
	lp.AccrueFees(0.365, 1) // no position yet, no-op

	lp.ExecuteSwitch("a", 0)
	lp.AccrueFees(0.365, 1)
	require.InDelta(t, 100_100.0, lp.Position.Capital, 1e-6)
}

func TestLPDeterministicScheduling(t *testing.T) {
	a := NewLP(5, ActiveLPProfile, 100_000, 42)
	b := NewLP(5, ActiveLPProfile, 100_000, 42)

	a.ExecuteSwitch("a", 0)
	b.ExecuteSwitch("a", 0)
	require.Equal(t, a.Position.NextSwitchDay, b.Position.NextSwitchDay)
}

func TestNewLPPopulation(t *testing.T) {
	lps := NewLPPopulation(3, 2, 50_000, 42)
	require.Len(t, lps, 5)
	require.Equal(t, LPPassive, lps[0].Profile.Type)
	require.Equal(t, LPActive, lps[4].Profile.Type)
	for i, lp := range lps {
		require.Equal(t, i, lp.ID)
	}
}
