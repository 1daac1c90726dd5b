package feectrl

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openamm/dfs/internal/types"
)

func standardConfig() types.PoolClassConfig {
	return types.PoolClassConfig{
		Class:             types.PoolClassStandard,
		LinearSlope:       1.0,
		Alpha:             0.15,
		MaxFeeDelta:       100,
		Tolerance:         0.05,
		InitialFee:        0.0005,
		MinFee:            0.0001,
		MaxFee:            0.03,
		MaxAdjustmentRate: 100,
	}
}

func TestStepAboveBandSingle(t *testing.T) {
	cfg := standardConfig()
	s := NewState(cfg, 0.05)

	// ratio = 100/1000 = 0.10, above the band [0.0475, 0.0525].
	s.Step(cfg, 100, 1000)

	require.Equal(t, 1, s.ConsecutiveCounter)
	require.Equal(t, Above, s.LastDirection)

	// Raw delta 0.0005*1.0 is capped by the step bound 100*1*1/1e6.
	require.InDelta(t, 0.0006, s.CurrentFee, 1e-12)

	// Target drifts toward the observed ratio after the fee move.
	require.InDelta(t, 0.0575, s.TargetRatio, 1e-12)
}

func TestStepWithinBandResetsCounter(t *testing.T) {
	cfg := standardConfig()
	s := NewState(cfg, 0.05)
	s.ConsecutiveCounter = 4
	s.LastDirection = Above

	fee := s.CurrentFee
	s.Step(cfg, 50, 1000) // ratio 0.05 == target, within band

	require.Equal(t, 0, s.ConsecutiveCounter)
	require.Equal(t, Within, s.LastDirection)
	require.InDelta(t, fee, s.CurrentFee, 1e-12)
}

func TestStepZeroTVLSkipsPeriod(t *testing.T) {
	cfg := standardConfig()
	s := NewState(cfg, 0.05)
	before := s

	s.Step(cfg, 100, 0)
	require.Equal(t, before, s)

	s.Step(cfg, 100, -5)
	require.Equal(t, before, s)
}

func TestStepBelowTargetFallsTwiceAsFast(t *testing.T) {
	cfg := standardConfig()

	up := NewState(cfg, 0.05)
	up.Step(cfg, 100, 1000) // above, step bound 0.0001

	down := NewState(cfg, 0.05)
	down.Step(cfg, 1, 1000) // ratio 0.001, far below, step bound 0.0002

	require.InDelta(t, 0.0001, up.CurrentFee-cfg.InitialFee, 1e-12)
	require.InDelta(t, 0.0002, cfg.InitialFee-down.CurrentFee, 1e-12)
}

func TestCounterEscalationAndMonotoneFee(t *testing.T) {
	cfg := standardConfig()
	s := NewState(cfg, 0.05)

	prevFee := s.CurrentFee
	for n := 1; n <= 8; n++ {
		// Sustained activity far above the band. The target drifts up via
		// the EMA but stays well below the observed ratio.
		s.Step(cfg, 500, 1000)
		require.Equal(t, n, s.ConsecutiveCounter)
		require.GreaterOrEqual(t, s.CurrentFee, prevFee)
		prevFee = s.CurrentFee
	}
}

func TestDirectionFlipResetsCounter(t *testing.T) {
	cfg := standardConfig()
	s := NewState(cfg, 0.05)

	s.Step(cfg, 500, 1000)
	s.Step(cfg, 500, 1000)
	require.Equal(t, 2, s.ConsecutiveCounter)
	require.Equal(t, Above, s.LastDirection)

	s.Step(cfg, 1, 1000)
	require.Equal(t, 1, s.ConsecutiveCounter)
	require.Equal(t, Below, s.LastDirection)
}

func TestFeeStaysWithinBounds(t *testing.T) {
	cfg := standardConfig()
	s := NewState(cfg, 0.05)
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 5000; i++ {
		volume := rng.Float64() * 2_000_000
		tvl := rng.Float64() * 2_000_000 // occasionally tiny, never negative
		s.Step(cfg, volume, tvl)
		require.GreaterOrEqual(t, s.CurrentFee, cfg.MinFee)
		require.LessOrEqual(t, s.CurrentFee, cfg.MaxFee)
	}
}

func TestZeroTargetRatioYieldsZeroAdjustment(t *testing.T) {
	cfg := standardConfig()
	s := NewState(cfg, 0)

	s.Step(cfg, 100, 1000)
	require.InDelta(t, cfg.InitialFee, s.CurrentFee, 1e-12)
	// EMA still pulls the target toward the observed ratio.
	require.InDelta(t, cfg.Alpha*0.1, s.TargetRatio, 1e-12)
}

func TestDirectionString(t *testing.T) {
	require.Equal(t, "below", Below.String())
	require.Equal(t, "within", Within.String())
	require.Equal(t, "above", Above.String())
}
