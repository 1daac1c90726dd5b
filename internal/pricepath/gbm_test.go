package pricepath

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/openamm/dfs/internal/types"
)

func pathConfig() types.SimulationConfig {
	return types.SimulationConfig{
		Markets:      4,
		Days:         252,
		Horizon:      1.0,
		InitialPrice: 2000,
		Drift:        0.05,
		Volatility:   0.8,
	}
}

func TestGeneratePath(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	path, err := GeneratePath(pathConfig(), start, 42)
	require.NoError(t, err)
	require.Len(t, path, 253)

	require.Equal(t, start, path[0].Timestamp)
	require.InDelta(t, 2000.0, path[0].Price, 1e-12)

	for i, obs := range path {
		require.Greater(t, obs.Price, 0.0)
		require.False(t, math.IsNaN(obs.Price))
		if i > 0 {
			require.True(t, obs.Timestamp.After(path[i-1].Timestamp))
		}
	}
}

func TestGeneratePathDeterministic(t *testing.T) {
	start := time.Now().UTC()

	a, err := GeneratePath(pathConfig(), start, 42)
	require.NoError(t, err)
	b, err := GeneratePath(pathConfig(), start, 42)
	require.NoError(t, err)
	require.Equal(t, a, b)

	c, err := GeneratePath(pathConfig(), start, 43)
	require.NoError(t, err)
	require.NotEqual(t, a[1].Price, c[1].Price)
}

func TestGeneratePathZeroVolatilityFollowsDrift(t *testing.T) {
	cfg := pathConfig()
	cfg.Volatility = 0

	path, err := GeneratePath(cfg, time.Now().UTC(), 1)
	require.NoError(t, err)

	terminal := path[len(path)-1].Price
	require.InDelta(t, 2000*math.Exp(0.05), terminal, 2000*math.Exp(0.05)*1e-9)
}

func TestGeneratePathRejectsBadParams(t *testing.T) {
	cfg := pathConfig()
	cfg.Days = 0
	_, err := GeneratePath(cfg, time.Now(), 1)
	require.ErrorIs(t, err, ErrInvalidPathParams)

	cfg = pathConfig()
	cfg.InitialPrice = -1
	_, err = GeneratePath(cfg, time.Now(), 1)
	require.ErrorIs(t, err, ErrInvalidPathParams)
}

func TestGeneratePathsIndependentInstances(t *testing.T) {
	paths, err := GeneratePaths(pathConfig(), time.Now().UTC(), 42, 4)
	require.NoError(t, err)
	require.Len(t, paths, 4)
	require.NotEqual(t, paths[0][1].Price, paths[1][1].Price)

	_, err = GeneratePaths(pathConfig(), time.Now(), 42, 0)
	require.ErrorIs(t, err, ErrInvalidPathParams)
}
