package feectrl

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBatchUpdate(t *testing.T) {
	cfg := standardConfig()
	b := NewBatch(cfg, 3, 0.05)

	volumes := []float64{100, 50, 1}
	tvls := []float64{1000, 1000, 1000}

	fees, err := b.Update(volumes, tvls)
	require.NoError(t, err)
	require.Len(t, fees, 3)

	require.InDelta(t, 0.0006, fees[0], 1e-12) // above band
	require.InDelta(t, 0.0005, fees[1], 1e-12) // within band
	require.InDelta(t, 0.0003, fees[2], 1e-12) // below band, double step

	// Instances evolve independently.
	require.Equal(t, 1, b.States[0].ConsecutiveCounter)
	require.Equal(t, 0, b.States[1].ConsecutiveCounter)
	require.Equal(t, 1, b.States[2].ConsecutiveCounter)
}

func TestBatchUpdateLengthMismatch(t *testing.T) {
	b := NewBatch(standardConfig(), 3, 0.05)

	_, err := b.Update([]float64{1, 2}, []float64{1, 2, 3})
	require.ErrorIs(t, err, ErrLengthMismatch)

	_, err = b.UpdateParallel([]float64{1, 2, 3}, []float64{1})
	require.ErrorIs(t, err, ErrLengthMismatch)
}

func TestBatchParallelMatchesSequential(t *testing.T) {
	cfg := standardConfig()
	const markets = 257 // deliberately not a multiple of the worker count

	seq := NewBatch(cfg, markets, 0.05)
	par := NewBatch(cfg, markets, 0.05)

	rng := rand.New(rand.NewSource(42))
	for day := 0; day < 50; day++ {
		volumes := make([]float64, markets)
		tvls := make([]float64, markets)
		for i := range volumes {
			volumes[i] = rng.Float64() * 500_000
			tvls[i] = 100_000 + rng.Float64()*1_900_000
		}

		seqFees, err := seq.Update(volumes, tvls)
		require.NoError(t, err)
		parFees, err := par.UpdateParallel(volumes, tvls)
		require.NoError(t, err)

		require.Equal(t, seqFees, parFees)
	}
	require.Equal(t, seq.States, par.States)
}
