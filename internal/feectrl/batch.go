/*

This file implements the batch update driver: one shared class config
applied across M independent market-instance controller states. There is no
cross-instance read or write, so the parallel variant is a plain
data-parallel map over chunks of the state slice.

*/

package feectrl

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/openamm/dfs/internal/types"
)

// ErrLengthMismatch signals that the volume, TVL and state slices passed to
// a batch update do not all have the same length.
var ErrLengthMismatch = errors.New("batch input length mismatch")

// Batch drives the per-period update of many market instances sharing one
// class config. States are mutated in place.
type Batch struct {
	Config types.PoolClassConfig
	States []State
}

// NewBatch seeds count identical controller states from the class config.
func NewBatch(cfg types.PoolClassConfig, count int, initialTargetRatio float64) *Batch {
	states := make([]State, count)
	for i := range states {
		states[i] = NewState(cfg, initialTargetRatio)
	}
	return &Batch{Config: cfg, States: states}
}

// Fees returns the current fee of every instance, in instance order.
func (b *Batch) Fees() []float64 {
	fees := make([]float64, len(b.States))
	for i := range b.States {
		fees[i] = b.States[i].CurrentFee
	}
	return fees
}

func (b *Batch) checkLengths(volumes, tvls []float64) error {
	if len(volumes) != len(b.States) || len(tvls) != len(b.States) {
		return fmt.Errorf("%w: %d states, %d volumes, %d tvls",
			ErrLengthMismatch, len(b.States), len(volumes), len(tvls))
	}
	return nil
}

// Update applies one period of (volume, tvl) observations to every instance
// sequentially and returns the updated fee slice.
func (b *Batch) Update(volumes, tvls []float64) ([]float64, error) {
	if err := b.checkLengths(volumes, tvls); err != nil {
		return nil, err
	}
	for i := range b.States {
		b.States[i].Step(b.Config, volumes[i], tvls[i])
	}
	return b.Fees(), nil
}

// UpdateParallel is Update fanned out over worker goroutines, one contiguous
// chunk of instances per worker. Instances are independent, so no locking is
// needed; results are identical to the sequential variant.
func (b *Batch) UpdateParallel(volumes, tvls []float64) ([]float64, error) {
	if err := b.checkLengths(volumes, tvls); err != nil {
		return nil, err
	}

	workers := runtime.GOMAXPROCS(0)
	if workers > len(b.States) {
		workers = len(b.States)
	}
	if workers <= 1 {
		return b.Update(volumes, tvls)
	}

	chunk := (len(b.States) + workers - 1) / workers

	var wg sync.WaitGroup
	for start := 0; start < len(b.States); start += chunk {
		end := start + chunk
		if end > len(b.States) {
			end = len(b.States)
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				b.States[i].Step(b.Config, volumes[i], tvls[i])
			}
		}(start, end)
	}
	wg.Wait()

	return b.Fees(), nil
}
