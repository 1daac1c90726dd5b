/*

This file generates synthetic reference price paths by geometric Brownian
motion. One path per market instance, each from its own seeded generator,
so a run is reproducible and instances are statistically independent.

*/

package pricepath

import (
	"errors"
	"math"
	"math/rand"
	"time"

	"github.com/openamm/dfs/internal/types"
)

var ErrInvalidPathParams = errors.New("invalid price path parameters")

// GeneratePath produces days+1 observations starting at the configured
// initial price, stepping by exact GBM increments: each day multiplies the
// price by exp((mu - sigma^2/2)dt + sigma*sqrt(dt)*Z).
func GeneratePath(cfg types.SimulationConfig, start time.Time, seed int64) ([]types.PriceData, error) {
	if cfg.Days <= 0 || cfg.InitialPrice <= 0 || cfg.Volatility < 0 || cfg.Horizon <= 0 {
		return nil, ErrInvalidPathParams
	}

	rng := rand.New(rand.NewSource(seed))
	dt := cfg.Dt()
	drift := (cfg.Drift - 0.5*cfg.Volatility*cfg.Volatility) * dt
	diffusion := cfg.Volatility * math.Sqrt(dt)

	path := make([]types.PriceData, cfg.Days+1)
	path[0] = types.PriceData{Timestamp: start, Price: cfg.InitialPrice}

	price := cfg.InitialPrice
	for day := 1; day <= cfg.Days; day++ {
		price *= math.Exp(drift + diffusion*rng.NormFloat64())
		path[day] = types.PriceData{
			Timestamp: start.AddDate(0, 0, day),
			Price:     price,
		}
	}
	return path, nil
}

// GeneratePaths produces one independent path per market instance, seeding
// instance i from the base seed plus i.
func GeneratePaths(cfg types.SimulationConfig, start time.Time, seed int64, markets int) ([][]types.PriceData, error) {
	if markets <= 0 {
		return nil, ErrInvalidPathParams
	}
	paths := make([][]types.PriceData, markets)
	for i := range paths {
		path, err := GeneratePath(cfg, start, seed+int64(i))
		if err != nil {
			return nil, err
		}
		paths[i] = path
	}
	return paths, nil
}
