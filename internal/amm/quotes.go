package amm

// GetBestExecution evaluates a trade against every pool and returns the pool
// offering the highest output together with that quote. Quoting runs on
// clones, so live state is untouched. Pools that cannot quote are skipped;
// nil is returned when no pool can serve the trade.
func GetBestExecution(pools []*Pool, size float64, isBuy bool) (*Pool, *TradeResult) {
	var (
		bestPool   *Pool
		bestResult *TradeResult
		bestOutput float64
	)

	for _, pool := range pools {
		result, err := pool.Clone().ExecuteTrade(size, isBuy)
		if err != nil {
			continue
		}
		if result.Output > bestOutput {
			bestOutput = result.Output
			bestPool = pool
			r := result
			bestResult = &r
		}
	}

	return bestPool, bestResult
}

// GetAllQuotes returns the execution quote from every pool able to serve the
// trade, keyed by pool name. Pools below the liquidity floor are skipped.
func GetAllQuotes(pools []*Pool, size float64, isBuy bool) map[string]TradeResult {
	quotes := make(map[string]TradeResult, len(pools))
	for _, pool := range pools {
		result, err := pool.Clone().ExecuteTrade(size, isBuy)
		if err != nil {
			continue
		}
		quotes[pool.Name] = result
	}
	return quotes
}
