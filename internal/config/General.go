package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/rs/zerolog/log"
)

// Application configuration loaded from environment variables. Populated at
// startup by LoadConfig; simulation parameters fall back to the published
// defaults when unset.
var (
	// LogLevel controls zerolog verbosity (trace, debug, info, ...).
	LogLevel string

	// WebPort is the port the analytics dashboard API listens on.
	WebPort string

	// PoolClass selects the fee controller risk class for this run.
	PoolClass string

	// Markets is the number of independent market instances per run.
	Markets int
	// Days is the number of simulated trading days per run.
	Days int

	// Seed is the base seed for all per-agent generators.
	Seed int64

	// PriceCSVPath optionally replaces the synthetic price path with a
	// historical series. Empty means synthetic.
	PriceCSVPath string

	// ReservesCSVPath optionally initializes pool reserves from a base-unit
	// reserve snapshot export. Empty means config defaults.
	ReservesCSVPath string
)

// LoadConfig loads configuration from environment variables and sets the
// global config vars.
func LoadConfig() error {
	log.Info().Msg("Loading application configuration from environment variables...")

	var err error

	LogLevel = getEnvOr("LOG_LEVEL", "info")
	WebPort = getEnvOr("WEB_PORT", "8080")
	PoolClass = getEnvOr("DFS_POOL_CLASS", "standard")

	if Markets, err = getEnvAsIntOr("DFS_MARKETS", 100); err != nil {
		return err
	}
	if Days, err = getEnvAsIntOr("DFS_DAYS", 252); err != nil {
		return err
	}
	if Seed, err = getEnvAsInt64Or("DFS_SEED", 1); err != nil {
		return err
	}

	PriceCSVPath = getEnvOr("DFS_PRICE_CSV", "")
	ReservesCSVPath = getEnvOr("DFS_RESERVES_CSV", "")

	log.Debug().
		Str("PoolClass", PoolClass).
		Int("Markets", Markets).
		Int("Days", Days).
		Int64("Seed", Seed).
		Msg("Configuration loaded successfully.")

	return nil
}

// getEnv retrieves a string environment variable. Returns error if not set.
func getEnv(key string) (string, error) {
	if value, exists := os.LookupEnv(key); exists {
		return value, nil
	}
	return "", errors.New("environment variable " + key + " is required but not set")
}

// getEnvOr retrieves a string environment variable, falling back to def.
func getEnvOr(key, def string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return def
}

// getEnvAsIntOr retrieves an environment variable as an int, falling back to
// def when unset. Returns error if set but invalid.
func getEnvAsIntOr(key string, def int) (int, error) {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return def, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, errors.New("environment variable " + key + " must be a valid int, got: " + valueStr)
	}
	return value, nil
}

// getEnvAsInt64Or retrieves an environment variable as an int64, falling
// back to def when unset. Returns error if set but invalid.
func getEnvAsInt64Or(key string, def int64) (int64, error) {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return def, nil
	}
	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		return 0, errors.New("environment variable " + key + " must be a valid int64, got: " + valueStr)
	}
	return value, nil
}
