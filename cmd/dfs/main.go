package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/openamm/dfs/internal/config"
	"github.com/openamm/dfs/internal/logger"
	"github.com/openamm/dfs/internal/pricepath"
	"github.com/openamm/dfs/internal/simulator"
	"github.com/openamm/dfs/internal/state"
	"github.com/openamm/dfs/internal/types"
	"github.com/openamm/dfs/internal/web"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Base-unit precisions for on-chain reserve CSV files (18-decimal asset,
// 6-decimal quote, the common ERC-20/USDC pairing).
const (
	assetPrecision = 18
	quotePrecision = 6
)

// main is the entry point for the dynamic fee simulator.
func main() {
	// --- 1. Initialization Phase ---
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("Warning: .env file not found. Relying on OS environment variables.")
	}

	// Load configuration from environment variables
	if err := config.LoadConfig(); err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger.Initialize(config.LogLevel)
	log.Info().Msg("Dynamic Fee Simulator Starting...")

	// Initialize Database Connection (optional; runs work without one)
	persist := false
	if os.Getenv("DB_HOST") != "" {
		dbCfg := state.DBConfig{
			Host: os.Getenv("DB_HOST"), Port: mustAtoi(os.Getenv("DB_PORT"), 5432),
			User: os.Getenv("DB_USER"), Password: os.Getenv("DB_PASSWORD"),
			DBName: os.Getenv("DB_NAME"), SSLMode: os.Getenv("DB_SSLMODE"),
		}
		if err := state.InitDB(dbCfg); err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize database")
		}
		defer state.CloseDB()
		if err := state.EnsureSchema(); err != nil {
			log.Fatal().Err(err).Msg("Failed to ensure database schema")
		}
		persist = true
	} else {
		log.Warn().Msg("DB_HOST not set, running without persistence")
	}

	// --- Start Web Server ---
	webServer := web.NewWebServer(config.WebPort)
	go func() {
		log.Info().Str("port", config.WebPort).Str("url", "http://localhost:"+config.WebPort).Msg("Starting results dashboard")
		if err := webServer.Start(); err != nil {
			log.Error().Err(err).Msg("Web server failed to start")
		}
	}()

	// --- 2. Build the Simulation Configuration ---
	classCfg, err := config.ResolvePoolClass(config.PoolClass)
	if err != nil {
		log.Fatal().Err(err).Msg("Unknown pool class")
	}

	simCfg := config.DefaultSimulationConfig()
	simCfg.Markets = config.Markets
	simCfg.Days = config.Days
	simCfg.Seed = config.Seed

	var pricePaths [][]types.PriceData
	if config.PriceCSVPath != "" {
		series, err := pricepath.LoadCSV(config.PriceCSVPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", config.PriceCSVPath).Msg("Failed to load price CSV")
		}
		// A historical series replaces the synthetic paths: one market,
		// one day per observation after the first.
		simCfg.Markets = 1
		simCfg.Days = len(series) - 1
		simCfg.InitialPrice = series[0].Price
		pricePaths = [][]types.PriceData{series}
		log.Info().Int("observations", len(series)).Msg("Loaded historical price series")
	}

	if config.ReservesCSVPath != "" {
		samples, err := pricepath.LoadReserveCSV(config.ReservesCSVPath, assetPrecision, quotePrecision)
		if err != nil {
			log.Fatal().Err(err).Str("path", config.ReservesCSVPath).Msg("Failed to load reserves CSV")
		}
		latest := samples[len(samples)-1]
		simCfg.InitialReserveX = latest.ReserveX
		simCfg.InitialReserveY = latest.ReserveY
		log.Info().
			Float64("reserveX", latest.ReserveX).
			Float64("reserveY", latest.ReserveY).
			Msg("Seeded pool reserves from on-chain samples")
	}

	// --- 3. Create Simulator Instance with Dependency Injection ---
	sim, err := simulator.NewSimulator(simulator.Config{
		ClassConfig: classCfg,
		SimConfig:   simCfg,
		PricePaths:  pricePaths,
		Persist:     persist,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create simulator instance")
	}

	// --- 4. Run ---
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	snapshot, err := sim.Run(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Simulation run failed")
	}

	log.Info().
		Int("runNumber", snapshot.RunNumber).
		Float64("meanFee", snapshot.Summary.MeanFee).
		Float64("terminalFee", snapshot.Summary.TerminalFee).
		Float64("totalVolume", snapshot.Summary.TotalVolumeQuote).
		Float64("totalFees", snapshot.Summary.TotalFeesEarned).
		Int("daysOutOfBand", snapshot.Summary.DaysOutOfBand).
		Msg("Run complete")

	log.Info().Msg("Dashboard serving results. Press Ctrl+C to exit.")
	<-ctx.Done()
}

// Helper to convert string to int with a default value
func mustAtoi(s string, defaultValue int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}
	return i
}
