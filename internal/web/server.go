package web

import (
	"encoding/json"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/openamm/dfs/internal/config"
	"github.com/openamm/dfs/internal/logger"
	"github.com/openamm/dfs/internal/state"
)

var webLogger = logger.GetForComponent("web_server")

// WebServer handles HTTP requests for simulation run data
type WebServer struct {
	router *mux.Router
	port   string
}

// NewWebServer creates a new web server instance
func NewWebServer(port string) *WebServer {
	if port == "" {
		port = "8080"
	}

	server := &WebServer{
		router: mux.NewRouter(),
		port:   port,
	}

	server.setupRoutes()
	return server
}

// setupRoutes configures all HTTP routes
func (ws *WebServer) setupRoutes() {
	// Health endpoint (direct route)
	ws.router.HandleFunc("/health", ws.handleHealth).Methods("GET")

	// API endpoints
	api := ws.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", ws.handleHealth).Methods("GET")
	api.HandleFunc("/runs", ws.handleGetRuns).Methods("GET")
	api.HandleFunc("/runs/latest", ws.handleGetLatestRun).Methods("GET")
	api.HandleFunc("/runs/{id}", ws.handleGetRun).Methods("GET")
	api.HandleFunc("/summary", ws.handleGetRunStats).Methods("GET")
	api.HandleFunc("/pool-classes", ws.handleGetPoolClasses).Methods("GET")

	ws.router.Use(ws.corsMiddleware)
	ws.router.Use(ws.loggingMiddleware)
}

// Start starts the web server
func (ws *WebServer) Start() error {
	webLogger.Info().Str("port", ws.port).Msg("Starting web server")

	server := &http.Server{
		Addr:         ":" + ws.port,
		Handler:      ws.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return server.ListenAndServe()
}

// handleHealth returns server health status
func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	dbHealthy := true
	if err := state.TestDBConnection(); err != nil {
		dbHealthy = false
	}

	var lastRunInfo map[string]interface{}
	if runs, err := state.GetRecentRuns(1); err == nil && len(runs) > 0 {
		lastRunInfo = map[string]interface{}{
			"run_number":    runs[0].RunNumber,
			"pool_class":    runs[0].PoolClass,
			"last_run_time": runs[0].Timestamp,
			"terminal_fee":  runs[0].Summary.TerminalFee,
		}
	}

	status := "OK"
	statusCode := http.StatusOK
	if !dbHealthy {
		status = "DEGRADED"
		statusCode = http.StatusServiceUnavailable
	}

	response := map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		"system": map[string]interface{}{
			"version":            runtime.Version(),
			"goroutines_count":   runtime.NumGoroutine(),
			"alloc_bytes":        memStats.Alloc,
			"sys_bytes":          memStats.Sys,
			"heap_objects_count": memStats.HeapObjects,
			"gc_cycles":          memStats.NumGC,
		},
		"component": map[string]interface{}{
			"name":    "dfs-dynamic-fee-simulator",
			"version": "1.0.0",
		},
		"simulator_status": map[string]interface{}{
			"database_healthy": dbHealthy,
			"last_run":         lastRunInfo,
		},
	}

	ws.writeJSONResponse(w, statusCode, response)
}

// handleGetRuns returns recent runs
func (ws *WebServer) handleGetRuns(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsedLimit, err := strconv.Atoi(limitStr); err == nil && parsedLimit > 0 && parsedLimit <= 100 {
			limit = parsedLimit
		}
	}

	runs, err := state.GetRecentRuns(limit)
	if err != nil {
		webLogger.Error().Err(err).Msg("Failed to get recent runs")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve runs")
		return
	}

	response := map[string]interface{}{
		"runs":  runs,
		"count": len(runs),
		"limit": limit,
	}

	ws.writeJSONResponse(w, http.StatusOK, response)
}

// handleGetRun returns a specific run by snapshot ID
func (ws *WebServer) handleGetRun(w http.ResponseWriter, r *http.Request) {
	idStr := mux.Vars(r)["id"]

	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Invalid run ID")
		return
	}

	run, err := state.GetRunByID(id)
	if err != nil {
		webLogger.Error().Err(err).Int64("runId", id).Msg("Failed to get run")
		ws.writeErrorResponse(w, http.StatusNotFound, "Run not found")
		return
	}

	ws.writeJSONResponse(w, http.StatusOK, run)
}

// handleGetLatestRun returns the most recent run with daily detail
func (ws *WebServer) handleGetLatestRun(w http.ResponseWriter, r *http.Request) {
	run, err := state.GetLatestRun()
	if err != nil {
		webLogger.Error().Err(err).Msg("Failed to get latest run")
		ws.writeErrorResponse(w, http.StatusNotFound, "No runs found")
		return
	}

	ws.writeJSONResponse(w, http.StatusOK, run)
}

// handleGetRunStats returns per-class aggregates across stored runs
func (ws *WebServer) handleGetRunStats(w http.ResponseWriter, r *http.Request) {
	stats, err := state.GetRunStats()
	if err != nil {
		webLogger.Error().Err(err).Msg("Failed to get run stats")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve run statistics")
		return
	}

	response := map[string]interface{}{
		"summary":   stats,
		"timestamp": time.Now().UTC(),
	}

	ws.writeJSONResponse(w, http.StatusOK, response)
}

// handleGetPoolClasses returns the published pool class parameter sets
func (ws *WebServer) handleGetPoolClasses(w http.ResponseWriter, r *http.Request) {
	ws.writeJSONResponse(w, http.StatusOK, config.DefaultPoolClassConfigs)
}

// writeJSONResponse writes a JSON response
func (ws *WebServer) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		webLogger.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeErrorResponse writes an error response
func (ws *WebServer) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	response := map[string]interface{}{
		"error":     true,
		"message":   message,
		"timestamp": time.Now().UTC(),
	}

	ws.writeJSONResponse(w, statusCode, response)
}

// corsMiddleware adds CORS headers
func (ws *WebServer) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs requests
func (ws *WebServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		webLogger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).
			Msg("Request handled")
	})
}
