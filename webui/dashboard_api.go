// Package webui provides the DashboardAPI REST handlers for the dashboard.
// This file contains handlers for the dashboard API endpoints that serve
// metrics, status, and run information to the operator dashboard.
package webui

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"imageflow/metrics"
)

// DashboardAPI provides REST API handlers for the dashboard.
// It composes the MetricsCollector for data access and provides JSON responses
// for the frontend dashboard.
//
// Endpoints:
// - GET /api/status   - System health status
// - GET /api/runs     - Recent pipeline run records (with limit param)
// - GET /api/metrics  - Per-stage pipeline processing metrics
type DashboardAPI struct {
	store        metrics.MetricsCollector
	defaultLimit int
	maxLimit     int
	versionInfo  VersionInfo
}

// VersionInfo contains version metadata for the status endpoint.
type VersionInfo struct {
	Version   string `json:"version"`
	BuildDate string `json:"build_date,omitempty"`
	GitCommit string `json:"git_commit,omitempty"`
}

// DashboardAPIConfig configures the DashboardAPI behavior.
type DashboardAPIConfig struct {
	// DefaultLimit is the default number of items to return in list endpoints
	DefaultLimit int

	// MaxLimit is the maximum number of items that can be requested
	MaxLimit int

	// VersionInfo contains application version metadata
	VersionInfo VersionInfo
}

// DefaultDashboardAPIConfig returns a default configuration.
func DefaultDashboardAPIConfig() DashboardAPIConfig {
	return DashboardAPIConfig{
		DefaultLimit: 20,
		MaxLimit:     100,
		VersionInfo: VersionInfo{
			Version: "0.0.0",
		},
	}
}

// NewDashboardAPI creates a new DashboardAPI with the specified configuration.
// The store parameter provides access to metrics data.
func NewDashboardAPI(store metrics.MetricsCollector, config DashboardAPIConfig) *DashboardAPI {
	if config.DefaultLimit < 1 {
		config.DefaultLimit = 20
	}
	if config.MaxLimit < 1 {
		config.MaxLimit = 100
	}

	return &DashboardAPI{
		store:        store,
		defaultLimit: config.DefaultLimit,
		maxLimit:     config.MaxLimit,
		versionInfo:  config.VersionInfo,
	}
}

// StatusResponse represents the JSON response for /api/status.
type StatusResponse struct {
	Health     string    `json:"health"`
	Version    string    `json:"version"`
	BuildDate  string    `json:"build_date,omitempty"`
	GitCommit  string    `json:"git_commit,omitempty"`
	Uptime     string    `json:"uptime"`
	UptimeSecs float64   `json:"uptime_secs"`
	LastCheck  time.Time `json:"last_check"`
}

// HandleStatus handles GET /api/status requests.
func (api *DashboardAPI) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		api.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	status := api.store.GetSystemStatus()

	response := StatusResponse{
		Health:     status.Health,
		Version:    api.versionInfo.Version,
		BuildDate:  api.versionInfo.BuildDate,
		GitCommit:  api.versionInfo.GitCommit,
		Uptime:     formatDuration(status.Uptime),
		UptimeSecs: status.Uptime.Seconds(),
		LastCheck:  status.LastCheck,
	}

	api.writeJSON(w, http.StatusOK, response)
}

// RunsResponse represents the JSON response for /api/runs.
type RunsResponse struct {
	Runs  []metrics.RunRecord `json:"runs"`
	Count int                 `json:"count"`
	Limit int                 `json:"limit"`
}

// HandleRuns handles GET /api/runs requests.
// Query parameters:
// - limit: number of runs to return (default: 20, max: 100)
func (api *DashboardAPI) HandleRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		api.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	limit := api.defaultLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	if limit > api.maxLimit {
		limit = api.maxLimit
	}

	runs := api.store.GetRecentRuns(limit)

	response := RunsResponse{
		Runs:  runs,
		Count: len(runs),
		Limit: limit,
	}

	api.writeJSON(w, http.StatusOK, response)
}

// MetricsResponse represents the JSON response for /api/metrics.
type MetricsResponse struct {
	TotalProcessed int64                            `json:"total_processed"`
	TotalSuccess   int64                            `json:"total_success"`
	TotalErrors    int64                            `json:"total_errors"`
	SuccessRate    float64                          `json:"success_rate"`
	ByStage        map[string]*metrics.StageMetrics `json:"by_stage"`
}

// HandleMetrics handles GET /api/metrics requests.
func (api *DashboardAPI) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		api.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	runMetrics := api.store.GetRunMetrics()

	var successRate float64
	if runMetrics.TotalProcessed > 0 {
		successRate = float64(runMetrics.TotalSuccess) / float64(runMetrics.TotalProcessed) * 100
	}

	response := MetricsResponse{
		TotalProcessed: runMetrics.TotalProcessed,
		TotalSuccess:   runMetrics.TotalSuccess,
		TotalErrors:    runMetrics.TotalErrors,
		SuccessRate:    successRate,
		ByStage:        runMetrics.ByStage,
	}

	api.writeJSON(w, http.StatusOK, response)
}

// RegisterRoutes registers all API routes on the given ServeMux.
func (api *DashboardAPI) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/status", api.HandleStatus)
	mux.HandleFunc("/api/runs", api.HandleRuns)
	mux.HandleFunc("/api/metrics", api.HandleMetrics)
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// writeJSON writes a JSON response with the given status code.
func (api *DashboardAPI) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// writeError writes an error response.
func (api *DashboardAPI) writeError(w http.ResponseWriter, status int, message string) {
	response := ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
	}
	api.writeJSON(w, status, response)
}

// formatDuration formats a duration into a human-readable string.
// This is a local helper that formats durations for the API.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return d.Round(time.Second).String()
	}

	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if hours > 0 {
		return strconv.Itoa(hours) + "h" + strconv.Itoa(minutes) + "m" + strconv.Itoa(seconds) + "s"
	}

	return strconv.Itoa(minutes) + "m" + strconv.Itoa(seconds) + "s"
}
