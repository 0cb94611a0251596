// Package metrics provides pure data types for the pipeline-run metrics system.
// This file contains atom-level type definitions with no behavior.
package metrics

import "time"

// RunRecord represents a single pipeline stage execution record.
// This is a pure data structure for tracking individual orchestrator stages.
type RunRecord struct {
	// ID is the correlation ID of the request this stage belongs to.
	ID string `json:"id"`

	// Stage identifies which pipeline stage this record covers (e.g.,
	// "reconstruct", "apply_instructions", "synthesize_primary").
	Stage string `json:"stage"`

	// Status indicates the current state: "success", "error", "processing"
	Status string `json:"status"`

	// StartTime is when the stage began execution
	StartTime time.Time `json:"start_time"`

	// EndTime is when the stage completed (zero value if still processing)
	EndTime time.Time `json:"end_time,omitempty"`

	// Duration is the total execution time
	Duration time.Duration `json:"duration"`

	// ErrorMsg contains error details if Status is "error"
	ErrorMsg string `json:"error_msg,omitempty"`
}

// SystemStatus represents the overall pipeline health and status.
// This is a pure data structure with no behavior.
type SystemStatus struct {
	// Health indicates the system state: "running", "degraded", "error"
	Health string `json:"health"`

	// Version is the application version string
	Version string `json:"version"`

	// Uptime is the duration since the application started
	Uptime time.Duration `json:"uptime"`

	// LastCheck is the timestamp of the last health check
	LastCheck time.Time `json:"last_check"`
}

// RunMetrics represents aggregated pipeline-run processing statistics.
// This is a pure data structure with no behavior.
type RunMetrics struct {
	// TotalProcessed is the total number of stage executions recorded
	TotalProcessed int64 `json:"total_processed"`

	// TotalSuccess is the count of successfully completed stage executions
	TotalSuccess int64 `json:"total_success"`

	// TotalErrors is the count of failed stage executions
	TotalErrors int64 `json:"total_errors"`

	// ByStage contains per-stage statistics
	ByStage map[string]*StageMetrics `json:"by_stage"`
}

// StageMetrics represents statistics for a specific pipeline stage.
// This is a pure data structure with no behavior.
type StageMetrics struct {
	// Count is the total number of executions of this stage
	Count int64 `json:"count"`

	// SuccessRate is the percentage of successful executions (0-100)
	SuccessRate float64 `json:"success_rate"`

	// AvgDuration is the average execution time for this stage
	AvgDuration time.Duration `json:"avg_duration"`
}

// Status constants for RunRecord
const (
	RunStatusSuccess    = "success"
	RunStatusError      = "error"
	RunStatusProcessing = "processing"
)

// Health constants for SystemStatus
const (
	SystemHealthRunning  = "running"
	SystemHealthDegraded = "degraded"
	SystemHealthError    = "error"
)

// Pipeline stage constants, matching the orchestrator's execution order.
const (
	StageValidate           = "validate"
	StageUploadInput        = "upload_input"
	StageReconstruct        = "reconstruct"
	StageApplyInstructions  = "apply_instructions"
	StageSynthesizePrimary  = "synthesize_primary"
	StageSynthesizeFallback = "synthesize_fallback"
	StageUploadOutput       = "upload_output"
)
