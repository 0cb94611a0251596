// Package webui provides the read-only operator dashboard for the image-flow
// pipeline. This file contains WebSocket message types and constants.
package webui

import (
	"encoding/json"
	"time"
)

// Message type constants for WebSocket communication.
// These define the types of real-time updates sent to connected clients.
const (
	// MessageTypeRunUpdate indicates a pipeline stage changed status
	// (started, completed, error).
	MessageTypeRunUpdate = "run_update"

	// MessageTypeProviderUpdate indicates an upstream provider's reachability
	// changed (vision model, primary/fallback image generator, blob store).
	MessageTypeProviderUpdate = "provider_update"

	// MessageTypeSystemStatus indicates overall system health status change.
	MessageTypeSystemStatus = "system_status"

	// MessageTypeError indicates a server-side error message.
	MessageTypeError = "error"

	// MessageTypePing is a keep-alive message from the server.
	MessageTypePing = "ping"

	// MessageTypePong is a keep-alive response from the client.
	MessageTypePong = "pong"

	// MessageTypeInitial contains the initial state snapshot on connection.
	MessageTypeInitial = "initial"
)

// WSMessage is the base structure for all WebSocket messages.
// It uses a common envelope format with type-specific data in the Data field.
//
// This is a pure data structure atom with no behavior beyond JSON marshaling.
type WSMessage struct {
	// Type identifies the message kind (use MessageType* constants)
	Type string `json:"type"`

	// Timestamp is when the message was created
	Timestamp time.Time `json:"timestamp"`

	// Data contains the type-specific payload (decoded based on Type)
	Data interface{} `json:"data,omitempty"`
}

// NewWSMessage creates a new WebSocket message with the current timestamp.
func NewWSMessage(msgType string, data interface{}) WSMessage {
	return WSMessage{
		Type:      msgType,
		Timestamp: time.Now(),
		Data:      data,
	}
}

// MarshalJSON serializes the message to JSON bytes.
func (m WSMessage) MarshalJSON() ([]byte, error) {
	type Alias WSMessage
	return json.Marshal(Alias(m))
}

// RunUpdateData contains details for a pipeline stage status update, mirroring
// a metrics.RunRecord as broadcast to dashboard clients.
type RunUpdateData struct {
	// CorrelationID is the request's correlation ID (core.NewCorrelationID).
	CorrelationID string `json:"correlation_id"`

	// Stage identifies which pipeline stage this update covers, one of the
	// metrics.Stage* constants.
	Stage string `json:"stage"`

	// Status is the current state (processing, success, error).
	Status string `json:"status"`

	// Duration is how long the stage took (only set on completion).
	Duration time.Duration `json:"duration,omitempty"`

	// Error contains error details if Status is "error".
	Error string `json:"error,omitempty"`
}

// ProviderUpdateData contains the reachability of a single upstream
// dependency (vision model, primary/fallback image generator, blob store).
type ProviderUpdateData struct {
	// Name identifies the provider, e.g. "vision", "image_primary",
	// "image_fallback", "blobstore".
	Name string `json:"name"`

	// Healthy is true iff the last check succeeded.
	Healthy bool `json:"healthy"`

	// LastError is the most recent check failure, empty when Healthy.
	LastError string `json:"last_error,omitempty"`

	// LastCheck is when the check was last performed.
	LastCheck time.Time `json:"last_check"`
}

// SystemStatusData contains overall system health information.
type SystemStatusData struct {
	// Status indicates system state: "running", "degraded", "error"
	Status string `json:"status"`

	// Uptime is how long the system has been running
	Uptime time.Duration `json:"uptime"`

	// TotalProcessed is the total count of pipeline stages processed since start
	TotalProcessed int64 `json:"total_processed"`

	// ErrorRate is the percentage of failed stages (0-100)
	ErrorRate float64 `json:"error_rate"`

	// Version is the application version string
	Version string `json:"version,omitempty"`
}

// ErrorData contains error information sent to clients.
type ErrorData struct {
	// Code is an application-specific error code
	Code string `json:"code"`

	// Message is a human-readable error description
	Message string `json:"message"`
}

// InitialData contains the complete state snapshot sent on connection.
type InitialData struct {
	// System contains current system status
	System SystemStatusData `json:"system"`

	// Providers contains reachability for all monitored upstream dependencies
	Providers []ProviderUpdateData `json:"providers"`

	// RecentRuns contains the last N pipeline stage records
	RecentRuns []RunUpdateData `json:"recent_runs"`
}

// Helper functions for creating common messages

// NewRunUpdateMessage creates a pipeline stage update message.
func NewRunUpdateMessage(data RunUpdateData) WSMessage {
	return NewWSMessage(MessageTypeRunUpdate, data)
}

// NewProviderUpdateMessage creates an upstream provider reachability message.
func NewProviderUpdateMessage(data ProviderUpdateData) WSMessage {
	return NewWSMessage(MessageTypeProviderUpdate, data)
}

// NewSystemStatusMessage creates a system status message.
func NewSystemStatusMessage(data SystemStatusData) WSMessage {
	return NewWSMessage(MessageTypeSystemStatus, data)
}

// NewErrorMessage creates an error message.
func NewErrorMessage(code, message string) WSMessage {
	return NewWSMessage(MessageTypeError, ErrorData{Code: code, Message: message})
}

// NewPingMessage creates a ping keep-alive message.
func NewPingMessage() WSMessage {
	return NewWSMessage(MessageTypePing, nil)
}

// NewInitialMessage creates the initial state snapshot message.
func NewInitialMessage(data InitialData) WSMessage {
	return NewWSMessage(MessageTypeInitial, data)
}
