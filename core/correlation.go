package core

import (
	"github.com/google/uuid"
)

// NewCorrelationID creates a unique 8-character ID for request tracing,
// truncated from a UUID v4 for log-line brevity while keeping enough
// entropy to correlate the stages of a single pipeline run.
func NewCorrelationID() string {
	return uuid.New().String()[:8]
}
