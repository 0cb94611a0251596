package core

import (
	"fmt"
)

// ConfigError represents a fatal startup configuration error with
// actionable instructions, in the same shape the teacher uses for its own
// startup validation.
type ConfigError struct {
	Code    string // Error code for programmatic handling
	Message string // Human-readable error message
	Action  string // Actionable instruction for resolution
}

func (e *ConfigError) Error() string {
	if e.Action != "" {
		return fmt.Sprintf("%s. %s", e.Message, e.Action)
	}
	return e.Message
}

// Error codes for configuration errors.
const (
	ErrCodeMissingConfig         = "MISSING_CONFIG"
	ErrCodeUnreadableCredentials = "UNREADABLE_CREDENTIALS"
)

// ErrMissingConfig returns an error for missing required configuration.
func ErrMissingConfig(varName string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeMissingConfig,
		Message: fmt.Sprintf("missing required configuration: %s", varName),
		Action:  fmt.Sprintf("set %s in the environment or .env file", varName),
	}
}

// ErrUnreadableCredentials returns an error when a referenced credentials
// file (e.g. GOOGLE_APPLICATION_CREDENTIALS) cannot be resolved or read.
func ErrUnreadableCredentials(path string, reason string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeUnreadableCredentials,
		Message: fmt.Sprintf("cannot read credentials file %s: %s", path, reason),
		Action:  "verify GOOGLE_APPLICATION_CREDENTIALS points at a readable service-account JSON file",
	}
}

// IsConfigError checks if an error is a ConfigError and returns it if so.
func IsConfigError(err error) (*ConfigError, bool) {
	configErr, ok := err.(*ConfigError)
	return configErr, ok
}

// GetErrorCode extracts the error code from an error if it's a ConfigError.
func GetErrorCode(err error) string {
	if configErr, ok := IsConfigError(err); ok {
		return configErr.Code
	}
	return ""
}
