package imagegen

import "fmt"

// providerError is the structured error shape both quota detection and
// general diagnostics are built from: a numeric code, a textual status,
// a message, and the raw response body for substring scanning.
type providerError struct {
	Code    int
	Status  string
	Message string
	Details string
}

func (e *providerError) Error() string {
	return fmt.Sprintf("imagegen: primary provider error (code=%d status=%s): %s", e.Code, e.Status, e.Message)
}

// FallbackUnavailableError is returned when the primary provider reports
// quota exhaustion but the fallback provider has no API key configured.
// The client fails loudly rather than silently degrading.
type FallbackUnavailableError struct{}

func (e *FallbackUnavailableError) Error() string {
	return "imagegen: fallback provider unavailable: no API key configured"
}
