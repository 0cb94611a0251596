// Package validator decodes and validates the multipart image-flow
// submission before the orchestrator ever touches it.
package validator

import "strings"

// ValidationError names one rejected field and why.
type ValidationError struct {
	Field   string
	Message string
}

// ValidationErrors is a non-empty collection of ValidationError, returned
// instead of a validated Request whenever the submission is rejected.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	messages := make([]string, len(e))
	for i, v := range e {
		messages[i] = v.Field + ": " + v.Message
	}
	return strings.Join(messages, "; ")
}
