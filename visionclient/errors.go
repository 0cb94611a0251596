package visionclient

import "fmt"

// TransportError covers non-2xx responses, network failures, and malformed
// replies in the non-JSON-mode path. It is distinct from a model refusal:
// the model was never consulted successfully.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("visionclient: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
